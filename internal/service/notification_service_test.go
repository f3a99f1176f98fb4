package service

import (
	"context"
	"errors"
	"testing"

	"clinical-docs-be/internal/model"
	"clinical-docs-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeNotificationRepo struct {
	stored    []*model.Notification
	createErr error
}

func (r *fakeNotificationRepo) CreateNotification(ctx context.Context, n *model.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.stored = append(r.stored, n)
	return nil
}

func (r *fakeNotificationRepo) GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	out := make([]model.Notification, 0, len(r.stored))
	for _, n := range r.stored {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.stored {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAsRead(ctx context.Context, notificationID uuid.UUID) error {
	for _, n := range r.stored {
		if n.ID == notificationID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	for _, n := range r.stored {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

type fakeDelivery struct {
	sent []model.Notification
}

func (d *fakeDelivery) Send(userID uuid.UUID, n model.Notification) {
	d.sent = append(d.sent, n)
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func TestHandleEventStoresAndDelivers(t *testing.T) {
	repo := &fakeNotificationRepo{}
	delivery := &fakeDelivery{}
	svc := NewNotificationService(repo, nil, delivery, nopLogger{})

	userId := uuid.New()
	sessionId := uuid.New()
	documentId := uuid.New()

	err := svc.handleEvent(context.Background(), events.NewDocumentUploaded(userId, sessionId, documentId, "referral.pdf"))
	assert.NoError(t, err)

	if assert.Len(t, repo.stored, 1) {
		n := repo.stored[0]
		assert.Equal(t, userId, n.UserID)
		assert.Equal(t, events.TypeDocumentUploaded, n.TypeCode)
		assert.Equal(t, "document", n.EntityType)
		assert.Contains(t, n.Message, "referral.pdf")
		if assert.NotNil(t, n.EntityID) {
			assert.Equal(t, documentId, *n.EntityID)
		}
	}
	assert.Len(t, delivery.sent, 1)
}

func TestHandleEventFailureReasonInMessage(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, nil, &fakeDelivery{}, nopLogger{})

	err := svc.handleEvent(context.Background(),
		events.NewExtractionFailed(uuid.New(), uuid.New(), uuid.New(), "unreadable scan"))
	assert.NoError(t, err)

	if assert.Len(t, repo.stored, 1) {
		assert.Contains(t, repo.stored[0].Message, "unreadable scan")
		assert.Equal(t, "Extraction failed", repo.stored[0].Title)
	}
}

func TestHandleEventAuditOnlyCodesAreSkipped(t *testing.T) {
	repo := &fakeNotificationRepo{}
	delivery := &fakeDelivery{}
	svc := NewNotificationService(repo, nil, delivery, nopLogger{})

	err := svc.handleEvent(context.Background(), events.NewSoapApproved(uuid.New(), uuid.New(), true))
	assert.NoError(t, err)
	assert.Empty(t, repo.stored)
	assert.Empty(t, delivery.sent)
}

func TestHandleEventStoreFailurePropagates(t *testing.T) {
	repo := &fakeNotificationRepo{createErr: errors.New("db down")}
	delivery := &fakeDelivery{}
	svc := NewNotificationService(repo, nil, delivery, nopLogger{})

	err := svc.handleEvent(context.Background(),
		events.NewTextExtracted(uuid.New(), uuid.New(), uuid.New()))

	// The bus redelivers on error; nothing should reach the operator yet.
	assert.Error(t, err)
	assert.Empty(t, delivery.sent)
}

func TestHandleEventWithoutUserIdIsDropped(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, nil, &fakeDelivery{}, nopLogger{})

	event := events.BaseEvent{
		Type: events.TypeTextExtracted,
		Data: map[string]interface{}{"document_id": uuid.New().String()},
	}
	err := svc.handleEvent(context.Background(), event)
	assert.NoError(t, err)
	assert.Empty(t, repo.stored)
}
