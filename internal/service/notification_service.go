package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinical-docs-be/internal/model"
	"clinical-docs-be/internal/pkg/logger"
	"clinical-docs-be/internal/repository"
	"clinical-docs-be/pkg/events"
	pkgNats "clinical-docs-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery pushes real-time updates, implemented by the
// WebSocket hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
}

type NotificationService struct {
	repo       repository.NotificationRepository
	subscriber *pkgNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(repo repository.NotificationRepository, sub *pkgNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus with a durable consumer.
func (s *NotificationService) Start() {
	if err := s.subscriber.Subscribe("events.>", "notification-worker", s.handleEvent); err != nil {
		s.logger.Error("notification", "failed to start event subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("notification", "listening on events.>", nil)
}

// template describes how an event code becomes an operator notification.
type notificationTemplate struct {
	title      string
	entityKey  string
	entityType string
	message    func(payload map[string]interface{}) string
}

var notificationTemplates = map[string]notificationTemplate{
	events.TypeDocumentUploaded: {
		title: "Document uploaded", entityKey: "document_id", entityType: "document",
		message: func(p map[string]interface{}) string {
			return fmt.Sprintf("%v was stored and queued for processing.", p["file_name"])
		},
	},
	events.TypeTextExtracted: {
		title: "Text extracted", entityKey: "document_id", entityType: "document",
		message: func(p map[string]interface{}) string {
			return "Document text extraction finished."
		},
	},
	events.TypeExtractionFailed: {
		title: "Extraction failed", entityKey: "document_id", entityType: "document",
		message: func(p map[string]interface{}) string {
			return fmt.Sprintf("Text extraction failed: %v", p["reason"])
		},
	},
	events.TypeSoapGenerated: {
		title: "SOAP note ready", entityKey: "soap_note_id", entityType: "soap_note",
		message: func(p map[string]interface{}) string {
			return "A SOAP note was generated and is ready for review."
		},
	},
	events.TypeGenerationFailed: {
		title: "Generation failed", entityKey: "document_id", entityType: "document",
		message: func(p map[string]interface{}) string {
			return fmt.Sprintf("SOAP generation failed: %v", p["reason"])
		},
	},
	events.TypeEmbeddingComplete: {
		title: "Note indexed", entityKey: "soap_note_id", entityType: "soap_note",
		message: func(p map[string]interface{}) string {
			return fmt.Sprintf("SOAP note indexed for search (%v chunks).", p["chunk_count"])
		},
	},
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	template, ok := notificationTemplates[event.EventType()]
	if !ok {
		// Approval and deletion events are audit-only.
		return nil
	}

	payload := event.Payload()
	userID, ok := parsePayloadUUID(payload, "user_id")
	if !ok {
		s.logger.Warn("notification", "event without user_id skipped", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	notification := model.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		TypeCode:   event.EventType(),
		EntityType: template.entityType,
		Title:      template.title,
		Message:    template.message(payload),
		IsRead:     false,
		CreatedAt:  time.Now(),
	}
	if entityID, ok := parsePayloadUUID(payload, template.entityKey); ok {
		notification.EntityID = &entityID
	}
	if metadata, err := json.Marshal(payload); err == nil {
		notification.Metadata = datatypes.JSON(metadata)
	}

	if err := s.repo.CreateNotification(ctx, &notification); err != nil {
		s.logger.Error("notification", "failed to store notification", map[string]interface{}{"error": err.Error()})
		return err // JetStream redelivers
	}

	if s.delivery != nil {
		s.delivery.Send(userID, notification)
	}
	return nil
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func parsePayloadUUID(payload map[string]interface{}, key string) (uuid.UUID, bool) {
	raw, ok := payload[key].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
