package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinical-docs-be/internal/dto"
	"clinical-docs-be/internal/entity"
	"clinical-docs-be/internal/pkg/logger"
	"clinical-docs-be/internal/repository/specification"
	"clinical-docs-be/internal/repository/unitofwork"
	"clinical-docs-be/pkg/embedding"
	"clinical-docs-be/pkg/events"
	pkgNats "clinical-docs-be/pkg/nats"
	"clinical-docs-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pkgNats.Publisher
	log               logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		log:               log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedSoapNoteMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("embedding-consumer", "failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid payloads would retry forever
		return
	}

	cs.log.Info("embedding-consumer", "embedding soap note", map[string]interface{}{"soap_note_id": payload.SoapNoteId.String()})

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.SoapNoteRepository().FindOne(ctx, specification.ByID{ID: payload.SoapNoteId})
	if err != nil {
		cs.log.Error("embedding-consumer", "failed to load soap note", map[string]interface{}{
			"soap_note_id": payload.SoapNoteId.String(), "error": err.Error(),
		})
		msg.Nack()
		return
	}
	if note == nil {
		// Note was deleted between trigger and processing.
		msg.Ack()
		return
	}

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: note.SessionId})
	if err != nil {
		cs.log.Error("embedding-consumer", "failed to load session", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	patientName := ""
	if session != nil {
		patient, err := uow.PatientRepository().FindOne(ctx, specification.ByID{ID: session.PatientId})
		if err == nil && patient != nil {
			patientName = patient.FullName()
		}
	}

	content := fmt.Sprintf(`Patient: %s
Visit Note

Subjective:
%s

Objective:
%s

Assessment:
%s

Plan:
%s`,
		patientName,
		note.Subjective.Content,
		note.Objective.Content,
		note.Assessment.Content,
		note.Plan.Content,
	)

	// 1500 chars per chunk keeps well inside embedding context limits.
	chunks := utils.SplitText(content, 1500, 200)

	var newEmbeddings []*entity.NoteEmbedding
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			cs.log.Error("embedding-consumer", "embedding generation failed", map[string]interface{}{
				"soap_note_id": note.Id.String(), "chunk": i, "error": err.Error(),
			})
			msg.Nack()
			return
		}
		newEmbeddings = append(newEmbeddings, &entity.NoteEmbedding{
			Id:             uuid.New(),
			SoapNoteId:     note.Id,
			Chunk:          chunk,
			ChunkIndex:     i,
			EmbeddingValue: res.Embedding.Values,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		msg.Nack()
		return
	}
	defer uow.Rollback()

	// Replace, never append: stale chunks must not linger after re-embedding.
	if err := uow.NoteEmbeddingRepository().DeleteBySoapNoteId(ctx, note.Id); err != nil {
		cs.log.Error("embedding-consumer", "failed to delete old chunks", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}
	if len(newEmbeddings) > 0 {
		if err := uow.NoteEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			cs.log.Error("embedding-consumer", "failed to store chunks", map[string]interface{}{"error": err.Error()})
			msg.Nack()
			return
		}
	}
	if err := uow.Commit(); err != nil {
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.NewEmbeddingComplete(payload.UserId, note.Id, len(newEmbeddings))
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.log.Warn("embedding-consumer", "failed to publish completion event", map[string]interface{}{"error": err.Error()})
		}
	}

	cs.log.Info("embedding-consumer", "soap note embedded", map[string]interface{}{
		"soap_note_id": note.Id.String(), "chunks": len(newEmbeddings),
	})
	msg.Ack()
}
