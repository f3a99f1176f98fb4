package events

import (
	"time"

	"github.com/google/uuid"
)

// Event codes published on the bus. Subjects are events.<code>.
const (
	TypeDocumentUploaded  = "DOCUMENT_UPLOADED"
	TypeTextExtracted     = "DOCUMENT_TEXT_EXTRACTED"
	TypeExtractionFailed  = "DOCUMENT_EXTRACTION_FAILED"
	TypeSoapGenerated     = "SOAP_NOTE_GENERATED"
	TypeGenerationFailed  = "SOAP_GENERATION_FAILED"
	TypeSoapApproved      = "SOAP_NOTE_APPROVED"
	TypeEmbeddingComplete = "SOAP_EMBEDDING_COMPLETE"
	TypeSessionDeleted    = "SESSION_DELETED"
)

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

func NewDocumentUploaded(userId, sessionId, documentId uuid.UUID, fileName string) Event {
	return newEvent(TypeDocumentUploaded, map[string]interface{}{
		"user_id":     userId.String(),
		"session_id":  sessionId.String(),
		"document_id": documentId.String(),
		"file_name":   fileName,
	})
}

func NewTextExtracted(userId, sessionId, documentId uuid.UUID) Event {
	return newEvent(TypeTextExtracted, map[string]interface{}{
		"user_id":     userId.String(),
		"session_id":  sessionId.String(),
		"document_id": documentId.String(),
	})
}

func NewExtractionFailed(userId, sessionId, documentId uuid.UUID, reason string) Event {
	return newEvent(TypeExtractionFailed, map[string]interface{}{
		"user_id":     userId.String(),
		"session_id":  sessionId.String(),
		"document_id": documentId.String(),
		"reason":      reason,
	})
}

func NewSoapGenerated(userId, sessionId, documentId, noteId uuid.UUID) Event {
	return newEvent(TypeSoapGenerated, map[string]interface{}{
		"user_id":      userId.String(),
		"session_id":   sessionId.String(),
		"document_id":  documentId.String(),
		"soap_note_id": noteId.String(),
	})
}

func NewGenerationFailed(userId, sessionId, documentId uuid.UUID, reason string) Event {
	return newEvent(TypeGenerationFailed, map[string]interface{}{
		"user_id":     userId.String(),
		"session_id":  sessionId.String(),
		"document_id": documentId.String(),
		"reason":      reason,
	})
}

func NewSoapApproved(userId, noteId uuid.UUID, approved bool) Event {
	return newEvent(TypeSoapApproved, map[string]interface{}{
		"user_id":      userId.String(),
		"soap_note_id": noteId.String(),
		"approved":     approved,
	})
}

func NewEmbeddingComplete(userId, noteId uuid.UUID, chunkCount int) Event {
	return newEvent(TypeEmbeddingComplete, map[string]interface{}{
		"user_id":      userId.String(),
		"soap_note_id": noteId.String(),
		"chunk_count":  chunkCount,
	})
}

func NewSessionDeleted(userId, sessionId uuid.UUID) Event {
	return newEvent(TypeSessionDeleted, map[string]interface{}{
		"user_id":    userId.String(),
		"session_id": sessionId.String(),
	})
}
