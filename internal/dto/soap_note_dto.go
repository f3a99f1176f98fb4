package dto

import (
	"time"

	"github.com/google/uuid"
)

type SoapSectionDto struct {
	Content    string   `json:"content"`
	Confidence *float64 `json:"confidence,omitempty"`
	WordCount  *int     `json:"word_count,omitempty"`
}

type ShowSoapNoteResponse struct {
	Id         uuid.UUID      `json:"id"`
	SessionId  uuid.UUID      `json:"session_id"`
	DocumentId *uuid.UUID     `json:"document_id,omitempty"`
	Subjective SoapSectionDto `json:"subjective"`
	Objective  SoapSectionDto `json:"objective"`
	Assessment SoapSectionDto `json:"assessment"`
	Plan       SoapSectionDto `json:"plan"`

	AiApproved         bool       `json:"ai_approved"`
	UserApproved       bool       `json:"user_approved"`
	ValidationFeedback *string    `json:"validation_feedback,omitempty"`
	EntityCount        *int       `json:"entity_count,omitempty"`
	ProcessingTimeMs   *int       `json:"processing_time_ms,omitempty"`
	RegenerationCount  int        `json:"regeneration_count"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
}

type ListSoapNotesResponse struct {
	Notes []ShowSoapNoteResponse `json:"notes"`
	Total int64                  `json:"total"`
}

// UpdateSoapNoteRequest replaces all four sections atomically; partial
// section updates are expressed by sending the unchanged content back.
type UpdateSoapNoteRequest struct {
	Id         uuid.UUID
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

type ApproveSoapNoteRequest struct {
	Id       uuid.UUID
	Approved bool `json:"approved"`
}

type ShareSoapNoteRequest struct {
	Id    uuid.UUID
	Email string `json:"email" validate:"required,email"`
}

type TriggerEmbeddingRequest struct {
	NoteIds []uuid.UUID `json:"note_ids" validate:"required,min=1"`
}

type TriggerEmbeddingResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Queued  int    `json:"queued"`
}
