package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	PatientId uuid.UUID `json:"patient_id" validate:"required"`
	VisitDate time.Time `json:"visit_date" validate:"required"`
	Notes     string    `json:"notes"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

// UpdateSessionRequest carries only the fields the session editor exposes;
// nil means "leave unchanged".
type UpdateSessionRequest struct {
	Id        uuid.UUID
	VisitDate *time.Time `json:"visit_date"`
	Notes     *string    `json:"notes"`
}

type ShowSessionResponse struct {
	Id            uuid.UUID  `json:"id"`
	PatientId     uuid.UUID  `json:"patient_id"`
	PatientName   string     `json:"patient_name"`
	VisitDate     time.Time  `json:"visit_date"`
	Notes         string     `json:"notes"`
	DocumentCount int        `json:"document_count"`
	SoapNoteCount int        `json:"soap_note_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

type ListSessionsRequest struct {
	PatientId *uuid.UUID `query:"patient_id"`
	Page      int        `query:"page"`
	PageSize  int        `query:"page_size"`
}

type ListSessionsResponse struct {
	Sessions []ShowSessionResponse `json:"sessions"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}
