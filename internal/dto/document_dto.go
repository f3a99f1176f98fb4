package dto

import (
	"time"

	"github.com/google/uuid"
)

// UploadDocumentRequest is populated from the multipart form; file bytes are
// read by the controller before the service sees them.
type UploadDocumentRequest struct {
	SessionId    uuid.UUID
	FileName     string `validate:"required"`
	FileType     string
	FileSize     int64
	Content      []byte
	ExtractText  bool
	GenerateSoap bool
}

type UploadDocumentResponse struct {
	Id      uuid.UUID `json:"id"`
	State   string    `json:"state"`
	Message string    `json:"message"`
}

type ShowDocumentResponse struct {
	Id            uuid.UUID  `json:"id"`
	SessionId     uuid.UUID  `json:"session_id"`
	DisplayName   string     `json:"display_name"`
	FileType      string     `json:"file_type"`
	FileSize      int64      `json:"file_size"`
	State         string     `json:"state"`
	TextExtracted bool       `json:"text_extracted"`
	SoapGenerated bool       `json:"soap_generated"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}

type ListDocumentsResponse struct {
	Documents []ShowDocumentResponse `json:"documents"`
	Total     int64                  `json:"total"`
}

type DocumentContentResponse struct {
	Id        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Extracted bool      `json:"extracted"`
	Message   string    `json:"message,omitempty"`
}

type DocumentMetadataResponse struct {
	Id            uuid.UUID  `json:"id"`
	FilePath      string     `json:"file_path"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	TextExtracted bool       `json:"text_extracted"`
	SoapGenerated bool       `json:"soap_generated"`
}

type DocumentPiiResponse struct {
	Id                uuid.UUID `json:"id"`
	PiiMasked         bool      `json:"pii_masked"`
	PiiEntitiesFound  *int      `json:"pii_entities_found,omitempty"`
	PiiProcessingNote *string   `json:"pii_processing_note,omitempty"`
}

type ReprocessDocumentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
