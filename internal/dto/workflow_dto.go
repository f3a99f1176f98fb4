package dto

import (
	"time"

	"github.com/google/uuid"
)

// Workflow DTOs expose the orchestrator's snapshot over REST so a thin
// client can render the session workspace without owning the state machine.

type WorkflowFeedbackDto struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type WorkflowUploadStateDto struct {
	HasFile      bool                 `json:"has_file"`
	FileName     string               `json:"file_name,omitempty"`
	FileSize     int64                `json:"file_size,omitempty"`
	ExtractText  bool                 `json:"extract_text"`
	GenerateSoap bool                 `json:"generate_soap"`
	Uploading    bool                 `json:"uploading"`
	Feedback     *WorkflowFeedbackDto `json:"feedback,omitempty"`
}

type WorkflowInsightStateDto struct {
	MetadataDocumentId *uuid.UUID                `json:"metadata_document_id,omitempty"`
	Metadata           *DocumentMetadataResponse `json:"metadata,omitempty"`
	MetadataLoading    bool                      `json:"metadata_loading"`
	MetadataError      string                    `json:"metadata_error,omitempty"`

	PiiDocumentId *uuid.UUID           `json:"pii_document_id,omitempty"`
	Pii           *DocumentPiiResponse `json:"pii,omitempty"`
	PiiLoading    bool                 `json:"pii_loading"`
	PiiError      string               `json:"pii_error,omitempty"`
}

type WorkflowNoteStateDto struct {
	Note              ShowSoapNoteResponse `json:"note"`
	Dirty             bool                 `json:"dirty"`
	Saving            bool                 `json:"saving"`
	Approving         bool                 `json:"approving"`
	Exporting         bool                 `json:"exporting"`
	Embedding         bool                 `json:"embedding"`
	CanPersist        bool                 `json:"can_persist"`
	UnavailableReason string               `json:"unavailable_reason,omitempty"`
}

type WorkflowSnapshotResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Loaded    bool      `json:"loaded"`

	Session    *ShowSessionResponse   `json:"session,omitempty"`
	SessionErr string                 `json:"session_error,omitempty"`
	Documents  []ShowDocumentResponse `json:"documents"`
	DocErr     string                 `json:"document_error,omitempty"`
	Notes      []WorkflowNoteStateDto `json:"notes"`
	NotesErr   string                 `json:"notes_error,omitempty"`

	MetaDirty    bool                 `json:"meta_dirty"`
	MetaFeedback *WorkflowFeedbackDto `json:"meta_feedback,omitempty"`

	Upload  WorkflowUploadStateDto  `json:"upload"`
	Insight WorkflowInsightStateDto `json:"insight"`
}

type WorkflowSelectFileRequest struct {
	SessionId uuid.UUID
	FileName  string `validate:"required"`
	FileType  string
	FileSize  int64
	Content   []byte
}

type WorkflowToggleRequest struct {
	SessionId uuid.UUID
	Flag      string `json:"flag" validate:"required,oneof=extract_text generate_soap"`
}

type WorkflowInsightToggleRequest struct {
	SessionId  uuid.UUID
	DocumentId uuid.UUID `json:"document_id" validate:"required"`
	Panel      string    `json:"panel" validate:"required,oneof=metadata pii"`
}

type WorkflowEditSectionRequest struct {
	SessionId uuid.UUID
	NoteId    uuid.UUID `json:"note_id" validate:"required"`
	Section   string    `json:"section" validate:"required,oneof=subjective objective assessment plan"`
	Content   string    `json:"content"`
}

type WorkflowEditMetaRequest struct {
	SessionId uuid.UUID
	VisitDate *time.Time `json:"visit_date"`
	Notes     *string    `json:"notes"`
}

type WorkflowNoteActionRequest struct {
	SessionId uuid.UUID
	NoteId    uuid.UUID `json:"note_id" validate:"required"`
	Approved  *bool     `json:"approved,omitempty"`
}
