package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is the gateway's view of one patient visit.
type Session struct {
	Id            uuid.UUID
	PatientId     uuid.UUID
	PatientName   string
	VisitDate     time.Time
	Notes         string
	DocumentCount int
	SoapNoteCount int
}

// Document is the gateway's view of one uploaded document.
type Document struct {
	Id            uuid.UUID
	DisplayName   string
	FileType      string
	FileSize      int64
	State         string
	TextExtracted bool
	SoapGenerated bool
	FailureReason string
	CreatedAt     time.Time
}

type DocumentContent struct {
	Content   string
	Extracted bool
	Message   string
}

type DocumentMetadata struct {
	FilePath      string
	ProcessedAt   *time.Time
	TextExtracted bool
	SoapGenerated bool
}

type PiiStatus struct {
	PiiMasked         bool
	PiiEntitiesFound  *int
	PiiProcessingNote string
}

type SoapSection struct {
	Content    string
	Confidence *float64
	WordCount  *int
}

// SOAPNote is the gateway's view of one note. Id is nil until the note has
// been persisted; save/approve/export/embedding require a persisted id.
type SOAPNote struct {
	Id         *uuid.UUID
	SessionId  uuid.UUID
	Subjective SoapSection
	Objective  SoapSection
	Assessment SoapSection
	Plan       SoapSection

	AiApproved         bool
	UserApproved       bool
	ValidationFeedback string
	EntityCount        *int
	ProcessingTimeMs   *int
	RegenerationCount  int
}

type UploadRequest struct {
	FileName     string
	FileType     string
	Content      []byte
	SessionId    uuid.UUID
	ExtractText  bool
	GenerateSoap bool
}

type UploadResult struct {
	Message string
}

// OperationResult carries soft-failure semantics: the call can succeed at the
// transport level while the payload reports success=false.
type OperationResult struct {
	Success bool
	Message string
}

type SessionUpdate struct {
	VisitDate *time.Time
	Notes     *string
}

// Gateway is the network collaborator the orchestrator drives. Production
// wires it to the REST backend; tests use a fake.
type Gateway interface {
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	UpdateSession(ctx context.Context, id uuid.UUID, update SessionUpdate) (*Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	ListSessionDocuments(ctx context.Context, sessionId uuid.UUID) ([]Document, error)
	UploadDocument(ctx context.Context, req UploadRequest) (*UploadResult, error)
	GetDocumentContent(ctx context.Context, documentId uuid.UUID) (*DocumentContent, error)
	ReprocessDocument(ctx context.Context, documentId uuid.UUID) (*OperationResult, error)
	GetDocumentMetadata(ctx context.Context, documentId uuid.UUID) (*DocumentMetadata, error)
	GetDocumentPiiStatus(ctx context.Context, documentId uuid.UUID) (*PiiStatus, error)

	ListSoapNotes(ctx context.Context, sessionId uuid.UUID) ([]SOAPNote, error)
	SaveSoapNote(ctx context.Context, note SOAPNote) (*SOAPNote, error)
	ApproveSoapNote(ctx context.Context, noteId uuid.UUID, approved bool) error
	ExportSoapNotePdf(ctx context.Context, noteId uuid.UUID) ([]byte, error)
	TriggerSoapEmbedding(ctx context.Context, noteIds []uuid.UUID) (*OperationResult, error)
}
