package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// fakeGateway is an in-memory Gateway with per-method stubs and call
// counting, enough to drive the orchestrator without a server.
type fakeGateway struct {
	mu sync.Mutex

	session   Session
	documents []Document
	notes     []SOAPNote

	uploadCalls   int
	uploadErr     error
	uploadResult  UploadResult
	uploadStarted chan struct{}
	uploadRelease chan struct{}
	uploadBlocked bool

	getSessionCalls int
	getSessionErr   error
	listDocsErr     error
	listNotesErr    error

	metadataCalls   int
	metadataErr     error
	metadata        map[uuid.UUID]*DocumentMetadata
	metadataStarted chan struct{}
	metadataRelease chan struct{}
	metadataBlocked bool

	piiCalls int
	piiErr   error
	pii      map[uuid.UUID]*PiiStatus

	savedNote       *SOAPNote
	saveErr         error
	approveCalls    []bool
	approveErr      error
	reprocessErr    error
	reprocessResult OperationResult
	updateErr       error
	deleteCalls     int

	embedResult OperationResult
	embedErr    error
	pdfBytes    []byte
	pdfErr      error
}

func newFakeGateway() *fakeGateway {
	sessionId := uuid.New()
	return &fakeGateway{
		session: Session{
			Id:          sessionId,
			PatientName: "Jane Roe",
			VisitDate:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		},
		metadata:     make(map[uuid.UUID]*DocumentMetadata),
		pii:          make(map[uuid.UUID]*PiiStatus),
		uploadResult:    UploadResult{Message: "document stored"},
		embedResult:     OperationResult{Success: true, Message: "embedding queued"},
		reprocessResult: OperationResult{Success: true, Message: "regeneration queued"},
		pdfBytes:        []byte("%PDF-1.4 fake"),
	}
}

func (f *fakeGateway) GetSession(_ context.Context, _ uuid.UUID) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getSessionCalls++
	if f.getSessionErr != nil {
		return nil, f.getSessionErr
	}
	session := f.session
	return &session, nil
}

func (f *fakeGateway) UpdateSession(_ context.Context, _ uuid.UUID, update SessionUpdate) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if update.VisitDate != nil {
		f.session.VisitDate = *update.VisitDate
	}
	if update.Notes != nil {
		f.session.Notes = *update.Notes
	}
	session := f.session
	return &session, nil
}

func (f *fakeGateway) DeleteSession(_ context.Context, _ uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return nil
}

func (f *fakeGateway) ListSessionDocuments(_ context.Context, _ uuid.UUID) ([]Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listDocsErr != nil {
		return nil, f.listDocsErr
	}
	docs := make([]Document, len(f.documents))
	copy(docs, f.documents)
	return docs, nil
}

func (f *fakeGateway) UploadDocument(_ context.Context, req UploadRequest) (*UploadResult, error) {
	f.mu.Lock()
	f.uploadCalls++
	var started, release chan struct{}
	// Only the first call blocks; later calls proceed immediately.
	if !f.uploadBlocked && f.uploadStarted != nil {
		f.uploadBlocked = true
		started = f.uploadStarted
		release = f.uploadRelease
	}
	f.mu.Unlock()

	if started != nil {
		close(started)
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.documents = append(f.documents, Document{
		Id:            uuid.New(),
		DisplayName:   req.FileName,
		FileType:      req.FileType,
		State:         "extracted",
		TextExtracted: true,
	})
	f.session.DocumentCount++
	result := f.uploadResult
	return &result, nil
}

func (f *fakeGateway) GetDocumentContent(_ context.Context, _ uuid.UUID) (*DocumentContent, error) {
	return &DocumentContent{Content: "extracted text", Extracted: true}, nil
}

func (f *fakeGateway) ReprocessDocument(_ context.Context, _ uuid.UUID) (*OperationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reprocessErr != nil {
		return nil, f.reprocessErr
	}
	result := f.reprocessResult
	return &result, nil
}

func (f *fakeGateway) GetDocumentMetadata(_ context.Context, documentId uuid.UUID) (*DocumentMetadata, error) {
	f.mu.Lock()
	f.metadataCalls++
	var started, release chan struct{}
	// Only the first call blocks; later calls proceed immediately.
	if !f.metadataBlocked && f.metadataStarted != nil {
		f.metadataBlocked = true
		started = f.metadataStarted
		release = f.metadataRelease
	}
	f.mu.Unlock()

	if started != nil {
		close(started)
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.metadataErr != nil {
		return nil, f.metadataErr
	}
	if meta, ok := f.metadata[documentId]; ok {
		return meta, nil
	}
	return &DocumentMetadata{FilePath: "/files/" + documentId.String(), TextExtracted: true}, nil
}

func (f *fakeGateway) GetDocumentPiiStatus(_ context.Context, documentId uuid.UUID) (*PiiStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.piiCalls++
	if f.piiErr != nil {
		return nil, f.piiErr
	}
	if status, ok := f.pii[documentId]; ok {
		return status, nil
	}
	return &PiiStatus{PiiMasked: true}, nil
}

func (f *fakeGateway) ListSoapNotes(_ context.Context, _ uuid.UUID) ([]SOAPNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listNotesErr != nil {
		return nil, f.listNotesErr
	}
	notes := make([]SOAPNote, len(f.notes))
	copy(notes, f.notes)
	return notes, nil
}

func (f *fakeGateway) SaveSoapNote(_ context.Context, note SOAPNote) (*SOAPNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	saved := note
	f.savedNote = &saved
	return &saved, nil
}

func (f *fakeGateway) ApproveSoapNote(_ context.Context, _ uuid.UUID, approved bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.approveErr != nil {
		return f.approveErr
	}
	f.approveCalls = append(f.approveCalls, approved)
	return nil
}

func (f *fakeGateway) ExportSoapNotePdf(_ context.Context, _ uuid.UUID) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pdfErr != nil {
		return nil, f.pdfErr
	}
	return f.pdfBytes, nil
}

func (f *fakeGateway) TriggerSoapEmbedding(_ context.Context, _ []uuid.UUID) (*OperationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	result := f.embedResult
	return &result, nil
}

func persistedNote() SOAPNote {
	id := uuid.New()
	return SOAPNote{
		Id:         &id,
		Subjective: SoapSection{Content: "patient reports headache"},
		Objective:  SoapSection{Content: "BP 120/80"},
		Assessment: SoapSection{Content: "tension headache"},
		Plan:       SoapSection{Content: "hydration, rest"},
	}
}
