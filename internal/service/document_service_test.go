package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"clinical-docs-be/internal/entity"
	"clinical-docs-be/internal/repository/contract"
	"clinical-docs-be/internal/repository/unitofwork"
	"clinical-docs-be/pkg/aiservice"

	"github.com/google/uuid"
)

// recordingDocumentRepo counts which persistence path each pipeline step
// takes. Only the update methods are implemented; anything else the test
// touches panics through the embedded nil interface.
type recordingDocumentRepo struct {
	contract.DocumentRepository

	mu           sync.Mutex
	fullUpdates  int
	stateUpdates int
	piiUpdates   int
	last         entity.Document
}

func (r *recordingDocumentRepo) Update(_ context.Context, document *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fullUpdates++
	r.last = *document
	return nil
}

func (r *recordingDocumentRepo) UpdateState(_ context.Context, document *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stateUpdates++
	r.last = *document
	return nil
}

func (r *recordingDocumentRepo) UpdatePiiResult(_ context.Context, document *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.piiUpdates++
	r.last = *document
	return nil
}

type fakeUnitOfWork struct {
	unitofwork.UnitOfWork
	docs contract.DocumentRepository
}

func (f *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository { return f.docs }

func piiTestService(t *testing.T, handler http.HandlerFunc) *documentService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &documentService{
		aiClient: aiservice.NewClient(server.URL, time.Second),
		log:      nopLogger{},
	}
}

// PII analysis runs concurrently with SOAP generation against the same row,
// so its result must be persisted column-scoped, never as a full-row save
// that could drag the state backwards.
func TestAnalyzePiiPersistsColumnScoped(t *testing.T) {
	s := piiTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(aiservice.PiiResponse{
			Success:       true,
			MaskedText:    "Patient [NAME] reports chest pain.",
			EntitiesFound: 1,
		})
	})

	repo := &recordingDocumentRepo{}
	uow := &fakeUnitOfWork{docs: repo}
	document := &entity.Document{Id: uuid.New(), State: entity.DocumentStateExtracted}

	s.analyzePii(context.Background(), uow, document, "Patient Jane Roe reports chest pain.")

	if repo.piiUpdates != 1 {
		t.Fatalf("piiUpdates = %d, want 1", repo.piiUpdates)
	}
	if repo.fullUpdates != 0 || repo.stateUpdates != 0 {
		t.Fatalf("PII result used a non-PII persistence path (full=%d state=%d)", repo.fullUpdates, repo.stateUpdates)
	}
	if !repo.last.PiiMasked {
		t.Error("PiiMasked not set on persisted document")
	}
	if repo.last.PiiEntitiesFound == nil || *repo.last.PiiEntitiesFound != 1 {
		t.Errorf("PiiEntitiesFound = %v, want 1", repo.last.PiiEntitiesFound)
	}
	if repo.last.ExtractedText == nil || *repo.last.ExtractedText != "Patient [NAME] reports chest pain." {
		t.Error("masked text not stored on persisted document")
	}
}

func TestAnalyzePiiFailureRecordsNoteOnly(t *testing.T) {
	s := piiTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(aiservice.PiiResponse{Success: false, Message: "model overloaded"})
	})

	repo := &recordingDocumentRepo{}
	uow := &fakeUnitOfWork{docs: repo}
	document := &entity.Document{Id: uuid.New(), State: entity.DocumentStateExtracted}

	s.analyzePii(context.Background(), uow, document, "some text")

	if repo.piiUpdates != 1 {
		t.Fatalf("piiUpdates = %d, want 1", repo.piiUpdates)
	}
	if repo.last.PiiMasked {
		t.Error("PiiMasked set despite rejected analysis")
	}
	if repo.last.PiiProcessingNote == nil {
		t.Fatal("rejection left no processing note")
	}
}

// State transitions after the pipeline forks must only write the state
// machine columns, otherwise generation's save could erase a concurrently
// stored PII result.
func TestTransitionPersistsStateColumnsOnly(t *testing.T) {
	s := &documentService{log: nopLogger{}}
	repo := &recordingDocumentRepo{}
	uow := &fakeUnitOfWork{docs: repo}
	document := &entity.Document{Id: uuid.New(), State: entity.DocumentStateExtracted}

	if err := s.transition(context.Background(), uow, document, entity.DocumentStateGenerating, ""); err != nil {
		t.Fatalf("transition error = %v", err)
	}

	if repo.stateUpdates != 1 {
		t.Fatalf("stateUpdates = %d, want 1", repo.stateUpdates)
	}
	if repo.fullUpdates != 0 {
		t.Fatalf("transition performed a full-row save (full=%d)", repo.fullUpdates)
	}
	if repo.last.State != entity.DocumentStateGenerating {
		t.Errorf("persisted state = %s, want %s", repo.last.State, entity.DocumentStateGenerating)
	}
}
