// Drives one complete workflow (upload -> extract -> generate -> edit ->
// approve -> export -> embed) against an in-process stub gateway. Useful to
// eyeball orchestrator behavior without a running backend.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"clinical-docs-be/pkg/workflow"

	"github.com/google/uuid"
)

// stubGateway simulates the backend: uploads land as already-extracted
// documents and, when requested, immediately produce a generated SOAP note.
type stubGateway struct {
	session   workflow.Session
	documents []workflow.Document
	notes     []workflow.SOAPNote
}

func (g *stubGateway) GetSession(ctx context.Context, id uuid.UUID) (*workflow.Session, error) {
	s := g.session
	s.DocumentCount = len(g.documents)
	s.SoapNoteCount = len(g.notes)
	return &s, nil
}

func (g *stubGateway) UpdateSession(ctx context.Context, id uuid.UUID, update workflow.SessionUpdate) (*workflow.Session, error) {
	if update.VisitDate != nil {
		g.session.VisitDate = *update.VisitDate
	}
	if update.Notes != nil {
		g.session.Notes = *update.Notes
	}
	return g.GetSession(ctx, id)
}

func (g *stubGateway) DeleteSession(ctx context.Context, id uuid.UUID) error {
	g.documents = nil
	g.notes = nil
	return nil
}

func (g *stubGateway) ListSessionDocuments(ctx context.Context, sessionId uuid.UUID) ([]workflow.Document, error) {
	return append([]workflow.Document(nil), g.documents...), nil
}

func (g *stubGateway) UploadDocument(ctx context.Context, req workflow.UploadRequest) (*workflow.UploadResult, error) {
	doc := workflow.Document{
		Id:          uuid.New(),
		DisplayName: req.FileName,
		FileType:    req.FileType,
		FileSize:    int64(len(req.Content)),
		State:       "extracted",
		CreatedAt:   time.Now(),
	}
	doc.TextExtracted = req.ExtractText
	if !req.ExtractText {
		doc.State = "pending"
	}
	if req.ExtractText && req.GenerateSoap {
		doc.State = "generated"
		doc.SoapGenerated = true
		noteId := uuid.New()
		g.notes = append(g.notes, workflow.SOAPNote{
			Id:         &noteId,
			SessionId:  req.SessionId,
			Subjective: workflow.SoapSection{Content: "Patient reports intermittent headaches for two weeks."},
			Objective:  workflow.SoapSection{Content: "BP 128/82, afebrile, neuro exam unremarkable."},
			Assessment: workflow.SoapSection{Content: "Probable tension-type headache."},
			Plan:       workflow.SoapSection{Content: "Hydration, OTC analgesics, follow up in two weeks."},
			AiApproved: true,
		})
	}
	g.documents = append(g.documents, doc)
	return &workflow.UploadResult{Message: fmt.Sprintf("stored %s", req.FileName)}, nil
}

func (g *stubGateway) GetDocumentContent(ctx context.Context, documentId uuid.UUID) (*workflow.DocumentContent, error) {
	return &workflow.DocumentContent{Content: "simulated extracted text", Extracted: true}, nil
}

func (g *stubGateway) ReprocessDocument(ctx context.Context, documentId uuid.UUID) (*workflow.OperationResult, error) {
	return &workflow.OperationResult{Success: true, Message: "regeneration queued"}, nil
}

func (g *stubGateway) GetDocumentMetadata(ctx context.Context, documentId uuid.UUID) (*workflow.DocumentMetadata, error) {
	now := time.Now()
	return &workflow.DocumentMetadata{FilePath: "uploads/simulated.pdf", ProcessedAt: &now, TextExtracted: true}, nil
}

func (g *stubGateway) GetDocumentPiiStatus(ctx context.Context, documentId uuid.UUID) (*workflow.PiiStatus, error) {
	entities := 3
	return &workflow.PiiStatus{PiiMasked: true, PiiEntitiesFound: &entities, PiiProcessingNote: "names and MRN masked"}, nil
}

func (g *stubGateway) ListSoapNotes(ctx context.Context, sessionId uuid.UUID) ([]workflow.SOAPNote, error) {
	return append([]workflow.SOAPNote(nil), g.notes...), nil
}

func (g *stubGateway) SaveSoapNote(ctx context.Context, note workflow.SOAPNote) (*workflow.SOAPNote, error) {
	for i := range g.notes {
		if g.notes[i].Id != nil && note.Id != nil && *g.notes[i].Id == *note.Id {
			g.notes[i] = note
		}
	}
	return &note, nil
}

func (g *stubGateway) ApproveSoapNote(ctx context.Context, noteId uuid.UUID, approved bool) error {
	for i := range g.notes {
		if g.notes[i].Id != nil && *g.notes[i].Id == noteId {
			g.notes[i].UserApproved = approved
		}
	}
	return nil
}

func (g *stubGateway) ExportSoapNotePdf(ctx context.Context, noteId uuid.UUID) ([]byte, error) {
	return []byte("%PDF-1.4 simulated"), nil
}

func (g *stubGateway) TriggerSoapEmbedding(ctx context.Context, noteIds []uuid.UUID) (*workflow.OperationResult, error) {
	return &workflow.OperationResult{Success: true, Message: fmt.Sprintf("%d note(s) queued for embedding", len(noteIds))}, nil
}

func main() {
	ctx := context.Background()
	sessionId := uuid.New()

	gateway := &stubGateway{
		session: workflow.Session{
			Id:          sessionId,
			PatientId:   uuid.New(),
			PatientName: "Alice Hartono",
			VisitDate:   time.Now(),
			Notes:       "Initial consultation",
		},
	}

	orch := workflow.New(gateway, sessionId)
	orch.LoadAll(ctx)
	snap := orch.Snapshot()
	log.Printf("loaded session %s (%s), %d documents, %d notes",
		snap.SessionId, snap.Session.PatientName, len(snap.Documents), len(snap.Notes))

	// Upload with extraction + generation enabled.
	orch.Uploader().SelectFile(workflow.SelectedFile{
		Name:    "referral.pdf",
		Type:    "pdf",
		Size:    2048,
		Content: []byte("simulated referral letter"),
	})
	orch.Uploader().ToggleGenerateSoap()
	if err := orch.Upload(ctx); err != nil {
		log.Fatalf("upload: %v", err)
	}
	snap = orch.Snapshot()
	if snap.Upload.Feedback != nil {
		log.Printf("upload done: %q, documents=%d", snap.Upload.Feedback.Message, len(snap.Documents))
	}

	orch.LoadAll(ctx)
	snap = orch.Snapshot()
	if len(snap.Notes) == 0 || snap.Notes[0].Note.Id == nil {
		log.Fatal("expected a generated note after reload")
	}
	noteId := *snap.Notes[0].Note.Id
	log.Printf("generated note %s", noteId)

	// Insight panels on the new document.
	docId := snap.Documents[0].Id
	if err := orch.Insight().ToggleMetadata(ctx, docId); err != nil {
		log.Fatalf("metadata: %v", err)
	}
	if err := orch.Insight().TogglePii(ctx, docId); err != nil {
		log.Fatalf("pii: %v", err)
	}

	// Edit, save, approve, export, embed.
	tracker := orch.Tracker(noteId)
	if err := tracker.EditSection("plan", "Hydration, OTC analgesics, review in one week."); err != nil {
		log.Fatalf("edit: %v", err)
	}
	if err := tracker.Save(ctx); err != nil {
		log.Fatalf("save: %v", err)
	}
	if err := tracker.Approve(ctx, true); err != nil {
		log.Fatalf("approve: %v", err)
	}
	pdf, fileName, err := tracker.ExportPdf(ctx, tracker.DefaultExportFileName())
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	log.Printf("exported %s (%d bytes)", fileName, len(pdf))
	if err := tracker.TriggerEmbedding(ctx); err != nil {
		log.Fatalf("embed: %v", err)
	}

	snap = orch.Snapshot()
	final := snap.Notes[0]
	log.Printf("final note state: approved=%v embed=%v", final.Note.UserApproved, final.EmbedFeedback)
	log.Println("simulation completed")
}
