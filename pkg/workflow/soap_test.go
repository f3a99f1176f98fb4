package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestEditSectionLocalOnly(t *testing.T) {
	gateway := newFakeGateway()
	confidence := 0.91
	words := 12
	note := persistedNote()
	note.Assessment.Confidence = &confidence
	note.Assessment.WordCount = &words
	tracker := NewSoapTracker(gateway, note)

	if err := tracker.EditSection(SectionAssessment, "migraine without aura"); err != nil {
		t.Fatalf("EditSection() error = %v", err)
	}

	state := tracker.State()
	if !state.Dirty {
		t.Fatal("edit did not mark the tracker dirty")
	}
	if state.Note.Assessment.Content != "migraine without aura" {
		t.Fatalf("assessment = %q", state.Note.Assessment.Content)
	}
	// Confidence and word count describe the generated text; an edit leaves
	// them alone rather than guessing new values.
	if state.Note.Assessment.Confidence == nil || *state.Note.Assessment.Confidence != confidence {
		t.Fatal("edit altered the section confidence")
	}
	if state.Note.Assessment.WordCount == nil || *state.Note.Assessment.WordCount != words {
		t.Fatal("edit altered the section word count")
	}
	if gateway.savedNote != nil {
		t.Fatal("EditSection must not persist")
	}
}

func TestEditSectionUnknownKey(t *testing.T) {
	tracker := NewSoapTracker(newFakeGateway(), persistedNote())
	if err := tracker.EditSection("impression", "x"); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("error = %v, want ErrUnknownSection", err)
	}
}

// Scenario: edit the assessment, save, and check the persisted note has the
// edit while the other three sections are untouched.
func TestSaveEndToEnd(t *testing.T) {
	gateway := newFakeGateway()
	original := persistedNote()
	tracker := NewSoapTracker(gateway, original)

	if err := tracker.EditSection(SectionAssessment, "cluster headache, rule out sinusitis"); err != nil {
		t.Fatalf("EditSection() error = %v", err)
	}
	if err := tracker.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	saved := gateway.savedNote
	if saved == nil {
		t.Fatal("nothing reached the gateway")
	}
	if saved.Assessment.Content != "cluster headache, rule out sinusitis" {
		t.Fatalf("persisted assessment = %q", saved.Assessment.Content)
	}
	if saved.Subjective.Content != original.Subjective.Content ||
		saved.Objective.Content != original.Objective.Content ||
		saved.Plan.Content != original.Plan.Content {
		t.Fatal("saving the assessment altered another section")
	}

	state := tracker.State()
	if state.Dirty {
		t.Fatal("successful save left the tracker dirty")
	}
	if state.SaveFeedback == nil || state.SaveFeedback.Level != FeedbackSuccess {
		t.Fatalf("save feedback = %+v", state.SaveFeedback)
	}
}

func TestSaveFailurePreservesEdits(t *testing.T) {
	gateway := newFakeGateway()
	gateway.saveErr = errors.New("conflict")
	tracker := NewSoapTracker(gateway, persistedNote())

	_ = tracker.EditSection(SectionPlan, "follow up in two weeks")
	if err := tracker.Save(context.Background()); err == nil {
		t.Fatal("Save() expected error")
	}

	state := tracker.State()
	if !state.Dirty {
		t.Fatal("failed save cleared the dirty flag")
	}
	if state.Note.Plan.Content != "follow up in two weeks" {
		t.Fatal("failed save dropped the local edit")
	}
}

func TestApproveThenRevoke(t *testing.T) {
	gateway := newFakeGateway()
	original := persistedNote()
	tracker := NewSoapTracker(gateway, original)
	ctx := context.Background()

	if err := tracker.Approve(ctx, true); err != nil {
		t.Fatalf("Approve(true) error = %v", err)
	}
	if err := tracker.Approve(ctx, false); err != nil {
		t.Fatalf("Approve(false) error = %v", err)
	}

	state := tracker.State()
	if state.Note.UserApproved {
		t.Fatal("UserApproved = true after revoke")
	}
	if state.Note.Subjective.Content != original.Subjective.Content ||
		state.Note.Assessment.Content != original.Assessment.Content {
		t.Fatal("approval changed section content")
	}
	if got := gateway.approveCalls; len(got) != 2 || got[0] != true || got[1] != false {
		t.Fatalf("approveCalls = %v", got)
	}
}

// Scenario: the server returned a note without an id. Every persistence
// operation is unavailable, and the state explains why.
func TestUnpersistedNoteDisablesOperations(t *testing.T) {
	gateway := newFakeGateway()
	note := persistedNote()
	note.Id = nil
	tracker := NewSoapTracker(gateway, note)
	ctx := context.Background()

	state := tracker.State()
	if state.CanPersist {
		t.Fatal("CanPersist = true without a note id")
	}
	if state.UnavailableReason == "" {
		t.Fatal("missing explanation for disabled controls")
	}

	if err := tracker.Save(ctx); !errors.Is(err, ErrNoNoteId) {
		t.Fatalf("Save() error = %v, want ErrNoNoteId", err)
	}
	if err := tracker.Approve(ctx, true); !errors.Is(err, ErrNoNoteId) {
		t.Fatalf("Approve() error = %v, want ErrNoNoteId", err)
	}
	if _, _, err := tracker.ExportPdf(ctx, ""); !errors.Is(err, ErrNoNoteId) {
		t.Fatalf("ExportPdf() error = %v, want ErrNoNoteId", err)
	}
	if err := tracker.TriggerEmbedding(ctx); !errors.Is(err, ErrNoNoteId) {
		t.Fatalf("TriggerEmbedding() error = %v, want ErrNoNoteId", err)
	}

	// Each rejected operation leaves an informational message, matching the
	// state-level explanation.
	state = tracker.State()
	for name, fb := range map[string]*Feedback{
		"save":    state.SaveFeedback,
		"approve": state.ApproveFeedback,
		"export":  state.ExportFeedback,
		"embed":   state.EmbedFeedback,
	} {
		if fb == nil || fb.Level != FeedbackInfo {
			t.Errorf("%s feedback = %+v, want info-level message", name, fb)
		}
	}

	// Local edits remain possible; only persistence is gated.
	if err := tracker.EditSection(SectionSubjective, "updated"); err != nil {
		t.Fatalf("EditSection() error = %v", err)
	}
}

func TestEmbeddingSoftFailureUsesServerMessage(t *testing.T) {
	gateway := newFakeGateway()
	gateway.embedResult = OperationResult{Success: false, Message: "embedding service at capacity"}
	tracker := NewSoapTracker(gateway, persistedNote())

	if err := tracker.TriggerEmbedding(context.Background()); err != nil {
		t.Fatalf("soft failure must not surface as a transport error, got %v", err)
	}

	state := tracker.State()
	if state.EmbedFeedback == nil || state.EmbedFeedback.Level != FeedbackError {
		t.Fatalf("embed feedback = %+v, want error feedback", state.EmbedFeedback)
	}
	if state.EmbedFeedback.Message != "embedding service at capacity" {
		t.Fatalf("embed message = %q, want the server's message", state.EmbedFeedback.Message)
	}
}

func TestEmbeddingTransportFailure(t *testing.T) {
	gateway := newFakeGateway()
	gateway.embedErr = errors.New("connection refused")
	tracker := NewSoapTracker(gateway, persistedNote())

	if err := tracker.TriggerEmbedding(context.Background()); err == nil {
		t.Fatal("transport failure must surface as an error")
	}
	state := tracker.State()
	if state.EmbedFeedback == nil || state.EmbedFeedback.Message != "connection refused" {
		t.Fatalf("embed feedback = %+v", state.EmbedFeedback)
	}
}

func TestExportPdfDefaultFileName(t *testing.T) {
	gateway := newFakeGateway()
	note := persistedNote()
	tracker := NewSoapTracker(gateway, note)

	data, fileName, err := tracker.ExportPdf(context.Background(), "")
	if err != nil {
		t.Fatalf("ExportPdf() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("no PDF bytes returned")
	}
	short := note.Id.String()[:8]
	if want := "soap-note-" + short + ".pdf"; fileName != want {
		t.Fatalf("fileName = %q, want %q", fileName, want)
	}
	if !strings.HasSuffix(fileName, ".pdf") {
		t.Fatalf("fileName = %q lacks .pdf suffix", fileName)
	}
}
