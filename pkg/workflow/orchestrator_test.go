package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestLoadAllIsolatedFailures(t *testing.T) {
	gateway := newFakeGateway()
	gateway.notes = []SOAPNote{persistedNote()}
	gateway.listDocsErr = errors.New("documents: 502")

	o := New(gateway, gateway.session.Id)
	o.LoadAll(context.Background())

	snap := o.Snapshot()
	if snap.Session == nil || snap.SessionErr != "" {
		t.Fatalf("session load disturbed: %+v / %q", snap.Session, snap.SessionErr)
	}
	if snap.DocumentErr != "documents: 502" {
		t.Fatalf("DocumentErr = %q", snap.DocumentErr)
	}
	if len(snap.Notes) != 1 || snap.NotesErr != "" {
		t.Fatalf("notes load disturbed: %d notes, err %q", len(snap.Notes), snap.NotesErr)
	}
}

func TestLoadAllRebuildKeepsTrackers(t *testing.T) {
	gateway := newFakeGateway()
	note := persistedNote()
	gateway.notes = []SOAPNote{note}

	o := New(gateway, gateway.session.Id)
	ctx := context.Background()
	o.LoadAll(ctx)

	tracker := o.Tracker(*note.Id)
	if tracker == nil {
		t.Fatal("no tracker for loaded note")
	}
	_ = tracker.EditSection(SectionPlan, "draft edit")

	// A reload that still contains the note keeps its tracker and edits.
	o.LoadAll(ctx)
	if got := o.Tracker(*note.Id); got != tracker {
		t.Fatal("reload replaced a live tracker")
	}
	if o.Tracker(*note.Id).State().Note.Plan.Content != "draft edit" {
		t.Fatal("reload dropped local edits")
	}
}

func TestSaveSessionMeta(t *testing.T) {
	gateway := newFakeGateway()
	o := New(gateway, gateway.session.Id)
	ctx := context.Background()
	o.LoadAll(ctx)

	if err := o.SaveSessionMeta(ctx); !errors.Is(err, ErrNotDirty) {
		t.Fatalf("SaveSessionMeta() with no edits = %v, want ErrNotDirty", err)
	}

	visit := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	o.EditVisitDate(visit)
	o.EditSessionNotes("patient called to reschedule")

	if !o.Snapshot().MetaDirty {
		t.Fatal("edits did not set the dirty flag")
	}
	if err := o.SaveSessionMeta(ctx); err != nil {
		t.Fatalf("SaveSessionMeta() error = %v", err)
	}

	snap := o.Snapshot()
	if snap.MetaDirty {
		t.Fatal("successful save left the dirty flag set")
	}
	if !snap.Session.VisitDate.Equal(visit) || snap.Session.Notes != "patient called to reschedule" {
		t.Fatalf("session not updated: %+v", snap.Session)
	}
}

func TestSaveSessionMetaFailureKeepsDrafts(t *testing.T) {
	gateway := newFakeGateway()
	gateway.updateErr = errors.New("validation failed")
	o := New(gateway, gateway.session.Id)
	ctx := context.Background()
	o.LoadAll(ctx)

	o.EditSessionNotes("unsaved draft")
	if err := o.SaveSessionMeta(ctx); err == nil {
		t.Fatal("SaveSessionMeta() expected error")
	}

	snap := o.Snapshot()
	if !snap.MetaDirty {
		t.Fatal("failed save cleared the dirty flag")
	}
	if snap.MetaFeedback == nil || snap.MetaFeedback.Level != FeedbackError {
		t.Fatalf("meta feedback = %+v", snap.MetaFeedback)
	}

	// A retry after the server recovers still carries the draft.
	gateway.mu.Lock()
	gateway.updateErr = nil
	gateway.mu.Unlock()
	if err := o.SaveSessionMeta(ctx); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if got := o.Snapshot().Session.Notes; got != "unsaved draft" {
		t.Fatalf("Notes = %q, want the preserved draft", got)
	}
}

func TestReprocessRequiresExtractedText(t *testing.T) {
	gateway := newFakeGateway()
	pendingDoc := Document{Id: uuid.New(), DisplayName: "scan.pdf", State: "extracting"}
	readyDoc := Document{Id: uuid.New(), DisplayName: "intake.txt", State: "extracted", TextExtracted: true}
	gateway.documents = []Document{pendingDoc, readyDoc}

	o := New(gateway, gateway.session.Id)
	ctx := context.Background()
	o.LoadAll(ctx)

	if err := o.Reprocess(ctx, pendingDoc.Id); !errors.Is(err, ErrNotExtracted) {
		t.Fatalf("Reprocess(pending) = %v, want ErrNotExtracted", err)
	}
	if err := o.Reprocess(ctx, uuid.New()); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("Reprocess(unknown) = %v, want ErrDocumentNotFound", err)
	}
	if err := o.Reprocess(ctx, readyDoc.Id); err != nil {
		t.Fatalf("Reprocess(ready) error = %v", err)
	}
}

func TestReprocessSoftFailure(t *testing.T) {
	gateway := newFakeGateway()
	doc := Document{Id: uuid.New(), State: "generated", TextExtracted: true, SoapGenerated: true}
	gateway.documents = []Document{doc}
	gateway.reprocessResult = OperationResult{Success: false, Message: "generation backlog full"}

	o := New(gateway, gateway.session.Id)
	ctx := context.Background()
	o.LoadAll(ctx)

	err := o.Reprocess(ctx, doc.Id)
	if err == nil || err.Error() != "generation backlog full" {
		t.Fatalf("Reprocess() = %v, want the server's message", err)
	}
}

func TestDeleteSession(t *testing.T) {
	gateway := newFakeGateway()
	o := New(gateway, gateway.session.Id)

	if err := o.DeleteSession(context.Background()); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if gateway.deleteCalls != 1 {
		t.Fatalf("deleteCalls = %d", gateway.deleteCalls)
	}
}

func TestSnapshotListsUnpersistedNotes(t *testing.T) {
	gateway := newFakeGateway()
	orphan := persistedNote()
	orphan.Id = nil
	gateway.notes = []SOAPNote{persistedNote(), orphan}

	o := New(gateway, gateway.session.Id)
	o.LoadAll(context.Background())

	snap := o.Snapshot()
	if len(snap.Notes) != 2 {
		t.Fatalf("Notes = %d, want 2", len(snap.Notes))
	}
	var disabled int
	for _, note := range snap.Notes {
		if !note.CanPersist {
			disabled++
			if note.UnavailableReason == "" {
				t.Fatal("unpersisted note lacks an explanation")
			}
		}
	}
	if disabled != 1 {
		t.Fatalf("disabled notes = %d, want 1", disabled)
	}
}
