package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func txtFile(size int) SelectedFile {
	return SelectedFile{
		Name:    "visit-notes.txt",
		Type:    "text/plain",
		Size:    int64(size),
		Content: make([]byte, size),
	}
}

func TestUploadPreconditions(t *testing.T) {
	gateway := newFakeGateway()

	tests := []struct {
		name    string
		setup   func() *UploadCoordinator
		wantErr error
	}{
		{
			name: "no session bound",
			setup: func() *UploadCoordinator {
				c := NewUploadCoordinator(gateway, uuid.Nil)
				c.SelectFile(txtFile(128))
				return c
			},
			wantErr: ErrNoSession,
		},
		{
			name: "no file selected",
			setup: func() *UploadCoordinator {
				return NewUploadCoordinator(gateway, gateway.session.Id)
			},
			wantErr: ErrNoFileSelected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.setup()
			before := gateway.uploadCalls
			if err := c.Upload(context.Background()); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Upload() error = %v, want %v", err, tt.wantErr)
			}
			if gateway.uploadCalls != before {
				t.Fatalf("precondition failure reached the gateway")
			}
		})
	}
}

func TestUploadSingleFlight(t *testing.T) {
	gateway := newFakeGateway()
	started := make(chan struct{})
	release := make(chan struct{})
	gateway.uploadStarted = started
	gateway.uploadRelease = release

	c := NewUploadCoordinator(gateway, gateway.session.Id)
	c.SelectFile(txtFile(2048))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := c.Upload(context.Background()); err != nil {
			t.Errorf("first Upload() error = %v", err)
		}
	}()

	<-started

	if err := c.Upload(context.Background()); !errors.Is(err, ErrUploadInFlight) {
		t.Fatalf("second Upload() error = %v, want ErrUploadInFlight", err)
	}

	close(release)
	wg.Wait()

	if gateway.uploadCalls != 1 {
		t.Fatalf("uploadCalls = %d, want 1", gateway.uploadCalls)
	}
}

func TestUploadFailureKeepsSelection(t *testing.T) {
	gateway := newFakeGateway()
	gateway.uploadErr = errors.New("boom: storage unavailable")

	c := NewUploadCoordinator(gateway, gateway.session.Id)
	c.SelectFile(txtFile(512))

	if err := c.Upload(context.Background()); err == nil {
		t.Fatal("Upload() expected error")
	}

	state := c.State()
	if !state.HasFile {
		t.Fatal("failed upload cleared the selected file")
	}
	if state.Feedback == nil || state.Feedback.Level != FeedbackError {
		t.Fatalf("feedback = %+v, want error feedback", state.Feedback)
	}
	if state.Feedback.Message != "boom: storage unavailable" {
		t.Fatalf("feedback message = %q", state.Feedback.Message)
	}
}

func TestSelectFileReplacesAndClearsFeedback(t *testing.T) {
	gateway := newFakeGateway()
	gateway.uploadErr = errors.New("transient")

	c := NewUploadCoordinator(gateway, gateway.session.Id)
	c.SelectFile(txtFile(100))
	_ = c.Upload(context.Background())

	c.SelectFile(SelectedFile{Name: "second.pdf", Type: "application/pdf", Size: 9000})
	state := c.State()
	if state.FileName != "second.pdf" {
		t.Fatalf("FileName = %q, want second.pdf", state.FileName)
	}
	if state.Feedback != nil {
		t.Fatalf("re-selection kept stale feedback: %+v", state.Feedback)
	}
	if state.Uploading {
		t.Fatal("SelectFile must never start an upload")
	}
}

func TestToggleDefaults(t *testing.T) {
	c := NewUploadCoordinator(newFakeGateway(), uuid.New())

	state := c.State()
	if !state.ExtractText {
		t.Fatal("extract-text should default on")
	}
	if state.GenerateSoap {
		t.Fatal("generate-SOAP should default off")
	}

	c.ToggleExtractText()
	c.ToggleGenerateSoap()
	state = c.State()
	if state.ExtractText || !state.GenerateSoap {
		t.Fatalf("after toggles: extract=%v generate=%v", state.ExtractText, state.GenerateSoap)
	}
}

// Scenario: select a small .txt, extract on / generate off, upload. The
// selection clears, the server's message is surfaced, and a subsequent
// session read shows the confirmed count increment.
func TestUploadEndToEnd(t *testing.T) {
	gateway := newFakeGateway()
	gateway.uploadResult = UploadResult{Message: "stored visit-notes.txt"}

	o := New(gateway, gateway.session.Id)
	o.LoadAll(context.Background())

	before := o.Snapshot().Session.DocumentCount

	o.Uploader().SelectFile(txtFile(2048))
	if err := o.Upload(context.Background()); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	snap := o.Snapshot()
	if snap.Upload.HasFile {
		t.Fatal("successful upload left a file selected")
	}
	if snap.Upload.Feedback == nil || snap.Upload.Feedback.Message != "stored visit-notes.txt" {
		t.Fatalf("feedback = %+v, want the server's message", snap.Upload.Feedback)
	}
	if got := snap.Session.DocumentCount; got != before+1 {
		t.Fatalf("DocumentCount = %d, want %d", got, before+1)
	}
	if len(snap.Documents) != 1 {
		t.Fatalf("Documents = %d, want 1", len(snap.Documents))
	}
}
