package workflow

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SelectedFile is the transient upload intent: it exists only between file
// selection and upload completion, and is never persisted.
type SelectedFile struct {
	Name    string
	Type    string
	Size    int64
	Content []byte
}

// UploadCoordinator tracks the single in-flight upload of one session view.
type UploadCoordinator struct {
	mu      sync.Mutex
	gateway Gateway

	sessionId uuid.UUID
	file      *SelectedFile

	extractText  bool
	generateSoap bool

	uploading bool
	feedback  *Feedback
}

// UploadState is an immutable snapshot for the UI layer.
type UploadState struct {
	HasFile      bool
	FileName     string
	FileSize     int64
	ExtractText  bool
	GenerateSoap bool
	Uploading    bool
	Feedback     *Feedback
}

func NewUploadCoordinator(gateway Gateway, sessionId uuid.UUID) *UploadCoordinator {
	return &UploadCoordinator{
		gateway:   gateway,
		sessionId: sessionId,
		// Extraction defaults on, generation defaults off: generation without
		// extracted text is never valid, so the safer flag starts enabled.
		extractText: true,
	}
}

// SelectFile replaces the current selection. It never starts an upload.
func (c *UploadCoordinator) SelectFile(file SelectedFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.file = &file
	c.feedback = nil
}

func (c *UploadCoordinator) ToggleExtractText() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extractText = !c.extractText
}

func (c *UploadCoordinator) ToggleGenerateSoap() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generateSoap = !c.generateSoap
}

func (c *UploadCoordinator) State() UploadState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := UploadState{
		HasFile:      c.file != nil,
		ExtractText:  c.extractText,
		GenerateSoap: c.generateSoap,
		Uploading:    c.uploading,
		Feedback:     c.feedback,
	}
	if c.file != nil {
		state.FileName = c.file.Name
		state.FileSize = c.file.Size
	}
	return state
}

// Upload sends the selected file to the gateway. Preconditions fail locally
// without a network call; a second call while one is in flight is rejected
// rather than queued. Success clears the selection and records the server's
// message; failure keeps the selection so the operator can retry manually.
func (c *UploadCoordinator) Upload(ctx context.Context) error {
	c.mu.Lock()
	if c.uploading {
		c.mu.Unlock()
		return ErrUploadInFlight
	}
	if c.sessionId == uuid.Nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	if c.file == nil {
		c.mu.Unlock()
		return ErrNoFileSelected
	}

	req := UploadRequest{
		FileName:     c.file.Name,
		FileType:     c.file.Type,
		Content:      c.file.Content,
		SessionId:    c.sessionId,
		ExtractText:  c.extractText,
		GenerateSoap: c.generateSoap,
	}
	c.uploading = true
	c.mu.Unlock()

	result, err := c.gateway.UploadDocument(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploading = false

	if err != nil {
		// Surface the error verbatim; the file stays selected for retry.
		c.feedback = errorFeedback(err.Error())
		return err
	}

	c.file = nil
	c.feedback = successFeedback(result.Message)
	return nil
}
