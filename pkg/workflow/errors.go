package workflow

import "errors"

// Precondition errors are rejected locally, before any gateway call.
var (
	ErrNoFileSelected    = errors.New("no file selected")
	ErrNoSession         = errors.New("no session bound to this view")
	ErrUploadInFlight    = errors.New("an upload is already in flight")
	ErrNoNoteId          = errors.New("note has not been persisted; operation unavailable")
	ErrOperationInFlight = errors.New("the matching operation for this note is still outstanding")
	ErrUnknownSection    = errors.New("unknown SOAP section key")
	ErrNotDirty          = errors.New("no unsaved session changes")
	ErrNotExtracted      = errors.New("document text has not been extracted")
	ErrDocumentNotFound  = errors.New("document is not part of this session")
)

type FeedbackLevel string

const (
	FeedbackSuccess FeedbackLevel = "success"
	FeedbackError   FeedbackLevel = "error"
	FeedbackInfo    FeedbackLevel = "info"
)

// Feedback is a transient, dismissible message scoped to one operation.
type Feedback struct {
	Level   FeedbackLevel
	Message string
}

func successFeedback(msg string) *Feedback {
	return &Feedback{Level: FeedbackSuccess, Message: msg}
}

func errorFeedback(msg string) *Feedback {
	return &Feedback{Level: FeedbackError, Message: msg}
}

func infoFeedback(msg string) *Feedback {
	return &Feedback{Level: FeedbackInfo, Message: msg}
}
