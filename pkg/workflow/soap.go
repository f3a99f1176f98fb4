package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Section keys accepted by EditSection.
const (
	SectionSubjective = "subjective"
	SectionObjective  = "objective"
	SectionAssessment = "assessment"
	SectionPlan       = "plan"
)

// SoapTracker follows one note through its lifecycle: generated, reviewed,
// optionally exported and embedded. Export and embedding are repeatable side
// flags, not exclusive states. Section edits stay local until Save.
type SoapTracker struct {
	mu      sync.Mutex
	gateway Gateway

	note  SOAPNote
	dirty bool

	saving    bool
	approving bool
	exporting bool
	embedding bool

	saveFeedback    *Feedback
	approveFeedback *Feedback
	exportFeedback  *Feedback
	embedFeedback   *Feedback
}

type SoapState struct {
	Note  SOAPNote
	Dirty bool

	Saving    bool
	Approving bool
	Exporting bool
	Embedding bool

	// CanPersist is false when generation produced no note id; save, approve,
	// export and embedding stay disabled and UnavailableReason explains why.
	CanPersist        bool
	UnavailableReason string

	SaveFeedback    *Feedback
	ApproveFeedback *Feedback
	ExportFeedback  *Feedback
	EmbedFeedback   *Feedback
}

// unpersistedNoteMessage explains why persistence operations are rejected for
// a note the server never stored.
const unpersistedNoteMessage = "the generated note was not persisted by the server; save, approval, export and embedding are unavailable"

func NewSoapTracker(gateway Gateway, note SOAPNote) *SoapTracker {
	return &SoapTracker{
		gateway: gateway,
		note:    note,
	}
}

func (t *SoapTracker) NoteId() *uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.note.Id
}

func (t *SoapTracker) State() SoapState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := SoapState{
		Note:            t.note,
		Dirty:           t.dirty,
		Saving:          t.saving,
		Approving:       t.approving,
		Exporting:       t.exporting,
		Embedding:       t.embedding,
		CanPersist:      t.note.Id != nil,
		SaveFeedback:    t.saveFeedback,
		ApproveFeedback: t.approveFeedback,
		ExportFeedback:  t.exportFeedback,
		EmbedFeedback:   t.embedFeedback,
	}
	if t.note.Id == nil {
		state.UnavailableReason = unpersistedNoteMessage
	}
	return state
}

// EditSection replaces the content of one section locally. Confidence and
// word count are left alone: they describe the generated text and are stale
// after an edit.
func (t *SoapTracker) EditSection(key, content string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	section := t.section(key)
	if section == nil {
		return fmt.Errorf("%w: %q", ErrUnknownSection, key)
	}
	section.Content = content
	t.dirty = true
	return nil
}

func (t *SoapTracker) section(key string) *SoapSection {
	switch key {
	case SectionSubjective:
		return &t.note.Subjective
	case SectionObjective:
		return &t.note.Objective
	case SectionAssessment:
		return &t.note.Assessment
	case SectionPlan:
		return &t.note.Plan
	}
	return nil
}

// Save persists the full edited note.
func (t *SoapTracker) Save(ctx context.Context) error {
	t.mu.Lock()
	if t.note.Id == nil {
		t.saveFeedback = infoFeedback(unpersistedNoteMessage)
		t.mu.Unlock()
		return ErrNoNoteId
	}
	if t.saving {
		t.mu.Unlock()
		return ErrOperationInFlight
	}
	note := t.note
	t.saving = true
	t.mu.Unlock()

	saved, err := t.gateway.SaveSoapNote(ctx, note)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.saving = false
	if err != nil {
		t.saveFeedback = errorFeedback(err.Error())
		return err
	}
	t.note = *saved
	t.dirty = false
	t.saveFeedback = successFeedback("note saved")
	return nil
}

// Approve records the reviewer's verdict. It never touches section content.
func (t *SoapTracker) Approve(ctx context.Context, approved bool) error {
	t.mu.Lock()
	if t.note.Id == nil {
		t.approveFeedback = infoFeedback(unpersistedNoteMessage)
		t.mu.Unlock()
		return ErrNoNoteId
	}
	if t.approving {
		t.mu.Unlock()
		return ErrOperationInFlight
	}
	noteId := *t.note.Id
	t.approving = true
	t.mu.Unlock()

	err := t.gateway.ApproveSoapNote(ctx, noteId, approved)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.approving = false
	if err != nil {
		t.approveFeedback = errorFeedback(err.Error())
		return err
	}
	t.note.UserApproved = approved
	if approved {
		t.approveFeedback = successFeedback("note approved")
	} else {
		t.approveFeedback = successFeedback("review recorded: needs edits")
	}
	return nil
}

// DefaultExportFileName derives a slug from the note's short id.
func (t *SoapTracker) DefaultExportFileName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.note.Id == nil {
		return "soap-note.pdf"
	}
	short := t.note.Id.String()
	if len(short) > 8 {
		short = short[:8]
	}
	return "soap-note-" + short + ".pdf"
}

// ExportPdf fetches the rendered note. The artifact is returned to the
// caller for download; success/failure is transient feedback, not state.
func (t *SoapTracker) ExportPdf(ctx context.Context, fileName string) ([]byte, string, error) {
	t.mu.Lock()
	if t.note.Id == nil {
		t.exportFeedback = infoFeedback(unpersistedNoteMessage)
		t.mu.Unlock()
		return nil, "", ErrNoNoteId
	}
	if t.exporting {
		t.mu.Unlock()
		return nil, "", ErrOperationInFlight
	}
	noteId := *t.note.Id
	t.exporting = true
	t.mu.Unlock()

	if fileName == "" {
		fileName = t.DefaultExportFileName()
	}

	data, err := t.gateway.ExportSoapNotePdf(ctx, noteId)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.exporting = false
	if err != nil {
		t.exportFeedback = errorFeedback(err.Error())
		return nil, "", err
	}
	t.exportFeedback = successFeedback("exported " + fileName)
	return data, fileName, nil
}

// TriggerEmbedding asks the AI service (through the gateway) to (re)index the
// note for retrieval. A transport success whose payload reports
// success=false is still an error to the operator, shown with the server's
// message when present.
func (t *SoapTracker) TriggerEmbedding(ctx context.Context) error {
	t.mu.Lock()
	if t.note.Id == nil {
		t.embedFeedback = infoFeedback(unpersistedNoteMessage)
		t.mu.Unlock()
		return ErrNoNoteId
	}
	if t.embedding {
		t.mu.Unlock()
		return ErrOperationInFlight
	}
	noteId := *t.note.Id
	t.embedding = true
	t.mu.Unlock()

	result, err := t.gateway.TriggerSoapEmbedding(ctx, []uuid.UUID{noteId})

	t.mu.Lock()
	defer t.mu.Unlock()
	t.embedding = false
	if err != nil {
		t.embedFeedback = errorFeedback(err.Error())
		return err
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "embedding request was rejected by the server"
		}
		t.embedFeedback = errorFeedback(msg)
		return nil
	}
	msg := result.Message
	if msg == "" {
		msg = "embedding triggered"
	}
	t.embedFeedback = successFeedback(msg)
	return nil
}
