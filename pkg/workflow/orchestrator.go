package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Orchestrator is the composition root for one session's workflow: it owns
// the upload coordinator, the insight selector and one SOAP tracker per
// loaded note, and keeps the session header plus document list current.
type Orchestrator struct {
	mu      sync.Mutex
	gateway Gateway

	sessionId uuid.UUID

	session     *Session
	sessionErr  string
	documents   []Document
	documentErr string
	notesErr    string

	// trackers keyed by note id; order preserved separately for display.
	trackers  map[uuid.UUID]*SoapTracker
	noteOrder []uuid.UUID
	// unpersisted holds trackers for notes the server returned without an id.
	unpersisted []*SoapTracker

	// draft session meta, committed by SaveSessionMeta.
	draftVisitDate *time.Time
	draftNotes     *string
	metaDirty      bool
	metaFeedback   *Feedback

	uploader *UploadCoordinator
	insight  *InsightSelector

	loaded bool
}

// Snapshot is a point-in-time read of everything the orchestrator holds.
type Snapshot struct {
	SessionId uuid.UUID
	Loaded    bool

	Session     *Session
	SessionErr  string
	Documents   []Document
	DocumentErr string
	Notes       []SoapState
	NotesErr    string

	MetaDirty    bool
	MetaFeedback *Feedback

	Upload  UploadState
	Insight InsightState
}

func New(gateway Gateway, sessionId uuid.UUID) *Orchestrator {
	return &Orchestrator{
		gateway:   gateway,
		sessionId: sessionId,
		trackers:  make(map[uuid.UUID]*SoapTracker),
		uploader:  NewUploadCoordinator(gateway, sessionId),
		insight:   NewInsightSelector(gateway),
	}
}

func (o *Orchestrator) SessionId() uuid.UUID { return o.sessionId }

func (o *Orchestrator) Uploader() *UploadCoordinator { return o.uploader }

func (o *Orchestrator) Insight() *InsightSelector { return o.insight }

// LoadAll fetches the session header, document list and note list in
// parallel. The three loads are isolated: one failing leaves the other two
// usable, with the failure recorded per slot.
func (o *Orchestrator) LoadAll(ctx context.Context) {
	var (
		wg sync.WaitGroup

		session    *Session
		sessionErr error
		documents  []Document
		docErr     error
		notes      []SOAPNote
		notesErr   error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		session, sessionErr = o.gateway.GetSession(ctx, o.sessionId)
	}()
	go func() {
		defer wg.Done()
		documents, docErr = o.gateway.ListSessionDocuments(ctx, o.sessionId)
	}()
	go func() {
		defer wg.Done()
		notes, notesErr = o.gateway.ListSoapNotes(ctx, o.sessionId)
	}()
	wg.Wait()

	o.mu.Lock()
	defer o.mu.Unlock()

	o.loaded = true

	if sessionErr != nil {
		o.sessionErr = sessionErr.Error()
	} else {
		o.session = session
		o.sessionErr = ""
	}

	if docErr != nil {
		o.documentErr = docErr.Error()
	} else {
		o.documents = documents
		o.documentErr = ""
	}

	if notesErr != nil {
		o.notesErr = notesErr.Error()
	} else {
		o.notesErr = ""
		o.rebuildTrackers(notes)
	}
}

// rebuildTrackers reconciles loaded notes with existing trackers, keeping
// trackers (and their local edits) for notes that are still present.
// Caller holds o.mu.
func (o *Orchestrator) rebuildTrackers(notes []SOAPNote) {
	kept := make(map[uuid.UUID]*SoapTracker, len(notes))
	order := make([]uuid.UUID, 0, len(notes))
	unpersisted := make([]*SoapTracker, 0)

	for _, note := range notes {
		if note.Id == nil {
			unpersisted = append(unpersisted, NewSoapTracker(o.gateway, note))
			continue
		}
		id := *note.Id
		if existing, ok := o.trackers[id]; ok {
			kept[id] = existing
		} else {
			kept[id] = NewSoapTracker(o.gateway, note)
		}
		order = append(order, id)
	}

	o.trackers = kept
	o.noteOrder = order
	o.unpersisted = unpersisted
}

// Tracker returns the tracker for a persisted note id, or nil.
func (o *Orchestrator) Tracker(noteId uuid.UUID) *SoapTracker {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.trackers[noteId]
}

// Upload delegates to the coordinator and, on success, refreshes the
// session header and document list so counters reflect what the server
// actually stored rather than an optimistic increment.
func (o *Orchestrator) Upload(ctx context.Context) error {
	if err := o.uploader.Upload(ctx); err != nil {
		return err
	}
	o.refreshSessionAndDocuments(ctx)
	return nil
}

func (o *Orchestrator) refreshSessionAndDocuments(ctx context.Context) {
	var wg sync.WaitGroup
	var (
		session    *Session
		sessionErr error
		documents  []Document
		docErr     error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		session, sessionErr = o.gateway.GetSession(ctx, o.sessionId)
	}()
	go func() {
		defer wg.Done()
		documents, docErr = o.gateway.ListSessionDocuments(ctx, o.sessionId)
	}()
	wg.Wait()

	o.mu.Lock()
	defer o.mu.Unlock()
	if sessionErr == nil {
		o.session = session
		o.sessionErr = ""
	}
	if docErr == nil {
		o.documents = documents
		o.documentErr = ""
	}
}

// Reprocess re-runs SOAP generation for a document that already has
// extracted text. Afterwards the note list is reloaded.
func (o *Orchestrator) Reprocess(ctx context.Context, documentId uuid.UUID) error {
	o.mu.Lock()
	var doc *Document
	for i := range o.documents {
		if o.documents[i].Id == documentId {
			doc = &o.documents[i]
			break
		}
	}
	if doc == nil {
		o.mu.Unlock()
		return ErrDocumentNotFound
	}
	if !doc.TextExtracted {
		o.mu.Unlock()
		return ErrNotExtracted
	}
	o.mu.Unlock()

	result, err := o.gateway.ReprocessDocument(ctx, documentId)
	if err != nil {
		return err
	}
	if !result.Success {
		if result.Message != "" {
			return errors.New(result.Message)
		}
		return errors.New("reprocessing was rejected by the server")
	}

	notes, err := o.gateway.ListSoapNotes(ctx, o.sessionId)
	if err != nil {
		o.mu.Lock()
		o.notesErr = err.Error()
		o.mu.Unlock()
		return nil
	}
	o.mu.Lock()
	o.notesErr = ""
	o.rebuildTrackers(notes)
	o.mu.Unlock()
	return nil
}

// DocumentContent is a passthrough read; the orchestrator holds no copy.
func (o *Orchestrator) DocumentContent(ctx context.Context, documentId uuid.UUID) (*DocumentContent, error) {
	return o.gateway.GetDocumentContent(ctx, documentId)
}

// EditVisitDate stages a new visit date without persisting it.
func (o *Orchestrator) EditVisitDate(visitDate time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.draftVisitDate = &visitDate
	o.metaDirty = true
}

// EditSessionNotes stages new free-text notes without persisting them.
func (o *Orchestrator) EditSessionNotes(notes string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.draftNotes = &notes
	o.metaDirty = true
}

// SaveSessionMeta commits staged session edits. Failure preserves the
// drafts so the operator can retry without retyping.
func (o *Orchestrator) SaveSessionMeta(ctx context.Context) error {
	o.mu.Lock()
	if !o.metaDirty {
		o.mu.Unlock()
		return ErrNotDirty
	}
	update := SessionUpdate{
		VisitDate: o.draftVisitDate,
		Notes:     o.draftNotes,
	}
	o.mu.Unlock()

	session, err := o.gateway.UpdateSession(ctx, o.sessionId, update)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.metaFeedback = errorFeedback(err.Error())
		return err
	}
	o.session = session
	o.draftVisitDate = nil
	o.draftNotes = nil
	o.metaDirty = false
	o.metaFeedback = successFeedback("session updated")
	return nil
}

// DeleteSession removes the session and everything under it.
func (o *Orchestrator) DeleteSession(ctx context.Context) error {
	return o.gateway.DeleteSession(ctx, o.sessionId)
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()

	snap := Snapshot{
		SessionId:    o.sessionId,
		Loaded:       o.loaded,
		Session:      o.session,
		SessionErr:   o.sessionErr,
		DocumentErr:  o.documentErr,
		NotesErr:     o.notesErr,
		MetaDirty:    o.metaDirty,
		MetaFeedback: o.metaFeedback,
	}
	snap.Documents = make([]Document, len(o.documents))
	copy(snap.Documents, o.documents)

	trackers := make([]*SoapTracker, 0, len(o.noteOrder)+len(o.unpersisted))
	for _, id := range o.noteOrder {
		trackers = append(trackers, o.trackers[id])
	}
	trackers = append(trackers, o.unpersisted...)
	o.mu.Unlock()

	snap.Notes = make([]SoapState, 0, len(trackers))
	for _, tracker := range trackers {
		snap.Notes = append(snap.Notes, tracker.State())
	}
	snap.Upload = o.uploader.State()
	snap.Insight = o.insight.State()
	return snap
}
