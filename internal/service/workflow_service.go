package service

import (
	"context"
	"errors"

	"clinical-docs-be/internal/dto"
	"clinical-docs-be/internal/repository/memory"
	"clinical-docs-be/pkg/workflow"

	"github.com/google/uuid"
)

// IWorkflowService drives one orchestrator per (operator, session) view.
// All methods return a fresh snapshot so the client always renders the
// latest state, including feedback from failed operations.
type IWorkflowService interface {
	Open(ctx context.Context, userId, sessionId uuid.UUID) (*dto.WorkflowSnapshotResponse, error)
	Refresh(ctx context.Context, userId, sessionId uuid.UUID) (*dto.WorkflowSnapshotResponse, error)
	Close(ctx context.Context, userId, sessionId uuid.UUID)

	SelectFile(ctx context.Context, userId uuid.UUID, req *dto.WorkflowSelectFileRequest) (*dto.WorkflowSnapshotResponse, error)
	ToggleUploadFlag(ctx context.Context, userId uuid.UUID, req *dto.WorkflowToggleRequest) (*dto.WorkflowSnapshotResponse, error)
	Upload(ctx context.Context, userId, sessionId uuid.UUID) (*dto.WorkflowSnapshotResponse, error)

	ToggleInsight(ctx context.Context, userId uuid.UUID, req *dto.WorkflowInsightToggleRequest) (*dto.WorkflowSnapshotResponse, error)

	EditSection(ctx context.Context, userId uuid.UUID, req *dto.WorkflowEditSectionRequest) (*dto.WorkflowSnapshotResponse, error)
	SaveNote(ctx context.Context, userId uuid.UUID, req *dto.WorkflowNoteActionRequest) (*dto.WorkflowSnapshotResponse, error)
	ApproveNote(ctx context.Context, userId uuid.UUID, req *dto.WorkflowNoteActionRequest) (*dto.WorkflowSnapshotResponse, error)
	ExportNotePdf(ctx context.Context, userId uuid.UUID, req *dto.WorkflowNoteActionRequest) ([]byte, string, error)
	EmbedNote(ctx context.Context, userId uuid.UUID, req *dto.WorkflowNoteActionRequest) (*dto.WorkflowSnapshotResponse, error)

	EditMeta(ctx context.Context, userId uuid.UUID, req *dto.WorkflowEditMetaRequest) (*dto.WorkflowSnapshotResponse, error)
	SaveMeta(ctx context.Context, userId, sessionId uuid.UUID) (*dto.WorkflowSnapshotResponse, error)

	Reprocess(ctx context.Context, userId, sessionId, documentId uuid.UUID) (*dto.WorkflowSnapshotResponse, error)
	DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error
}

var ErrUnknownNote = errors.New("note is not part of this session view")

type workflowService struct {
	store     *memory.WorkflowStore
	sessions  ISessionService
	documents IDocumentService
	soapNotes ISoapNoteService
}

func NewWorkflowService(
	store *memory.WorkflowStore,
	sessions ISessionService,
	documents IDocumentService,
	soapNotes ISoapNoteService,
) IWorkflowService {
	return &workflowService{
		store:     store,
		sessions:  sessions,
		documents: documents,
		soapNotes: soapNotes,
	}
}

// orchestrator returns the operator's view of a session, creating and
// loading it on first access.
func (s *workflowService) orchestrator(ctx context.Context, userId, sessionId uuid.UUID) *workflow.Orchestrator {
	if orch, ok := s.store.Get(userId, sessionId); ok {
		return orch
	}
	gateway := newServiceGateway(userId, s.sessions, s.documents, s.soapNotes)
	orch := workflow.New(gateway, sessionId)
	orch.LoadAll(ctx)
	s.store.Save(userId, sessionId, orch)
	return orch
}

func (s *workflowService) Open(ctx context.Context, userId, sessionId uuid.UUID) (*dto.WorkflowSnapshotResponse, error) {
	orch := s.orchestrator(ctx, userId, sessionId)
	return snapshotToResponse(orch.Snapshot()), nil
}

func (s *workflowService) Refresh(ctx context.Context, userId, sessionId uuid.UUID) (*dto.WorkflowSnapshotResponse, error) {
	orch := s.orchestrator(ctx, userId, sessionId)
	orch.LoadAll(ctx)
	return snapshotToResponse(orch.Snapshot()), nil
}

func (s *workflowService) Close(ctx context.Context, userId, sessionId uuid.UUID) {
	s.store.Delete(userId, sessionId)
}

func (s *workflowService) SelectFile(ctx context.Context, userId uuid.UUID, req *dto.WorkflowSelectFileRequest) (*dto.WorkflowSnapshotResponse, error) {
	orch := s.orchestrator(ctx, userId, req.SessionId)
	orch.Uploader().SelectFile(workflow.SelectedFile{
		Name:    req.FileName,
		Type:    req.FileType,
		Size:    req.FileSize,
		Content: req.Content,
	})
	return snapshotToResponse(orch.Snapshot()), nil
}

func (s *workflowService) ToggleUploadFlag(ctx context.Context, userId uuid.UUID, req *dto.WorkflowToggleRequest) (*dto.WorkflowSnapshotResponse, error) {
	orch := s.orchestrator(ctx, userId, req.SessionId)
	switch req.Flag {
	case "extract_text":
		orch.Uploader().ToggleExtractText()
	case "generate_soap":
		orch.Uploader().ToggleGenerateSoap()
	default:
		return nil, errors.New("unknown upload flag: " + req.Flag)
	}
	return snapshotToResponse(orch.Snapshot()), nil
}

// Upload runs the orchestrator's upload; workflow errors (no file, already
// uploading) come back as snapshot feedback, not transport errors.
func (s *workflowService) Upload(ctx context.Context, userId, sessionId uuid.UUID) (*dto.WorkflowSnapshotResponse, error) {
	orch := s.orchestrator(ctx, userId, sessionId)
	if err := orch.Upload(ctx); err != nil {
		if isWorkflowError(err) {
			return snapshotToResponse(orch.Snapshot()), nil
		}
		return nil, err
	}
	return snapshotToResponse(orch.Snapshot()), nil
}

func (s *workflowService) ToggleInsight(ctx context.Context, userId uuid.UUID, req *dto.WorkflowInsightToggleRequest) (*dto.WorkflowSnapshotResponse, error) {
	orch := s.orchestrator(ctx, userId, req.SessionId)
	var err error
	switch req.Panel {
	case "metadata":
		err = orch.Insight().ToggleMetadata(ctx, req.DocumentId)
	case "pii":
		err = orch.Insight().TogglePii(ctx, req.DocumentId)
	default:
		return nil, errors.New("unknown insight panel: " + req.Panel)
	}
	if err != nil && !isWorkflowError(err) {
		return nil, err
	}
	return snapshotToResponse(orch.Snapshot()), nil
}

func (s *workflowService) EditSection(ctx context.Context, userId uuid.UUID, req *dto.WorkflowEditSectionRequest) (*dto.WorkflowSnapshotResponse, error) {
	orch := s.orchestrator(ctx, userId, req.SessionId)
	tracker := orch.Tracker(req.NoteId)
	if tracker == nil {
		return nil, ErrUnknownNote
	}
	if err := tracker.EditSection(req.Section, req.Content); err != nil {
		return nil, err
	}
	return snapshotToResponse(orch.Snapshot()), nil
}

func (s *workflowService) SaveNote(ctx context.Context, userId uuid.UUID, req *dto.WorkflowNoteActionRequest) (*dto.WorkflowSnapshotResponse, error) {
	return s.noteAction(ctx, userId, req, func(tracker *workflow.SoapTracker) error {
		return tracker.Save(ctx)
	})
}

func (s *workflowService) ApproveNote(ctx context.Context, userId uuid.UUID, req *dto.WorkflowNoteActionRequest) (*dto.WorkflowSnapshotResponse, error) {
	approved := true
	if req.Approved != nil {
		approved = *req.Approved
	}
	return s.noteAction(ctx, userId, req, func(tracker *workflow.SoapTracker) error {
		return tracker.Approve(ctx, approved)
	})
}

func (s *workflowService) ExportNotePdf(ctx context.Context, userId uuid.UUID, req *dto.WorkflowNoteActionRequest) ([]byte, string, error) {
	orch := s.orchestrator(ctx, userId, req.SessionId)
	tracker := orch.Tracker(req.NoteId)
	if tracker == nil {
		return nil, "", ErrUnknownNote
	}
	return tracker.ExportPdf(ctx, tracker.DefaultExportFileName())
}

func (s *workflowService) EmbedNote(ctx context.Context, userId uuid.UUID, req *dto.WorkflowNoteActionRequest) (*dto.WorkflowSnapshotResponse, error) {
	return s.noteAction(ctx, userId, req, func(tracker *workflow.SoapTracker) error {
		return tracker.TriggerEmbedding(ctx)
	})
}

func (s *workflowService) noteAction(ctx context.Context, userId uuid.UUID, req *dto.WorkflowNoteActionRequest, action func(*workflow.SoapTracker) error) (*dto.WorkflowSnapshotResponse, error) {
	orch := s.orchestrator(ctx, userId, req.SessionId)
	tracker := orch.Tracker(req.NoteId)
	if tracker == nil {
		return nil, ErrUnknownNote
	}
	if err := action(tracker); err != nil && !isWorkflowError(err) {
		return nil, err
	}
	return snapshotToResponse(orch.Snapshot()), nil
}

func (s *workflowService) EditMeta(ctx context.Context, userId uuid.UUID, req *dto.WorkflowEditMetaRequest) (*dto.WorkflowSnapshotResponse, error) {
	orch := s.orchestrator(ctx, userId, req.SessionId)
	if req.VisitDate != nil {
		orch.EditVisitDate(*req.VisitDate)
	}
	if req.Notes != nil {
		orch.EditSessionNotes(*req.Notes)
	}
	return snapshotToResponse(orch.Snapshot()), nil
}

func (s *workflowService) SaveMeta(ctx context.Context, userId, sessionId uuid.UUID) (*dto.WorkflowSnapshotResponse, error) {
	orch := s.orchestrator(ctx, userId, sessionId)
	if err := orch.SaveSessionMeta(ctx); err != nil && !isWorkflowError(err) {
		return nil, err
	}
	return snapshotToResponse(orch.Snapshot()), nil
}

func (s *workflowService) Reprocess(ctx context.Context, userId, sessionId, documentId uuid.UUID) (*dto.WorkflowSnapshotResponse, error) {
	orch := s.orchestrator(ctx, userId, sessionId)
	if err := orch.Reprocess(ctx, documentId); err != nil && !isWorkflowError(err) {
		return nil, err
	}
	return snapshotToResponse(orch.Snapshot()), nil
}

func (s *workflowService) DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	orch := s.orchestrator(ctx, userId, sessionId)
	if err := orch.DeleteSession(ctx); err != nil {
		return err
	}
	s.store.Delete(userId, sessionId)
	return nil
}

// isWorkflowError reports whether an error is a state-machine precondition
// the snapshot already explains, as opposed to a transport or server fault.
func isWorkflowError(err error) bool {
	for _, sentinel := range []error{
		workflow.ErrNoFileSelected,
		workflow.ErrNoSession,
		workflow.ErrUploadInFlight,
		workflow.ErrNoNoteId,
		workflow.ErrOperationInFlight,
		workflow.ErrNotDirty,
		workflow.ErrNotExtracted,
		workflow.ErrDocumentNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func snapshotToResponse(snap workflow.Snapshot) *dto.WorkflowSnapshotResponse {
	resp := &dto.WorkflowSnapshotResponse{
		SessionId:    snap.SessionId,
		Loaded:       snap.Loaded,
		SessionErr:   snap.SessionErr,
		DocErr:       snap.DocumentErr,
		NotesErr:     snap.NotesErr,
		MetaDirty:    snap.MetaDirty,
		MetaFeedback: feedbackToDto(snap.MetaFeedback),
		Upload:       uploadStateToDto(snap.Upload),
		Insight:      insightStateToDto(snap.Insight),
		Documents:    make([]dto.ShowDocumentResponse, 0, len(snap.Documents)),
		Notes:        make([]dto.WorkflowNoteStateDto, 0, len(snap.Notes)),
	}
	if snap.Session != nil {
		resp.Session = workflowSessionToDto(snap.Session)
	}
	for _, d := range snap.Documents {
		resp.Documents = append(resp.Documents, workflowDocumentToDto(d))
	}
	for _, n := range snap.Notes {
		resp.Notes = append(resp.Notes, noteStateToDto(n))
	}
	return resp
}

func workflowSessionToDto(s *workflow.Session) *dto.ShowSessionResponse {
	return &dto.ShowSessionResponse{
		Id:            s.Id,
		PatientId:     s.PatientId,
		PatientName:   s.PatientName,
		VisitDate:     s.VisitDate,
		Notes:         s.Notes,
		DocumentCount: s.DocumentCount,
		SoapNoteCount: s.SoapNoteCount,
	}
}

func workflowDocumentToDto(d workflow.Document) dto.ShowDocumentResponse {
	resp := dto.ShowDocumentResponse{
		Id:            d.Id,
		DisplayName:   d.DisplayName,
		FileType:      d.FileType,
		FileSize:      d.FileSize,
		State:         d.State,
		TextExtracted: d.TextExtracted,
		SoapGenerated: d.SoapGenerated,
		CreatedAt:     d.CreatedAt,
	}
	if d.FailureReason != "" {
		reason := d.FailureReason
		resp.FailureReason = &reason
	}
	return resp
}

func noteStateToDto(state workflow.SoapState) dto.WorkflowNoteStateDto {
	return dto.WorkflowNoteStateDto{
		Note:              workflowNoteToDto(state.Note),
		Dirty:             state.Dirty,
		Saving:            state.Saving,
		Approving:         state.Approving,
		Exporting:         state.Exporting,
		Embedding:         state.Embedding,
		CanPersist:        state.CanPersist,
		UnavailableReason: state.UnavailableReason,
	}
}

func workflowNoteToDto(n workflow.SOAPNote) dto.ShowSoapNoteResponse {
	resp := dto.ShowSoapNoteResponse{
		SessionId:         n.SessionId,
		Subjective:        workflowSectionToDto(n.Subjective),
		Objective:         workflowSectionToDto(n.Objective),
		Assessment:        workflowSectionToDto(n.Assessment),
		Plan:              workflowSectionToDto(n.Plan),
		AiApproved:        n.AiApproved,
		UserApproved:      n.UserApproved,
		EntityCount:       n.EntityCount,
		ProcessingTimeMs:  n.ProcessingTimeMs,
		RegenerationCount: n.RegenerationCount,
	}
	if n.Id != nil {
		resp.Id = *n.Id
	}
	if n.ValidationFeedback != "" {
		feedback := n.ValidationFeedback
		resp.ValidationFeedback = &feedback
	}
	return resp
}

func workflowSectionToDto(s workflow.SoapSection) dto.SoapSectionDto {
	return dto.SoapSectionDto{
		Content:    s.Content,
		Confidence: s.Confidence,
		WordCount:  s.WordCount,
	}
}

func uploadStateToDto(state workflow.UploadState) dto.WorkflowUploadStateDto {
	return dto.WorkflowUploadStateDto{
		HasFile:      state.HasFile,
		FileName:     state.FileName,
		FileSize:     state.FileSize,
		ExtractText:  state.ExtractText,
		GenerateSoap: state.GenerateSoap,
		Uploading:    state.Uploading,
		Feedback:     feedbackToDto(state.Feedback),
	}
}

func insightStateToDto(state workflow.InsightState) dto.WorkflowInsightStateDto {
	resp := dto.WorkflowInsightStateDto{
		MetadataDocumentId: state.MetadataDocumentId,
		MetadataLoading:    state.MetadataLoading,
		MetadataError:      state.MetadataError,
		PiiDocumentId:      state.PiiDocumentId,
		PiiLoading:         state.PiiLoading,
		PiiError:           state.PiiError,
	}
	if state.Metadata != nil {
		resp.Metadata = &dto.DocumentMetadataResponse{
			FilePath:      state.Metadata.FilePath,
			ProcessedAt:   state.Metadata.ProcessedAt,
			TextExtracted: state.Metadata.TextExtracted,
			SoapGenerated: state.Metadata.SoapGenerated,
		}
		if state.MetadataDocumentId != nil {
			resp.Metadata.Id = *state.MetadataDocumentId
		}
	}
	if state.Pii != nil {
		resp.Pii = &dto.DocumentPiiResponse{
			PiiMasked:        state.Pii.PiiMasked,
			PiiEntitiesFound: state.Pii.PiiEntitiesFound,
		}
		if state.Pii.PiiProcessingNote != "" {
			note := state.Pii.PiiProcessingNote
			resp.Pii.PiiProcessingNote = &note
		}
		if state.PiiDocumentId != nil {
			resp.Pii.Id = *state.PiiDocumentId
		}
	}
	return resp
}

func feedbackToDto(f *workflow.Feedback) *dto.WorkflowFeedbackDto {
	if f == nil {
		return nil
	}
	return &dto.WorkflowFeedbackDto{
		Level:   string(f.Level),
		Message: f.Message,
	}
}
