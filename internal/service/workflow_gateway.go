package service

import (
	"context"
	"errors"

	"clinical-docs-be/internal/dto"
	"clinical-docs-be/pkg/workflow"

	"github.com/google/uuid"
)

// serviceGateway adapts the domain services to the workflow package's
// Gateway port. One instance exists per operator so user-scoped operations
// (delete, approve, embed) carry the right identity.
type serviceGateway struct {
	userId    uuid.UUID
	sessions  ISessionService
	documents IDocumentService
	soapNotes ISoapNoteService
}

func newServiceGateway(userId uuid.UUID, sessions ISessionService, documents IDocumentService, soapNotes ISoapNoteService) workflow.Gateway {
	return &serviceGateway{
		userId:    userId,
		sessions:  sessions,
		documents: documents,
		soapNotes: soapNotes,
	}
}

func (g *serviceGateway) GetSession(ctx context.Context, id uuid.UUID) (*workflow.Session, error) {
	resp, err := g.sessions.Show(ctx, id)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("session not found")
	}
	return sessionToWorkflow(resp), nil
}

func (g *serviceGateway) UpdateSession(ctx context.Context, id uuid.UUID, update workflow.SessionUpdate) (*workflow.Session, error) {
	resp, err := g.sessions.Update(ctx, &dto.UpdateSessionRequest{
		Id:        id,
		VisitDate: update.VisitDate,
		Notes:     update.Notes,
	})
	if err != nil {
		return nil, err
	}
	return sessionToWorkflow(resp), nil
}

func (g *serviceGateway) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return g.sessions.Delete(ctx, g.userId, id)
}

func (g *serviceGateway) ListSessionDocuments(ctx context.Context, sessionId uuid.UUID) ([]workflow.Document, error) {
	resp, err := g.documents.List(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	documents := make([]workflow.Document, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		documents = append(documents, documentToWorkflow(d))
	}
	return documents, nil
}

func (g *serviceGateway) UploadDocument(ctx context.Context, req workflow.UploadRequest) (*workflow.UploadResult, error) {
	resp, err := g.documents.Upload(ctx, g.userId, &dto.UploadDocumentRequest{
		SessionId:    req.SessionId,
		FileName:     req.FileName,
		FileType:     req.FileType,
		FileSize:     int64(len(req.Content)),
		Content:      req.Content,
		ExtractText:  req.ExtractText,
		GenerateSoap: req.GenerateSoap,
	})
	if err != nil {
		return nil, err
	}
	return &workflow.UploadResult{Message: resp.Message}, nil
}

func (g *serviceGateway) GetDocumentContent(ctx context.Context, documentId uuid.UUID) (*workflow.DocumentContent, error) {
	resp, err := g.documents.Content(ctx, documentId)
	if err != nil {
		return nil, err
	}
	return &workflow.DocumentContent{
		Content:   resp.Content,
		Extracted: resp.Extracted,
		Message:   resp.Message,
	}, nil
}

func (g *serviceGateway) ReprocessDocument(ctx context.Context, documentId uuid.UUID) (*workflow.OperationResult, error) {
	resp, err := g.documents.Reprocess(ctx, g.userId, documentId)
	if err != nil {
		return nil, err
	}
	return &workflow.OperationResult{Success: resp.Success, Message: resp.Message}, nil
}

func (g *serviceGateway) GetDocumentMetadata(ctx context.Context, documentId uuid.UUID) (*workflow.DocumentMetadata, error) {
	resp, err := g.documents.Metadata(ctx, documentId)
	if err != nil {
		return nil, err
	}
	return &workflow.DocumentMetadata{
		FilePath:      resp.FilePath,
		ProcessedAt:   resp.ProcessedAt,
		TextExtracted: resp.TextExtracted,
		SoapGenerated: resp.SoapGenerated,
	}, nil
}

func (g *serviceGateway) GetDocumentPiiStatus(ctx context.Context, documentId uuid.UUID) (*workflow.PiiStatus, error) {
	resp, err := g.documents.PiiStatus(ctx, documentId)
	if err != nil {
		return nil, err
	}
	status := &workflow.PiiStatus{
		PiiMasked:        resp.PiiMasked,
		PiiEntitiesFound: resp.PiiEntitiesFound,
	}
	if resp.PiiProcessingNote != nil {
		status.PiiProcessingNote = *resp.PiiProcessingNote
	}
	return status, nil
}

func (g *serviceGateway) ListSoapNotes(ctx context.Context, sessionId uuid.UUID) ([]workflow.SOAPNote, error) {
	resp, err := g.soapNotes.List(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	notes := make([]workflow.SOAPNote, 0, len(resp.Notes))
	for _, n := range resp.Notes {
		notes = append(notes, soapNoteToWorkflow(n))
	}
	return notes, nil
}

func (g *serviceGateway) SaveSoapNote(ctx context.Context, note workflow.SOAPNote) (*workflow.SOAPNote, error) {
	if note.Id == nil {
		return nil, errors.New("note has no id")
	}
	resp, err := g.soapNotes.Update(ctx, &dto.UpdateSoapNoteRequest{
		Id:         *note.Id,
		Subjective: note.Subjective.Content,
		Objective:  note.Objective.Content,
		Assessment: note.Assessment.Content,
		Plan:       note.Plan.Content,
	})
	if err != nil {
		return nil, err
	}
	saved := soapNoteToWorkflow(*resp)
	return &saved, nil
}

func (g *serviceGateway) ApproveSoapNote(ctx context.Context, noteId uuid.UUID, approved bool) error {
	_, err := g.soapNotes.Approve(ctx, g.userId, &dto.ApproveSoapNoteRequest{Id: noteId, Approved: approved})
	return err
}

func (g *serviceGateway) ExportSoapNotePdf(ctx context.Context, noteId uuid.UUID) ([]byte, error) {
	rendered, _, err := g.soapNotes.ExportPdf(ctx, noteId)
	return rendered, err
}

func (g *serviceGateway) TriggerSoapEmbedding(ctx context.Context, noteIds []uuid.UUID) (*workflow.OperationResult, error) {
	resp, err := g.soapNotes.TriggerEmbedding(ctx, g.userId, &dto.TriggerEmbeddingRequest{NoteIds: noteIds})
	if err != nil {
		return nil, err
	}
	return &workflow.OperationResult{Success: resp.Success, Message: resp.Message}, nil
}

func sessionToWorkflow(resp *dto.ShowSessionResponse) *workflow.Session {
	return &workflow.Session{
		Id:            resp.Id,
		PatientId:     resp.PatientId,
		PatientName:   resp.PatientName,
		VisitDate:     resp.VisitDate,
		Notes:         resp.Notes,
		DocumentCount: resp.DocumentCount,
		SoapNoteCount: resp.SoapNoteCount,
	}
}

func documentToWorkflow(d dto.ShowDocumentResponse) workflow.Document {
	doc := workflow.Document{
		Id:            d.Id,
		DisplayName:   d.DisplayName,
		FileType:      d.FileType,
		FileSize:      d.FileSize,
		State:         d.State,
		TextExtracted: d.TextExtracted,
		SoapGenerated: d.SoapGenerated,
		CreatedAt:     d.CreatedAt,
	}
	if d.FailureReason != nil {
		doc.FailureReason = *d.FailureReason
	}
	return doc
}

func soapNoteToWorkflow(n dto.ShowSoapNoteResponse) workflow.SOAPNote {
	id := n.Id
	note := workflow.SOAPNote{
		Id:                &id,
		SessionId:         n.SessionId,
		Subjective:        sectionToWorkflow(n.Subjective),
		Objective:         sectionToWorkflow(n.Objective),
		Assessment:        sectionToWorkflow(n.Assessment),
		Plan:              sectionToWorkflow(n.Plan),
		AiApproved:        n.AiApproved,
		UserApproved:      n.UserApproved,
		EntityCount:       n.EntityCount,
		ProcessingTimeMs:  n.ProcessingTimeMs,
		RegenerationCount: n.RegenerationCount,
	}
	if n.ValidationFeedback != nil {
		note.ValidationFeedback = *n.ValidationFeedback
	}
	return note
}

func sectionToWorkflow(s dto.SoapSectionDto) workflow.SoapSection {
	return workflow.SoapSection{
		Content:    s.Content,
		Confidence: s.Confidence,
		WordCount:  s.WordCount,
	}
}
