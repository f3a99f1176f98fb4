package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"clinical-docs-be/internal/dto"
	"clinical-docs-be/internal/entity"
	"clinical-docs-be/internal/pkg/logger"
	"clinical-docs-be/internal/repository/specification"
	"clinical-docs-be/internal/repository/unitofwork"
	"clinical-docs-be/pkg/aiservice"
	"clinical-docs-be/pkg/events"
	pkgNats "clinical-docs-be/pkg/nats"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type IDocumentService interface {
	Upload(ctx context.Context, userId uuid.UUID, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context, sessionId uuid.UUID) (*dto.ListDocumentsResponse, error)
	Content(ctx context.Context, id uuid.UUID) (*dto.DocumentContentResponse, error)
	Metadata(ctx context.Context, id uuid.UUID) (*dto.DocumentMetadataResponse, error)
	PiiStatus(ctx context.Context, id uuid.UUID) (*dto.DocumentPiiResponse, error)
	Reprocess(ctx context.Context, userId, id uuid.UUID) (*dto.ReprocessDocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	uowFactory     unitofwork.RepositoryFactory
	aiClient       *aiservice.Client
	eventPublisher *pkgNats.Publisher
	log            logger.ILogger
	uploadDir      string
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	aiClient *aiservice.Client,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
	uploadDir string,
) IDocumentService {
	return &documentService{
		uowFactory:     uowFactory,
		aiClient:       aiClient,
		eventPublisher: eventPublisher,
		log:            log,
		uploadDir:      uploadDir,
	}
}

// Upload stores the file, creates the document in pending state and, when
// extraction was requested, kicks off the processing pipeline. The response
// returns before extraction finishes; clients observe progress through the
// document state.
func (s *documentService) Upload(ctx context.Context, userId uuid.UUID, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: req.SessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New("session not found")
	}

	documentId := uuid.New()
	dir := filepath.Join(s.uploadDir, req.SessionId.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare upload dir: %w", err)
	}
	filePath := filepath.Join(dir, documentId.String()+"-"+filepath.Base(req.FileName))
	if err := os.WriteFile(filePath, req.Content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	document := entity.Document{
		Id:          documentId,
		SessionId:   req.SessionId,
		DisplayName: req.FileName,
		FileType:    req.FileType,
		FileSize:    req.FileSize,
		FilePath:    filePath,
		State:       entity.DocumentStatePending,
		CreatedAt:   time.Now(),
	}
	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewDocumentUploaded(userId, req.SessionId, documentId, req.FileName))

	message := "document stored"
	if req.ExtractText {
		message = "document stored; extraction queued"
		// Detached context: processing outlives the HTTP request.
		go s.process(context.Background(), userId, documentId, req.GenerateSoap)
	}

	return &dto.UploadDocumentResponse{
		Id:      documentId,
		State:   string(document.State),
		Message: message,
	}, nil
}

// process runs extraction, then PII analysis and (optionally) SOAP
// generation. PII and generation both work off the extracted text and run
// concurrently.
func (s *documentService) process(ctx context.Context, userId, documentId uuid.UUID, generateSoap bool) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil || document == nil {
		s.log.Error("document", "pipeline could not load document", map[string]interface{}{"document_id": documentId.String()})
		return
	}

	if err := s.transition(ctx, uow, document, entity.DocumentStateExtracting, ""); err != nil {
		s.log.Error("document", "cannot start extraction", map[string]interface{}{"error": err.Error()})
		return
	}

	content, err := os.ReadFile(document.FilePath)
	if err != nil {
		s.fail(ctx, uow, userId, document, "stored file unreadable: "+err.Error())
		return
	}

	extractResp, err := s.aiClient.ExtractText(ctx, aiservice.ExtractRequest{
		FileName: document.DisplayName,
		FileType: document.FileType,
		Content:  content,
	})
	if err != nil {
		s.fail(ctx, uow, userId, document, "extraction failed: "+err.Error())
		return
	}
	if !extractResp.Success {
		s.fail(ctx, uow, userId, document, "extraction rejected: "+extractResp.Message)
		return
	}

	text := extractResp.Text
	document.ExtractedText = &text
	now := time.Now()
	document.ProcessedAt = &now
	if err := document.Transition(entity.DocumentStateExtracted, ""); err != nil {
		s.log.Error("document", "cannot record extraction", map[string]interface{}{"error": err.Error()})
		return
	}
	// Full-row save is still safe here: PII and generation have not forked yet.
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		s.log.Error("document", "failed to persist extracted text", map[string]interface{}{"error": err.Error()})
		return
	}
	s.publishEvent(ctx, events.NewTextExtracted(userId, document.SessionId, document.Id))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.analyzePii(groupCtx, uow, document, text)
		return nil
	})
	if generateSoap {
		group.Go(func() error {
			return s.generate(groupCtx, userId, document.Id)
		})
	}
	if err := group.Wait(); err != nil {
		s.log.Error("document", "pipeline finished with error", map[string]interface{}{
			"document_id": document.Id.String(), "error": err.Error(),
		})
	}
}

// analyzePii is best-effort: a PII failure is recorded on the document but
// never fails the pipeline.
func (s *documentService) analyzePii(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document, text string) {
	piiResp, err := s.aiClient.AnalyzePii(ctx, aiservice.PiiRequest{Text: text})
	if err != nil {
		note := "PII analysis unavailable: " + err.Error()
		document.PiiProcessingNote = &note
	} else if !piiResp.Success {
		note := "PII analysis rejected: " + piiResp.Message
		document.PiiProcessingNote = &note
	} else {
		document.PiiMasked = true
		entitiesFound := piiResp.EntitiesFound
		document.PiiEntitiesFound = &entitiesFound
		if piiResp.MaskedText != "" {
			document.ExtractedText = &piiResp.MaskedText
		}
	}
	if err := uow.DocumentRepository().UpdatePiiResult(ctx, document); err != nil {
		s.log.Error("document", "failed to persist PII result", map[string]interface{}{"error": err.Error()})
	}
}

// generate runs SOAP generation for a document whose text is extracted and
// stores the resulting note.
func (s *documentService) generate(ctx context.Context, userId, documentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return err
	}
	if document == nil {
		return errors.New("document not found")
	}
	if !document.TextAvailable() {
		return errors.New("document text has not been extracted")
	}
	if document.ExtractedText == nil {
		return errors.New("document has no stored text")
	}

	if err := s.transition(ctx, uow, document, entity.DocumentStateGenerating, ""); err != nil {
		return err
	}

	patientName := ""
	if session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: document.SessionId}); err == nil && session != nil {
		if patient, err := uow.PatientRepository().FindOne(ctx, specification.ByID{ID: session.PatientId}); err == nil && patient != nil {
			patientName = patient.FullName()
		}
	}

	soapResp, err := s.aiClient.GenerateSoap(ctx, aiservice.SoapRequest{
		Text:        *document.ExtractedText,
		PatientName: patientName,
	})
	if err != nil {
		s.fail(ctx, uow, userId, document, "generation failed: "+err.Error())
		return err
	}
	if !soapResp.Success {
		s.fail(ctx, uow, userId, document, "generation rejected: "+soapResp.Message)
		return errors.New(soapResp.Message)
	}

	priorNotes, err := uow.SoapNoteRepository().Count(ctx,
		specification.Filter("document_id", document.Id),
	)
	if err != nil {
		priorNotes = 0
	}

	note := entity.SOAPNote{
		Id:                uuid.New(),
		SessionId:         document.SessionId,
		DocumentId:        &document.Id,
		Subjective:        sectionFromPayload(soapResp.Subjective),
		Objective:         sectionFromPayload(soapResp.Objective),
		Assessment:        sectionFromPayload(soapResp.Assessment),
		Plan:              sectionFromPayload(soapResp.Plan),
		AiApproved:        soapResp.AiApproved,
		EntityCount:       soapResp.EntityCount,
		ProcessingTimeMs:  soapResp.ProcessingTimeMs,
		RegenerationCount: int(priorNotes),
		CreatedAt:         time.Now(),
	}
	if soapResp.ValidationFeedback != "" {
		feedback := soapResp.ValidationFeedback
		note.ValidationFeedback = &feedback
	}
	if err := uow.SoapNoteRepository().Create(ctx, &note); err != nil {
		s.fail(ctx, uow, userId, document, "failed to store generated note: "+err.Error())
		return err
	}

	if err := s.transition(ctx, uow, document, entity.DocumentStateGenerated, ""); err != nil {
		return err
	}
	s.publishEvent(ctx, events.NewSoapGenerated(userId, document.SessionId, document.Id, note.Id))
	return nil
}

func sectionFromPayload(payload aiservice.SoapSectionPayload) entity.SoapSection {
	return entity.SoapSection{
		Content:    payload.Content,
		Confidence: payload.Confidence,
		WordCount:  payload.WordCount,
	}
}

func (s *documentService) transition(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document, next entity.DocumentState, reason string) error {
	if err := document.Transition(next, reason); err != nil {
		return err
	}
	return uow.DocumentRepository().UpdateState(ctx, document)
}

func (s *documentService) fail(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, document *entity.Document, reason string) {
	wasExtracting := document.State == entity.DocumentStateExtracting
	if err := s.transition(ctx, uow, document, entity.DocumentStateFailed, reason); err != nil {
		s.log.Error("document", "failed to record failure", map[string]interface{}{"error": err.Error()})
		return
	}
	s.log.Warn("document", "processing failed", map[string]interface{}{
		"document_id": document.Id.String(), "reason": reason,
	})
	if wasExtracting {
		s.publishEvent(ctx, events.NewExtractionFailed(userId, document.SessionId, document.Id, reason))
	} else {
		s.publishEvent(ctx, events.NewGenerationFailed(userId, document.SessionId, document.Id, reason))
	}
}

func (s *documentService) publishEvent(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.log.Warn("document", "failed to publish event", map[string]interface{}{
			"event": evt.EventType(), "error": err.Error(),
		})
	}
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil
	}
	return documentToResponse(document), nil
}

func (s *documentService) List(ctx context.Context, sessionId uuid.UUID) (*dto.ListDocumentsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.BySessionId{SessionId: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListDocumentsResponse{
		Documents: make([]dto.ShowDocumentResponse, 0, len(documents)),
		Total:     int64(len(documents)),
	}
	for _, document := range documents {
		resp.Documents = append(resp.Documents, *documentToResponse(document))
	}
	return resp, nil
}

func (s *documentService) Content(ctx context.Context, id uuid.UUID) (*dto.DocumentContentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, errors.New("document not found")
	}

	resp := &dto.DocumentContentResponse{
		Id:        document.Id,
		Extracted: document.TextAvailable(),
	}
	if document.ExtractedText != nil {
		resp.Content = *document.ExtractedText
	}
	if !resp.Extracted {
		if document.FailureReason != nil {
			resp.Message = *document.FailureReason
		} else {
			resp.Message = "text has not been extracted yet"
		}
	}
	return resp, nil
}

func (s *documentService) Metadata(ctx context.Context, id uuid.UUID) (*dto.DocumentMetadataResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, errors.New("document not found")
	}
	return &dto.DocumentMetadataResponse{
		Id:            document.Id,
		FilePath:      document.FilePath,
		ProcessedAt:   document.ProcessedAt,
		TextExtracted: document.TextAvailable(),
		SoapGenerated: document.State.SoapGenerated(),
	}, nil
}

func (s *documentService) PiiStatus(ctx context.Context, id uuid.UUID) (*dto.DocumentPiiResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, errors.New("document not found")
	}
	return &dto.DocumentPiiResponse{
		Id:                document.Id,
		PiiMasked:         document.PiiMasked,
		PiiEntitiesFound:  document.PiiEntitiesFound,
		PiiProcessingNote: document.PiiProcessingNote,
	}, nil
}

// Reprocess re-runs SOAP generation for a document whose text is already
// extracted. Generation runs in the background; the response only confirms
// the queueing.
func (s *documentService) Reprocess(ctx context.Context, userId, id uuid.UUID) (*dto.ReprocessDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, errors.New("document not found")
	}
	if !document.TextAvailable() {
		return &dto.ReprocessDocumentResponse{
			Success: false,
			Message: "document text has not been extracted",
		}, nil
	}

	go func() {
		if err := s.generate(context.Background(), userId, id); err != nil {
			s.log.Warn("document", "regeneration failed", map[string]interface{}{
				"document_id": id.String(), "error": err.Error(),
			})
		}
	}()

	return &dto.ReprocessDocumentResponse{
		Success: true,
		Message: "regeneration queued",
	}, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if document == nil {
		return nil
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}
	// Best effort: the row is the source of truth, the file is a cache.
	if err := os.Remove(document.FilePath); err != nil && !os.IsNotExist(err) {
		s.log.Warn("document", "failed to remove stored file", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

func documentToResponse(document *entity.Document) *dto.ShowDocumentResponse {
	return &dto.ShowDocumentResponse{
		Id:            document.Id,
		SessionId:     document.SessionId,
		DisplayName:   document.DisplayName,
		FileType:      document.FileType,
		FileSize:      document.FileSize,
		State:         string(document.State),
		TextExtracted: document.TextAvailable(),
		SoapGenerated: document.State.SoapGenerated(),
		FailureReason: document.FailureReason,
		CreatedAt:     document.CreatedAt,
		ProcessedAt:   document.ProcessedAt,
	}
}
