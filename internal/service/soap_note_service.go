package service

import (
	"context"
	"encoding/json"
	"errors"

	"clinical-docs-be/internal/dto"
	"clinical-docs-be/internal/entity"
	"clinical-docs-be/internal/pkg/logger"
	"clinical-docs-be/internal/pkg/mailer"
	"clinical-docs-be/internal/repository/specification"
	"clinical-docs-be/internal/repository/unitofwork"
	"clinical-docs-be/pkg/events"
	pkgNats "clinical-docs-be/pkg/nats"
	"clinical-docs-be/pkg/pdf"

	"github.com/google/uuid"
)

var ErrSoapNoteNotFound = errors.New("soap note not found")

type ISoapNoteService interface {
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowSoapNoteResponse, error)
	List(ctx context.Context, sessionId uuid.UUID) (*dto.ListSoapNotesResponse, error)
	Update(ctx context.Context, req *dto.UpdateSoapNoteRequest) (*dto.ShowSoapNoteResponse, error)
	Approve(ctx context.Context, userId uuid.UUID, req *dto.ApproveSoapNoteRequest) (*dto.ShowSoapNoteResponse, error)
	ExportPdf(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	Share(ctx context.Context, req *dto.ShareSoapNoteRequest) error
	TriggerEmbedding(ctx context.Context, userId uuid.UUID, req *dto.TriggerEmbeddingRequest) (*dto.TriggerEmbeddingResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type soapNoteService struct {
	uowFactory     unitofwork.RepositoryFactory
	publisher      IPublisherService
	eventPublisher *pkgNats.Publisher
	emailService   mailer.IEmailService
	log            logger.ILogger
}

func NewSoapNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	eventPublisher *pkgNats.Publisher,
	emailService mailer.IEmailService,
	log logger.ILogger,
) ISoapNoteService {
	return &soapNoteService{
		uowFactory:     uowFactory,
		publisher:      publisher,
		eventPublisher: eventPublisher,
		emailService:   emailService,
		log:            log,
	}
}

func (s *soapNoteService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowSoapNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.SoapNoteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrSoapNoteNotFound
	}
	return soapNoteToResponse(note), nil
}

func (s *soapNoteService) List(ctx context.Context, sessionId uuid.UUID) (*dto.ListSoapNotesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.SoapNoteRepository().FindAll(ctx,
		specification.BySessionId{SessionId: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	resp := &dto.ListSoapNotesResponse{
		Notes: make([]dto.ShowSoapNoteResponse, 0, len(notes)),
		Total: int64(len(notes)),
	}
	for _, note := range notes {
		resp.Notes = append(resp.Notes, *soapNoteToResponse(note))
	}
	return resp, nil
}

// Update replaces all four sections in one write. Confidence and word count
// stay as they were at generation time; an edited section simply carries
// stale generation metadata.
func (s *soapNoteService) Update(ctx context.Context, req *dto.UpdateSoapNoteRequest) (*dto.ShowSoapNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.SoapNoteRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrSoapNoteNotFound
	}

	note.Subjective.Content = req.Subjective
	note.Objective.Content = req.Objective
	note.Assessment.Content = req.Assessment
	note.Plan.Content = req.Plan

	if err := uow.SoapNoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}
	return soapNoteToResponse(note), nil
}

// Approve toggles the clinician's sign-off. Sending approved=false revokes a
// previous approval without touching the note content.
func (s *soapNoteService) Approve(ctx context.Context, userId uuid.UUID, req *dto.ApproveSoapNoteRequest) (*dto.ShowSoapNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.SoapNoteRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrSoapNoteNotFound
	}

	note.UserApproved = req.Approved
	if err := uow.SoapNoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewSoapApproved(userId, note.Id, req.Approved)); err != nil {
			s.log.Warn("soap-note", "failed to publish approval event", map[string]interface{}{"error": err.Error()})
		}
	}
	return soapNoteToResponse(note), nil
}

// ExportPdf renders the note and returns the bytes together with a suggested
// file name.
func (s *soapNoteService) ExportPdf(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, session, patient, err := s.loadNoteContext(ctx, uow, id)
	if err != nil {
		return nil, "", err
	}

	doc := pdf.SoapDocument{
		PatientName:  patient.FullName(),
		VisitDate:    session.VisitDate,
		NoteId:       note.Id.String(),
		Subjective:   note.Subjective.Content,
		Objective:    note.Objective.Content,
		Assessment:   note.Assessment.Content,
		Plan:         note.Plan.Content,
		UserApproved: note.UserApproved,
		GeneratedAt:  note.CreatedAt,
	}
	rendered, err := pdf.Render(doc)
	if err != nil {
		return nil, "", err
	}
	fileName := pdf.FileNameSlug("soap", patient.FullName(), session.VisitDate.Format("2006-01-02"))
	return rendered, fileName, nil
}

// Share renders the note to PDF and mails it as an attachment.
func (s *soapNoteService) Share(ctx context.Context, req *dto.ShareSoapNoteRequest) error {
	rendered, fileName, err := s.ExportPdf(ctx, req.Id)
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	_, session, patient, err := s.loadNoteContext(ctx, uow, req.Id)
	if err != nil {
		return err
	}

	if err := s.emailService.SendSoapNote(
		req.Email,
		patient.FullName(),
		session.VisitDate.Format("2006-01-02"),
		fileName,
		rendered,
	); err != nil {
		s.log.Error("soap-note", "failed to send share email", map[string]interface{}{
			"note_id": req.Id.String(), "error": err.Error(),
		})
		return err
	}
	s.log.Info("soap-note", "note shared by email", map[string]interface{}{"note_id": req.Id.String()})
	return nil
}

// TriggerEmbedding queues each requested note for embedding via the internal
// message bus. Notes that do not exist are skipped rather than failing the
// whole batch.
func (s *soapNoteService) TriggerEmbedding(ctx context.Context, userId uuid.UUID, req *dto.TriggerEmbeddingRequest) (*dto.TriggerEmbeddingResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	queued := 0
	for _, noteId := range req.NoteIds {
		note, err := uow.SoapNoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
		if err != nil {
			return nil, err
		}
		if note == nil {
			continue
		}

		payload, err := json.Marshal(dto.PublishEmbedSoapNoteMessage{
			SoapNoteId: noteId,
			UserId:     userId,
		})
		if err != nil {
			return nil, err
		}
		if err := s.publisher.Publish(ctx, payload); err != nil {
			return &dto.TriggerEmbeddingResponse{
				Success: false,
				Message: "embedding queue unavailable",
				Queued:  queued,
			}, nil
		}
		queued++
	}

	if queued == 0 {
		return &dto.TriggerEmbeddingResponse{
			Success: false,
			Message: "no matching notes to embed",
		}, nil
	}
	return &dto.TriggerEmbeddingResponse{
		Success: true,
		Message: "embedding queued",
		Queued:  queued,
	}, nil
}

func (s *soapNoteService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.NoteEmbeddingRepository().DeleteBySoapNoteId(ctx, id); err != nil {
		return err
	}
	if err := uow.SoapNoteRepository().Delete(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *soapNoteService) loadNoteContext(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.SOAPNote, *entity.Session, *entity.Patient, error) {
	note, err := uow.SoapNoteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, nil, nil, err
	}
	if note == nil {
		return nil, nil, nil, ErrSoapNoteNotFound
	}
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: note.SessionId})
	if err != nil {
		return nil, nil, nil, err
	}
	if session == nil {
		return nil, nil, nil, errors.New("session not found")
	}
	patient, err := uow.PatientRepository().FindOne(ctx, specification.ByID{ID: session.PatientId})
	if err != nil {
		return nil, nil, nil, err
	}
	if patient == nil {
		return nil, nil, nil, errors.New("patient not found")
	}
	return note, session, patient, nil
}

func soapNoteToResponse(note *entity.SOAPNote) *dto.ShowSoapNoteResponse {
	return &dto.ShowSoapNoteResponse{
		Id:                 note.Id,
		SessionId:          note.SessionId,
		DocumentId:         note.DocumentId,
		Subjective:         sectionToDto(note.Subjective),
		Objective:          sectionToDto(note.Objective),
		Assessment:         sectionToDto(note.Assessment),
		Plan:               sectionToDto(note.Plan),
		AiApproved:         note.AiApproved,
		UserApproved:       note.UserApproved,
		ValidationFeedback: note.ValidationFeedback,
		EntityCount:        note.EntityCount,
		ProcessingTimeMs:   note.ProcessingTimeMs,
		RegenerationCount:  note.RegenerationCount,
		CreatedAt:          note.CreatedAt,
		UpdatedAt:          note.UpdatedAt,
	}
}

func sectionToDto(section entity.SoapSection) dto.SoapSectionDto {
	return dto.SoapSectionDto{
		Content:    section.Content,
		Confidence: section.Confidence,
		WordCount:  section.WordCount,
	}
}
