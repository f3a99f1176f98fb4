package service

import (
	"context"
	"errors"
	"time"

	"clinical-docs-be/internal/dto"
	"clinical-docs-be/internal/entity"
	"clinical-docs-be/internal/pkg/logger"
	"clinical-docs-be/internal/repository/specification"
	"clinical-docs-be/internal/repository/unitofwork"
	"clinical-docs-be/pkg/events"
	pkgNats "clinical-docs-be/pkg/nats"

	"github.com/google/uuid"
)

type ISessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowSessionResponse, error)
	Update(ctx context.Context, req *dto.UpdateSessionRequest) (*dto.ShowSessionResponse, error)
	Delete(ctx context.Context, userId, id uuid.UUID) error
	List(ctx context.Context, req *dto.ListSessionsRequest) (*dto.ListSessionsResponse, error)
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pkgNats.Publisher
	log            logger.ILogger
}

func NewSessionService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pkgNats.Publisher, log logger.ILogger) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	patient, err := uow.PatientRepository().FindOne(ctx, specification.ByID{ID: req.PatientId})
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, errors.New("patient not found")
	}

	session := entity.Session{
		Id:        uuid.New(),
		PatientId: req.PatientId,
		VisitDate: req.VisitDate,
		Notes:     req.Notes,
		CreatedAt: time.Now(),
	}
	if err := uow.SessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}
	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *sessionService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	return s.toResponse(ctx, uow, session)
}

// Update changes only the fields the request carries; counters are never
// written, they are recomputed on every read.
func (s *sessionService) Update(ctx context.Context, req *dto.UpdateSessionRequest) (*dto.ShowSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New("session not found")
	}

	if req.VisitDate != nil {
		session.VisitDate = *req.VisitDate
	}
	if req.Notes != nil {
		session.Notes = *req.Notes
	}
	now := time.Now()
	session.UpdatedAt = &now

	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, uow, session)
}

// Delete removes the session and everything hanging off it: documents, SOAP
// notes and their embedding chunks.
func (s *sessionService) Delete(ctx context.Context, userId, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if session == nil {
		return errors.New("session not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.NoteEmbeddingRepository().DeleteBySessionId(ctx, id); err != nil {
		return err
	}
	if err := uow.SoapNoteRepository().DeleteBySessionId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().DeleteBySessionId(ctx, id); err != nil {
		return err
	}
	if err := uow.SessionRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewSessionDeleted(userId, id)); err != nil {
			s.log.Warn("session", "failed to publish SESSION_DELETED", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (s *sessionService) List(ctx context.Context, req *dto.ListSessionsRequest) (*dto.ListSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	specs := []specification.Specification{}
	if req.PatientId != nil {
		specs = append(specs, specification.ByPatientId{PatientId: *req.PatientId})
	}

	total, err := uow.SessionRepository().Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	listSpecs := append(specs,
		specification.OrderBy{Field: "visit_date", Desc: true},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)
	sessions, err := uow.SessionRepository().FindAll(ctx, listSpecs...)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListSessionsResponse{
		Sessions: make([]dto.ShowSessionResponse, 0, len(sessions)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, session := range sessions {
		item, err := s.toResponse(ctx, uow, session)
		if err != nil {
			return nil, err
		}
		resp.Sessions = append(resp.Sessions, *item)
	}
	return resp, nil
}

func (s *sessionService) toResponse(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.Session) (*dto.ShowSessionResponse, error) {
	patientName := ""
	patient, err := uow.PatientRepository().FindOne(ctx, specification.ByID{ID: session.PatientId})
	if err != nil {
		return nil, err
	}
	if patient != nil {
		patientName = patient.FullName()
	}

	return &dto.ShowSessionResponse{
		Id:            session.Id,
		PatientId:     session.PatientId,
		PatientName:   patientName,
		VisitDate:     session.VisitDate,
		Notes:         session.Notes,
		DocumentCount: session.DocumentCount,
		SoapNoteCount: session.SoapNoteCount,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}, nil
}
