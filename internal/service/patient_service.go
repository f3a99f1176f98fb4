package service

import (
	"context"
	"errors"
	"time"

	"clinical-docs-be/internal/dto"
	"clinical-docs-be/internal/entity"
	"clinical-docs-be/internal/repository/specification"
	"clinical-docs-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IPatientService interface {
	Create(ctx context.Context, req *dto.CreatePatientRequest) (*dto.CreatePatientResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowPatientResponse, error)
	Update(ctx context.Context, req *dto.UpdatePatientRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, req *dto.ListPatientsRequest) (*dto.ListPatientsResponse, error)
}

type patientService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPatientService(uowFactory unitofwork.RepositoryFactory) IPatientService {
	return &patientService{uowFactory: uowFactory}
}

func (s *patientService) Create(ctx context.Context, req *dto.CreatePatientRequest) (*dto.CreatePatientResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	patient := entity.Patient{
		Id:                  uuid.New(),
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		MedicalRecordNumber: req.MedicalRecordNumber,
		DateOfBirth:         req.DateOfBirth,
		CreatedAt:           time.Now(),
	}
	if err := uow.PatientRepository().Create(ctx, &patient); err != nil {
		return nil, err
	}
	return &dto.CreatePatientResponse{Id: patient.Id}, nil
}

func (s *patientService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowPatientResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	patient, err := uow.PatientRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, nil
	}
	return patientToResponse(patient), nil
}

func (s *patientService) Update(ctx context.Context, req *dto.UpdatePatientRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	patient, err := uow.PatientRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return err
	}
	if patient == nil {
		return errors.New("patient not found")
	}

	patient.FirstName = req.FirstName
	patient.LastName = req.LastName
	patient.MedicalRecordNumber = req.MedicalRecordNumber
	patient.DateOfBirth = req.DateOfBirth
	now := time.Now()
	patient.UpdatedAt = &now

	return uow.PatientRepository().Update(ctx, patient)
}

func (s *patientService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.PatientRepository().Delete(ctx, id)
}

func (s *patientService) List(ctx context.Context, req *dto.ListPatientsRequest) (*dto.ListPatientsResponse, error) {
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
	if req.Search != "" {
		specs = append(specs, specification.PatientNameSearch{Term: req.Search})
	}

	total, err := uow.PatientRepository().Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	listSpecs := append(specs,
		specification.OrderBy{Field: "last_name"},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)
	patients, err := uow.PatientRepository().FindAll(ctx, listSpecs...)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListPatientsResponse{
		Patients: make([]dto.ShowPatientResponse, 0, len(patients)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, patient := range patients {
		resp.Patients = append(resp.Patients, *patientToResponse(patient))
	}
	return resp, nil
}

func patientToResponse(patient *entity.Patient) *dto.ShowPatientResponse {
	return &dto.ShowPatientResponse{
		Id:                  patient.Id,
		FirstName:           patient.FirstName,
		LastName:            patient.LastName,
		FullName:            patient.FullName(),
		MedicalRecordNumber: patient.MedicalRecordNumber,
		DateOfBirth:         patient.DateOfBirth,
		CreatedAt:           patient.CreatedAt,
		UpdatedAt:           patient.UpdatedAt,
	}
}
