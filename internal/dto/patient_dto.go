package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePatientRequest struct {
	FirstName           string     `json:"first_name" validate:"required"`
	LastName            string     `json:"last_name" validate:"required"`
	MedicalRecordNumber string     `json:"medical_record_number" validate:"required"`
	DateOfBirth         *time.Time `json:"date_of_birth"`
}

type CreatePatientResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdatePatientRequest struct {
	Id                  uuid.UUID
	FirstName           string     `json:"first_name" validate:"required"`
	LastName            string     `json:"last_name" validate:"required"`
	MedicalRecordNumber string     `json:"medical_record_number" validate:"required"`
	DateOfBirth         *time.Time `json:"date_of_birth"`
}

type ShowPatientResponse struct {
	Id                  uuid.UUID  `json:"id"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	FullName            string     `json:"full_name"`
	MedicalRecordNumber string     `json:"medical_record_number"`
	DateOfBirth         *time.Time `json:"date_of_birth"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at"`
}

type ListPatientsRequest struct {
	Search   string `query:"search"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

type ListPatientsResponse struct {
	Patients []ShowPatientResponse `json:"patients"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}
