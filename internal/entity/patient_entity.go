package entity

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	Id                  uuid.UUID
	FirstName           string
	LastName            string
	MedicalRecordNumber string
	DateOfBirth         *time.Time
	CreatedAt           time.Time
	UpdatedAt           *time.Time
	DeletedAt           *time.Time
	IsDeleted           bool
}

func (p *Patient) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
