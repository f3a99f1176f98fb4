package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Patient struct {
	Id                  uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FirstName           string         `gorm:"type:varchar(100);not null"`
	LastName            string         `gorm:"type:varchar(100);not null"`
	MedicalRecordNumber string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	DateOfBirth         *time.Time     `gorm:"type:date"`
	CreatedAt           time.Time      `gorm:"autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime"`
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

func (Patient) TableName() string {
	return "patients"
}
