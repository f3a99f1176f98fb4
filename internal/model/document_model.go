package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	DisplayName   string         `gorm:"type:varchar(255);not null"`
	FileType      string         `gorm:"type:varchar(20);not null"`
	FileSize      int64          `gorm:"not null"`
	FilePath      string         `gorm:"type:varchar(500);not null"`
	State         string         `gorm:"type:document_state;not null;default:'pending';index"`
	FailureReason *string        `gorm:"type:text"`
	ExtractedText *string        `gorm:"type:text"`

	PiiMasked         bool    `gorm:"default:false"`
	PiiEntitiesFound  *int
	PiiProcessingNote *string `gorm:"type:text"`

	ProcessedAt *time.Time
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
