package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SOAPNote struct {
	Id         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  uuid.UUID  `gorm:"type:uuid;not null;index"`
	DocumentId *uuid.UUID `gorm:"type:uuid;index"`

	SubjectiveContent    string   `gorm:"type:text"`
	SubjectiveConfidence *float64
	SubjectiveWordCount  *int
	ObjectiveContent     string   `gorm:"type:text"`
	ObjectiveConfidence  *float64
	ObjectiveWordCount   *int
	AssessmentContent    string   `gorm:"type:text"`
	AssessmentConfidence *float64
	AssessmentWordCount  *int
	PlanContent          string   `gorm:"type:text"`
	PlanConfidence       *float64
	PlanWordCount        *int

	AiApproved         bool    `gorm:"default:false"`
	UserApproved       bool    `gorm:"default:false"`
	ValidationFeedback *string `gorm:"type:text"`

	EntityCount      *int
	ProcessingTimeMs *int

	RegenerationCount int `gorm:"default:0"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (SOAPNote) TableName() string {
	return "soap_notes"
}
