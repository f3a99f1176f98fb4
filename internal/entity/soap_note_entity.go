package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	SectionSubjective = "subjective"
	SectionObjective  = "objective"
	SectionAssessment = "assessment"
	SectionPlan       = "plan"
)

// SoapSection holds one of the four note sections. Confidence and WordCount
// are set at generation time and considered stale after a user edit; they are
// never recomputed here.
type SoapSection struct {
	Content    string
	Confidence *float64
	WordCount  *int
}

type SOAPNote struct {
	Id         uuid.UUID
	SessionId  uuid.UUID
	DocumentId *uuid.UUID

	Subjective SoapSection
	Objective  SoapSection
	Assessment SoapSection
	Plan       SoapSection

	AiApproved         bool
	UserApproved       bool
	ValidationFeedback *string

	// Generation context data.
	EntityCount      *int
	ProcessingTimeMs *int

	RegenerationCount int

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// Section returns a pointer to the named section, or nil for an unknown key.
func (n *SOAPNote) Section(key string) *SoapSection {
	switch key {
	case SectionSubjective:
		return &n.Subjective
	case SectionObjective:
		return &n.Objective
	case SectionAssessment:
		return &n.Assessment
	case SectionPlan:
		return &n.Plan
	}
	return nil
}

// PlainText renders the note as a flat document, used for embedding and PDF
// export.
func (n *SOAPNote) PlainText() string {
	return "Subjective:\n" + n.Subjective.Content +
		"\n\nObjective:\n" + n.Objective.Content +
		"\n\nAssessment:\n" + n.Assessment.Content +
		"\n\nPlan:\n" + n.Plan.Content
}
