package mapper

import (
	"time"

	"clinical-docs-be/internal/entity"
	"clinical-docs-be/internal/model"

	"gorm.io/gorm"
)

type SoapNoteMapper struct{}

func NewSoapNoteMapper() *SoapNoteMapper {
	return &SoapNoteMapper{}
}

func (m *SoapNoteMapper) ToEntity(n *model.SOAPNote) *entity.SOAPNote {
	if n == nil {
		return nil
	}

	var deletedAt *time.Time
	if n.DeletedAt.Valid {
		t := n.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	return &entity.SOAPNote{
		Id:         n.Id,
		SessionId:  n.SessionId,
		DocumentId: n.DocumentId,
		Subjective: entity.SoapSection{Content: n.SubjectiveContent, Confidence: n.SubjectiveConfidence, WordCount: n.SubjectiveWordCount},
		Objective:  entity.SoapSection{Content: n.ObjectiveContent, Confidence: n.ObjectiveConfidence, WordCount: n.ObjectiveWordCount},
		Assessment: entity.SoapSection{Content: n.AssessmentContent, Confidence: n.AssessmentConfidence, WordCount: n.AssessmentWordCount},
		Plan:       entity.SoapSection{Content: n.PlanContent, Confidence: n.PlanConfidence, WordCount: n.PlanWordCount},

		AiApproved:         n.AiApproved,
		UserApproved:       n.UserApproved,
		ValidationFeedback: n.ValidationFeedback,
		EntityCount:        n.EntityCount,
		ProcessingTimeMs:   n.ProcessingTimeMs,
		RegenerationCount:  n.RegenerationCount,

		CreatedAt: n.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: n.DeletedAt.Valid,
	}
}

func (m *SoapNoteMapper) ToModel(n *entity.SOAPNote) *model.SOAPNote {
	if n == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if n.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *n.DeletedAt, Valid: true}
	} else if n.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	return &model.SOAPNote{
		Id:         n.Id,
		SessionId:  n.SessionId,
		DocumentId: n.DocumentId,

		SubjectiveContent:    n.Subjective.Content,
		SubjectiveConfidence: n.Subjective.Confidence,
		SubjectiveWordCount:  n.Subjective.WordCount,
		ObjectiveContent:     n.Objective.Content,
		ObjectiveConfidence:  n.Objective.Confidence,
		ObjectiveWordCount:   n.Objective.WordCount,
		AssessmentContent:    n.Assessment.Content,
		AssessmentConfidence: n.Assessment.Confidence,
		AssessmentWordCount:  n.Assessment.WordCount,
		PlanContent:          n.Plan.Content,
		PlanConfidence:       n.Plan.Confidence,
		PlanWordCount:        n.Plan.WordCount,

		AiApproved:         n.AiApproved,
		UserApproved:       n.UserApproved,
		ValidationFeedback: n.ValidationFeedback,
		EntityCount:        n.EntityCount,
		ProcessingTimeMs:   n.ProcessingTimeMs,
		RegenerationCount:  n.RegenerationCount,

		CreatedAt: n.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *SoapNoteMapper) ToEntities(notes []*model.SOAPNote) []*entity.SOAPNote {
	entities := make([]*entity.SOAPNote, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}
