package mapper

import (
	"time"

	"clinical-docs-be/internal/entity"
	"clinical-docs-be/internal/model"

	"gorm.io/gorm"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:                d.Id,
		SessionId:         d.SessionId,
		DisplayName:       d.DisplayName,
		FileType:          d.FileType,
		FileSize:          d.FileSize,
		FilePath:          d.FilePath,
		State:             entity.DocumentState(d.State),
		FailureReason:     d.FailureReason,
		ExtractedText:     d.ExtractedText,
		PiiMasked:         d.PiiMasked,
		PiiEntitiesFound:  d.PiiEntitiesFound,
		PiiProcessingNote: d.PiiProcessingNote,
		ProcessedAt:       d.ProcessedAt,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         updatedAt,
		DeletedAt:         deletedAt,
		IsDeleted:         d.DeletedAt.Valid,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:                d.Id,
		SessionId:         d.SessionId,
		DisplayName:       d.DisplayName,
		FileType:          d.FileType,
		FileSize:          d.FileSize,
		FilePath:          d.FilePath,
		State:             string(d.State),
		FailureReason:     d.FailureReason,
		ExtractedText:     d.ExtractedText,
		PiiMasked:         d.PiiMasked,
		PiiEntitiesFound:  d.PiiEntitiesFound,
		PiiProcessingNote: d.PiiProcessingNote,
		ProcessedAt:       d.ProcessedAt,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         updatedAt,
		DeletedAt:         deletedAt,
	}
}

func (m *DocumentMapper) ToEntities(documents []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(documents))
	for i, d := range documents {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
