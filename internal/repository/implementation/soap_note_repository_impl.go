package implementation

import (
	"context"
	"errors"

	"clinical-docs-be/internal/entity"
	"clinical-docs-be/internal/mapper"
	"clinical-docs-be/internal/model"
	"clinical-docs-be/internal/repository/contract"
	"clinical-docs-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SoapNoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SoapNoteMapper
}

func NewSoapNoteRepository(db *gorm.DB) contract.SoapNoteRepository {
	return &SoapNoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewSoapNoteMapper(),
	}
}

func (r *SoapNoteRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SoapNoteRepositoryImpl) Create(ctx context.Context, note *entity.SOAPNote) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *SoapNoteRepositoryImpl) Update(ctx context.Context, note *entity.SOAPNote) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *SoapNoteRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SOAPNote{}, id).Error
}

func (r *SoapNoteRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.SOAPNote{}).Error
}

func (r *SoapNoteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SOAPNote, error) {
	var m model.SOAPNote
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SoapNoteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SOAPNote, error) {
	var models []*model.SOAPNote
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SoapNoteRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.SOAPNote{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
