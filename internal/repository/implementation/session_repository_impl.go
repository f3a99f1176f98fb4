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

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *SessionRepositoryImpl) Update(ctx context.Context, session *entity.Session) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	counts := session.DocumentCount
	noteCounts := session.SoapNoteCount
	*session = *r.mapper.ToEntity(m)
	session.DocumentCount = counts
	session.SoapNoteCount = noteCounts
	return nil
}

func (r *SessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Session{}, id).Error
}

// FindOne fills the confirmed document / SOAP note counters from count
// queries; they are never stored on the row.
func (r *SessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	var m model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	session := r.mapper.ToEntity(&m)
	if err := r.fillCounters(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *SessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	var models []*model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	sessions := r.mapper.ToEntities(models)
	for _, s := range sessions {
		if err := r.fillCounters(ctx, s); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (r *SessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Session{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SessionRepositoryImpl) fillCounters(ctx context.Context, session *entity.Session) error {
	var docCount, noteCount int64
	if err := r.db.WithContext(ctx).Model(&model.Document{}).
		Where("session_id = ?", session.Id).Count(&docCount).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(&model.SOAPNote{}).
		Where("session_id = ?", session.Id).Count(&noteCount).Error; err != nil {
		return err
	}
	session.DocumentCount = int(docCount)
	session.SoapNoteCount = int(noteCount)
	return nil
}
