package contract

import (
	"context"

	"clinical-docs-be/internal/entity"
	"clinical-docs-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SoapNoteRepository interface {
	Create(ctx context.Context, note *entity.SOAPNote) error
	Update(ctx context.Context, note *entity.SOAPNote) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SOAPNote, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SOAPNote, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
