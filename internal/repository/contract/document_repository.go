package contract

import (
	"context"

	"clinical-docs-be/internal/entity"
	"clinical-docs-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	Update(ctx context.Context, document *entity.Document) error
	// UpdateState persists only the state machine columns. PII analysis and
	// SOAP generation run concurrently against the same row; each must write
	// its own columns so the last writer cannot erase the other's.
	UpdateState(ctx context.Context, document *entity.Document) error
	// UpdatePiiResult persists only the PII columns and the masked text.
	UpdatePiiResult(ctx context.Context, document *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
