package unitofwork

import "context"

// RepositoryFactory creates unit-of-work instances. Services hold the
// factory, not a unit of work, so each operation gets its own scope.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
