package unitofwork

import (
	"context"

	"clinical-docs-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PatientRepository() contract.PatientRepository
	SessionRepository() contract.SessionRepository
	DocumentRepository() contract.DocumentRepository
	SoapNoteRepository() contract.SoapNoteRepository
	NoteEmbeddingRepository() contract.NoteEmbeddingRepository

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository

	UserRepository() contract.UserRepository
}
