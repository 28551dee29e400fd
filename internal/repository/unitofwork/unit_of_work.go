package unitofwork

import (
	"context"

	"travel-chatbot-be/internal/repository/contract"
)

// UnitOfWork hands out repositories that share one database handle.
type UnitOfWork interface {
	// Transaction runs fn with repositories bound to a single transaction.
	// An error from fn, or a panic, rolls it back.
	Transaction(ctx context.Context, fn func(tx UnitOfWork) error) error

	DocumentRepository() contract.DocumentRepository
	ChatTranscriptRepository() contract.ChatTranscriptRepository
}

type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
