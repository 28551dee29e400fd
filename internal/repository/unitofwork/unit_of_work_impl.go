package unitofwork

import (
	"context"

	"travel-chatbot-be/internal/repository/contract"
	"travel-chatbot-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type gormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Transaction(ctx context.Context, fn func(tx UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormUnitOfWork{db: tx})
	})
}

func (u *gormUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return implementation.NewDocumentRepository(u.db)
}

func (u *gormUnitOfWork) ChatTranscriptRepository() contract.ChatTranscriptRepository {
	return implementation.NewChatTranscriptRepository(u.db)
}

type gormRepositoryFactory struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &gormRepositoryFactory{db: db}
}

// NewUnitOfWork is cheap; callers take one per ingestion message or request.
func (f *gormRepositoryFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db)
}
