package service

import (
	"context"
	"testing"
	"time"

	"travel-chatbot-be/internal/dto"
	"travel-chatbot-be/internal/entity"
	"travel-chatbot-be/internal/repository/contract"
	"travel-chatbot-be/internal/repository/specification"
	"travel-chatbot-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type specRecordingRepo struct {
	contract.ChatTranscriptRepository
	total      int64
	rows       []*entity.ChatTranscript
	countSpecs []specification.Specification
	findSpecs  []specification.Specification
	findCalls  int
}

func (r *specRecordingRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.countSpecs = specs
	return r.total, nil
}

func (r *specRecordingRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTranscript, error) {
	r.findCalls++
	r.findSpecs = specs
	return r.rows, nil
}

type repoUow struct {
	unitofwork.UnitOfWork
	repo *specRecordingRepo
}

func (u *repoUow) ChatTranscriptRepository() contract.ChatTranscriptRepository { return u.repo }

type repoFactory struct{ uow *repoUow }

func (f *repoFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func newTranscriptService(repo *specRecordingRepo) ITranscriptService {
	return NewTranscriptService(&repoFactory{uow: &repoUow{repo: repo}})
}

func TestTranscriptService_ListBuildsFilters(t *testing.T) {
	created := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	repo := &specRecordingRepo{
		total: 3,
		rows: []*entity.ChatTranscript{{
			Id: uuid.New(), SessionId: "s1", UserQuery: "Đi Sa Pa mùa nào đẹp?",
			Intent: "VECTOR_SEARCH", Grade: "USEFUL", CreatedAt: created,
		}},
	}

	page, err := newTranscriptService(repo).List(context.Background(), &dto.TranscriptQuery{
		SessionId: "s1", Intent: "VECTOR_SEARCH", Grade: "USEFUL", Violations: true, Limit: 5, Offset: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 5, page.Limit)
	assert.Equal(t, 2, page.Offset)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Đi Sa Pa mùa nào đẹp?", page.Items[0].UserQuery)
	assert.Equal(t, []string{}, page.Items[0].DocumentIds)
	assert.Equal(t, created, page.Items[0].CreatedAt)

	filters := []specification.Specification{
		specification.BySessionID{SessionID: "s1"},
		specification.SafetyViolations{},
		specification.Filter("intent", "VECTOR_SEARCH"),
		specification.Filter("grade", "USEFUL"),
	}
	assert.Equal(t, filters, repo.countSpecs)
	assert.Equal(t, append(filters,
		specification.OrderBy{Column: "created_at", Desc: true},
		specification.Page{Limit: 5, Offset: 2},
	), repo.findSpecs)
}

func TestTranscriptService_ListClampsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, 20},
		{"within range", 50, 50},
		{"capped", 500, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &specRecordingRepo{total: 1}
			page, err := newTranscriptService(repo).List(context.Background(), &dto.TranscriptQuery{Limit: tt.limit})

			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Limit)
			assert.Empty(t, repo.countSpecs)
			assert.Contains(t, repo.findSpecs, specification.Page{Limit: tt.want})
		})
	}
}

func TestTranscriptService_ListSkipsQueryPastTotal(t *testing.T) {
	repo := &specRecordingRepo{total: 4}

	page, err := newTranscriptService(repo).List(context.Background(), &dto.TranscriptQuery{Offset: 4})

	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Zero(t, repo.findCalls)
}
