package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"travel-chatbot-be/internal/dto"
	"travel-chatbot-be/internal/entity"
	"travel-chatbot-be/internal/repository/specification"
	"travel-chatbot-be/internal/repository/unitofwork"
	"travel-chatbot-be/internal/repository/vectorstore"
	"travel-chatbot-be/internal/service"
	"travel-chatbot-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err, "Failed to connect to DB")
	return gormDB
}

func unitVector(hot int) []float32 {
	vec := make([]float32, 768)
	vec[hot] = 1
	return vec
}

func TestGormConnection(t *testing.T) {
	gormDB := openDB(t)
	uow := unitofwork.NewRepositoryFactory(gormDB).NewUnitOfWork(context.Background())

	sqlDB, _ := gormDB.DB()
	assert.NoError(t, sqlDB.Ping())

	t.Run("Check Document Repository", func(t *testing.T) {
		count, err := uow.DocumentRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Document chunk count: %d", count)
	})

	t.Run("Check Transcript Repository", func(t *testing.T) {
		count, err := uow.ChatTranscriptRepository().Count(context.Background(), specification.SafetyViolations{})
		assert.NoError(t, err)
		t.Logf("Refused turns: %d", count)
	})
}

func TestPgVectorStore_ReplaceAndSearch(t *testing.T) {
	gormDB := openDB(t)
	factory := unitofwork.NewRepositoryFactory(gormDB)
	store := vectorstore.NewPgVectorStore(factory)
	ctx := context.Background()

	sourceId := "integration-" + uuid.NewString()
	t.Cleanup(func() {
		_ = store.ReplaceSource(ctx, sourceId, nil)
	})

	chunks := []*entity.Document{
		{SourceId: sourceId, Title: "Chùa Một Cột", Content: "Quận Ba Đình, Hà Nội", Embedding: unitVector(0), ChunkIndex: 0},
		{SourceId: sourceId, Title: "Chùa Một Cột", Content: "Xây năm 1049", Embedding: unitVector(1), ChunkIndex: 1},
	}
	require.NoError(t, store.ReplaceSource(ctx, sourceId, chunks))

	t.Run("nearest chunk ranks first", func(t *testing.T) {
		results, err := store.SearchSimilarWithScore(ctx, unitVector(0), 5, 0.5)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, sourceId, results[0].Document.SourceId)
		assert.Equal(t, 0, results[0].Document.ChunkIndex)
		assert.InDelta(t, 1.0, results[0].Similarity, 1e-4)
	})

	t.Run("list source in chunk order", func(t *testing.T) {
		listed, err := store.ListSource(ctx, sourceId)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, 0, listed[0].ChunkIndex)
		assert.Equal(t, "Xây năm 1049", listed[1].Content)

		repo := factory.NewUnitOfWork(ctx).DocumentRepository()
		desc, err := repo.FindAll(ctx,
			specification.BySourceID{SourceID: sourceId},
			specification.OrderBy{Column: "chunk_index", Desc: true},
			specification.Page{Limit: 1},
		)
		require.NoError(t, err)
		require.Len(t, desc, 1)
		assert.Equal(t, 1, desc[0].ChunkIndex)
	})

	t.Run("replace swaps every chunk", func(t *testing.T) {
		replacement := []*entity.Document{
			{SourceId: sourceId, Title: "Chùa Một Cột", Content: "Diên Hựu tự", Embedding: unitVector(2)},
		}
		require.NoError(t, store.ReplaceSource(ctx, sourceId, replacement))

		count, err := factory.NewUnitOfWork(ctx).DocumentRepository().Count(ctx, specification.BySourceID{SourceID: sourceId})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestChatTranscriptRepository_CreateAndQuery(t *testing.T) {
	gormDB := openDB(t)
	factory := unitofwork.NewRepositoryFactory(gormDB)
	repo := factory.NewUnitOfWork(context.Background()).ChatTranscriptRepository()
	ctx := context.Background()

	sessionId := "integration-" + uuid.NewString()
	transcript := &entity.ChatTranscript{
		SessionId:   sessionId,
		UserQuery:   "Hồ Gươm ở đâu?",
		Intent:      "VECTOR_SEARCH",
		Generation:  "Ở quận Hoàn Kiếm.",
		Grade:       "USEFUL",
		DocumentIds: []string{uuid.NewString()},
	}
	require.NoError(t, repo.Create(ctx, transcript))
	assert.NotEqual(t, uuid.Nil, transcript.Id)

	found, err := repo.FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Column: "created_at", Desc: true},
		specification.Page{Limit: 10},
	)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, transcript.DocumentIds, found[0].DocumentIds)
	assert.False(t, found[0].SafetyViolation)

	searches, err := repo.Count(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.Filter("intent", "VECTOR_SEARCH"),
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1), searches)

	page, err := service.NewTranscriptService(factory).List(ctx, &dto.TranscriptQuery{SessionId: sessionId, Grade: "USEFUL"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, transcript.Id.String(), page.Items[0].Id)
}
