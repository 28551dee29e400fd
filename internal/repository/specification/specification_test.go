package specification

import (
	"testing"

	"travel-chatbot-be/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB renders SQL without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func render(db *gorm.DB, specs ...Specification) string {
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []model.ChatTranscript
		return ApplyAll(tx.Model(&model.ChatTranscript{}), specs...).Find(&rows)
	})
}

func TestApplyAll_TranscriptListing(t *testing.T) {
	sql := render(dryRunDB(t),
		BySessionID{SessionID: "s1"},
		SafetyViolations{},
		Filter("intent", "VECTOR_SEARCH"),
		nil,
		OrderBy{Column: "created_at", Desc: true},
		Page{Limit: 10, Offset: 20},
	)

	assert.Contains(t, sql, "session_id = 's1'")
	assert.Contains(t, sql, "safety_violation = true")
	assert.Contains(t, sql, `"intent" = 'VECTOR_SEARCH'`)
	assert.Contains(t, sql, `ORDER BY "created_at" DESC`)
	assert.Contains(t, sql, "LIMIT 10 OFFSET 20")
}

func TestPage_ZeroIsUnbounded(t *testing.T) {
	sql := render(dryRunDB(t), Page{}, OrderBy{Column: "chunk_index"})

	assert.NotContains(t, sql, "LIMIT")
	assert.NotContains(t, sql, "OFFSET")
	assert.Contains(t, sql, `ORDER BY "chunk_index"`)
}

func TestBySourceID(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []model.Document
		return ApplyAll(tx.Model(&model.Document{}), BySourceID{SourceID: "place-sa-pa"}).Find(&rows)
	})

	assert.Contains(t, sql, "source_id = 'place-sa-pa'")
	assert.Contains(t, sql, `"documents"."deleted_at" IS NULL`)
}
