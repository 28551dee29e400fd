package memory

import (
	"context"
	"fmt"
	"testing"

	"travel-chatbot-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_AppendAndLoad(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRepository()

	empty, err := r.Load(ctx, "s1", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, r.Append(ctx, "s1",
		llm.Message{Role: llm.RoleUser, Content: "Hồ Gươm ở đâu?"},
		llm.Message{Role: llm.RoleAssistant, Content: "Ở quận Hoàn Kiếm."},
	))
	require.NoError(t, r.Append(ctx, "s1", llm.Message{Role: llm.RoleUser, Content: "Nó có gì đẹp?"}))

	got, err := r.Load(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ở quận Hoàn Kiếm.", got[0].Content)
	assert.Equal(t, "Nó có gì đẹp?", got[1].Content)

	require.NoError(t, r.Clear(ctx, "s1"))
	got, _ = r.Load(ctx, "s1", 10)
	assert.Empty(t, got)
}

func TestSessionRepository_CapsStoredMessages(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRepository()
	for i := 0; i < maxStoredMessages+5; i++ {
		require.NoError(t, r.Append(ctx, "s", llm.Message{Role: llm.RoleUser, Content: fmt.Sprint(i)}))
	}

	got, err := r.Load(ctx, "s", 0)
	require.NoError(t, err)
	assert.Len(t, got, maxStoredMessages)
	assert.Equal(t, fmt.Sprint(maxStoredMessages+4), got[len(got)-1].Content)
}
