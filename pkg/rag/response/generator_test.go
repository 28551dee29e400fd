package response

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/pkg/llm"
	"travel-chatbot-be/pkg/rag/state"
	"travel-chatbot-be/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLLM struct {
	reply    string
	err      error
	calls    int
	messages []llm.Message
	opts     *llm.Options
}

func (r *recordingLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	r.calls++
	r.messages = history
	r.opts = llm.ApplyOptions(0, options...)
	return r.reply, r.err
}

func (r *recordingLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return r.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

var hanoiDocs = []state.RetrievedDocument{
	{ID: "hoan-kiem", Title: "Hồ Hoàn Kiếm", Content: "Hồ nằm giữa trung tâm Hà Nội.", Score: 0.9},
	{ID: "van-mieu", Title: "Văn Miếu", Content: "Trường đại học đầu tiên của Việt Nam.", Score: 0.8},
}

func newGenerator(p llm.LLMProvider) *Generator {
	return NewGenerator(p, DefaultConfig(), logger.NewNopLogger())
}

func TestGenerate_VectorSearchIsGrounded(t *testing.T) {
	p := &recordingLLM{reply: "  Hồ Hoàn Kiếm nằm ở trung tâm Hà Nội.  "}

	out, err := newGenerator(p).Generate(context.Background(), Request{
		RefinedQuery: "Địa điểm nổi tiếng ở Hà Nội",
		Documents:    hanoiDocs,
		Intent:       state.IntentVectorSearch,
	})

	require.NoError(t, err)
	assert.Equal(t, "Hồ Hoàn Kiếm nằm ở trung tâm Hà Nội.", out)

	require.Len(t, p.messages, 2)
	assert.Equal(t, llm.RoleSystem, p.messages[0].Role)
	assert.Contains(t, p.messages[0].Content, "Chỉ trả lời dựa trên <context>")
	last := p.messages[len(p.messages)-1].Content
	assert.Contains(t, last, "[1] Hồ Hoàn Kiếm")
	assert.Contains(t, last, "[2] Văn Miếu")
	assert.Less(t, strings.Index(last, "Hồ Hoàn Kiếm"), strings.Index(last, "Văn Miếu"))
	assert.Equal(t, 0.7, *p.opts.Temperature)
}

func TestGenerate_EmptyDocumentsAcknowledged(t *testing.T) {
	p := &recordingLLM{reply: "Mình chưa có thông tin."}

	_, err := newGenerator(p).Generate(context.Background(), Request{
		RefinedQuery: "Đảo Bé có gì?",
		Intent:       state.IntentVectorSearch,
	})

	require.NoError(t, err)
	assert.Contains(t, p.messages[len(p.messages)-1].Content, noContextNotice)
}

func TestGenerate_ChitChatHasNoContext(t *testing.T) {
	p := &recordingLLM{reply: "Chào bạn!"}

	_, err := newGenerator(p).Generate(context.Background(), Request{
		RefinedQuery: "Xin chào",
		Intent:       state.IntentChitChat,
		History: []llm.Message{
			{Role: "user", Content: "hi"},
			{Role: "model", Content: "hello"},
			{Role: "user", Content: "   "},
		},
	})

	require.NoError(t, err)
	require.Len(t, p.messages, 4, "system + 2 non-empty history + prompt")
	assert.Equal(t, llm.RoleAssistant, p.messages[2].Role)
	assert.NotContains(t, p.messages[3].Content, "<context>")
	assert.Contains(t, p.messages[0].Content, "xã giao")
}

func TestGenerate_ResampleVariesSampling(t *testing.T) {
	p := &recordingLLM{reply: "Một câu trả lời khác"}
	g := newGenerator(p)

	_, err := g.Generate(context.Background(), Request{
		RefinedQuery:   "Hà Nội có gì?",
		Documents:      hanoiDocs,
		Intent:         state.IntentVectorSearch,
		Attempt:        2,
		PreviousAnswer: "Câu trả lời cũ",
	})

	require.NoError(t, err)
	assert.InDelta(t, 1.0, *p.opts.Temperature, 1e-9)
	last := p.messages[len(p.messages)-1].Content
	assert.Contains(t, last, "<rejected_answer>\nCâu trả lời cũ")
	assert.Contains(t, last, "KHÁC")
}

func TestTemperature_Capped(t *testing.T) {
	g := newGenerator(&recordingLLM{})

	assert.Equal(t, 0.7, g.Temperature(0))
	assert.InDelta(t, 0.85, g.Temperature(1), 1e-9)
	assert.Equal(t, 1.2, g.Temperature(10))
	assert.Equal(t, 0.7, g.Temperature(-1))
}

func TestGenerate_FailuresAreProviderUnavailable(t *testing.T) {
	tests := []struct {
		name string
		p    *recordingLLM
	}{
		{"provider error", &recordingLLM{err: errors.New("boom")}},
		{"already unavailable", &recordingLLM{err: retry.ErrProviderUnavailable}},
		{"empty answer", &recordingLLM{reply: "  \n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newGenerator(tt.p).Generate(context.Background(), Request{RefinedQuery: "x", Intent: state.IntentChitChat})

			assert.Empty(t, out)
			assert.ErrorIs(t, err, retry.ErrProviderUnavailable)
		})
	}
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &recordingLLM{err: context.Canceled}

	_, err := newGenerator(p).Generate(ctx, Request{RefinedQuery: "x", Intent: state.IntentChitChat})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, retry.ErrProviderUnavailable)
}

func TestBuildContext_RespectsBudget(t *testing.T) {
	long := strings.Repeat("phở ", 500)
	docs := []state.RetrievedDocument{
		{Title: "Phở Thìn", Content: long},
		{Title: "Bún chả", Content: "ngon"},
	}

	out := BuildContext(docs, 300)

	assert.Equal(t, 300, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, "…\n"))
	assert.True(t, strings.HasPrefix(out, "[1] Phở Thìn\n"))
	assert.NotContains(t, out, "Bún chả")

	full := BuildContext(hanoiDocs, 6000)
	assert.Equal(t, "[1] Hồ Hoàn Kiếm\nHồ nằm giữa trung tâm Hà Nội.\n\n[2] Văn Miếu\nTrường đại học đầu tiên của Việt Nam.\n\n", full)
}
