package graph

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/pkg/guardrail"
	"travel-chatbot-be/pkg/llm"
	"travel-chatbot-be/pkg/rag/grader"
	"travel-chatbot-be/pkg/rag/intent"
	"travel-chatbot-be/pkg/rag/response"
	"travel-chatbot-be/pkg/rag/state"
	"travel-chatbot-be/pkg/retry"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	result  intent.Result
	calls   int
	history []llm.Message
}

func (f *fakeResolver) ClassifyAndRefine(ctx context.Context, query string, history []llm.Message) intent.Result {
	f.calls++
	f.history = history
	return f.result
}

type fakeRetriever struct {
	docs      []state.RetrievedDocument
	err       error
	calls     int
	lastQuery string
	lastK     int
}

func (f *fakeRetriever) Search(ctx context.Context, query string, k int) ([]state.RetrievedDocument, error) {
	f.calls++
	f.lastQuery = query
	f.lastK = k
	return f.docs, f.err
}

type fakeGenerator struct {
	errs     map[int]error
	calls    int
	requests []response.Request
	onCall   func(call int)
}

func (f *fakeGenerator) Generate(ctx context.Context, req response.Request) (string, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.onCall != nil {
		f.onCall(f.calls)
	}
	if err, ok := f.errs[f.calls]; ok {
		return "", err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return fmt.Sprintf("answer %d", f.calls), nil
}

type fakeGrader struct {
	grades []state.Grade
	calls  int
}

func (f *fakeGrader) Grade(ctx context.Context, generation, refinedQuery string, documents []state.RetrievedDocument) grader.Verdict {
	f.calls++
	g := state.GradeNotUseful
	if f.calls <= len(f.grades) {
		g = f.grades[f.calls-1]
	}
	return grader.Verdict{Grade: g}
}

type fixture struct {
	resolver  *fakeResolver
	retriever *fakeRetriever
	generator *fakeGenerator
	grader    *fakeGrader
}

func (f *fixture) modelCalls() int {
	return f.resolver.calls + f.retriever.calls + f.generator.calls + f.grader.calls
}

var hanoiDocs = []state.RetrievedDocument{
	{ID: "d1", Title: "Hồ Hoàn Kiếm", Content: "Hồ ở trung tâm Hà Nội.", Score: 0.9},
	{ID: "d2", Title: "Văn Miếu", Content: "Trường đại học đầu tiên.", Score: 0.8},
}

func newFixture(t *testing.T, in state.Intent) *fixture {
	t.Helper()
	return &fixture{
		resolver:  &fakeResolver{result: intent.Result{Intent: in, RefinedQuery: "Địa điểm du lịch nổi tiếng ở Hà Nội"}},
		retriever: &fakeRetriever{docs: hanoiDocs},
		generator: &fakeGenerator{},
		grader:    &fakeGrader{},
	}
}

func newGraph(t *testing.T, f *fixture, maxRetries int) *Graph {
	t.Helper()
	checker, err := guardrail.NewChecker("")
	require.NoError(t, err)

	g, err := New(Deps{
		Guardrail: checker,
		Intent:    f.resolver,
		Retriever: f.retriever,
		Generator: f.generator,
		Grader:    f.grader,
		Logger:    logger.NewNopLogger(),
	}, Config{MaxGraderRetries: maxRetries, TopK: 5, HistoryLimit: 10})
	require.NoError(t, err)
	return g
}

func run(t *testing.T, g *Graph, query string) (*TurnResult, error) {
	t.Helper()
	return g.RunChatbot(context.Background(), TurnRequest{UserQuery: query, SessionID: "s1"})
}

func TestRunChatbot_ProfanityShortCircuits(t *testing.T) {
	f := newFixture(t, state.IntentVectorSearch)
	g := newGraph(t, f, 3)
	before := testutil.ToFloat64(turnsTotal.WithLabelValues(outcomeRefused, ""))

	res, err := run(t, g, "dm thằng ngu")

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.SafetyViolation)
	assert.Equal(t, string(guardrail.CategoryProfanity), res.SafetyCategory)
	assert.Contains(t, res.Generation, "ngôn ngữ không phù hợp")
	assert.Empty(t, res.Intent)
	assert.Empty(t, res.Documents)
	assert.Zero(t, res.RetryCount)
	assert.Zero(t, f.modelCalls())
	assert.Equal(t, before+1, testutil.ToFloat64(turnsTotal.WithLabelValues(outcomeRefused, "")))
}

func TestRunChatbot_PIIShortCircuits(t *testing.T) {
	f := newFixture(t, state.IntentVectorSearch)
	g := newGraph(t, f, 3)

	res, err := run(t, g, "Gọi tôi số 0912345678")

	require.NoError(t, err)
	assert.True(t, res.SafetyViolation)
	assert.Equal(t, guardrail.PIIMessage, res.Generation)
	assert.Zero(t, f.modelCalls())
}

func TestRunChatbot_ChitChatSkipsRetrieval(t *testing.T) {
	f := newFixture(t, state.IntentChitChat)
	f.resolver.result.RefinedQuery = "Xin chào, bạn khỏe không?"
	f.grader.grades = []state.Grade{state.GradeUseful}
	g := newGraph(t, f, 3)

	res, err := run(t, g, "Xin chào, bạn khỏe không?")

	require.NoError(t, err)
	assert.Equal(t, state.IntentChitChat, res.Intent)
	assert.NotNil(t, res.Documents)
	assert.Empty(t, res.Documents)
	assert.Zero(t, f.retriever.calls)
	assert.Equal(t, 1, f.generator.calls)
	assert.Equal(t, 1, f.grader.calls)
	assert.Equal(t, state.GradeUseful, res.Grade)
	assert.Equal(t, "answer 1", res.Generation)
}

func TestRunChatbot_VectorSearchUsefulFirstTry(t *testing.T) {
	f := newFixture(t, state.IntentVectorSearch)
	f.grader.grades = []state.Grade{state.GradeUseful}
	g := newGraph(t, f, 3)

	res, err := run(t, g, "Địa điểm du lịch nổi tiếng ở Hà Nội")

	require.NoError(t, err)
	assert.Equal(t, state.IntentVectorSearch, res.Intent)
	assert.NotEmpty(t, res.RefinedQuery)
	assert.Equal(t, hanoiDocs, res.Documents)
	assert.Equal(t, 1, f.retriever.calls)
	assert.Equal(t, res.RefinedQuery, f.retriever.lastQuery)
	assert.Equal(t, 5, f.retriever.lastK)
	assert.Zero(t, res.RetryCount)
	assert.Equal(t, hanoiDocs, f.generator.requests[0].Documents)
}

func TestRunChatbot_ResamplesUntilUseful(t *testing.T) {
	f := newFixture(t, state.IntentVectorSearch)
	f.grader.grades = []state.Grade{state.GradeNotUseful, state.GradeUseful}
	g := newGraph(t, f, 3)

	res, err := run(t, g, "Địa điểm du lịch nổi tiếng ở Hà Nội")

	require.NoError(t, err)
	assert.Equal(t, 1, res.RetryCount)
	assert.Equal(t, "answer 2", res.Generation)
	assert.Equal(t, state.GradeUseful, res.Grade)
	assert.Equal(t, 1, f.retriever.calls)
	assert.Equal(t, 2, f.generator.calls)
	assert.Equal(t, 2, f.grader.calls)

	second := f.generator.requests[1]
	assert.Equal(t, 1, second.Attempt)
	assert.Equal(t, "answer 1", second.PreviousAnswer)
	assert.Equal(t, f.generator.requests[0].Documents, second.Documents)
	assert.Equal(t, f.generator.requests[0].RefinedQuery, second.RefinedQuery)
}

func TestRunChatbot_RetryBudgetIsBounded(t *testing.T) {
	for maxRetries := 0; maxRetries <= 4; maxRetries++ {
		t.Run(fmt.Sprintf("max=%d", maxRetries), func(t *testing.T) {
			f := newFixture(t, state.IntentVectorSearch)
			g := newGraph(t, f, maxRetries)

			res, err := run(t, g, "Địa điểm du lịch nổi tiếng ở Hà Nội")

			require.NoError(t, err)
			assert.Equal(t, maxRetries, res.RetryCount)
			assert.LessOrEqual(t, res.RetryCount, maxRetries)
			assert.NotEmpty(t, res.Generation)
			assert.Equal(t, fmt.Sprintf("answer %d", maxRetries+1), res.Generation)
			assert.Equal(t, state.GradeNone, res.Grade)
			assert.Equal(t, 1, f.retriever.calls)
			assert.Equal(t, maxRetries+1, f.generator.calls)
			assert.Equal(t, maxRetries, f.grader.calls)
			for i, req := range f.generator.requests {
				assert.Equal(t, i, req.Attempt)
			}
		})
	}
}

func TestRunChatbot_FirstGenerationFailure(t *testing.T) {
	f := newFixture(t, state.IntentVectorSearch)
	f.generator.errs = map[int]error{1: fmt.Errorf("%w after 4 attempts: 503", retry.ErrProviderUnavailable)}
	g := newGraph(t, f, 3)

	res, err := run(t, g, "Địa điểm du lịch nổi tiếng ở Hà Nội")

	require.Error(t, err)
	assert.True(t, errors.Is(err, retry.ErrProviderUnavailable))
	require.NotNil(t, res)
	assert.Equal(t, response.ApologyMessage, res.Generation)
	assert.Equal(t, state.IntentVectorSearch, res.Intent)
	assert.Zero(t, f.grader.calls)
}

func TestRunChatbot_ResampleFailureKeepsPreviousAnswer(t *testing.T) {
	f := newFixture(t, state.IntentVectorSearch)
	f.generator.errs = map[int]error{2: retry.ErrProviderUnavailable}
	g := newGraph(t, f, 3)

	res, err := run(t, g, "Địa điểm du lịch nổi tiếng ở Hà Nội")

	require.NoError(t, err)
	assert.Equal(t, "answer 1", res.Generation)
	assert.Equal(t, 1, res.RetryCount)
	assert.Equal(t, state.GradeNotUseful, res.Grade)
	assert.Equal(t, 1, f.grader.calls)
}

func TestRunChatbot_RetrievalFailureAnswersWithoutContext(t *testing.T) {
	f := newFixture(t, state.IntentVectorSearch)
	f.retriever.err = errors.New("connection refused")
	f.retriever.docs = nil
	f.grader.grades = []state.Grade{state.GradeUseful}
	g := newGraph(t, f, 3)

	res, err := run(t, g, "Địa điểm du lịch nổi tiếng ở Hà Nội")

	require.NoError(t, err)
	assert.NotNil(t, res.Documents)
	assert.Empty(t, res.Documents)
	assert.Equal(t, 1, f.generator.calls)
	assert.Empty(t, f.generator.requests[0].Documents)
}

func TestRunChatbot_BlankRefinedQueryFallsBackToUserQuery(t *testing.T) {
	f := newFixture(t, state.IntentVectorSearch)
	f.resolver.result.RefinedQuery = "  "
	f.grader.grades = []state.Grade{state.GradeUseful}
	g := newGraph(t, f, 3)

	res, err := run(t, g, "Phở ngon ở đâu?")

	require.NoError(t, err)
	assert.Equal(t, "Phở ngon ở đâu?", res.RefinedQuery)
	assert.Equal(t, "Phở ngon ở đâu?", f.retriever.lastQuery)
}

func TestRunChatbot_HistoryIsNormalized(t *testing.T) {
	f := newFixture(t, state.IntentChitChat)
	f.grader.grades = []state.Grade{state.GradeUseful}
	g := newGraph(t, f, 3)

	_, err := g.RunChatbot(context.Background(), TurnRequest{
		UserQuery: "Cảm ơn nhé",
		SessionID: "s1",
		Messages: []llm.Message{
			{Role: "user", Content: "Chùa Một Cột ở đâu?"},
			{Role: "model", Content: "Ở quận Ba Đình, Hà Nội."},
			{Role: "user", Content: ""},
		},
	})

	require.NoError(t, err)
	require.Len(t, f.resolver.history, 2)
	assert.Equal(t, llm.RoleAssistant, f.resolver.history[1].Role)
	assert.Equal(t, f.resolver.history, f.generator.requests[0].History)
}

func TestRunChatbot_CancelledBeforeStart(t *testing.T) {
	f := newFixture(t, state.IntentVectorSearch)
	g := newGraph(t, f, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := g.RunChatbot(ctx, TurnRequest{UserQuery: "Hội An có gì?", SessionID: "s1"})

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.Generation)
	assert.Zero(t, f.modelCalls())
}

func TestRunChatbot_CancelledDuringGeneration(t *testing.T) {
	f := newFixture(t, state.IntentVectorSearch)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.generator.onCall = func(int) { cancel() }
	g := newGraph(t, f, 3)

	res, err := g.RunChatbot(ctx, TurnRequest{UserQuery: "Hội An có gì?", SessionID: "s1"})

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 1, f.generator.calls)
	assert.Zero(t, f.grader.calls)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Deps{}, DefaultConfig())
	assert.Error(t, err)

	f := newFixture(t, state.IntentChitChat)
	checker, err := guardrail.NewChecker("")
	require.NoError(t, err)
	_, err = New(Deps{
		Guardrail: checker,
		Intent:    f.resolver,
		Retriever: f.retriever,
		Generator: f.generator,
		Grader:    f.grader,
	}, Config{MaxGraderRetries: -1})
	assert.Error(t, err)
}

func TestNodeString(t *testing.T) {
	assert.Equal(t, "guardrail", NodeGuardrail.String())
	assert.Equal(t, "resample", NodeResample.String())
	assert.Equal(t, "unknown", Node(99).String())
}
