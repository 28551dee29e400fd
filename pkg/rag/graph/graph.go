package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/pkg/guardrail"
	"travel-chatbot-be/pkg/llm"
	"travel-chatbot-be/pkg/rag/grader"
	"travel-chatbot-be/pkg/rag/history"
	"travel-chatbot-be/pkg/rag/intent"
	"travel-chatbot-be/pkg/rag/response"
	"travel-chatbot-be/pkg/rag/state"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type SafetyChecker interface {
	Inspect(text string) guardrail.Result
}

type IntentResolver interface {
	ClassifyAndRefine(ctx context.Context, query string, history []llm.Message) intent.Result
}

type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]state.RetrievedDocument, error)
}

type AnswerGenerator interface {
	Generate(ctx context.Context, req response.Request) (string, error)
}

type AnswerGrader interface {
	Grade(ctx context.Context, generation, refinedQuery string, documents []state.RetrievedDocument) grader.Verdict
}

// Deps are the collaborators of a graph, built once at startup.
type Deps struct {
	Guardrail SafetyChecker
	Intent    IntentResolver
	Retriever Retriever
	Generator AnswerGenerator
	Grader    AnswerGrader
	Logger    logger.ILogger
	Tracer    trace.Tracer
}

type Config struct {
	MaxGraderRetries int
	TopK             int
	HistoryLimit     int
}

func DefaultConfig() Config {
	return Config{
		MaxGraderRetries: 3,
		TopK:             5,
		HistoryLimit:     10,
	}
}

type TurnRequest struct {
	UserQuery string
	SessionID string
	Messages  []llm.Message
	UserID    *int
}

// TurnResult is the outcome of one turn. Grade refers to the returned
// generation and is empty when that generation was never graded.
type TurnResult struct {
	Intent          state.Intent
	RefinedQuery    string
	Documents       []state.RetrievedDocument
	Generation      string
	RetryCount      int
	SafetyViolation bool
	SafetyCategory  string
	Grade           state.Grade
}

// Graph runs the adaptive RAG flow for a single turn:
// guardrail, intent, retrieve, then generate and grade with bounded resampling.
type Graph struct {
	deps   Deps
	config Config
}

func New(deps Deps, config Config) (*Graph, error) {
	if deps.Guardrail == nil || deps.Intent == nil || deps.Retriever == nil || deps.Generator == nil || deps.Grader == nil {
		return nil, errors.New("graph: guardrail, intent, retriever, generator and grader are required")
	}
	if config.MaxGraderRetries < 0 {
		return nil, fmt.Errorf("graph: negative max grader retries %d", config.MaxGraderRetries)
	}
	if config.TopK <= 0 {
		config.TopK = DefaultConfig().TopK
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = DefaultConfig().HistoryLimit
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	if deps.Tracer == nil {
		deps.Tracer = otel.Tracer("travel-chatbot/graph")
	}
	return &Graph{deps: deps, config: config}, nil
}

// RunChatbot executes one turn. The result is always non-nil. An error is
// returned only when the first generation failed, the context was cancelled,
// or a node left the state inconsistent.
func (g *Graph) RunChatbot(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	ctx, span := g.deps.Tracer.Start(ctx, "chatbot.turn", trace.WithAttributes(
		attribute.String("session_id", req.SessionID),
	))
	defer span.End()

	started := time.Now()
	st := state.New(req.UserQuery, req.SessionID, req.UserID, history.Clean(req.Messages, g.config.HistoryLimit))

	var runErr error
	node := NodeStart
	for node != NodeEnd {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		next, err := g.execute(ctx, node, st)
		if verr := st.Validate(g.config.MaxGraderRetries); verr != nil {
			g.deps.Logger.Error("GRAPH", "State invariant violated", map[string]interface{}{
				"node":  node.String(),
				"error": verr.Error(),
			})
			if err == nil {
				err = verr
			}
		}
		if err != nil {
			runErr = err
			break
		}
		node = next
	}

	outcome := g.outcome(st, runErr)
	if runErr != nil && strings.TrimSpace(st.Generation) == "" {
		st.Generation = response.ApologyMessage
	}

	turnsTotal.WithLabelValues(outcome, string(st.Intent)).Inc()
	turnRetries.Observe(float64(st.RetryCount))
	span.SetAttributes(
		attribute.String("outcome", outcome),
		attribute.String("intent", string(st.Intent)),
		attribute.Int("retry_count", st.RetryCount),
		attribute.Int("documents", len(st.Documents)),
	)
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
	}

	details := map[string]interface{}{
		"session_id":  st.SessionID,
		"outcome":     outcome,
		"intent":      string(st.Intent),
		"retry_count": st.RetryCount,
		"documents":   len(st.Documents),
		"duration_ms": time.Since(started).Milliseconds(),
	}
	if runErr != nil {
		details["error"] = runErr.Error()
		g.deps.Logger.Error("GRAPH", "Turn failed", details)
	} else {
		g.deps.Logger.Info("GRAPH", "Turn completed", details)
	}

	return result(st), runErr
}

func (g *Graph) execute(ctx context.Context, node Node, st *state.AgentState) (Node, error) {
	if node == NodeStart {
		return NodeGuardrail, nil
	}

	ctx, span := g.deps.Tracer.Start(ctx, "chatbot."+node.String())
	defer span.End()

	start := time.Now()
	next, err := g.step(ctx, node, st)
	nodeLatency.WithLabelValues(node.String()).Observe(time.Since(start).Seconds())

	span.SetAttributes(attribute.String("next", next.String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return next, err
}

func (g *Graph) step(ctx context.Context, node Node, st *state.AgentState) (Node, error) {
	switch node {
	case NodeGuardrail:
		verdict := g.deps.Guardrail.Inspect(st.UserQuery)
		if !verdict.Safe {
			st.SafetyViolation = true
			st.SafetyCategory = string(verdict.Category)
			st.Generation = verdict.Message
			g.deps.Logger.Warn("GRAPH", "Query rejected by guardrail", map[string]interface{}{
				"session_id": st.SessionID,
				"category":   st.SafetyCategory,
			})
			return NodeEnd, nil
		}
		return NodeIntent, nil

	case NodeIntent:
		res := g.deps.Intent.ClassifyAndRefine(ctx, st.UserQuery, st.History)
		st.Intent = res.Intent
		st.RefinedQuery = strings.TrimSpace(res.RefinedQuery)
		if st.RefinedQuery == "" {
			st.RefinedQuery = strings.TrimSpace(st.UserQuery)
		}
		if st.Intent != state.IntentVectorSearch && st.Intent != state.IntentChitChat {
			st.Intent = state.IntentChitChat
		}
		if st.Intent == state.IntentVectorSearch && st.RefinedQuery == "" {
			st.Intent = state.IntentChitChat
		}
		if st.Intent == state.IntentVectorSearch {
			return NodeRetrieve, nil
		}
		return NodeGenerate, nil

	case NodeRetrieve:
		docs, err := g.deps.Retriever.Search(ctx, st.RefinedQuery, g.config.TopK)
		if err != nil {
			if ctx.Err() != nil {
				return NodeEnd, ctx.Err()
			}
			g.deps.Logger.Warn("GRAPH", "Retrieval failed, answering without context", map[string]interface{}{
				"session_id": st.SessionID,
				"error":      err.Error(),
			})
			docs = nil
		}
		if docs == nil {
			docs = []state.RetrievedDocument{}
		}
		st.Documents = docs
		return NodeGenerate, nil

	case NodeGenerate:
		answer, err := g.deps.Generator.Generate(ctx, response.Request{
			RefinedQuery:   st.RefinedQuery,
			Documents:      st.Documents,
			Intent:         st.Intent,
			History:        st.History,
			Attempt:        st.RetryCount,
			PreviousAnswer: st.Generation,
		})
		if err != nil {
			if ctx.Err() != nil {
				return NodeEnd, ctx.Err()
			}
			if st.Generation == "" {
				st.Generation = response.ApologyMessage
				return NodeEnd, fmt.Errorf("generation failed: %w", err)
			}
			// Keep the previous answer as best effort.
			g.deps.Logger.Warn("GRAPH", "Resample failed, keeping previous answer", map[string]interface{}{
				"session_id":  st.SessionID,
				"retry_count": st.RetryCount,
				"error":       err.Error(),
			})
			return NodeEnd, nil
		}
		st.Generation = answer
		st.Grade = state.GradeNone
		if st.RetryCount >= g.config.MaxGraderRetries {
			return NodeEnd, nil
		}
		return NodeGrade, nil

	case NodeGrade:
		verdict := g.deps.Grader.Grade(ctx, st.Generation, st.RefinedQuery, st.Documents)
		st.Grade = verdict.Grade
		if st.Grade == state.GradeUseful {
			return NodeEnd, nil
		}
		return NodeResample, nil

	case NodeResample:
		st.RetryCount++
		g.deps.Logger.Info("GRAPH", "Resampling answer", map[string]interface{}{
			"session_id":  st.SessionID,
			"retry_count": st.RetryCount,
		})
		return NodeGenerate, nil

	default:
		return NodeEnd, fmt.Errorf("graph: unexpected node %s", node)
	}
}

func (g *Graph) outcome(st *state.AgentState, err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCancelled
	case err != nil:
		return outcomeFailed
	case st.SafetyViolation:
		return outcomeRefused
	case st.Grade == state.GradeUseful:
		return outcomeUseful
	case st.Grade == state.GradeNotUseful:
		return outcomeNotUseful
	default:
		return outcomeBestEffort
	}
}

func result(st *state.AgentState) *TurnResult {
	docs := make([]state.RetrievedDocument, len(st.Documents))
	copy(docs, st.Documents)
	return &TurnResult{
		Intent:          st.Intent,
		RefinedQuery:    st.RefinedQuery,
		Documents:       docs,
		Generation:      st.Generation,
		RetryCount:      st.RetryCount,
		SafetyViolation: st.SafetyViolation,
		SafetyCategory:  st.SafetyCategory,
		Grade:           st.Grade,
	}
}
