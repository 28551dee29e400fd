package service

import (
	"context"
	"time"

	"travel-chatbot-be/internal/dto"
	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/pkg/llm"
	"travel-chatbot-be/pkg/rag/graph"
	"travel-chatbot-be/pkg/rag/history"
	"travel-chatbot-be/pkg/rag/transcript"
)

// ChatRunner executes one chatbot turn.
type ChatRunner interface {
	RunChatbot(ctx context.Context, req graph.TurnRequest) (*graph.TurnResult, error)
}

type IChatbotService interface {
	SendChat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	ClearHistory(ctx context.Context, sessionId string) error
}

// persistTimeout bounds the transcript and history writes after a turn.
const persistTimeout = 5 * time.Second

type chatbotService struct {
	runner         ChatRunner
	history        *history.Loader
	transcripts    transcript.Logger
	logger         logger.ILogger
	persistTimeout time.Duration
}

func NewChatbotService(
	runner ChatRunner,
	historyLoader *history.Loader,
	transcripts transcript.Logger,
	log logger.ILogger,
) IChatbotService {
	return &chatbotService{
		runner:         runner,
		history:        historyLoader,
		transcripts:    transcripts,
		logger:         log,
		persistTimeout: persistTimeout,
	}
}

func (cs *chatbotService) SendChat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	supplied := make([]llm.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		supplied = append(supplied, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages := cs.history.Load(ctx, req.SessionId, supplied)

	res, runErr := cs.runner.RunChatbot(ctx, graph.TurnRequest{
		UserQuery: req.Chat,
		SessionID: req.SessionId,
		Messages:  messages,
		UserID:    req.UserId,
	})

	if res != nil {
		logCtx, cancel := cs.persistContext(ctx)
		_ = cs.transcripts.Log(logCtx, toRecord(req, res))
		cancel()
	}
	if runErr != nil {
		return nil, runErr
	}

	if !res.SafetyViolation {
		recordCtx, cancel := cs.persistContext(ctx)
		cs.history.Record(recordCtx, req.SessionId, req.Chat, res.Generation)
		cancel()
	}

	return toResponse(req.SessionId, res), nil
}

// persistContext outlives a disconnected client but not a stalled store.
func (cs *chatbotService) persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cs.persistTimeout)
}

func (cs *chatbotService) ClearHistory(ctx context.Context, sessionId string) error {
	if err := cs.history.Forget(ctx, sessionId); err != nil {
		cs.logger.Error("CHATBOT", "Failed to clear session history", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

func toRecord(req *dto.SendChatRequest, res *graph.TurnResult) transcript.Record {
	ids := make([]string, 0, len(res.Documents))
	for _, d := range res.Documents {
		ids = append(ids, d.ID)
	}
	return transcript.Record{
		SessionID:       req.SessionId,
		UserID:          req.UserId,
		UserQuery:       req.Chat,
		RefinedQuery:    res.RefinedQuery,
		Intent:          string(res.Intent),
		Generation:      res.Generation,
		RetryCount:      res.RetryCount,
		SafetyViolation: res.SafetyViolation,
		Grade:           string(res.Grade),
		DocumentIDs:     ids,
		Timestamp:       time.Now().UTC(),
	}
}

func toResponse(sessionId string, res *graph.TurnResult) *dto.SendChatResponse {
	docs := make([]dto.RetrievedDocumentDTO, 0, len(res.Documents))
	for _, d := range res.Documents {
		docs = append(docs, dto.RetrievedDocumentDTO{
			Id:       d.ID,
			Title:    d.Title,
			Content:  d.Content,
			Score:    d.Score,
			Metadata: d.Metadata,
		})
	}
	return &dto.SendChatResponse{
		SessionId:       sessionId,
		Intent:          string(res.Intent),
		RefinedQuery:    res.RefinedQuery,
		Reply:           res.Generation,
		RetryCount:      res.RetryCount,
		SafetyViolation: res.SafetyViolation,
		SafetyCategory:  res.SafetyCategory,
		Grade:           string(res.Grade),
		Documents:       docs,
	}
}
