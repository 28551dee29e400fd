package response

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/pkg/llm"
	"travel-chatbot-be/pkg/rag/state"
	"travel-chatbot-be/pkg/retry"
)

// Config controls sampling and context size.
type Config struct {
	BaseTemperature   float64
	TemperatureStep   float64
	MaxTemperature    float64
	ContextCharBudget int
	MaxTokens         int
}

func DefaultConfig() Config {
	return Config{
		BaseTemperature:   0.7,
		TemperatureStep:   0.15,
		MaxTemperature:    1.2,
		ContextCharBudget: 6000,
		MaxTokens:         1024,
	}
}

// Request is everything the generator needs for one attempt.
type Request struct {
	RefinedQuery string
	Documents    []state.RetrievedDocument
	Intent       state.Intent
	History      []llm.Message
	// Attempt is 0 for the first answer and n for the n-th resample.
	Attempt        int
	PreviousAnswer string
}

// Generator creates answers grounded in retrieved documents
type Generator struct {
	llmProvider llm.LLMProvider
	config      Config
	logger      logger.ILogger
}

// NewGenerator creates a new response generator
func NewGenerator(llmProvider llm.LLMProvider, config Config, log logger.ILogger) *Generator {
	if config.ContextCharBudget <= 0 {
		config.ContextCharBudget = DefaultConfig().ContextCharBudget
	}
	if config.MaxTemperature <= 0 {
		config.MaxTemperature = DefaultConfig().MaxTemperature
	}
	return &Generator{
		llmProvider: llmProvider,
		config:      config,
		logger:      log,
	}
}

// Temperature rises with each resample so a rejected answer is not repeated.
func (g *Generator) Temperature(attempt int) float64 {
	if attempt < 0 {
		attempt = 0
	}
	t := g.config.BaseTemperature + g.config.TemperatureStep*float64(attempt)
	if t > g.config.MaxTemperature {
		t = g.config.MaxTemperature
	}
	return t
}

// Generate produces one answer. Provider failures and empty replies are returned as
// errors wrapping retry.ErrProviderUnavailable, never as an empty string.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	messages := g.BuildMessages(req)
	temperature := g.Temperature(req.Attempt)

	opts := []llm.Option{llm.WithTemperature(temperature)}
	if g.config.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(g.config.MaxTokens))
	}

	answer, err := g.llmProvider.Chat(ctx, messages, opts...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		g.logger.Error("GENERATOR", "LLM generation failed", map[string]interface{}{
			"error":   err.Error(),
			"attempt": req.Attempt,
		})
		if errors.Is(err, retry.ErrProviderUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", retry.ErrProviderUnavailable, err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: model returned an empty answer", retry.ErrProviderUnavailable)
	}

	g.logger.Info("GENERATOR", "Answer generated", map[string]interface{}{
		"intent":      string(req.Intent),
		"documents":   len(req.Documents),
		"attempt":     req.Attempt,
		"temperature": temperature,
	})
	return answer, nil
}

// BuildMessages lays out system rules, prior turns and the final grounded question.
func (g *Generator) BuildMessages(req Request) []llm.Message {
	messages := make([]llm.Message, 0, len(req.History)+2)

	system := systemPersona + "\n\n" + chitChatRules
	if req.Intent == state.IntentVectorSearch {
		system = systemPersona + "\n\n" + groundingRules
	}
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})

	for _, msg := range req.History {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		messages = append(messages, llm.Message{Role: llm.NormalizeRole(msg.Role), Content: msg.Content})
	}

	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: g.buildPrompt(req)})
	return messages
}

func (g *Generator) buildPrompt(req Request) string {
	var prompt strings.Builder

	if req.Intent == state.IntentVectorSearch {
		prompt.WriteString("<context>\n")
		if len(req.Documents) == 0 {
			prompt.WriteString(noContextNotice)
			prompt.WriteString("\nHãy cho người dùng biết bạn chưa có thông tin về câu hỏi này.\n")
		} else {
			prompt.WriteString(BuildContext(req.Documents, g.config.ContextCharBudget))
		}
		prompt.WriteString("</context>\n\n")
	}

	if req.Attempt > 0 && strings.TrimSpace(req.PreviousAnswer) != "" {
		prompt.WriteString("<rejected_answer>\n")
		prompt.WriteString(req.PreviousAnswer)
		prompt.WriteString("\n</rejected_answer>\n")
		prompt.WriteString("Câu trả lời trên chưa đạt yêu cầu. Hãy viết một câu trả lời KHÁC, bám sát câu hỏi hơn")
		if req.Intent == state.IntentVectorSearch {
			prompt.WriteString(" và chỉ dùng thông tin trong <context>")
		}
		prompt.WriteString(". Không lặp lại cách diễn đạt cũ.\n\n")
	}

	prompt.WriteString("Câu hỏi: ")
	prompt.WriteString(req.RefinedQuery)
	return prompt.String()
}

// BuildContext renders documents as "[n] Title\nContent" blocks in relevance order,
// cut to budget runes.
func BuildContext(docs []state.RetrievedDocument, budget int) string {
	var b strings.Builder
	remaining := budget

	for i, doc := range docs {
		block := fmt.Sprintf("[%d] %s\n%s\n\n", i+1, doc.Title, strings.TrimSpace(doc.Content))
		blockRunes := []rune(block)
		if len(blockRunes) <= remaining {
			b.WriteString(block)
			remaining -= len(blockRunes)
			continue
		}
		// Partial block only if the header and some content still fit.
		header := fmt.Sprintf("[%d] %s\n", i+1, doc.Title)
		if remaining > len([]rune(header))+20 {
			b.WriteString(string(blockRunes[:remaining-2]))
			b.WriteString("…\n")
		}
		break
	}
	return b.String()
}
