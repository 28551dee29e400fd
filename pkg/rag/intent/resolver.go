package intent

import (
	"context"
	"fmt"
	"strings"

	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/pkg/llm"
	"travel-chatbot-be/pkg/rag/state"
)

// historyWindow is how many trailing messages the classifier sees.
const historyWindow = 6

// Result is the classification of one turn.
type Result struct {
	Intent       state.Intent `json:"intent"`
	RefinedQuery string       `json:"refined_query"`
	Reasoning    string       `json:"reasoning"`
	// Fallback is set when the model failed or answered garbage.
	Fallback bool `json:"-"`
}

type modelOutput struct {
	Intent       string `json:"intent"`
	RefinedQuery string `json:"refined_query"`
	Reasoning    string `json:"reasoning"`
}

// Resolver classifies a turn and rewrites it into a standalone query.
type Resolver struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

// NewResolver creates a new intent resolver
func NewResolver(llmProvider llm.LLMProvider, log logger.ILogger) *Resolver {
	return &Resolver{
		llmProvider: llmProvider,
		logger:      log,
	}
}

// ClassifyAndRefine never returns an error: model failures degrade to CHIT_CHAT
// with the query unchanged.
func (r *Resolver) ClassifyAndRefine(ctx context.Context, query string, history []llm.Message) Result {
	prompt := r.buildPrompt(query, history)

	response, err := r.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		r.logger.Error("INTENT", "Intent resolution failed, falling back to CHIT_CHAT", map[string]interface{}{
			"error": err.Error(),
		})
		return fallback(query, "model call failed")
	}

	result, err := parse(response)
	if err != nil {
		r.logger.Warn("INTENT", "Intent parsing failed, falling back to CHIT_CHAT", map[string]interface{}{
			"error":    err.Error(),
			"response": truncate(response, 300),
		})
		return fallback(query, "malformed model output")
	}

	// Nothing to resolve against.
	if len(history) == 0 || strings.TrimSpace(result.RefinedQuery) == "" {
		result.RefinedQuery = query
	}

	r.logger.Info("INTENT", "Resolved intent", map[string]interface{}{
		"intent":        string(result.Intent),
		"refined_query": result.RefinedQuery,
		"reasoning":     result.Reasoning,
	})
	return result
}

func parse(response string) (Result, error) {
	var out modelOutput
	if err := llm.DecodeJSON(response, &out); err != nil {
		return Result{}, err
	}
	parsed, ok := state.ParseIntent(out.Intent)
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown intent %q", llm.ErrMalformedOutput, out.Intent)
	}
	return Result{
		Intent:       parsed,
		RefinedQuery: strings.TrimSpace(out.RefinedQuery),
		Reasoning:    out.Reasoning,
	}, nil
}

func fallback(query, reason string) Result {
	return Result{
		Intent:       state.IntentChitChat,
		RefinedQuery: query,
		Reasoning:    "Fallback: " + reason,
		Fallback:     true,
	}
}

func (r *Resolver) buildPrompt(query string, history []llm.Message) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are the intent analyzer of a Vietnamese travel assistant.\n")
	prompt.WriteString("You do NOT answer questions. You classify the user's message and rewrite it as a standalone search query.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<conversation_history>\n")
	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	if len(recent) == 0 {
		prompt.WriteString("(empty)\n")
	}
	for _, msg := range recent {
		prompt.WriteString(fmt.Sprintf("%s: %s\n", strings.ToUpper(llm.NormalizeRole(msg.Role)), msg.Content))
	}
	prompt.WriteString("</conversation_history>\n\n")

	prompt.WriteString("<user_query>\n")
	prompt.WriteString(query)
	prompt.WriteString("\n</user_query>\n\n")

	prompt.WriteString("<intent_definitions>\n")
	prompt.WriteString("VECTOR_SEARCH: the user wants factual or practical information\n")
	prompt.WriteString("  - places, attractions, food, recommendations, opening hours, prices, weather, how to get there\n")
	prompt.WriteString("  - follow-up questions about a place mentioned earlier ('Nó nằm ở đâu?', 'Khi nào nên đi?')\n")
	prompt.WriteString("CHIT_CHAT: greetings, thanks, small talk, questions about the assistant itself\n")
	prompt.WriteString("  - 'Xin chào', 'Cảm ơn bạn', 'Bạn khỏe không?', 'Bạn là ai?'\n")
	prompt.WriteString("</intent_definitions>\n\n")

	prompt.WriteString("<refinement_rules>\n")
	prompt.WriteString("- Replace pronouns and references ('nó', 'ở đó', 'chỗ này', 'it', 'there') with the exact name from the history.\n")
	prompt.WriteString("- Fill in omitted subjects ('khi nào nên đi?' -> 'Khi nào nên đi <place>?').\n")
	prompt.WriteString("- Keep the user's language. Do not add facts that are not in the conversation.\n")
	prompt.WriteString("- If the query is already self-contained or the history is empty, return it unchanged.\n")
	prompt.WriteString("</refinement_rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"intent\": \"VECTOR_SEARCH|CHIT_CHAT\",\n")
	prompt.WriteString("  \"refined_query\": \"standalone query\",\n")
	prompt.WriteString("  \"reasoning\": \"Brief explanation\"\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
