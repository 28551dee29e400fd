package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/pkg/llm"
	"travel-chatbot-be/pkg/rag/response"
	"travel-chatbot-be/pkg/rag/state"
)

// Verdict is the grader's judgement of one generation.
type Verdict struct {
	Grade    state.Grade
	Grounded bool
	Relevant bool
	Reason   string
}

// flag accepts yes/no, true/false, 1/0 from the model, as string or JSON bool.
type flag struct {
	value bool
	set   bool
}

func (f *flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		f.value, f.set = b, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported verdict value %s", string(data))
		}
		f.value, f.set = n != 0, true
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "có", "co", "pass":
		f.value, f.set = true, true
	case "no", "n", "false", "0", "không", "khong", "fail":
		f.value, f.set = false, true
	default:
		return fmt.Errorf("unsupported verdict value %q", s)
	}
	return nil
}

type modelVerdict struct {
	Grounded flag   `json:"grounded"`
	Relevant flag   `json:"relevant"`
	Reason   string `json:"reason"`
}

// Grader scores an answer for groundedness and relevance in one model call.
type Grader struct {
	llmProvider       llm.LLMProvider
	contextCharBudget int
	logger            logger.ILogger
}

func NewGrader(llmProvider llm.LLMProvider, contextCharBudget int, log logger.ILogger) *Grader {
	if contextCharBudget <= 0 {
		contextCharBudget = response.DefaultConfig().ContextCharBudget
	}
	return &Grader{
		llmProvider:       llmProvider,
		contextCharBudget: contextCharBudget,
		logger:            log,
	}
}

// Grade returns USEFUL only when the answer is relevant and, if documents were
// supplied, grounded in them. Any failure yields NOT_USEFUL.
func (g *Grader) Grade(ctx context.Context, generation, refinedQuery string, documents []state.RetrievedDocument) Verdict {
	if strings.TrimSpace(generation) == "" {
		return Verdict{Grade: state.GradeNotUseful, Reason: "empty generation"}
	}

	prompt := g.buildPrompt(generation, refinedQuery, documents)
	raw, err := g.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		g.logger.Error("GRADER", "Grading call failed, defaulting to NOT_USEFUL", map[string]interface{}{
			"error": err.Error(),
		})
		return Verdict{Grade: state.GradeNotUseful, Reason: "grader unavailable"}
	}

	verdict, err := parse(raw, len(documents) > 0)
	if err != nil {
		g.logger.Warn("GRADER", "Malformed grader output, defaulting to NOT_USEFUL", map[string]interface{}{
			"error":  err.Error(),
			"output": raw,
		})
		return Verdict{Grade: state.GradeNotUseful, Reason: "malformed grader output"}
	}

	g.logger.Info("GRADER", "Answer graded", map[string]interface{}{
		"grade":    string(verdict.Grade),
		"grounded": verdict.Grounded,
		"relevant": verdict.Relevant,
	})
	return verdict
}

func parse(raw string, needsGrounding bool) (Verdict, error) {
	var mv modelVerdict
	if err := llm.DecodeJSON(raw, &mv); err != nil {
		return Verdict{}, err
	}
	if !mv.Relevant.set {
		return Verdict{}, fmt.Errorf("%w: missing relevant", llm.ErrMalformedOutput)
	}

	grounded := true
	if needsGrounding {
		if !mv.Grounded.set {
			return Verdict{}, fmt.Errorf("%w: missing grounded", llm.ErrMalformedOutput)
		}
		grounded = mv.Grounded.value
	}

	v := Verdict{
		Grade:    state.GradeNotUseful,
		Grounded: grounded,
		Relevant: mv.Relevant.value,
		Reason:   mv.Reason,
	}
	if v.Grounded && v.Relevant {
		v.Grade = state.GradeUseful
	}
	return v, nil
}

func (g *Grader) buildPrompt(generation, refinedQuery string, documents []state.RetrievedDocument) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are a strict grader for a travel assistant. You do NOT answer the question.\n")
	prompt.WriteString("</system>\n\n")

	if len(documents) > 0 {
		prompt.WriteString("<documents>\n")
		prompt.WriteString(response.BuildContext(documents, g.contextCharBudget))
		prompt.WriteString("</documents>\n\n")
	}

	prompt.WriteString("<question>\n")
	prompt.WriteString(refinedQuery)
	prompt.WriteString("\n</question>\n\n")

	prompt.WriteString("<answer>\n")
	prompt.WriteString(generation)
	prompt.WriteString("\n</answer>\n\n")

	prompt.WriteString("<criteria>\n")
	if len(documents) > 0 {
		prompt.WriteString("grounded: every factual claim in <answer> is supported by <documents>. ")
		prompt.WriteString("Saying that information is unavailable counts as grounded.\n")
	} else {
		prompt.WriteString("grounded: no documents were supplied; answer \"yes\".\n")
	}
	prompt.WriteString("relevant: <answer> actually addresses <question>.\n")
	prompt.WriteString("</criteria>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\"grounded\": \"yes|no\", \"relevant\": \"yes|no\", \"reason\": \"one sentence\"}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}
