package guardrail

import "strings"

type Category string

const (
	CategoryNone      Category = ""
	CategoryProfanity Category = "profanity"
	CategoryPII       Category = "pii"
)

const (
	ProfanityMessage = "Xin lỗi, tin nhắn của bạn có chứa ngôn ngữ không phù hợp. Vui lòng sử dụng ngôn từ lịch sự để mình có thể hỗ trợ bạn tốt hơn."
	PIIMessage       = "Vì lý do bảo mật, vui lòng không chia sẻ thông tin cá nhân như số điện thoại hoặc địa chỉ email trong cuộc trò chuyện."
)

// Result is the full guardrail verdict for one text.
type Result struct {
	Safe     bool
	Category Category
	Message  string
	Terms    []string
	PII      PIIResult
}

// Checker screens user text before any model sees it. It does no I/O after construction.
type Checker struct {
	profanity *ProfanityDetector
	pii       *PIIDetector
}

// NewChecker loads the lexicon from lexiconPath, or the embedded one when empty.
func NewChecker(lexiconPath string) (*Checker, error) {
	terms, err := LoadLexicon(lexiconPath)
	if err != nil {
		return nil, err
	}
	return &Checker{
		profanity: NewProfanityDetector(terms),
		pii:       NewPIIDetector(),
	}, nil
}

// Inspect runs both detectors. Profanity takes precedence over PII.
func (c *Checker) Inspect(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Safe: true, PII: PIIResult{Types: []string{}}}
	}

	res := Result{Safe: true}
	res.Terms = c.profanity.Detect(text)
	res.PII = c.pii.Detect(text)

	switch {
	case len(res.Terms) > 0:
		res.Safe = false
		res.Category = CategoryProfanity
		res.Message = ProfanityMessage
	case res.PII.HasPII:
		res.Safe = false
		res.Category = CategoryPII
		res.Message = PIIMessage
	}
	return res
}

// Check reports whether text is safe and, if not, the user-facing reason.
func (c *Checker) Check(text string) (bool, string) {
	res := c.Inspect(text)
	return res.Safe, res.Message
}
