package guardrail

import "regexp"

const (
	PIIPhoneNumber = "phone_number"
	PIIEmail       = "email"
)

type PIIResult struct {
	HasPII bool     `json:"has_pii"`
	Types  []string `json:"types"`
}

type piiPattern struct {
	kind string
	re   *regexp.Regexp
}

// Phone shapes: VN mobile/landline, grouped VN numbers, +CC international.
// Bare numbers without a leading 0 or + (prices, counts) never match.
var defaultPIIPatterns = []piiPattern{
	{PIIPhoneNumber, regexp.MustCompile(`\b0[1-9]\d{8,9}\b`)},
	{PIIPhoneNumber, regexp.MustCompile(`\b0\d{2,3}[\s.-]\d{3,4}[\s.-]\d{3,4}\b`)},
	{PIIPhoneNumber, regexp.MustCompile(`\+\d{1,3}[\s.-]?\(?\d{1,4}\)?(?:[\s.-]?\d){6,10}\b`)},
	{PIIEmail, regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
}

type PIIDetector struct {
	patterns []piiPattern
}

func NewPIIDetector() *PIIDetector {
	return &PIIDetector{patterns: defaultPIIPatterns}
}

// Detect reports which PII categories appear in text.
func (d *PIIDetector) Detect(text string) PIIResult {
	result := PIIResult{Types: []string{}}
	seen := make(map[string]bool)
	for _, p := range d.patterns {
		if seen[p.kind] {
			continue
		}
		if p.re.MatchString(text) {
			seen[p.kind] = true
			result.Types = append(result.Types, p.kind)
		}
	}
	result.HasPII = len(result.Types) > 0
	return result
}
