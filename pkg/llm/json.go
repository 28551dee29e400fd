package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON returns the outermost {...} span of a model reply, or "" if there is none.
// Models often wrap JSON in prose or ``` fences.
func ExtractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}

// DecodeJSON extracts and unmarshals the JSON object in response into v.
// Failures wrap ErrMalformedOutput.
func DecodeJSON(response string, v interface{}) error {
	jsonContent := ExtractJSON(response)
	if jsonContent == "" {
		return fmt.Errorf("%w: no JSON found in response", ErrMalformedOutput)
	}
	if err := json.Unmarshal([]byte(jsonContent), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}
