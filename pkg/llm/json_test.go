package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ExtractJSON("Here you go:\n```json\n{\"a\":1}\n```"))
	assert.Equal(t, "", ExtractJSON("no json here"))
	assert.Equal(t, "", ExtractJSON("} backwards {"))
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Intent string `json:"intent"`
	}
	require.NoError(t, DecodeJSON(`sure! {"intent":"CHIT_CHAT"}`, &out))
	assert.Equal(t, "CHIT_CHAT", out.Intent)

	assert.ErrorIs(t, DecodeJSON("nope", &out), ErrMalformedOutput)
	assert.ErrorIs(t, DecodeJSON(`{"intent": }`, &out), ErrMalformedOutput)
}
