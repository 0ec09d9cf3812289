package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONPayloadFenced(t *testing.T) {
	raw := "Sure, here you go:\n```json\n{\"keywords\": [\"beef\"]}\n```\nLet me know if you need more."

	payload, fenced := ExtractJSONPayload(raw)
	assert.True(t, fenced)
	assert.Equal(t, `{"keywords": ["beef"]}`, payload)
}

func TestExtractJSONPayloadFencedNoLanguageTag(t *testing.T) {
	raw := "```\n{\"a\": 1}\n```"

	payload, fenced := ExtractJSONPayload(raw)
	assert.True(t, fenced)
	assert.Equal(t, `{"a": 1}`, payload)
}

func TestExtractJSONPayloadRawFallback(t *testing.T) {
	raw := "  {\"a\": 1}  "

	payload, fenced := ExtractJSONPayload(raw)
	assert.False(t, fenced)
	assert.Equal(t, `{"a": 1}`, payload)
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var out map[string]interface{}
	err := ParseJSON(`{"a": 1} {"b": 2}`, &out)
	assert.Error(t, err)
}

func TestParseJSONStrictRejectsUnknownFields(t *testing.T) {
	var out struct {
		A int `json:"a"`
	}
	require.NoError(t, ParseJSON(`{"a": 1, "b": 2}`, &out))
	assert.Error(t, ParseJSONStrict(`{"a": 1, "b": 2}`, &out))
}

func TestQuoteJSONKeys(t *testing.T) {
	assert.Equal(t, `{"a": 1, "b": "x"}`, QuoteJSONKeys(`{a: 1, b: "x"}`))
}
