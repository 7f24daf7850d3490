package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"surrounding prose", "Sure! Here you go:\n{\"a\":{\"b\":2}}\nEnjoy.", `{"a":{"b":2}}`, true},
		{"greedy across objects", `{"a":1} and {"b":2}`, `{"a":1} and {"b":2}`, true},
		{"no braces", "no json here", "", false},
		{"reversed braces", "} oops {", "", false},
		{"unterminated", `{"a":1`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.content)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	require.NoError(t, ParseJSON(`{"name":"Negroni","extra":true}`, &v))
	assert.Equal(t, "Negroni", v.Name)

	assert.Error(t, ParseJSON(`{"name":"a"} trailing`, &v))
	assert.Error(t, ParseJSON(`{"name":`, &v))
	assert.Error(t, ParseJSONStrict(`{"name":"a","extra":1}`, &v))
	require.NoError(t, ParseJSONBytes([]byte(`{"name":"b"}`), &v))
	assert.Equal(t, "b", v.Name)
}

func TestToJSONAndPreview(t *testing.T) {
	s, err := ToJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, s)

	assert.Equal(t, "abc", Preview("abc", 5))
	assert.Equal(t, "ab...", Preview("abcdef", 2))
	assert.Equal(t, "abcdef", Preview("abcdef", 0))
}
