package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "plain object",
			input:  `  {"a": 1}  `,
			expect: `{"a": 1}`,
		},
		{
			name:   "array of objects",
			input:  `[{"a": 1}]`,
			expect: `[{"a": 1}]`,
		},
		{
			name:   "fenced json block",
			input:  "Here is the data:\n```json\n{\"a\": 2}\n```\nThanks",
			expect: `{"a": 2}`,
		},
		{
			name:   "unlabelled fence",
			input:  "```\n{\"a\": 3}\n```",
			expect: `{"a": 3}`,
		},
		{
			name:   "object embedded in prose",
			input:  `The invoice reads {"a": "x}y", "b": {"c": 4}} and nothing else.`,
			expect: `{"a": "x}y", "b": {"c": 4}}`,
		},
		{
			name:   "skips unbalanced prefix",
			input:  `see {note} then {"a": 5}`,
			expect: `{"a": 5}`,
		},
		{
			name:   "escaped quotes inside strings",
			input:  `result: {"a": "say \"}\" twice"}`,
			expect: `{"a": "say \"}\" twice"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestExtractJSON_NoObject(t *testing.T) {
	for _, input := range []string{"", "   ", "no json here", "[1, 2, 3]", `"just a string"`, "{unterminated"} {
		_, err := ExtractJSON(input)
		assert.ErrorIs(t, err, ErrNoJSON, input)
	}
}

func TestMatchingBrace(t *testing.T) {
	assert.Equal(t, 7, matchingBrace(`{"a":{}}`, 0))
	assert.Equal(t, -1, matchingBrace(`{"a":{}`, 0))
	assert.Equal(t, 8, matchingBrace(`{"a":"}"}`, 0))
}
