package vision

import (
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrNoJSON is returned when a model answer holds no JSON object
var ErrNoJSON = errors.New("vision response contains no JSON object")

var codeBlockPattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// ExtractJSON finds the JSON object in a model answer. It tries the whole
// text, then fenced code blocks, then the first balanced {...} span.
func ExtractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrNoJSON
	}

	if isJSONObject(text) {
		return text, nil
	}

	for _, m := range codeBlockPattern.FindAllStringSubmatch(text, -1) {
		if candidate := strings.TrimSpace(m[1]); isJSONObject(candidate) {
			return candidate, nil
		}
	}

	for start := strings.IndexByte(text, '{'); start >= 0; {
		end := matchingBrace(text, start)
		if end < 0 {
			break
		}
		if candidate := text[start : end+1]; isJSONObject(candidate) {
			return candidate, nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSON
}

// isJSONObject accepts an object, or an array whose first element is an object
func isJSONObject(s string) bool {
	if !gjson.Valid(s) {
		return false
	}
	res := gjson.Parse(s)
	if res.IsArray() {
		return res.Get("0").IsObject()
	}
	return res.IsObject()
}

// matchingBrace returns the index of the brace closing the one at start,
// skipping braces inside string literals, or -1
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
