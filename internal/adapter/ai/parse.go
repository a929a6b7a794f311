// Package ai implements LLM provider clients with retry, pricing, and
// structured-response parsing.
package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ParseStructuredResponse extracts a JSON object from model output and
// unmarshals it into out. Strategies, in order: the raw text, a fenced code
// block, the largest balanced {...} region. Fails with ErrInvalidResponse
// when none yields parseable JSON.
func ParseStructuredResponse(text string, out any) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("op=ai.parse: %w: empty response", domain.ErrInvalidResponse)
	}
	if json.Unmarshal([]byte(text), out) == nil {
		return nil
	}
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		if json.Unmarshal([]byte(strings.TrimSpace(m[1])), out) == nil {
			return nil
		}
	}
	if region := balancedObject(text); region != "" {
		if json.Unmarshal([]byte(region), out) == nil {
			return nil
		}
	}
	return fmt.Errorf("op=ai.parse: %w: no JSON object found", domain.ErrInvalidResponse)
}

// balancedObject returns the largest balanced {...} region of s, or "".
// Braces inside JSON strings are skipped.
func balancedObject(s string) string {
	best := ""
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}
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
					if i+1-start > len(best) {
						best = s[start : i+1]
					}
					i = len(s)
				}
			}
		}
	}
	return best
}
