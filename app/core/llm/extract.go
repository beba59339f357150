package llm

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractJSONObject returns the first balanced {...} block inside text.
// Models frequently wrap their JSON in prose or code fences; everything
// around the object is ignored. The block must parse as valid JSON.
func ExtractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	if start == -1 {
		return "", fmt.Errorf("llm: no JSON object in response")
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				obj := text[start : i+1]
				if !gjson.Valid(obj) {
					return "", fmt.Errorf("llm: malformed JSON object in response")
				}
				return obj, nil
			}
		}
	}
	return "", fmt.Errorf("llm: unbalanced JSON object in response")
}
