package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

// parseReply turns a model's raw reply into one result per requested
// item, in request order. Indices the request did not contain are
// dropped; a missing index fails the batch.
func parseReply(provider Provider, reply string, items []TranslationItem) ([]TranslationResult, error) {
	if strings.TrimSpace(reply) == "" {
		return nil, fmt.Errorf("no text in %s response", provider)
	}

	reply = cleanJSONResponse(reply)

	results, err := extractTranslationResults(reply)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(reply, 200),
		)
	}

	byIndex := make(map[int]string, len(results))
	for _, r := range results {
		if _, seen := byIndex[r.Index]; !seen {
			byIndex[r.Index] = strings.TrimSpace(r.Text)
		}
	}

	out := make([]TranslationResult, 0, len(items))
	var missing []int
	for _, item := range items {
		text, ok := byIndex[item.Index]
		if !ok {
			missing = append(missing, item.Index)
			continue
		}
		out = append(out, TranslationResult{Index: item.Index, Text: text})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf(
			"%s reply is missing %d of %d lines (indices %v)",
			provider,
			len(missing),
			len(items),
			missing,
		)
	}

	return out, nil
}

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// fixInvalidEscapes doubles the backslash of escapes JSON does not know,
// such as a stray \N, so the reply still parses and keeps the literal.
func fixInvalidEscapes(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	i := 0
	for i < len(s) {
		if i < len(s)-1 && s[i] == '\\' {
			next := s[i+1]
			switch next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				result.WriteByte(s[i])
				result.WriteByte(next)
			default:
				result.WriteString("\\\\")
				result.WriteByte(next)
			}
			i += 2
			continue
		}
		result.WriteByte(s[i])
		i++
	}

	return result.String()
}

// extractTranslationResults finds the first JSON value in text that holds
// translation results, either bare or under a wrapper key.
func extractTranslationResults(text string) ([]TranslationResult, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if results, ok := tryExtractResults(raw); ok {
			return results, nil
		}
	}
	return nil, fmt.Errorf("no valid translation JSON found in response")
}

var wrapperKeys = []string{"results", "translations", "data", "items", "lines"}

func tryExtractResults(raw json.RawMessage) ([]TranslationResult, bool) {
	var results []TranslationResult
	if err := json.Unmarshal(raw, &results); err == nil && validateResults(results) {
		return results, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range wrapperKeys {
		fieldRaw, exists := wrapper[key]
		if !exists {
			continue
		}
		var fieldResults []TranslationResult
		if err := json.Unmarshal(fieldRaw, &fieldResults); err == nil && validateResults(fieldResults) {
			return fieldResults, true
		}
	}

	for _, fieldRaw := range wrapper {
		var fieldResults []TranslationResult
		if err := json.Unmarshal(fieldRaw, &fieldResults); err == nil && validateResults(fieldResults) {
			return fieldResults, true
		}
	}

	return nil, false
}

func validateResults(results []TranslationResult) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
