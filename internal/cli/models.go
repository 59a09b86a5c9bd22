package cli

import "strings"

var geminiModels = []string{
	"gemini-3-pro-preview",
	"gemini-3-flash-preview",
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.5-flash-lite",
}

var openAIModels = []string{
	"o1", "o3-mini", "o1-pro", "o3",
	"gpt-5", "gpt-5-nano", "gpt-5-mini", "gpt-5-pro",
	"gpt-5.1", "gpt-5.2", "gpt-5.2-pro",
}

var anthropicModels = []string{
	"claude-haiku-4-5",
	"claude-sonnet-4-5",
	"claude-opus-4-1",
}

func containsModel(models []string, model string) bool {
	model = strings.TrimSpace(model)
	for _, m := range models {
		if m == model {
			return true
		}
	}
	return false
}

func isValidGeminiModel(model string) bool {
	return containsModel(geminiModels, model)
}

func isValidOpenAIModel(model string) bool {
	return containsModel(openAIModels, model)
}

// dated snapshots of a listed model are accepted too
func isValidAnthropicModel(model string) bool {
	model = strings.TrimSpace(model)
	for _, m := range anthropicModels {
		if model == m || strings.HasPrefix(model, m+"-20") {
			return true
		}
	}
	return false
}
