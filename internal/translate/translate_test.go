package translate

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mgpai22/lyricsync/internal/lyric"
)

func TestFactoryReturnsProviderTranslators(t *testing.T) {
	tests := []struct {
		provider Provider
		want     string
	}{
		{ProviderGemini, "*translate.GeminiTranslator"},
		{ProviderOpenAI, "*translate.OpenAITranslator"},
		{ProviderAnthropic, "*translate.AnthropicTranslator"},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			translator, err := Factory(context.Background(), tt.provider, "fake-key", Options{TargetLanguage: "English"})
			if err != nil {
				t.Fatalf("Factory(%s) returned error: %v", tt.provider, err)
			}
			if got := reflect.TypeOf(translator).String(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if _, ok := translator.(ConcurrentTranslator); !ok {
				t.Errorf("%s should implement ConcurrentTranslator", tt.want)
			}
		})
	}
}

func TestFactoryRequiresTargetLanguage(t *testing.T) {
	_, err := Factory(context.Background(), ProviderGemini, "fake-key", Options{})
	if err == nil {
		t.Error("expected error for missing target language")
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	_, err := Factory(context.Background(), Provider("unknown"), "fake-key", Options{TargetLanguage: "French"})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	for _, p := range []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic} {
		if _, err := Factory(context.Background(), p, "", Options{TargetLanguage: "English"}); err == nil {
			t.Errorf("%s: expected error for missing API key", p)
		}
	}
}

func TestAPIKeyEnv(t *testing.T) {
	if got := ProviderAnthropic.APIKeyEnv(); got != "ANTHROPIC_API_KEY" {
		t.Errorf("expected ANTHROPIC_API_KEY, got %s", got)
	}
	if got := Provider("other").APIKeyEnv(); got != "API_KEY" {
		t.Errorf("expected API_KEY, got %s", got)
	}
}

// echoes items upper-cased, one request per batch
func upperBatch(calls *int32) batchFunc {
	return func(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
		atomic.AddInt32(calls, 1)
		out := make([]TranslationResult, len(items))
		for i, item := range items {
			out[i] = TranslationResult{Index: item.Index, Text: strings.ToUpper(item.Text)}
		}
		return out, nil
	}
}

func numbered(n int) []TranslationItem {
	items := make([]TranslationItem, n)
	for i := range items {
		items[i] = TranslationItem{Index: n - 1 - i, Text: "line"}
	}
	return items
}

func TestTranslateSequential(t *testing.T) {
	var calls int32
	results, err := translateSequential(context.Background(), numbered(7), 3, upperBatch(&calls))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 requests, got %d", calls)
	}
	if len(results) != 7 {
		t.Fatalf("expected 7 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Index != i || r.Text != "LINE" {
			t.Errorf("result %d: unexpected %+v", i, r)
		}
	}
}

func TestTranslateConcurrent(t *testing.T) {
	var calls int32
	results, err := translateConcurrent(context.Background(), numbered(10), 2, 3, upperBatch(&calls))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 5 {
		t.Errorf("expected 5 requests, got %d", calls)
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("results not sorted at %d: %+v", i, r)
		}
	}
}

func TestTranslateConcurrentStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	fn := func(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
		return nil, boom
	}

	_, err := translateConcurrent(context.Background(), numbered(10), 2, 2, fn)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped batch error, got %v", err)
	}
}

func TestTranslateEmpty(t *testing.T) {
	var calls int32
	results, err := translateConcurrent(context.Background(), nil, 2, 2, upperBatch(&calls))
	if err != nil || len(results) != 0 || calls != 0 {
		t.Errorf("expected no work, got %v %v %d", results, err, calls)
	}
}

// echoLLM answers every prompt by upper-casing the input JSON items
type echoLLM struct {
	mu     sync.Mutex
	system string
	calls  int32
}

func (e *echoLLM) complete(ctx context.Context, system, prompt string) (string, error) {
	atomic.AddInt32(&e.calls, 1)
	e.mu.Lock()
	e.system = system
	e.mu.Unlock()

	start := strings.Index(prompt, "Input JSON:\n")
	end := strings.LastIndex(prompt, "\n\nOutput")
	if start < 0 || end < start {
		return "", errors.New("prompt has no input JSON")
	}
	var items []TranslationItem
	if err := json.Unmarshal([]byte(prompt[start+len("Input JSON:\n"):end]), &items); err != nil {
		return "", err
	}
	for i := range items {
		items[i].Text = strings.ToUpper(items[i].Text)
	}
	reply, err := json.Marshal(items)
	return "```json\n" + string(reply) + "\n```", err
}

func TestEngineTranslatesThroughCompleter(t *testing.T) {
	llm := &echoLLM{}
	e := engine{
		provider: ProviderOpenAI,
		options:  Options{TargetLanguage: "English", BatchSize: 2},
		llm:      llm,
	}

	items := []TranslationItem{
		{Index: 4, Text: "one"},
		{Index: 1, Text: "two"},
		{Index: 9, Text: "three"},
	}
	results, err := e.TranslateWithConcurrency(context.Background(), items, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []TranslationResult{
		{Index: 1, Text: "TWO"},
		{Index: 4, Text: "ONE"},
		{Index: 9, Text: "THREE"},
	}
	if !reflect.DeepEqual(results, want) {
		t.Errorf("expected %+v, got %+v", want, results)
	}
	if llm.calls != 2 {
		t.Errorf("expected 2 requests, got %d", llm.calls)
	}
	if llm.system != systemPrompt {
		t.Error("expected the system prompt to be sent")
	}
}

func lyrics() lyric.Collection {
	c := lyric.Collection{
		lyric.NewMarker(lyric.KindPrelude, 0),
		lyric.NewLine(5, lyric.Phrase{Text: "嘘", Duration: 20}, lyric.Phrase{Text: "じゃない", Duration: 30}),
		lyric.NewLine(8, lyric.Phrase{Text: "done", Duration: 20}),
		lyric.NewLine(9),
	}
	c[1].Background = &lyric.Track{
		Time:    "00:06.00",
		Phrases: []lyric.Phrase{{Text: "echo", Duration: 20}},
	}
	c[2].Translation = "already"
	return c
}

func TestItemsFromLines(t *testing.T) {
	tests := []struct {
		name              string
		includeBackground bool
		overwrite         bool
		want              []TranslationItem
	}{
		{
			name: "main only",
			want: []TranslationItem{{Index: 1, Text: "嘘じゃない"}},
		},
		{
			name:      "overwrite",
			overwrite: true,
			want: []TranslationItem{
				{Index: 1, Text: "嘘じゃない"},
				{Index: 2, Text: "done"},
			},
		},
		{
			name:              "background",
			includeBackground: true,
			want: []TranslationItem{
				{Index: 1, Text: "嘘じゃない"},
				{Index: 5, Text: "echo"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemsFromLines(lyrics(), tt.includeBackground, tt.overwrite)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestApply(t *testing.T) {
	c := lyrics()
	out, skipped := Apply(c, []TranslationResult{
		{Index: 1, Text: "Not a lie"},
		{Index: 5, Text: "Echo"},
		{Index: 6, Text: "no background"},
		{Index: 42, Text: "nowhere"},
		{Index: -1, Text: "negative"},
	})

	if out[1].Translation != "Not a lie" {
		t.Errorf("main translation not applied: %q", out[1].Translation)
	}
	if out[1].Background.Translation != "Echo" {
		t.Errorf("background translation not applied: %q", out[1].Background.Translation)
	}
	if !reflect.DeepEqual(skipped, []int{6, 42, -1}) {
		t.Errorf("expected skipped [6 42 -1], got %v", skipped)
	}
	if c[1].Translation != "" || c[1].Background.Translation != "" {
		t.Error("Apply must not modify its input")
	}
}

// Integration test: only runs if GEMINI_API_KEY is set
func TestGeminiTranslatorIntegration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set; skipping integration test")
	}

	ctx := context.Background()
	translator, err := NewGeminiTranslator(ctx, apiKey, Options{TargetLanguage: "English"})
	if err != nil {
		t.Fatalf("NewGeminiTranslator error: %v", err)
	}

	items := ItemsFromLines(lyric.Default(), true, true)
	results, err := translator.Translate(ctx, items)
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if len(results) != len(items) {
		t.Errorf("expected %d results, got %d", len(items), len(results))
	}
	for _, r := range results {
		if r.Text == "" {
			t.Errorf("result index %d has empty text", r.Index)
		}
	}
}
