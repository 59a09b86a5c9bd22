package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/mgpai22/lyricsync/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate the staged lyrics using AI",
	Long: `Fill in the translation of every staged lyric line using AI.

Lines that already have a translation are kept unless --overwrite is
given. Background voices are translated with --background. The result is
staged; review it with "lyricsync diff" and commit it.

Examples:
  lyricsync translate --target-language english
  lyricsync translate -t ja --provider anthropic --background
  lyricsync translate -t english -l japanese --overwrite --concurrency 5`,
	Args: cobra.NoArgs,
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("language", "l", "", "Language of the lyrics (optional)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY env var)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	translateCmd.Flags().
		String("provider", "", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		String("prompt", "", "Additional instructions for the translator")
	translateCmd.Flags().
		Int("concurrency", 0, "Number of parallel translation workers")
	translateCmd.Flags().
		Int("batch-size", 0, "Number of lyric lines per API request")
	translateCmd.Flags().
		Bool("overwrite", false, "Replace existing translations")
	translateCmd.Flags().
		Bool("background", false, "Also translate background voices")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	targetLang, _ := cmd.Flags().GetString("target-language")
	inputLang, _ := cmd.Flags().GetString("language")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	modelOverride, _ := cmd.Flags().GetBool("model-override")
	providerStr, _ := cmd.Flags().GetString("provider")
	prompt, _ := cmd.Flags().GetString("prompt")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	background, _ := cmd.Flags().GetBool("background")

	if providerStr == "" {
		providerStr = cfg.Translate.Provider
	}
	if model == "" {
		model = cfg.Translate.Model
	}
	if !cmd.Flags().Changed("concurrency") {
		concurrency = cfg.Translate.Concurrency
	}
	if !cmd.Flags().Changed("batch-size") {
		batchSize = cfg.Translate.BatchSize
	}

	if strings.TrimSpace(targetLang) == "" {
		return fmt.Errorf("target language is required")
	}
	if inputLang != "" &&
		strings.EqualFold(
			strings.TrimSpace(inputLang),
			strings.TrimSpace(targetLang),
		) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	provider := translate.Provider(strings.ToLower(providerStr))

	if apiKey == "" {
		apiKey = os.Getenv(provider.APIKeyEnv())
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			provider.APIKeyEnv(),
		)
	}

	if err := checkModel(provider, model, modelOverride); err != nil {
		return err
	}

	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	st, err := loadSession()
	if err != nil {
		return err
	}

	staged := st.Buffer.Staged()
	items := translate.ItemsFromLines(staged, background, overwrite)
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to translate")
		return nil
	}

	logger.Infow("Starting lyric translation",
		"provider", provider,
		"target_language", targetLang,
		"input_language", inputLang,
		"model", model,
		"items", len(items),
		"concurrency", concurrency,
	)

	opts := translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		Prompt:         prompt,
		BatchSize:      batchSize,
	}

	translator, err := translate.Factory(ctx, provider, apiKey, opts)
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	var results []translate.TranslationResult
	if concurrentTranslator, ok := translator.(translate.ConcurrentTranslator); ok {
		results, err = concurrentTranslator.TranslateWithConcurrency(
			ctx,
			items,
			concurrency,
		)
	} else {
		results, err = translator.Translate(ctx, items)
	}
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	translated, skipped := translate.Apply(staged, results)
	for _, index := range skipped {
		logger.Warnw("Skipping invalid result index",
			"index", index,
			"max", 2*len(staged)-1,
		)
	}

	st.Buffer.SetStaged(translated)
	if err := saveSession(st); err != nil {
		return err
	}

	logger.Infow("Translation complete",
		"results", len(results),
		"skipped", len(skipped),
	)

	fmt.Fprintf(cmd.OutOrStdout(), "Lyrics translated: %d lines staged\n", len(results)-len(skipped))
	fmt.Fprintf(cmd.OutOrStdout(), "  Target language: %s\n", targetLang)
	fmt.Fprintln(cmd.OutOrStdout(), "  Review with \"lyricsync diff\", then \"lyricsync commit\"")
	return nil
}

func checkModel(provider translate.Provider, model string, override bool) error {
	if model == "" || override {
		return nil
	}

	switch provider {
	case translate.ProviderGemini:
		if !isValidGeminiModel(model) {
			return fmt.Errorf(
				"unsupported Gemini model %q: valid models are %s (use --model-override to bypass)",
				model,
				strings.Join(geminiModels, ", "),
			)
		}
	case translate.ProviderOpenAI:
		if !isValidOpenAIModel(model) {
			return fmt.Errorf(
				"unsupported OpenAI model %q: valid models are %s (use --model-override to bypass)",
				model,
				strings.Join(openAIModels, ", "),
			)
		}
	case translate.ProviderAnthropic:
		if !isValidAnthropicModel(model) {
			return fmt.Errorf(
				"unsupported Anthropic model %q: valid models are %s (use --model-override to bypass)",
				model,
				strings.Join(anthropicModels, ", "),
			)
		}
	}
	return nil
}
