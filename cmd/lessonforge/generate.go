package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lessonforge/internal/family"
	"lessonforge/internal/generation"
	"lessonforge/internal/llm"
	"lessonforge/internal/logging"
	"lessonforge/internal/prompt"
	"lessonforge/internal/routing"
	"lessonforge/internal/validation"
)

var (
	genGrade  string
	genCount  int
	genHint   string
	genCustom string
)

var generateCmd = &cobra.Command{
	Use:   "generate [family] [intent]",
	Short: "Generate one piece of content from the command line",
	Long: `Runs a single generation without the HTTP server.

Families: ` + strings.Join(familyNames(), ", ") + `

Example:
  lessonforge generate learning_objectives "photosynthesis in flowering plants" --grade middle`,
	Args: cobra.MinimumNArgs(2),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genGrade, "grade", "", "Grade level: elementary, middle, high, or college")
	generateCmd.Flags().IntVar(&genCount, "count", 0, "Item count (banded families only)")
	generateCmd.Flags().StringVar(&genHint, "hint", "", "Subject category hint")
	generateCmd.Flags().StringVar(&genCustom, "customize", "", "Extra instructions appended to the prompt")
}

func familyNames() []string {
	var names []string
	for _, fam := range family.All() {
		names = append(names, fam.Name)
	}
	return names
}

func runGenerate(cmd *cobra.Command, args []string) error {
	intent := strings.Join(args[1:], " ")
	req, err := generation.NewRequest(args[0], genGrade, intent, genCount)
	if err != nil {
		return err
	}
	req.WithHint(genHint).WithCustomization(genCustom)

	ctx := cmd.Context()
	client, err := llm.NewClient(ctx, llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logging.For(logger, logging.CategoryLLM))
	if err != nil {
		return err
	}

	router := routing.NewRouter(logging.For(logger, logging.CategoryRouting))
	if cfg.Routing.OverridesPath != "" {
		if err := router.LoadOverrides(cfg.Routing.OverridesPath); err != nil {
			return fmt.Errorf("failed to load routing overrides: %w", err)
		}
	}

	orchestrator := generation.NewOrchestrator(
		router,
		prompt.NewBuilder(logging.For(logger, logging.CategoryPrompt)),
		validation.NewValidator(logging.For(logger, logging.CategoryValidation)),
		client,
		nil,
		logging.For(logger, logging.CategoryGeneration),
	)

	res, err := orchestrator.Generate(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !res.Succeeded() {
		fmt.Fprintf(out, "Generation failed after %d attempts.\n\n", len(res.Attempts))
		for _, c := range res.Critical {
			fmt.Fprintf(out, "  - %s\n", c)
		}
		return fmt.Errorf("could not produce valid %s", req.Family.Name)
	}

	fmt.Fprintln(out, res.Content)
	if len(res.Warnings) > 0 {
		fmt.Fprintln(out)
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
	}
	return nil
}
