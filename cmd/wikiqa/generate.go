package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dgallion1/wikiqa/internal/dataset"
	"github.com/dgallion1/wikiqa/internal/extract"
	"github.com/dgallion1/wikiqa/internal/pipeline"
)

func newGenerateCmd(g *globalOptions) *cobra.Command {
	var (
		chunks       []int
		lang         string
		qaType       string
		maxChunkSize int
		maxTokens    int
		temperature  float64
	)
	cmd := &cobra.Command{
		Use:   "generate TITLE",
		Short: "Generate a question/answer pair from selected chunks of an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := extract.QuestionType(qaType)
			if !slices.Contains(extract.SupportedTypes(), t) {
				return fmt.Errorf("%w: %q (supported: %v)", extract.ErrUnsupportedQuestionType, qaType, extract.SupportedTypes())
			}
			cfg, err := g.config()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := g.logger(cmd)

			completer, err := pipeline.NewCompleter(cfg)
			if err != nil {
				return err
			}
			if c, ok := completer.(*extract.ClaudeClient); ok {
				defer c.Close()
			}
			gen := pipeline.NewGenerator(completer, extract.NewLLMStats(cfg.StatsWindow), log, cfg.RetryBackoff, cfg.RetryAttempts)
			fetcher := pipeline.NewFetcher(g.wikiClient(cfg, log), cfg.MaxChunkSize, cfg.PDFFallbackPdftotext)

			articles, err := fetcher.FetchArticles(cmd.Context(), pipeline.FetchRequest{
				Source:       pipeline.SourceWikipedia,
				Title:        args[0],
				Languages:    []string{lang},
				MaxChunkSize: maxChunkSize,
			})
			if err != nil {
				return err
			}
			article := articles[0]
			if err := pipeline.ValidateSelection(article, chunks, cfg.MaxChunksPerQA); err != nil {
				return fmt.Errorf("%w (article has %d chunks; list them with 'wikiqa fetch')", err, len(article.Chunks))
			}

			var override extract.ParamsOverride
			if cmd.Flags().Changed("max-tokens") {
				override.MaxTokens = &maxTokens
			}
			if cmd.Flags().Changed("temperature") {
				override.Temperature = &temperature
			}

			qa, err := gen.Generate(cmd.Context(), article, t, override.Apply(extract.DefaultParams()), chunks)
			if errors.Is(err, extract.ErrNoStructuredQA) {
				return fmt.Errorf("the model output did not contain a question and answer; run again or raise --temperature: %w", err)
			}
			if err != nil {
				return err
			}
			pair, err := dataset.NewQAPair(article, string(t), chunks, qa.Question, qa.Answer)
			if err != nil {
				return err
			}
			log.Info("generated", "title", article.Title, "chunks", chunks, "model", gen.Model())
			return g.emit(cmd, dataset.QAPrefix, []dataset.QAPair{pair})
		},
	}
	cmd.Flags().IntSliceVar(&chunks, "chunks", nil, "chunk indices to ground the question in, e.g. 0,2")
	cmd.Flags().StringVarP(&lang, "lang", "l", "en", "article language")
	cmd.Flags().StringVar(&qaType, "type", string(extract.Factual), "question type")
	cmd.Flags().IntVar(&maxChunkSize, "max-chunk-size", 0, "maximum chunk length in characters (default MAX_CHUNK_SIZE)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", extract.DefaultParams().MaxTokens, "completion token limit")
	cmd.Flags().Float64Var(&temperature, "temperature", extract.DefaultParams().Temperature, "sampling temperature")
	_ = cmd.MarkFlagRequired("chunks")
	return cmd
}
