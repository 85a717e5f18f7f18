package main

import (
	"github.com/spf13/cobra"

	"github.com/dgallion1/wikiqa/internal/dataset"
	"github.com/dgallion1/wikiqa/internal/pipeline"
)

func newFetchCmd(g *globalOptions) *cobra.Command {
	var (
		langs        []string
		maxChunkSize int
	)
	cmd := &cobra.Command{
		Use:   "fetch TITLE",
		Short: "Fetch an article in one or more languages and print its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			log := g.logger(cmd)
			fetcher := pipeline.NewFetcher(g.wikiClient(cfg, log), cfg.MaxChunkSize, cfg.PDFFallbackPdftotext)

			articles, err := fetcher.FetchArticles(cmd.Context(), pipeline.FetchRequest{
				Source:       pipeline.SourceWikipedia,
				Title:        args[0],
				Languages:    langs,
				MaxChunkSize: maxChunkSize,
			})
			if err != nil {
				return err
			}
			for _, a := range articles {
				log.Info("fetched", "title", a.Title, "language", a.Language, "chunks", len(a.Chunks))
			}
			return g.emit(cmd, dataset.ArticlesPrefix, articles)
		},
	}
	cmd.Flags().StringSliceVarP(&langs, "lang", "l", []string{"en"}, "language codes to fetch")
	cmd.Flags().IntVar(&maxChunkSize, "max-chunk-size", 0, "maximum chunk length in characters (default MAX_CHUNK_SIZE)")
	return cmd
}
