// Command wikiqa fetches Wikipedia articles as chunked JSON and generates
// question/answer pairs from selected chunks.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/wikiqa/internal/config"
	"github.com/dgallion1/wikiqa/internal/dataset"
	"github.com/dgallion1/wikiqa/internal/wiki"
)

const defaultWikiAPI = "https://%s.wikipedia.org/w/api.php"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type globalOptions struct {
	wikiAPI string
	envFile string
	out     string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:          "wikiqa",
		Short:        "Build question/answer datasets from Wikipedia articles",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.wikiAPI, "wiki-api", defaultWikiAPI, "MediaWiki API URL; %s is replaced by the language code")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "file to load environment settings from")
	root.PersistentFlags().StringVar(&opts.out, "out", "", "write JSON to a new file in this directory instead of stdout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newFetchCmd(opts),
		newGenerateCmd(opts),
	)
	return root
}

func (o *globalOptions) config() (config.Config, error) {
	if err := config.LoadDotenv(o.envFile); err != nil {
		return config.Config{}, err
	}
	return config.Load(), nil
}

// logger writes human-readable logs to stderr so stdout stays valid JSON.
func (o *globalOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *globalOptions) wikiClient(cfg config.Config, log *slog.Logger) *wiki.Client {
	tmpl := o.wikiAPI
	return wiki.NewClient(
		wiki.WithEndpoint(func(lang string) string { return strings.ReplaceAll(tmpl, "%s", lang) }),
		wiki.WithUserAgent(cfg.WikiUserAgent),
		wiki.WithTimeout(cfg.WikiTimeout),
		wiki.WithLogger(log),
	)
}

// emit writes v to stdout, or to a fresh file under --out whose path is
// printed instead.
func (o *globalOptions) emit(cmd *cobra.Command, prefix string, v any) error {
	if o.out == "" {
		return dataset.EncodeJSON(cmd.OutOrStdout(), v)
	}
	path, err := dataset.WriteJSONFile(o.out, prefix, v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
	return err
}
