package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linksaver/internal/app"
	"github.com/MrSnakeDoc/linksaver/internal/config"
	"github.com/MrSnakeDoc/linksaver/internal/domain"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
	"github.com/MrSnakeDoc/linksaver/internal/sources/siterules"
	"github.com/MrSnakeDoc/linksaver/internal/version"
)

var (
	fetchTimeout   time.Duration
	readerEnabled  bool
	readerBaseURL  string
	readerAttempts int
	rulesFile      string
	verbose        bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [url]",
	Short: "Print the summary the service would store for a URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

var metadataCmd = &cobra.Command{
	Use:   "metadata [url]",
	Short: "Print the title and icon the service would store for a URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runMetadata,
}

func init() {
	for _, c := range []*cobra.Command{summarizeCmd, metadataCmd} {
		c.Flags().DurationVar(&fetchTimeout, "timeout", 10*time.Second, "page fetch timeout")
		c.Flags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline decisions to stderr")
		rootCmd.AddCommand(c)
	}
	summarizeCmd.Flags().BoolVar(&readerEnabled, "reader", true, "try the reader service first")
	summarizeCmd.Flags().StringVar(&readerBaseURL, "reader-url", "https://r.jina.ai/", "reader service base URL")
	summarizeCmd.Flags().IntVar(&readerAttempts, "reader-attempts", 2, "reader attempts")
	summarizeCmd.Flags().StringVar(&rulesFile, "rules", "", "site rules yaml file")
}

// pipelineFromFlags builds the acquisition pipeline without reading the
// server environment, so no auth secret or store is needed.
func pipelineFromFlags() (*app.Pipeline, error) {
	level := "error"
	if verbose {
		level = "debug"
	}
	log := logger.New(level, true)

	rules := siterules.NewRegistry()
	if rulesFile != "" {
		loaded, err := siterules.NewLoader(rulesFile).Load()
		if err != nil {
			return nil, err
		}
		rules.Replace(loaded)
	} else {
		rules.Replace(nil)
	}

	cfg := &config.Config{
		FetchTimeout:     fetchTimeout,
		UserAgent:        version.UserAgent(),
		ReaderEnabled:    readerEnabled,
		ReaderBaseURL:    readerBaseURL,
		ReaderTimeout:    60 * time.Second,
		ReaderAttempts:   readerAttempts,
		ReaderRetryDelay: 2 * time.Second,
	}
	return app.NewPipeline(cfg, rules, log), nil
}

func validURL(raw string) error {
	if _, err := domain.ParseURL(raw); err != nil {
		return err
	}
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if err := validURL(args[0]); err != nil {
		return err
	}
	p, err := pipelineFromFlags()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), p.Summary.Summarize(context.Background(), args[0]))
	return nil
}

func runMetadata(cmd *cobra.Command, args []string) error {
	if err := validURL(args[0]); err != nil {
		return err
	}
	readerEnabled = false
	p, err := pipelineFromFlags()
	if err != nil {
		return err
	}

	meta := p.Metadata.Resolve(context.Background(), args[0])
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
