package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/leasecraft/internal/ingest"
	"github.com/user/leasecraft/internal/retrieval"
	"github.com/user/leasecraft/pkg/llm"
	"github.com/user/leasecraft/pkg/llm/openai"
)

var ingestBatchSize int

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.PersistentFlags().IntVar(&ingestBatchSize, "batch", 64, "documents per upsert batch")
	ingestCmd.AddCommand(ingestFileCmd, ingestURLCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest reference documents into the retrieval corpus",
}

func parseCategory(s string) (retrieval.Category, error) {
	switch retrieval.Category(s) {
	case retrieval.CategoryLease, retrieval.CategoryLaw, retrieval.CategoryMistake:
		return retrieval.Category(s), nil
	default:
		return "", fmt.Errorf("unknown category %q (want lease, law, or mistake)", s)
	}
}

func buildPipeline() (*ingest.Pipeline, error) {
	cfg := loadConfig()
	setupLogging(cfg)

	if cfg.Supabase.URL == "" || cfg.Supabase.ServiceKey == "" {
		return nil, fmt.Errorf("supabase url and service key are required (set SUPABASE_URL / SUPABASE_SERVICE_KEY)")
	}
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("llm api key is required (set OPENAI_API_KEY)")
	}

	provider := openai.New(&llm.Config{
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		EmbedModel: cfg.LLM.EmbedModel,
	})
	store := retrieval.NewStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey, provider, nil)
	return ingest.NewPipeline(store, ingestBatchSize, slog.Default()), nil
}

var ingestFileCmd = &cobra.Command{
	Use:   "file <category> <path...>",
	Short: "Chunk and ingest local text files",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := parseCategory(args[0])
		if err != nil {
			return err
		}
		pipeline, err := buildPipeline()
		if err != nil {
			return err
		}

		ctx := context.Background()
		total := 0
		for _, path := range args[1:] {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			n, err := pipeline.IngestText(ctx, cat, path, string(data))
			if err != nil {
				return fmt.Errorf("ingest %s: %w", path, err)
			}
			fmt.Fprintf(os.Stdout, "%s: %d chunks\n", path, n)
			total += n
		}
		fmt.Fprintf(os.Stdout, "Ingested %d chunks into %s.\n", total, cat)
		return nil
	},
}

var ingestURLCmd = &cobra.Command{
	Use:   "url <category> <url...>",
	Short: "Fetch web pages, convert to markdown, and ingest",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := parseCategory(args[0])
		if err != nil {
			return err
		}
		pipeline, err := buildPipeline()
		if err != nil {
			return err
		}

		ctx := context.Background()
		fetcher := ingest.NewFetcher()
		total := 0
		for _, url := range args[1:] {
			text, err := fetcher.Fetch(ctx, url)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", url, err)
			}
			n, err := pipeline.IngestText(ctx, cat, url, text)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", url, err)
			}
			fmt.Fprintf(os.Stdout, "%s: %d chunks\n", url, n)
			total += n
		}
		fmt.Fprintf(os.Stdout, "Ingested %d chunks into %s.\n", total, cat)
		return nil
	},
}
