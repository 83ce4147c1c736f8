package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/leasecraft/internal/dates"
	"github.com/user/leasecraft/internal/httpapi"
	"github.com/user/leasecraft/internal/intent"
	"github.com/user/leasecraft/internal/ops"
	"github.com/user/leasecraft/internal/retrieval"
	"github.com/user/leasecraft/internal/router"
	"github.com/user/leasecraft/internal/state"
	"github.com/user/leasecraft/internal/telegram"
	"github.com/user/leasecraft/pkg/llm"
	"github.com/user/leasecraft/pkg/llm/openai"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the leasecraft daemon",
	RunE:  runServe,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, "leasecraft.pid")
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if cfg.Supabase.URL == "" || cfg.Supabase.ServiceKey == "" {
		return fmt.Errorf("supabase url and service key are required (set SUPABASE_URL / SUPABASE_SERVICE_KEY)")
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("llm api key is required (set OPENAI_API_KEY)")
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	// Stores
	sessions := state.NewSessionStore(cfg.DataDir)
	turns := state.NewTurnLogStore(cfg.DataDir)

	// LLM provider (chat + embeddings)
	provider := openai.New(&llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		EmbedModel:  cfg.LLM.EmbedModel,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		UseSeed:     cfg.LLM.UseSeed,
		Seed:        cfg.LLM.Seed,
	})

	// Retrieval
	var reranker retrieval.Reranker
	if cfg.Cohere.APIKey != "" {
		reranker = retrieval.NewCohereClient(cfg.Cohere.APIKey, cfg.Cohere.Model)
	} else {
		slog.Warn("reranking disabled (no cohere key)")
	}
	store := retrieval.NewStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey, provider, reranker)

	block, err := retrieval.NewContextBuilder(cfg.LLM.Model, cfg.Retrieval.MaxContextTokens)
	if err != nil {
		return fmt.Errorf("create context builder: %w", err)
	}

	// Operations
	operations := ops.New(provider, store, block, dates.New(), ops.Config{
		FetchCount: cfg.Retrieval.FetchCount,
		KeepCount:  cfg.Retrieval.KeepCount,
		Rerank:     cfg.Retrieval.Rerank && reranker != nil,
	}, slog.Default())

	// Router
	rtr := router.New(operations, intent.NewClassifier(provider), sessions, turns, router.Config{
		CreateOverwrites: cfg.Router.CreateOverwrites,
		MaxConcurrent:    int64(cfg.Router.MaxConcurrent),
	}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.Info("leasecraft started",
		"data_dir", cfg.DataDir,
		"log_level", cfg.LogLevel,
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model,
		"embed_model", cfg.LLM.EmbedModel,
		"rerank", cfg.Retrieval.Rerank && reranker != nil,
		"pid_file", pidPath,
	)

	// HTTP API
	if cfg.HTTP.Enabled {
		srv := httpapi.NewServer(rtr, store, slog.Default())
		httpServer := &http.Server{
			Addr:    cfg.HTTP.Listen,
			Handler: srv,
		}
		go func() {
			slog.Info("http server started", "listen", cfg.HTTP.Listen)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("http server error", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			httpServer.Shutdown(shutdownCtx)
		}()
	}

	// Telegram adapter
	if cfg.Telegram.Token != "" {
		adapter, err := telegram.New(cfg.Telegram.Token, rtr, turns, slog.Default())
		if err != nil {
			return fmt.Errorf("create telegram adapter: %w", err)
		}
		go adapter.Start(ctx)
		slog.Info("telegram adapter started")
	} else {
		slog.Warn("telegram adapter disabled (no token)")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan
		if sig == syscall.SIGHUP {
			slog.Info("received SIGHUP, restarting")
			execPath, err := os.Executable()
			if err != nil {
				slog.Error("failed to get executable path", "error", err)
				continue
			}
			os.Remove(pidPath)
			if err := syscall.Exec(execPath, os.Args, os.Environ()); err != nil {
				slog.Error("failed to re-exec", "error", err)
				if _, writeErr := writePIDFile(cfg.DataDir); writeErr != nil {
					slog.Error("failed to re-write PID file", "error", writeErr)
				}
				continue
			}
		}
		// SIGINT or SIGTERM
		slog.Info("shutting down", "signal", sig)
		return nil
	}
}
