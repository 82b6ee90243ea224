package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/blogspace/patientzero/internal/config"
	"github.com/blogspace/patientzero/internal/database"
	"github.com/blogspace/patientzero/internal/handlers"
	"github.com/blogspace/patientzero/internal/logging"
	"github.com/blogspace/patientzero/internal/middleware"
	"github.com/blogspace/patientzero/internal/recommend"
	"github.com/blogspace/patientzero/internal/server"
)

const shutdownGrace = 5 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := middleware.RegisterValidators(); err != nil {
		return err
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	store := database.NewStore(db.GetDB())

	classifier, analyzer, closeClassifier, err := buildStrategies(cfg.LLM)
	if err != nil {
		return err
	}
	defer closeClassifier()

	tokens := middleware.NewTokenManager(cfg.Auth)
	handler := handlers.NewHandler(store, tokens, recommend.NewService(classifier, store), analyzer)

	srv, limiter := server.NewServer(cfg, db, handler, tokens)
	defer limiter.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logging.Info().Msg("Server stopped")
	return nil
}

// buildStrategies picks the classifier and analyzer. With an LLM, both fall
// back to keyword matching when the provider fails, and classification is
// cached.
func buildStrategies(cfg config.LLMConfig) (recommend.Classifier, recommend.Analyzer, func(), error) {
	if !cfg.UseLLM() {
		logging.Info().Msg("Using static health classifier")
		return recommend.StaticClassifier{}, recommend.StaticAnalyzer{}, func() {}, nil
	}

	llm := recommend.NewLLMClient(recommend.LLMConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})

	cached, err := recommend.NewCachedClassifier(recommend.NewLLMClassifier(llm), cfg.CacheTTL)
	if err != nil {
		return nil, nil, nil, err
	}

	logging.Info().Str("model", cfg.Model).Msg("Using LLM health classifier")
	classifier := recommend.FallbackClassifier{Primary: cached, Secondary: recommend.StaticClassifier{}}
	analyzer := recommend.FallbackAnalyzer{Primary: recommend.NewLLMAnalyzer(llm), Secondary: recommend.StaticAnalyzer{}}
	return classifier, analyzer, cached.Close, nil
}
