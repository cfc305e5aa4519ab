package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/qaztriage/backend/internal/ai"
	"github.com/qaztriage/backend/internal/classifier"
	"github.com/qaztriage/backend/internal/config"
	"github.com/qaztriage/backend/internal/db"
	"github.com/qaztriage/backend/internal/geocode"
	httpapi "github.com/qaztriage/backend/internal/http"
	"github.com/qaztriage/backend/internal/lexicon"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "triage-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	rules := classifier.New(lexicon.Default())

	var clf ai.Classifier
	if cfg.AIAPIKey == "" {
		clf = ai.RuleOnly{Rules: rules}
		logger.Info().Msg("AI_API_KEY not set, using rule-based classification only")
	} else {
		clf = ai.NewResilient(rules, ai.Options{
			APIKey:      cfg.AIAPIKey,
			BaseURL:     cfg.AIBaseURL,
			Model:       cfg.AIModel,
			MaxRequests: cfg.AIMaxRequests,
			MinInterval: cfg.AIMinInterval,
			Logger:      logger.With().Str("component", "ai").Logger(),
		})
	}

	geocoder := &geocode.Nominatim{MinInterval: time.Second}

	router := httpapi.Router(cfg, store, clf, rules, geocoder, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
