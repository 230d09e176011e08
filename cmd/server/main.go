package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GeorgiiSadunyan/Recomendation/internal/catalog"
	"github.com/GeorgiiSadunyan/Recomendation/internal/config"
	httpserver "github.com/GeorgiiSadunyan/Recomendation/internal/http"
	"github.com/GeorgiiSadunyan/Recomendation/internal/posters"
	"github.com/GeorgiiSadunyan/Recomendation/internal/ratings"
	"github.com/GeorgiiSadunyan/Recomendation/internal/recommend"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[movierec] ", log.LstdFlags|log.Lshortfile)

	cat, err := catalog.Load(cfg.Data.MoviesPath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	logger.Printf("catalog: loaded %d movies, %d genres", cat.Len(), len(cat.Genres()))

	store, err := ratings.Open(cfg.Data.RatingsPath, cfg.Data.NewRatingsPath, logger)
	if err != nil {
		log.Fatalf("open rating store: %v", err)
	}

	var postersClient posters.Client
	if cfg.Posters.URL != "" {
		client, err := posters.NewHTTPClient(cfg.Posters.URL, cfg.Posters.APIKey, time.Duration(cfg.Posters.TimeoutSecs)*time.Second, logger)
		if err != nil {
			log.Fatalf("init posters client: %v", err)
		}
		postersClient = client
	}

	weights := recommend.Weights{
		Bayesian: cfg.Scoring.BayesianWeight,
		Genre:    cfg.Scoring.GenreWeight,
	}
	engine := recommend.NewEngine(cat, store, weights, logger)

	server := httpserver.New(cfg, cat, store, engine, postersClient, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
