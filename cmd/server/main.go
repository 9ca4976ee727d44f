package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vanshika/referralnet/internal/auth"
	"github.com/vanshika/referralnet/internal/config"
	"github.com/vanshika/referralnet/internal/graph"
	"github.com/vanshika/referralnet/internal/logging"
	"github.com/vanshika/referralnet/internal/metrics"
	"github.com/vanshika/referralnet/internal/repository"
	"github.com/vanshika/referralnet/internal/server"
	"github.com/vanshika/referralnet/internal/service"
)

const rateLimitSweepInterval = 5 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	tokens, err := auth.NewManager(cfg.Auth)
	if err != nil {
		logger.Error("failed to configure authentication", "error", err)
		os.Exit(1)
	}

	graphClient, err := buildGraphClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	repo := repository.New(graphClient)
	accounts := service.NewAccountService(repo, tokens, nil)
	referrals := service.NewReferralService(logger, cfg.Referral.MaxDepth)

	var m *metrics.Metrics
	if cfg.HTTP.MetricsEnabled {
		m = metrics.New()
		referrals.WithObserver(m)
	}

	limiter := server.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, logger)
	go limiter.Run(ctx, rateLimitSweepInterval)

	apiHandlers := server.NewAPIHandlers(logger, server.APIDependencies{
		Accounts:  accounts,
		Referrals: referrals,
		Store:     repo,
		MaxDepth:  cfg.Referral.MaxDepth,
	})

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.GraphHealthService{Client: graphClient},
		API:              apiHandlers,
		Tokens:           tokens,
		Metrics:          m,
		RateLimiter:      limiter,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped unexpectedly", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func buildGraphClient(ctx context.Context, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, graph.ErrMissingURI
	}

	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	return graph.NewNeo4jClient(ctx, opts)
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
