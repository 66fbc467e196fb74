package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/john-heyer/madness/internal/api/rest"
	ws "github.com/john-heyer/madness/internal/api/websocket"
	"github.com/john-heyer/madness/internal/bracket"
	"github.com/john-heyer/madness/internal/cache"
	"github.com/john-heyer/madness/internal/config"
	"github.com/john-heyer/madness/internal/ingest/espn"
	"github.com/john-heyer/madness/internal/ingest/google"
	"github.com/john-heyer/madness/internal/ingest/oddsapi"
	"github.com/john-heyer/madness/internal/logger"
	"github.com/john-heyer/madness/internal/metrics"
	"github.com/john-heyer/madness/internal/scheduler"
	"github.com/john-heyer/madness/internal/seeding"
)

const serviceVersion = "1.0.0"

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting madness", zap.String("version", serviceVersion))

	if cfg.TeamCSVPath == "" {
		log.Fatal("TEAM_CSV_PATH is required")
	}
	if cfg.OddsAPIKey == "" {
		log.Fatal("ODDS_API_KEY is required")
	}

	participants, err := seeding.Load(cfg.TeamCSVPath)
	if err != nil {
		log.Fatal("loading seeding", zap.Error(err))
	}
	tree, err := bracket.Build(participants)
	if err != nil {
		log.Fatal("building bracket", zap.Error(err))
	}
	log.Info("bracket constructed",
		zap.Int("participants", len(participants)),
		zap.Int("events", tree.Len()),
		zap.Int("rounds", tree.NRounds()))

	// Redis is optional: without it every restart re-fetches spreads.
	var spreadCache *cache.SpreadCache
	if cfg.RedisURL != "" {
		spreadCache = connectRedis(cfg.RedisURL, log)
	} else {
		log.Warn("REDIS_URL not set; spread cache disabled")
	}
	defer spreadCache.Close()

	scoresClient := espn.New("", cfg.SportPath)
	oddsClient := oddsapi.New(cfg.OddsAPIKey, "", "")

	var fallback scheduler.FallbackProvider
	if cfg.FallbackQuery != "" {
		scraper, err := google.NewClient(cfg.FallbackQuery)
		if err != nil {
			log.Warn("fallback scraper unavailable", zap.Error(err))
		} else {
			defer scraper.Close()
			fallback = scraper
		}
	}

	wsServer := ws.NewServer(log.Named("ws"))
	recorder := metrics.NewRecorder()

	engineCfg := scheduler.Config{
		PollInterval: cfg.PollInterval,
		Logger:       log.Named("engine"),
		Fallback:     fallback,
		Broadcaster:  wsServer,
		Metrics:      recorder,
	}
	if spreadCache != nil {
		engineCfg.Cache = spreadCache
	}
	engine := scheduler.NewEngine(tree, scoresClient, oddsClient, engineCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One synchronous cycle before serving, so games that already happened
	// are reflected from the first request.
	log.Info("pre-populating bracket")
	engine.RunCycle(ctx)

	restServer := rest.NewServer(cfg.HTTPPort, tree, engine.Metadata(), log.Named("rest"))
	metricsServer := metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		if !engine.Metadata().Healthy() {
			return errors.New("scores provider unreachable")
		}
		return spreadCache.HealthCheck(ctx)
	})

	go engine.Run(ctx)
	go func() {
		log.Info("rest server listening", zap.String("port", cfg.HTTPPort))
		if err := restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("rest server failed", zap.Error(err))
		}
	}()
	go func() {
		if err := wsServer.Start(cfg.WSPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("websocket server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("rest shutdown", zap.Error(err))
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("websocket shutdown", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("metrics shutdown", zap.Error(err))
	}
	log.Info("goodbye")
}

// connectRedis retries a few times before giving up; the cache is an
// optimization, not a dependency.
func connectRedis(redisURL string, log *zap.Logger) *cache.SpreadCache {
	const maxRetries = 5
	for i := 1; i <= maxRetries; i++ {
		sc, err := cache.NewSpreadCache(redisURL)
		if err == nil {
			log.Info("connected to redis spread cache")
			return sc
		}
		log.Warn("redis connection failed",
			zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	log.Warn("continuing without spread cache")
	return nil
}
