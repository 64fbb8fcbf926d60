package commands

import (
	"fmt"

	"github.com/hanzobot/skills/stock-analysis/internal/analysis"
	"github.com/hanzobot/skills/stock-analysis/internal/analysisconfig"
	"github.com/hanzobot/skills/stock-analysis/internal/market"
	"github.com/hanzobot/skills/stock-analysis/pkg/config"
	"github.com/hanzobot/skills/stock-analysis/pkg/logger"
	"github.com/hanzobot/skills/stock-analysis/pkg/metrics"
	"github.com/hanzobot/skills/stock-analysis/pkg/redis"
)

// app holds the wiring shared by every command
type app struct {
	cfg         *config.Config
	log         *logger.Logger
	metrics     *metrics.Recorder
	redis       *redis.Client
	analysisCfg *analysisconfig.Config
	service     *analysis.Service
}

// newApp loads configuration and builds the analysis service.
// quietLevel is the log level used when --verbose is off.
func newApp(quietLevel string) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	level := quietLevel
	if verbose {
		level = "debug"
	}
	log := logger.New(cfg).WithLevel(level)

	// 3. Analysis weights
	path := cfg.Analysis.ConfigPath
	if analysisConfigFile != "" {
		path = analysisConfigFile
	}
	analysisCfg, err := analysisconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load analysis config: %w", err)
	}

	// 4. Snapshot cache; the engine works without it
	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, snapshot cache disabled")
		rdb = redis.Disabled()
	}

	// 5. Provider chain and service
	rec := metrics.New()
	provider, err := market.New(cfg, log, rec, rdb)
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("create provider: %w", err)
	}

	service := analysis.NewService(provider, analysisCfg, log, rec,
		analysis.WithConcurrency(cfg.Analysis.Concurrency))

	return &app{
		cfg:         cfg,
		log:         log,
		metrics:     rec,
		redis:       rdb,
		analysisCfg: analysisCfg,
		service:     service,
	}, nil
}

// Close releases the Redis connection
func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close Redis")
	}
}
