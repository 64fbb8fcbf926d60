package market

import (
	"fmt"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
	"github.com/hanzobot/skills/stock-analysis/internal/external/finviz"
	"github.com/hanzobot/skills/stock-analysis/internal/external/yahoo"
	"github.com/hanzobot/skills/stock-analysis/pkg/config"
	"github.com/hanzobot/skills/stock-analysis/pkg/httputil"
	"github.com/hanzobot/skills/stock-analysis/pkg/logger"
	"github.com/hanzobot/skills/stock-analysis/pkg/metrics"
	"github.com/hanzobot/skills/stock-analysis/pkg/redis"
)

// keyPrefix namespaces every Redis key this service writes
const keyPrefix = "stockanalysis"

// New assembles the provider chain selected by PROVIDER, wrapped in the
// snapshot cache. rdb may be disabled.
func New(cfg *config.Config, log *logger.Logger, rec *metrics.Recorder, rdb *redis.Client) (contracts.Provider, error) {
	limiter := redis.NewRateLimiter(rdb, keyPrefix)

	upstream := func(rl redis.RateLimitConfig) *httputil.Client {
		hc := httputil.New(cfg, log)
		if rdb.Enabled() {
			hc = hc.WithRateLimiter(limiter, rl)
		}
		return hc
	}

	newYahoo := func() contracts.Provider {
		client := yahoo.NewClient(upstream(redis.YahooRateLimit), log, cfg.Provider.YahooBaseURL)
		return NewYahooProvider(client, log, rec)
	}
	newFinviz := func() contracts.Provider {
		client := finviz.NewClient(upstream(redis.FinvizRateLimit), log, cfg.Provider.FinvizBaseURL)
		return NewFinvizProvider(client, log, rec)
	}

	var p contracts.Provider
	switch cfg.Provider.Name {
	case config.ProviderYahoo:
		p = newYahoo()
	case config.ProviderFinviz:
		p = newFinviz()
	case config.ProviderYahooFinviz:
		p = NewComposite(log, newYahoo(), newFinviz())
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}

	log.WithFields(map[string]interface{}{
		"provider": cfg.Provider.Name,
		"cache":    rdb.Enabled(),
	}).Debug("Market data provider ready")

	return NewCached(p, redis.NewCache(rdb, keyPrefix), cfg.Redis.CacheTTL, log, rec), nil
}
