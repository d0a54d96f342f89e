package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nearbite/nearbite/internal/answer"
	"github.com/nearbite/nearbite/internal/catalog"
	"github.com/nearbite/nearbite/internal/discovery"
	"github.com/nearbite/nearbite/internal/geocode"
	"github.com/nearbite/nearbite/internal/monitoring"
	"github.com/nearbite/nearbite/internal/pipeline"
	"github.com/nearbite/nearbite/internal/queryfilter"
	"github.com/nearbite/nearbite/internal/resilience"
	"github.com/nearbite/nearbite/internal/runlog"
	anthropicpkg "github.com/nearbite/nearbite/pkg/anthropic"
	"github.com/nearbite/nearbite/pkg/navermap"
	"github.com/nearbite/nearbite/pkg/perplexity"
)

// appEnv holds the initialized clients, stores, and the pipeline needed by
// the recommend/serve/runs commands.
type appEnv struct {
	Pipeline *pipeline.Pipeline
	Runs     runlog.Store
	Metrics  *monitoring.Metrics
	Breakers *resilience.BreakerSet
	Catalog  catalog.Catalog
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Catalog != nil {
		e.Catalog.Close()
	}
	if e.Runs != nil {
		_ = e.Runs.Close()
	}
}

// initApp wires every configured collaborator. Missing optional services
// (map provider, catalog, LLMs) leave their stages in degraded mode rather
// than failing startup.
func initApp(ctx context.Context) (*appEnv, error) {
	runs, err := initRunLog(ctx)
	if err != nil {
		return nil, err
	}

	metrics := monitoring.NewMetrics()
	breakers := resilience.NewBreakerSet(5, 30*time.Second)

	mapClient := initMapClient()

	var provider discovery.Provider
	if mapClient != nil {
		provider = mapClient
	} else {
		zap.L().Warn("map provider not configured, discovery runs in degraded mode")
		provider = &discovery.StaticProvider{}
	}
	finder := discovery.NewFinder(provider, breakers.Get("navermap"), discoveryOptions())

	geocoder := geocode.NewResolver(nil)
	if mapClient != nil {
		geocoder = geocode.NewResolver(mapClient)
	}

	extractor, err := initExtractor()
	if err != nil {
		_ = runs.Close()
		return nil, err
	}

	cat, resolver, err := initCatalog(ctx)
	if err != nil {
		_ = runs.Close()
		return nil, err
	}

	var generator *answer.Generator
	if cfg.Anthropic.Key != "" {
		generator = answer.NewGenerator(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
	} else {
		zap.L().Warn("anthropic key not set, answers use the deterministic fallback")
	}

	p := pipeline.New(
		extractor,
		geocoder,
		finder,
		resolver,
		generator,
		runs,
		metrics,
		pipeline.OptionsFromConfig(cfg.Pipeline, cfg.Retrieval.TopK),
	)

	return &appEnv{
		Pipeline: p,
		Runs:     runs,
		Metrics:  metrics,
		Breakers: breakers,
		Catalog:  cat,
	}, nil
}

// initRunLog opens the configured run log driver.
func initRunLog(ctx context.Context) (runlog.Store, error) {
	switch cfg.RunLog.Driver {
	case "", "none":
		return runlog.Nop{}, nil
	case "sqlite":
		return runlog.NewSQLite(cfg.RunLog.Path)
	case "postgres":
		return runlog.NewPostgres(ctx, cfg.RunLog.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown runlog driver %q", cfg.RunLog.Driver)
	}
}

func initMapClient() navermap.Client {
	if cfg.Map.ClientID == "" {
		return nil
	}
	opts := []navermap.Option{navermap.WithRateLimit(cfg.Map.RateLimitRPS)}
	if cfg.Map.BaseURL != "" {
		opts = append(opts, navermap.WithBaseURL(cfg.Map.BaseURL))
	}
	return navermap.NewClient(cfg.Map.ClientID, cfg.Map.ClientSecret, opts...)
}

func initExtractor() (queryfilter.Extractor, error) {
	rule, err := queryfilter.DefaultRuleExtractor()
	if err != nil {
		return nil, err
	}
	if cfg.Extractor.Key == "" {
		return rule, nil
	}
	px := perplexity.NewClient(cfg.Extractor.Key,
		perplexity.WithBaseURL(cfg.Extractor.BaseURL),
		perplexity.WithModel(cfg.Extractor.Model),
	)
	return queryfilter.NewLLMExtractor(px, rule), nil
}

func initCatalog(ctx context.Context) (catalog.Catalog, *catalog.Resolver, error) {
	if cfg.Catalog.DatabaseURL == "" {
		zap.L().Warn("catalog database not configured, discount resolution disabled")
		return nil, nil, nil
	}
	cat, err := catalog.NewPostgres(ctx, cfg.Catalog.DatabaseURL, cfg.Catalog.MaxConns)
	if err != nil {
		return nil, nil, err
	}
	return cat, catalog.NewResolver(cat), nil
}

func discoveryOptions() discovery.Options {
	opts := discovery.DefaultOptions()
	if cfg.Discovery.RadiusMeters > 0 {
		opts.RadiusMeters = cfg.Discovery.RadiusMeters
	}
	if cfg.Discovery.MaxCandidates > 0 {
		opts.MaxCandidates = cfg.Discovery.MaxCandidates
	}
	if cfg.Discovery.ReviewsPerMerchant > 0 {
		opts.ReviewsPerMerchant = cfg.Discovery.ReviewsPerMerchant
	}
	if cfg.Discovery.MaxPages > 0 {
		opts.MaxPages = cfg.Discovery.MaxPages
	}
	if cfg.Discovery.PageSize > 0 {
		opts.PageSize = cfg.Discovery.PageSize
	}
	if cfg.Discovery.ReviewConcurrency > 0 {
		opts.ReviewConcurrency = cfg.Discovery.ReviewConcurrency
	}
	opts.SampleSeed = cfg.Discovery.SampleSeed
	return opts
}
