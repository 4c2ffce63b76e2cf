package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Drewraw/social-record-platform/internal/enrich"
	"github.com/Drewraw/social-record-platform/internal/fetcher"
	"github.com/Drewraw/social-record-platform/internal/profile"
	"github.com/Drewraw/social-record-platform/internal/resilience"
	"github.com/Drewraw/social-record-platform/internal/resolver"
	"github.com/Drewraw/social-record-platform/internal/rules"
	"github.com/Drewraw/social-record-platform/internal/store"
	"github.com/Drewraw/social-record-platform/pkg/wikidata"
	"github.com/Drewraw/social-record-platform/pkg/wikipedia"
)

// appEnv holds the initialized collaborators shared by the commands.
type appEnv struct {
	Store   store.Store // nil unless requested
	Service *profile.Service
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.SQLitePath)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func retryConfig() resilience.RetryConfig {
	return resilience.FixedDelay(cfg.Fetch.MaxAttempts, cfg.Fetch.RetryDelay())
}

func initLoader() fetcher.Loader {
	return fetcher.NewPageLoader(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout(),
		Retry:     retryConfig(),
		Pause:     cfg.Fetch.Pause(),
	}))
}

// lowerTierSources returns the enabled gap-filling sources.
func lowerTierSources() []resolver.Source {
	var sources []resolver.Source
	if cfg.Wikidata.Enabled {
		wd := wikidata.NewClient(
			wikidata.WithEndpoint(cfg.Wikidata.Endpoint),
			wikidata.WithUserAgent(cfg.Wikidata.UserAgent),
			wikidata.WithRetry(retryConfig()),
		)
		sources = append(sources, enrich.NewRecordSource(wd))
	} else {
		zap.L().Debug("wikidata disabled, secondary tier skipped")
	}
	if cfg.Wikipedia.Enabled {
		wp := wikipedia.NewClient(
			wikipedia.WithBaseURL(cfg.Wikipedia.BaseURL),
			wikipedia.WithUserAgent(cfg.Wikipedia.UserAgent),
			wikipedia.WithRetry(retryConfig()),
		)
		sources = append(sources, enrich.NewNarrativeSource(wp))
	} else {
		zap.L().Debug("wikipedia disabled, tertiary tier skipped")
	}
	return sources
}

// initApp validates config for mode and builds the profile service. The
// store is opened only when withStore is set. Callers should defer
// env.Close().
func initApp(ctx context.Context, mode string, withStore bool) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	set, err := rules.Load(cfg.Rules.Path)
	if err != nil {
		return nil, err
	}

	loader := initLoader()
	builder, err := profile.NewBuilder(set,
		profile.WithLoader(loader),
		profile.WithSources(lowerTierSources()...),
	)
	if err != nil {
		return nil, err
	}

	env := &appEnv{
		Service: profile.NewService(builder, loader, profile.WithSearchURL(cfg.Source.SearchURL)),
	}
	if withStore {
		st, err := openStore(ctx)
		if err != nil {
			return nil, err
		}
		env.Store = st
	}
	return env, nil
}
