package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/gaen-tech/leadscout/internal/analysis"
	"github.com/gaen-tech/leadscout/internal/persona"
	"github.com/gaen-tech/leadscout/internal/store"
	anthropicpkg "github.com/gaen-tech/leadscout/pkg/anthropic"
	"github.com/gaen-tech/leadscout/pkg/gemini"
)

// analysisEnv holds the initialized store, persona resolution, and
// analyzer shared by the analyze/batch/serve commands.
type analysisEnv struct {
	Store    store.Store
	Personas *persona.Store
	Analyzer *analysis.Analyzer
}

// Close releases resources held by the analysis environment.
func (ae *analysisEnv) Close() {
	if ae.Store != nil {
		_ = ae.Store.Close()
	}
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leadscout.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initGateway builds the model gateway for the configured provider.
func initGateway() (analysis.Gateway, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.Gemini.Key == "" {
			return nil, eris.New("gemini API key is required (LEADSCOUT_GEMINI_KEY)")
		}
		opts := []gemini.Option{gemini.WithModel(cfg.Gemini.Model)}
		if cfg.Gemini.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.Gemini.BaseURL))
		}
		client := gemini.NewClient(cfg.Gemini.Key, opts...)
		return analysis.NewGeminiGateway(client, cfg.Gemini.Model, cfg.Gemini.Temperature), nil
	case "anthropic":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("anthropic API key is required (LEADSCOUT_ANTHROPIC_KEY)")
		}
		client := anthropicpkg.NewClient(cfg.Anthropic.Key)
		return analysis.NewAnthropicGateway(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, cfg.Anthropic.Temperature), nil
	default:
		return nil, eris.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// initAnalysis sets up the store, persona resolution, and analyzer.
// Callers should defer env.Close().
func initAnalysis(ctx context.Context) (*analysisEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	gateway, err := initGateway()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	personas := persona.NewStore(st)
	return &analysisEnv{
		Store:    st,
		Personas: personas,
		Analyzer: analysis.NewAnalyzer(gateway, personas, st),
	}, nil
}

// initPersonaStore sets up the store and persona resolution without a
// model gateway, for commands that never call the model.
func initPersonaStore(ctx context.Context) (*analysisEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return &analysisEnv{
		Store:    st,
		Personas: persona.NewStore(st),
	}, nil
}

// batchDelay converts configured seconds into the runner's pacing delay.
func batchDelay() time.Duration {
	return time.Duration(cfg.Batch.DelaySecs) * time.Second
}
