package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/folio/api/handler"
	"github.com/use-agent/folio/cache"
	"github.com/use-agent/folio/cleaner"
	"github.com/use-agent/folio/config"
	"github.com/use-agent/folio/llm"
	"github.com/use-agent/folio/scraper"
	"github.com/use-agent/folio/store"
	"github.com/use-agent/folio/webhook"
)

// app owns every long-lived collaborator and tears them down in reverse.
type app struct {
	deps    *handler.Deps
	scraper *scraper.Scraper
	closers []func()
}

// newApp builds the scraper and the optional collaborators enabled in
// cfg. LLM and store failures are logged and the feature is disabled.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	sc, err := scraper.New(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{scraper: sc}
	a.closers = append(a.closers, sc.Close)

	cc := cache.New(cfg.Cache.MaxEntries)
	a.closers = append(a.closers, cc.Stop)

	d := &handler.Deps{
		Config:   cfg,
		Scraper:  sc,
		Cache:    cc,
		Digester: cleaner.NewDigester(),
		Webhooks: webhook.NewSender(),
		Started:  time.Now(),
	}

	if cfg.LLM.Enabled() {
		gen, err := llm.New(ctx, cfg.LLM)
		if err != nil {
			slog.Warn("language model disabled", "provider", cfg.LLM.Provider, "error", err)
		} else {
			d.LLM = gen
			a.closers = append(a.closers, func() { _ = gen.Close() })
			slog.Info("language model enabled", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
		}
	}

	if cfg.Mongo.Enabled() {
		st, err := store.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			slog.Warn("snapshot store disabled", "error", err)
		} else {
			d.Store = st
			a.closers = append(a.closers, func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = st.Close(closeCtx)
			})
		}
	}

	a.deps = d
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
