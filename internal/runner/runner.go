// Package runner drives the fetch-and-tag cycle: recompile the rule table,
// swap it in, fetch every subscribed feed, and apply the tagging engine to
// each entry before persisting it.
package runner

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/Thaodan/elfeed-autotag/internal/config"
	"github.com/Thaodan/elfeed-autotag/internal/feed"
	"github.com/Thaodan/elfeed-autotag/internal/rules"
	"github.com/Thaodan/elfeed-autotag/internal/store"
	"github.com/Thaodan/elfeed-autotag/internal/tagger"
)

// Runner owns the compile/fetch/tag cycle.
type Runner struct {
	cfg     *config.Config
	store   *store.Store
	fetcher *feed.Fetcher
	engine  *tagger.Engine
	holder  *tagger.Holder
	log     *log.Logger
}

// New creates a Runner around the given store.
func New(cfg *config.Config, st *store.Store, logger *log.Logger) *Runner {
	return &Runner{
		cfg:     cfg,
		store:   st,
		fetcher: feed.NewFetcher(),
		engine:  tagger.New(st),
		holder:  &tagger.Holder{},
		log:     logger,
	}
}

// Holder exposes the current-table holder, e.g. for the HTTP API.
func (r *Runner) Holder() *tagger.Holder {
	return r.holder
}

// Recompile rebuilds the rule table from the configured outline documents
// and swaps it in atomically. On failure the previous table stays active.
func (r *Runner) Recompile() (*rules.Table, error) {
	opts := rules.Options{MarkerTag: r.cfg.MarkerTag, IgnoreTag: r.cfg.IgnoreTag}
	table, err := rules.Compile(r.cfg.Files, opts)
	if err != nil {
		return nil, err
	}

	r.holder.Swap(table)
	r.engine.Reset()
	r.log.Info("rules compiled",
		"keyword", len(table.KeywordRules),
		"subscription", len(table.SubscriptionRules))
	return table, nil
}

// RunOnce recompiles and then fetches and tags every subscribed feed.
func (r *Runner) RunOnce(ctx context.Context) error {
	table, err := r.Recompile()
	if err != nil {
		return err
	}

	for _, url := range table.Feeds() {
		if err := r.refreshFeed(ctx, url, table); err != nil {
			// One broken feed never stops the rest.
			r.log.Warn("feed refresh failed", "url", url, "err", err)
		}
	}
	return nil
}

// RunScheduled runs the cycle immediately and then on the configured cron
// schedule until the context is cancelled.
func (r *Runner) RunScheduled(ctx context.Context) error {
	if r.cfg.RefreshSchedule == "" {
		return r.RunOnce(ctx)
	}

	if err := r.RunOnce(ctx); err != nil {
		return err
	}

	c := cron.New()
	_, err := c.AddFunc(r.cfg.RefreshSchedule, func() {
		if err := r.RunOnce(ctx); err != nil {
			r.log.Error("scheduled refresh failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", r.cfg.RefreshSchedule, err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

func (r *Runner) refreshFeed(ctx context.Context, url string, table *rules.Table) error {
	fd, entries, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}

	if err := r.store.UpsertFeed(fd); err != nil {
		return err
	}

	created := 0
	for i := range entries {
		r.engine.Apply(&entries[i], table)
		isNew, err := r.store.SaveEntry(&entries[i])
		if err != nil {
			return err
		}
		if isNew {
			created++
		}
	}

	r.log.Info("feed refreshed", "url", url, "entries", len(entries), "new", created)
	return nil
}
