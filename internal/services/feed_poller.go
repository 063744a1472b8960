// Package services provides internal service implementations for the build catalog backend.
package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/buildscout/buildcat-backend/database"
	"github.com/buildscout/buildcat-backend/internal/metrics"
	"github.com/buildscout/buildcat-backend/model"
	"github.com/buildscout/buildcat-backend/util"
)

// FeedEntry is one build as published by an upstream feed in its JSON v1 format.
type FeedEntry struct {
	Version      string `json:"version"`
	Branch       string `json:"branch,omitempty"` // feeds may omit this; the feed config branch applies
	Hash         string `json:"hash,omitempty"`
	CommitTime   string `json:"commit_time"`
	Platform     string `json:"platform,omitempty"`
	Architecture string `json:"architecture,omitempty"`
	URL          string `json:"url,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
}

// FeedFetcher retrieves the entries a feed currently publishes. A true
// notModified result means the feed has not changed since the given time
// and entries is nil.
type FeedFetcher interface {
	FetchFeed(ctx context.Context, url string, since time.Time) (entries []FeedEntry, notModified bool, err error)
}

// Layouts accepted for feed commit timestamps.
var feedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// FeedPoller periodically ingests upstream build feeds into the catalog.
type FeedPoller struct {
	DB      database.DBConnection
	Catalog *CatalogService
	Fetcher FeedFetcher
	Metrics *metrics.Metrics

	mu    sync.RWMutex
	feeds *util.FeedsFile
}

// NewFeedPoller creates a poller for the feeds in the given configuration.
func NewFeedPoller(db database.DBConnection, catalog *CatalogService, fetcher FeedFetcher, m *metrics.Metrics, feeds *util.FeedsFile) *FeedPoller {
	return &FeedPoller{
		DB:      db,
		Catalog: catalog,
		Fetcher: fetcher,
		Metrics: m,
		feeds:   feeds,
	}
}

// Config returns the poller's current feed configuration.
func (p *FeedPoller) Config() *util.FeedsFile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.feeds
}

// SwapConfig replaces the feed configuration. The next cycle polls the new feeds.
func (p *FeedPoller) SwapConfig(feeds *util.FeedsFile) {
	p.mu.Lock()
	p.feeds = feeds
	p.mu.Unlock()
	log.Printf("Feed configuration replaced: %d feeds, interval %s", len(feeds.Feeds), feeds.Interval())
}

// Run polls all feeds immediately and then on every interval tick until the
// context is canceled.
func (p *FeedPoller) Run(ctx context.Context) {
	log.Printf("Feed poller started with %d feeds (interval %s)", len(p.Config().Feeds), p.Config().Interval())

	p.RefreshAll(ctx)

	ticker := time.NewTicker(p.Config().Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Feed poller stopped")
			return
		case <-ticker.C:
			p.RefreshAll(ctx)
			// Pick up interval changes from swapped configurations
			ticker.Reset(p.Config().Interval())
		}
	}
}

// RefreshAll polls every configured feed once and reports totals.
func (p *FeedPoller) RefreshAll(ctx context.Context) model.RefreshStatus {
	cfg := p.Config()

	status := model.RefreshStatus{
		StartedAt:  time.Now().UTC(),
		FeedsTotal: len(cfg.Feeds),
	}

	for _, feed := range cfg.Feeds {
		seen, added, err := p.pollFeed(ctx, cfg, feed)
		status.FeedsDone++
		status.BuildsSeen += seen
		status.BuildsNew += added
		if err != nil {
			status.LastError = err.Error()
			log.Printf("Feed %s poll failed: %v", feed.Name, err)
		}
	}

	status.FinishedAt = time.Now().UTC()
	return status
}

// pollFeed ingests one feed and records the run in the feedrun collection.
func (p *FeedPoller) pollFeed(ctx context.Context, cfg *util.FeedsFile, feed util.FeedConfig) (seen int, added int, err error) {
	start := time.Now()
	run := model.NewFeedRun(feed.Name, feed.URL, feed.Branch)

	since, _ := util.GetLastPoll(p.DB, feed.Name)

	entries, notModified, err := p.Fetcher.FetchFeed(ctx, feed.URL, since)
	if err != nil {
		run.Finish(model.FeedRunError, 0, 0, err)
		p.saveRun(ctx, run)
		p.Metrics.RecordFeedIngest(feed.Name, model.FeedRunError, time.Since(start))
		return 0, 0, err
	}

	if notModified {
		run.Finish(model.FeedRunNotModified, 0, 0, nil)
		p.saveRun(ctx, run)
		p.Metrics.RecordFeedIngest(feed.Name, model.FeedRunNotModified, time.Since(start))
		return 0, 0, nil
	}

	for _, entry := range entries {
		seen++

		req, ok := p.entryToRequest(cfg, feed, entry)
		if !ok {
			continue
		}

		result, err := p.Catalog.Ingest(ctx, req)
		if err != nil {
			log.Printf("Feed %s: failed to ingest %s: %v", feed.Name, entry.Version, err)
			continue
		}
		if result.Created {
			added++
		}
	}

	run.Finish(model.FeedRunOK, seen, added, nil)
	p.saveRun(ctx, run)

	if err := util.SaveLastPoll(p.DB, feed.Name, time.Now().UTC()); err != nil {
		log.Printf("Feed %s: failed to save poll high-water mark: %v", feed.Name, err)
	}

	p.Metrics.RecordFeedIngest(feed.Name, model.FeedRunOK, time.Since(start))
	log.Printf("Feed %s: %d entries, %d new builds", feed.Name, seen, added)
	return seen, added, nil
}

// entryToRequest converts a feed entry into an ingest request, filling
// feed-level defaults for branch, platform, and architecture.
func (p *FeedPoller) entryToRequest(cfg *util.FeedsFile, feed util.FeedConfig, entry FeedEntry) (model.BuildIngestRequest, bool) {
	if util.IsEmpty(entry.Version) {
		log.Printf("Feed %s: skipping entry with no version", feed.Name)
		return model.BuildIngestRequest{}, false
	}

	commitTime, ok := parseFeedTime(entry.CommitTime)
	if !ok {
		log.Printf("Feed %s: skipping %s with unparseable commit_time %q", feed.Name, entry.Version, entry.CommitTime)
		return model.BuildIngestRequest{}, false
	}

	return model.BuildIngestRequest{
		Version:      entry.Version,
		Branch:       util.GetStringOrDefault(entry.Branch, feed.Branch),
		BuildHash:    entry.Hash,
		CommitTime:   commitTime,
		Platform:     util.GetStringOrDefault(entry.Platform, cfg.Platform),
		Architecture: util.GetStringOrDefault(entry.Architecture, cfg.Architecture),
		DownloadURL:  entry.URL,
		SizeBytes:    entry.FileSize,
	}, true
}

func (p *FeedPoller) saveRun(ctx context.Context, run *model.FeedRun) {
	if _, err := p.DB.Collections["feedrun"].CreateDocument(ctx, run); err != nil {
		log.Printf("Failed to record feed run for %s: %v", run.Feed, err)
	}
}

func parseFeedTime(value string) (time.Time, bool) {
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
