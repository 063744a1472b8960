// Package services provides internal service implementations for the build catalog backend.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/buildscout/buildcat-backend/database"
	"github.com/buildscout/buildcat-backend/internal/metrics"
	"github.com/buildscout/buildcat-backend/model"
	"github.com/buildscout/buildcat-backend/util"
	"github.com/buildscout/buildcat-backend/versionquery"
)

// BuildNotifier publishes downstream notifications for newly cataloged builds.
type BuildNotifier interface {
	PublishBuildDiscovered(ctx context.Context, build model.Build) error
}

// CatalogService owns the in-memory build catalog and its persistence.
// Matching runs against an immutable snapshot so readers never block ingestion.
type CatalogService struct {
	DB      database.DBConnection
	Metrics *metrics.Metrics

	mu       sync.RWMutex
	builds   []model.Build
	matcher  *versionquery.Matcher
	notifier BuildNotifier
}

// NewCatalogService creates a catalog service with an empty catalog.
// Call Reload to populate it from the database.
func NewCatalogService(db database.DBConnection, m *metrics.Metrics) *CatalogService {
	return &CatalogService{
		DB:      db,
		Metrics: m,
		matcher: versionquery.NewMatcher(nil),
	}
}

// SetNotifier wires the producer used to announce newly cataloged builds.
func (s *CatalogService) SetNotifier(n BuildNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// Reload replaces the in-memory catalog with the current database contents.
func (s *CatalogService) Reload(ctx context.Context) error {
	query := `
		FOR b IN build
			RETURN b
	`

	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{})
	if err != nil {
		return fmt.Errorf("failed to load builds: %w", err)
	}
	defer cursor.Close()

	var builds []model.Build
	for cursor.HasMore() {
		var b model.Build
		if _, err := cursor.ReadDocument(ctx, &b); err != nil {
			log.Printf("Skipping unreadable build document: %v", err)
			continue
		}
		builds = append(builds, b)
	}

	model.SortBuilds(builds)

	s.mu.Lock()
	s.builds = builds
	s.matcher = versionquery.NewMatcher(builds)
	s.mu.Unlock()

	s.Metrics.SetCatalogSize(len(builds))
	log.Printf("Catalog loaded with %d builds", len(builds))
	return nil
}

// Builds returns a copy of the current catalog in version order.
func (s *CatalogService) Builds() []model.Build {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Build, len(s.builds))
	copy(out, s.builds)
	return out
}

// Count returns the number of builds in the catalog.
func (s *CatalogService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.builds)
}

// Branches returns the distinct branches present in the catalog, sorted.
func (s *CatalogService) Branches() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var branches []string
	for _, b := range s.builds {
		if !util.Contains(branches, b.Branch) {
			branches = append(branches, b.Branch)
		}
	}
	sort.Strings(branches)
	return branches
}

// ParseQuery parses a version search query and records the outcome.
func (s *CatalogService) ParseQuery(raw string) (versionquery.Query, error) {
	q, err := versionquery.Parse(raw)
	switch {
	case err == nil:
		s.Metrics.RecordQueryParse("ok")
	case errors.Is(err, versionquery.ErrInvalidQueryFields):
		s.Metrics.RecordQueryParse("invalid_fields")
	default:
		s.Metrics.RecordQueryParse("malformed")
	}
	return q, err
}

// MatchQuery narrows the catalog to the builds satisfying the query.
func (s *CatalogService) MatchQuery(q versionquery.Query) []model.Build {
	s.mu.RLock()
	m := s.matcher
	s.mu.RUnlock()

	start := time.Now()
	results := m.Match(q)
	s.Metrics.RecordMatch(len(results), time.Since(start))
	return results
}

// Ingest encapsulates the core logic for cataloging a build. The version
// label is normalized, the build is deduplicated by its natural key
// (version + branch + build hash), persisted, added to the in-memory
// catalog, and announced downstream. This function is shared by the REST
// API handler, the feed poller, and the Kafka event processor to ensure
// identical behavior.
func (s *CatalogService) Ingest(ctx context.Context, req model.BuildIngestRequest) (model.BuildIngestResult, error) {
	// 1. Normalize the version label
	if util.IsEmpty(req.Version) {
		return model.BuildIngestResult{}, fmt.Errorf("build version is required")
	}
	if util.IsEmpty(req.Branch) {
		return model.BuildIngestResult{}, fmt.Errorf("build branch is required")
	}
	if req.CommitTime.IsZero() {
		return model.BuildIngestResult{}, fmt.Errorf("build commit_time is required")
	}

	version, err := util.ParseBuildVersion(req.Version)
	if err != nil {
		return model.BuildIngestResult{}, err
	}

	build, err := model.NewBuild(version, req.Branch, req.BuildHash, req.CommitTime)
	if err != nil {
		return model.BuildIngestResult{}, err
	}
	build.Platform = req.Platform
	build.Architecture = req.Architecture
	build.DownloadURL = req.DownloadURL
	build.SizeBytes = req.SizeBytes
	build.DiscoveredAt = time.Now().UTC()

	// 2. Check for an existing build by natural key
	existingKey, err := database.FindBuildByNaturalKey(ctx, s.DB.Database,
		build.Version.String(),
		build.Branch,
		build.BuildHash,
	)
	if err != nil {
		return model.BuildIngestResult{}, fmt.Errorf("failed to check for existing build: %w", err)
	}
	if existingKey != "" {
		return model.BuildIngestResult{Key: existingKey, Created: false}, nil
	}

	// 3. Save the new build
	build.Key = util.SanitizeKey(build.NaturalKey())
	meta, err := s.DB.Collections["build"].CreateDocument(ctx, build)
	if err != nil {
		return model.BuildIngestResult{}, fmt.Errorf("failed to save build: %w", err)
	}
	build.Key = meta.Key

	// 4. Add to the in-memory catalog. The current slice is owned by the
	// live matcher, so build a fresh one rather than sorting in place.
	s.mu.Lock()
	next := make([]model.Build, 0, len(s.builds)+1)
	next = append(next, s.builds...)
	next = append(next, build)
	model.SortBuilds(next)
	s.builds = next
	s.matcher = versionquery.NewMatcher(next)
	count := len(next)
	notifier := s.notifier
	s.mu.Unlock()

	s.Metrics.SetCatalogSize(count)

	// 5. Announce the build downstream
	if notifier != nil {
		if err := notifier.PublishBuildDiscovered(ctx, build); err != nil {
			log.Printf("Warning: Failed to publish build discovered event for %s: %v", build, err)
		}
	}

	log.Printf("Cataloged build %s", build)
	return model.BuildIngestResult{Key: build.Key, Created: true}, nil
}
