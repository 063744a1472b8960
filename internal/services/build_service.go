// Package services provides internal service implementations for the build catalog backend.
package services

import (
	"context"
	"log"

	builds "github.com/buildscout/buildcat-backend/events/modules/builds"
	"github.com/buildscout/buildcat-backend/model"
)

// BuildServiceWrapper implements builds.BuildService
type BuildServiceWrapper struct {
	Catalog *CatalogService
}

// CreateBuild catalogs a build announced over Kafka by delegating to the
// shared core logic in the catalog service. This ensures that Kafka-driven
// ingestion performs the same version normalization, deduplication, and
// downstream notification as the REST API and the feed poller.
func (w *BuildServiceWrapper) CreateBuild(ctx context.Context, req model.BuildIngestRequest) error {
	log.Printf("Worker: Processing build submission %s@%s", req.Version, req.Branch)

	_, err := w.Catalog.Ingest(ctx, req)
	return err
}

var _ builds.BuildService = (*BuildServiceWrapper)(nil)
var _ BuildNotifier = (*builds.BuildProducer)(nil)
