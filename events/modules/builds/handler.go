// Package builds handles Kafka event processing for build submission events.
package builds

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/buildscout/buildcat-backend/model"
)

// BuildService defines the interface for build catalog operations.
type BuildService interface {
	CreateBuild(ctx context.Context, req model.BuildIngestRequest) error
}

// HandleBuildSubmittedWithService processes build submitted events from Kafka.
func HandleBuildSubmittedWithService(
	ctx context.Context,
	msg []byte,
	service BuildService,
) error {
	var event BuildSubmittedEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("failed to unmarshal BuildSubmittedEvent: %w", err)
	}

	if event.Build.Version == "" || event.Build.Branch == "" || event.Build.CommitTime.IsZero() {
		return fmt.Errorf("invalid event: missing required fields")
	}

	log.Printf("Processing build %s@%s (hash=%s)", event.Build.Version, event.Build.Branch, event.Build.BuildHash)

	req := model.BuildIngestRequest{
		Version:      event.Build.Version,
		Branch:       event.Build.Branch,
		BuildHash:    event.Build.BuildHash,
		CommitTime:   event.Build.CommitTime,
		Platform:     event.Artifact.Platform,
		Architecture: event.Artifact.Architecture,
		DownloadURL:  event.Artifact.URL,
		SizeBytes:    event.Artifact.SizeBytes,
	}

	if err := service.CreateBuild(ctx, req); err != nil {
		return fmt.Errorf("internal service error: %w", err)
	}

	log.Printf("Successfully processed build %s@%s", event.Build.Version, event.Build.Branch)
	return nil
}
