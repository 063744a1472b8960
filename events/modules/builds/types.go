// Package builds defines types for Kafka event processing of build catalog events.
package builds

import (
	"time"

	"github.com/buildscout/buildcat-backend/model"
)

// BuildSubmittedEvent represents a completed build announced by a build farm.
type BuildSubmittedEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	Build BuildRef `json:"build"`

	Artifact ArtifactReference `json:"artifact"`
}

// BuildRef identifies the build being announced.
type BuildRef struct {
	Version    string    `json:"version"`
	Branch     string    `json:"branch"`
	BuildHash  string    `json:"build_hash,omitempty"`
	CommitTime time.Time `json:"commit_time"`
}

// ArtifactReference describes where the build artifact is stored and how it can be retrieved.
type ArtifactReference struct {
	// Download location published by the build farm
	URL string `json:"url,omitempty"`

	// Target platform identifiers (e.g. "linux", "x86_64")
	Platform     string `json:"platform,omitempty"`
	Architecture string `json:"architecture,omitempty"`

	// Optional integrity metadata
	ContentSha string `json:"content_sha,omitempty"`
	SizeBytes  int64  `json:"size_bytes,omitempty"`

	// Timestamp when the artifact was uploaded
	UploadedAt time.Time `json:"uploaded_at"`
}

// BuildDiscoveredEvent announces a newly cataloged build to downstream consumers.
type BuildDiscoveredEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	Build model.Build `json:"build"`
}
