// Package model - API types for combining models in API requests/responses
package model

import "time"

// BuildIngestRequest is the payload for registering a build over the REST API
type BuildIngestRequest struct {
	Version    string    `json:"version"`
	Branch     string    `json:"branch"`
	BuildHash  string    `json:"build_hash"`
	CommitTime time.Time `json:"commit_time"`
	// Optional artifact metadata
	Platform     string `json:"platform,omitempty"`
	Architecture string `json:"architecture,omitempty"`
	DownloadURL  string `json:"download_url,omitempty"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
}

// BuildIngestResult reports what happened to an ingested build
type BuildIngestResult struct {
	Key     string `json:"key"`
	Created bool   `json:"created"` // false when the build already existed
}

// QueryValidateRequest carries a version search query for validation
type QueryValidateRequest struct {
	Query string `json:"query"`
}

// QueryValidateResponse reports whether a version search query parses
type QueryValidateResponse struct {
	Valid     bool   `json:"valid"`
	Canonical string `json:"canonical,omitempty"` // serialized form of the parsed query
	Error     string `json:"error,omitempty"`
}

// BuildSearchResponse is the result of matching a query against the catalog
type BuildSearchResponse struct {
	Query  string  `json:"query"` // canonical form of the query that was matched
	Count  int     `json:"count"`
	Builds []Build `json:"builds"`
}

// BuildResolveResponse carries the single build a query resolved to
type BuildResolveResponse struct {
	Query string `json:"query"`
	Build Build  `json:"build"`
}

// RefreshStatus describes a running or completed feed refresh
type RefreshStatus struct {
	Running    bool      `json:"running"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	FeedsTotal int       `json:"feeds_total"`
	FeedsDone  int       `json:"feeds_done"`
	BuildsSeen int       `json:"builds_seen"`
	BuildsNew  int       `json:"builds_new"`
	LastError  string    `json:"last_error,omitempty"`
}
