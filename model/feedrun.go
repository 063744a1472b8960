// Package model - Feed run tracking for poller observability
package model

import "time"

// Feed run outcomes
const (
	FeedRunOK          = "ok"
	FeedRunError       = "error"
	FeedRunNotModified = "not_modified"
)

// FeedRun records one poll of an upstream build feed
type FeedRun struct {
	Key        string    `json:"_key,omitempty"`
	Feed       string    `json:"feed"`     // e.g., "stable", "daily"
	FeedURL    string    `json:"feed_url"` // endpoint that was polled
	Branch     string    `json:"branch"`   // branch the feed publishes
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcome    string    `json:"outcome"` // "ok", "error", "not_modified"
	BuildsSeen int       `json:"builds_seen"`
	BuildsNew  int       `json:"builds_new"`
	Error      string    `json:"error,omitempty"`
	ObjType    string    `json:"objtype"` // "FeedRun"
}

// NewFeedRun creates a feed run record for a poll that is starting now
func NewFeedRun(feed, feedURL, branch string) *FeedRun {
	return &FeedRun{
		Feed:      feed,
		FeedURL:   feedURL,
		Branch:    branch,
		StartedAt: time.Now().UTC(),
		ObjType:   "FeedRun",
	}
}

// Finish stamps the run with its outcome
func (r *FeedRun) Finish(outcome string, buildsSeen, buildsNew int, err error) {
	r.FinishedAt = time.Now().UTC()
	r.Outcome = outcome
	r.BuildsSeen = buildsSeen
	r.BuildsNew = buildsNew
	if err != nil {
		r.Error = err.Error()
	}
}
