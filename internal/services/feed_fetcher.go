// Package services provides internal service implementations for the build catalog backend.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
)

// FeedSourceFetcher routes each feed to the fetcher for its URL scheme:
// github://owner/repo feeds read the repository's releases, anything else is
// fetched as a builder JSON feed.
type FeedSourceFetcher struct {
	JSON   FeedFetcher
	GitHub FeedFetcher
}

// NewFeedSourceFetcher creates the default production fetcher.
func NewFeedSourceFetcher() *FeedSourceFetcher {
	return &FeedSourceFetcher{
		JSON:   NewHTTPFeedFetcher(),
		GitHub: NewGitHubReleaseFetcher(),
	}
}

// FetchFeed dispatches to the fetcher responsible for the feed's scheme.
func (f *FeedSourceFetcher) FetchFeed(ctx context.Context, url string, since time.Time) ([]FeedEntry, bool, error) {
	if strings.HasPrefix(url, "github://") {
		return f.GitHub.FetchFeed(ctx, url, since)
	}
	return f.JSON.FetchFeed(ctx, url, since)
}

var _ FeedFetcher = (*FeedSourceFetcher)(nil)

// HTTPFeedFetcher implements FeedFetcher against the builder JSON v1 endpoints.
type HTTPFeedFetcher struct {
	Client *http.Client
}

// NewHTTPFeedFetcher creates a fetcher with a bounded request timeout.
func NewHTTPFeedFetcher() *HTTPFeedFetcher {
	return &HTTPFeedFetcher{
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchFeed retrieves the feed's current entries. When since is set it is
// sent as If-Modified-Since so unchanged feeds answer 304 and are skipped.
// Transient failures are retried with exponential backoff.
func (f *HTTPFeedFetcher) FetchFeed(ctx context.Context, url string, since time.Time) ([]FeedEntry, bool, error) {
	log.Printf("Fetching feed: %s", url)

	if url == "" {
		return nil, false, fmt.Errorf("feed URL is empty")
	}

	var entries []FeedEntry
	var notModified bool

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)

	err := backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if !since.IsZero() {
			req.Header.Set("If-Modified-Since", since.UTC().Format(http.TimeFormat))
		}

		resp, err := f.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotModified:
			notModified = true
			return nil
		case resp.StatusCode == http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(body, &entries); err != nil {
				return backoff.Permanent(fmt.Errorf("feed %s returned invalid JSON: %w", url, err))
			}
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("feed %s returned %d", url, resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("feed %s returned %d", url, resp.StatusCode))
		}
	}, backoff.WithContext(bo, ctx))

	if err != nil {
		return nil, false, err
	}

	return entries, notModified, nil
}

var _ FeedFetcher = (*HTTPFeedFetcher)(nil)
