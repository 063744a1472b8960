// Package services provides internal service implementations for the build catalog backend.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const githubAPI = "https://api.github.com"

// githubRelease is the subset of the GitHub release payload the catalog reads.
type githubRelease struct {
	TagName     string        `json:"tag_name"`
	Draft       bool          `json:"draft"`
	Prerelease  bool          `json:"prerelease"`
	PublishedAt time.Time     `json:"published_at"`
	Assets      []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// GitHubReleaseFetcher implements FeedFetcher for projects that publish their
// builds as GitHub releases. Feed URLs use the form github://owner/repo; the
// release tag carries the version and the first asset supplies the artifact.
// Draft and prerelease entries are skipped. Set GITHUB_TOKEN to raise the API
// rate limit for busy catalogs.
type GitHubReleaseFetcher struct {
	Client  *http.Client
	APIBase string
}

// NewGitHubReleaseFetcher creates a fetcher against the public GitHub API.
func NewGitHubReleaseFetcher() *GitHubReleaseFetcher {
	return &GitHubReleaseFetcher{
		Client:  &http.Client{Timeout: 30 * time.Second},
		APIBase: githubAPI,
	}
}

// FetchFeed lists the repository's releases as feed entries. When since is
// set it is sent as If-Modified-Since so unchanged repositories answer 304.
func (f *GitHubReleaseFetcher) FetchFeed(ctx context.Context, feedURL string, since time.Time) ([]FeedEntry, bool, error) {
	repo := strings.TrimPrefix(feedURL, "github://")
	if repo == feedURL || strings.Count(repo, "/") != 1 {
		return nil, false, fmt.Errorf("github feed URL must look like github://owner/repo, got %q", feedURL)
	}

	url := fmt.Sprintf("%s/repos/%s/releases?per_page=50", f.APIBase, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if !since.IsZero() {
		req.Header.Set("If-Modified-Since", since.UTC().Format(http.TimeFormat))
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch releases for %s: %w", repo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, true, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("github api error for %s: %s", repo, resp.Status)
	}

	var releases []githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, false, fmt.Errorf("failed to decode releases for %s: %w", repo, err)
	}

	entries := make([]FeedEntry, 0, len(releases))
	for _, rel := range releases {
		if rel.Draft || rel.Prerelease || rel.TagName == "" || rel.PublishedAt.IsZero() {
			continue
		}
		// Branch is left empty so the feed configuration's branch applies.
		entry := FeedEntry{
			Version:    rel.TagName,
			CommitTime: rel.PublishedAt.UTC().Format(time.RFC3339),
		}
		if len(rel.Assets) > 0 {
			entry.URL = rel.Assets[0].BrowserDownloadURL
			entry.FileSize = rel.Assets[0].Size
		}
		entries = append(entries, entry)
	}
	return entries, false, nil
}

var _ FeedFetcher = (*GitHubReleaseFetcher)(nil)
