package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFeedsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write feeds file: %v", err)
	}
	return path
}

func TestLoadFeedsFile(t *testing.T) {
	path := writeFeedsFile(t, `
poll_interval: 5m
platform: linux
architecture: x86_64
feeds:
  - name: stable
    url: https://builds.example.com/stable/?format=json&v=1
    branch: stable
  - name: daily
    url: https://builds.example.com/daily/?format=json&v=1
    branch: daily
`)

	feeds, err := LoadFeedsFile(path)
	if err != nil {
		t.Fatalf("Failed to load feeds file: %v", err)
	}

	if feeds.Platform != "linux" {
		t.Errorf("Expected platform linux, got %s", feeds.Platform)
	}
	if feeds.Architecture != "x86_64" {
		t.Errorf("Expected architecture x86_64, got %s", feeds.Architecture)
	}
	if len(feeds.Feeds) != 2 {
		t.Fatalf("Expected 2 feeds, got %d", len(feeds.Feeds))
	}
	if feeds.Feeds[0].Name != "stable" || feeds.Feeds[0].Branch != "stable" {
		t.Errorf("Unexpected first feed: %+v", feeds.Feeds[0])
	}
	if feeds.Feeds[1].URL != "https://builds.example.com/daily/?format=json&v=1" {
		t.Errorf("Unexpected daily URL: %s", feeds.Feeds[1].URL)
	}
	if got := feeds.Interval(); got != 5*time.Minute {
		t.Errorf("Expected 5m interval, got %s", got)
	}
}

func TestLoadFeedsFileMissing(t *testing.T) {
	if _, err := LoadFeedsFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected error for missing feeds file")
	}
}

func TestLoadFeedsFileValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "feeds:\n  - url: https://x\n    branch: stable\n"},
		{"missing url", "feeds:\n  - name: stable\n    branch: stable\n"},
		{"missing branch", "feeds:\n  - name: stable\n    url: https://x\n"},
		{"not yaml", "feeds: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFeedsFile(t, tt.content)
			if _, err := LoadFeedsFile(path); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
		})
	}
}

func TestFeedsFileInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		want     time.Duration
	}{
		{"explicit", "30s", 30 * time.Second},
		{"hours", "1h", time.Hour},
		{"empty falls back", "", DefaultPollInterval},
		{"unparseable falls back", "soon", DefaultPollInterval},
		{"negative falls back", "-5m", DefaultPollInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FeedsFile{PollInterval: tt.interval}
			if got := f.Interval(); got != tt.want {
				t.Errorf("Interval(%q) = %s, want %s", tt.interval, got, tt.want)
			}
		})
	}
}
