// Package util - YAML configuration for the upstream build feeds.
package util

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// DefaultPollInterval is used when the feeds file does not set poll_interval.
const DefaultPollInterval = 15 * time.Minute

// FeedConfig describes one upstream build feed to poll.
type FeedConfig struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Branch string `yaml:"branch"`
}

// FeedsFile is the on-disk poller configuration.
type FeedsFile struct {
	PollInterval string       `yaml:"poll_interval"`
	Platform     string       `yaml:"platform"`
	Architecture string       `yaml:"architecture"`
	Feeds        []FeedConfig `yaml:"feeds"`
}

// Interval parses poll_interval, falling back to DefaultPollInterval when
// the field is missing or unparseable.
func (f *FeedsFile) Interval() time.Duration {
	if IsEmpty(f.PollInterval) {
		return DefaultPollInterval
	}
	d, err := time.ParseDuration(f.PollInterval)
	if err != nil || d <= 0 {
		fmt.Printf("[FeedsFile] Invalid poll_interval %q, using default %s\n", f.PollInterval, DefaultPollInterval)
		return DefaultPollInterval
	}
	return d
}

// ParseFeedsFile parses and validates feeds configuration YAML.
func ParseFeedsFile(data []byte) (*FeedsFile, error) {
	var feeds FeedsFile
	if err := yaml.Unmarshal(data, &feeds); err != nil {
		return nil, fmt.Errorf("failed to parse feeds config: %w", err)
	}

	for i, feed := range feeds.Feeds {
		if IsEmpty(feed.Name) {
			return nil, fmt.Errorf("feed %d has no name", i)
		}
		if IsEmpty(feed.URL) {
			return nil, fmt.Errorf("feed %q has no url", feed.Name)
		}
		if IsEmpty(feed.Branch) {
			return nil, fmt.Errorf("feed %q has no branch", feed.Name)
		}
	}
	return &feeds, nil
}

// LoadFeedsFile reads and validates a YAML feeds file.
func LoadFeedsFile(path string) (*FeedsFile, error) {
	if !FileExists(path) {
		return nil, fmt.Errorf("feeds file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file %s: %w", path, err)
	}

	feeds, err := ParseFeedsFile(data)
	if err != nil {
		return nil, fmt.Errorf("feeds file %s: %w", path, err)
	}
	return feeds, nil
}
