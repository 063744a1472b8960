// Package model - Build defines the catalog build record and its ordering.
package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Build represents one discovered build stored in the catalog. The version,
// branch, build hash and commit time identify the build and drive query
// matching; the remaining fields are catalog metadata. Builds are treated as
// immutable once constructed.
type Build struct {
	Key          string          `json:"_key,omitempty"`
	ObjType      string          `json:"objtype,omitempty"`
	Version      *semver.Version `json:"version"`
	VersionMajor uint64          `json:"version_major"`
	VersionMinor uint64          `json:"version_minor"`
	VersionPatch uint64          `json:"version_patch"`
	Branch       string          `json:"branch"`
	BuildHash    string          `json:"build_hash"`
	CommitTime   time.Time       `json:"commit_time"`
	Platform     string          `json:"platform,omitempty"`
	Architecture string          `json:"architecture,omitempty"`
	DownloadURL  string          `json:"download_url,omitempty"`
	SizeBytes    int64           `json:"size_bytes,omitempty"`
	DiscoveredAt time.Time       `json:"discovered_at,omitempty"`
}

// NewBuild creates a Build with normalized fields. The commit time is
// converted to UTC and truncated to whole seconds, matching the precision
// the query grammar can express. The numeric version components are
// materialized for database indexing.
func NewBuild(version *semver.Version, branch, buildHash string, commitTime time.Time) (Build, error) {
	if version == nil {
		return Build{}, fmt.Errorf("build version is required")
	}
	return Build{
		ObjType:      "Build",
		Version:      version,
		VersionMajor: version.Major(),
		VersionMinor: version.Minor(),
		VersionPatch: version.Patch(),
		Branch:       branch,
		BuildHash:    buildHash,
		CommitTime:   commitTime.UTC().Truncate(time.Second),
	}, nil
}

// Less orders builds by version, ties broken by commit time.
func (b Build) Less(other Build) bool {
	if c := b.Version.Compare(other.Version); c != 0 {
		return c < 0
	}
	return b.CommitTime.Before(other.CommitTime)
}

// Equal reports whether two builds carry the same identifying fields.
// Commit times are compared as instants.
func (b Build) Equal(other Build) bool {
	return b.Version.Equal(other.Version) &&
		b.Branch == other.Branch &&
		b.BuildHash == other.BuildHash &&
		b.CommitTime.Equal(other.CommitTime)
}

// NaturalKey returns the composite identity used for catalog deduplication.
func (b Build) NaturalKey() string {
	return b.Version.String() + "|" + b.Branch + "|" + b.BuildHash
}

func (b Build) String() string {
	s := b.Version.String() + "-" + b.Branch
	if b.BuildHash != "" {
		s += "+" + b.BuildHash
	}
	return s + "@" + b.CommitTime.Format(time.RFC3339)
}

// SortBuilds orders builds oldest to newest by version then commit time.
// The sort is stable so builds that Less cannot separate keep their
// relative order.
func SortBuilds(builds []Build) {
	sort.SliceStable(builds, func(i, j int) bool {
		return builds[i].Less(builds[j])
	})
}

// Newest returns the largest build by version then commit time, and false
// when the slice is empty.
func Newest(builds []Build) (Build, bool) {
	if len(builds) == 0 {
		return Build{}, false
	}
	newest := builds[0]
	for _, b := range builds[1:] {
		if newest.Less(b) {
			newest = b
		}
	}
	return newest, true
}
