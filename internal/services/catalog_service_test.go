package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/buildscout/buildcat-backend/database"
	"github.com/buildscout/buildcat-backend/model"
	"github.com/buildscout/buildcat-backend/versionquery"
)

func testBuild(t *testing.T, version, branch, hash string, commitTime time.Time) model.Build {
	t.Helper()
	b, err := model.NewBuild(semver.MustParse(version), branch, hash, commitTime)
	if err != nil {
		t.Fatalf("Failed to create build %s: %v", version, err)
	}
	return b
}

func stamp(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// seededCatalog returns a catalog service preloaded with builds, bypassing
// the database.
func seededCatalog(t *testing.T, builds []model.Build) *CatalogService {
	t.Helper()
	s := NewCatalogService(database.DBConnection{}, nil)
	model.SortBuilds(builds)
	s.builds = builds
	s.matcher = versionquery.NewMatcher(builds)
	return s
}

func testCatalogBuilds(t *testing.T) []model.Build {
	t.Helper()
	return []model.Build{
		testBuild(t, "1.2.3", "stable", "", stamp(2020, 5, 4)),
		testBuild(t, "4.2.0", "stable", "", stamp(2024, 7, 16)),
		testBuild(t, "4.3.0", "daily", "cb886aba06d5", stamp(2024, 7, 30)),
		testBuild(t, "4.3.1", "daily", "", stamp(2024, 7, 20)),
	}
}

func TestCatalogMatchQuery(t *testing.T) {
	s := seededCatalog(t, testCatalogBuilds(t))

	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "newest build",
			query: "^.^.^@^",
			want:  []string{"4.3.1"},
		},
		{
			// The commit-time segment defaults to newest, so only the most
			// recent daily build survives.
			name:  "daily branch defaults to newest",
			query: "*.*.*-daily",
			want:  []string{"4.3.0"},
		},
		{
			name:  "all daily builds",
			query: "*.*.*-daily@*",
			want:  []string{"4.3.0", "4.3.1"},
		},
		{
			name:  "by build hash",
			query: "*.*.*+cb886aba06d5@*",
			want:  []string{"4.3.0"},
		},
		{
			name:  "no match",
			query: "9.*.*@*",
			want:  nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := s.ParseQuery(tc.query)
			if err != nil {
				t.Fatalf("Failed to parse %q: %v", tc.query, err)
			}
			got := s.MatchQuery(q)
			if len(got) != len(tc.want) {
				t.Fatalf("Expected %d builds for %q, got %d: %v", len(tc.want), tc.query, len(got), got)
			}
			for i, want := range tc.want {
				if got[i].Version.String() != want {
					t.Errorf("Build %d for %q: expected %s, got %s", i, tc.query, want, got[i].Version)
				}
			}
		})
	}
}

func TestCatalogParseQueryErrors(t *testing.T) {
	s := seededCatalog(t, nil)

	if _, err := s.ParseQuery("latest"); !errors.Is(err, versionquery.ErrMalformedQuery) {
		t.Errorf("Expected malformed query error, got %v", err)
	}
	if _, err := s.ParseQuery("*.*.*-^"); !errors.Is(err, versionquery.ErrInvalidQueryFields) {
		t.Errorf("Expected invalid fields error, got %v", err)
	}
}

func TestCatalogBranches(t *testing.T) {
	s := seededCatalog(t, testCatalogBuilds(t))

	got := s.Branches()
	want := []string{"daily", "stable"}
	if len(got) != len(want) {
		t.Fatalf("Expected branches %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Branch %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestCatalogCount(t *testing.T) {
	s := seededCatalog(t, testCatalogBuilds(t))
	if got := s.Count(); got != 4 {
		t.Errorf("Expected 4 builds, got %d", got)
	}

	empty := seededCatalog(t, nil)
	if got := empty.Count(); got != 0 {
		t.Errorf("Expected empty catalog, got %d builds", got)
	}
}

// Builds hands out a copy, so callers cannot disturb the catalog.
func TestCatalogBuildsReturnsCopy(t *testing.T) {
	s := seededCatalog(t, testCatalogBuilds(t))

	got := s.Builds()
	got[0] = testBuild(t, "9.9.9", "rogue", "", stamp(2030, 1, 1))

	if s.builds[0].Version.String() != "1.2.3" {
		t.Errorf("Catalog was mutated through Builds: %v", s.builds[0])
	}
}

func TestCatalogIngestValidation(t *testing.T) {
	s := seededCatalog(t, nil)
	ctx := context.Background()

	cases := []struct {
		name    string
		req     model.BuildIngestRequest
		wantErr string
	}{
		{
			name:    "missing version",
			req:     model.BuildIngestRequest{Branch: "daily", CommitTime: stamp(2024, 7, 30)},
			wantErr: "version is required",
		},
		{
			name:    "missing branch",
			req:     model.BuildIngestRequest{Version: "4.3.0", CommitTime: stamp(2024, 7, 30)},
			wantErr: "branch is required",
		},
		{
			name:    "missing commit time",
			req:     model.BuildIngestRequest{Version: "4.3.0", Branch: "daily"},
			wantErr: "commit_time is required",
		},
		{
			name:    "unparseable version",
			req:     model.BuildIngestRequest{Version: "not!a!version", Branch: "daily", CommitTime: stamp(2024, 7, 30)},
			wantErr: "unparseable build version",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Ingest(ctx, tc.req)
			if err == nil {
				t.Fatalf("Expected error for %s", tc.name)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
