// Package dashboard implements the resolvers for catalog dashboard metrics.
package dashboard

import (
	"context"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"

	"github.com/buildscout/buildcat-backend/database"
	"github.com/buildscout/buildcat-backend/internal/services"
	"github.com/buildscout/buildcat-backend/model"
)

// ResolveOverview reports the catalog totals shown on the top cards. Build
// counts come from the in-memory catalog; the feed count comes from the
// recorded poll history.
func ResolveOverview(db database.DBConnection, catalog *services.CatalogService) (interface{}, error) {
	overview := map[string]interface{}{
		"total_builds":       catalog.Count(),
		"total_branches":     len(catalog.Branches()),
		"total_feeds":        0,
		"latest_version":     "",
		"latest_commit_time": "",
	}

	if newest, ok := model.Newest(catalog.Builds()); ok {
		overview["latest_version"] = newest.Version.String()
		overview["latest_commit_time"] = newest.CommitTime.UTC().Format(time.RFC3339)
	}

	query := `
		RETURN LENGTH(
			FOR r IN feedrun
				COLLECT feed = r.feed
				RETURN feed
		)
	`
	cursor, err := db.Database.Query(context.Background(), query, &arangodb.QueryOptions{})
	if err != nil {
		return overview, err
	}
	defer cursor.Close()

	if cursor.HasMore() {
		var feeds int
		if _, err := cursor.ReadDocument(context.Background(), &feeds); err == nil {
			overview["total_feeds"] = feeds
		}
	}

	return overview, nil
}

// ResolveBranchDistribution groups the catalog by branch for the charts.
func ResolveBranchDistribution(db database.DBConnection) ([]map[string]interface{}, error) {
	ctx := context.Background()

	query := `
		FOR b IN build
			COLLECT branch = b.branch INTO groups
			LET cnt = LENGTH(groups)
			LET newest = MAX(groups[*].b.commit_time)
			SORT cnt DESC
			RETURN {
				branch: branch,
				count: cnt,
				newest_commit_time: newest
			}
	`

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{})
	if err != nil {
		return []map[string]interface{}{}, err
	}
	defer cursor.Close()

	results := []map[string]interface{}{}
	for cursor.HasMore() {
		var row map[string]interface{}
		if _, err := cursor.ReadDocument(ctx, &row); err == nil {
			results = append(results, row)
		}
	}
	return results, nil
}

// ResolveDiscoveryTrend counts newly cataloged builds per day over the
// trailing window. Days without discoveries produce no point.
func ResolveDiscoveryTrend(db database.DBConnection, days int) ([]map[string]interface{}, error) {
	ctx := context.Background()

	if days <= 0 || days > 365 {
		days = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)

	query := `
		FOR b IN build
			FILTER b.discovered_at >= @cutoff
			COLLECT date = SUBSTRING(b.discovered_at, 0, 10) WITH COUNT INTO cnt
			SORT date ASC
			RETURN {
				date: date,
				count: cnt
			}
	`

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"cutoff": cutoff,
		},
	})
	if err != nil {
		return []map[string]interface{}{}, err
	}
	defer cursor.Close()

	results := []map[string]interface{}{}
	for cursor.HasMore() {
		var row map[string]interface{}
		if _, err := cursor.ReadDocument(ctx, &row); err == nil {
			results = append(results, row)
		}
	}
	return results, nil
}

// ResolveFeedHealth summarizes the poll history per feed: the most recent
// run plus lifetime totals.
func ResolveFeedHealth(db database.DBConnection) ([]map[string]interface{}, error) {
	ctx := context.Background()

	query := `
		FOR r IN feedrun
			COLLECT feed = r.feed INTO runs
			LET latest = (
				FOR run IN runs[*].r
					SORT run.started_at DESC
					LIMIT 1
					RETURN run
			)[0]
			LET errors = LENGTH(
				FOR run IN runs[*].r
					FILTER run.outcome == "error"
					RETURN 1
			)
			SORT feed ASC
			RETURN {
				feed: feed,
				last_outcome: latest.outcome,
				last_started_at: latest.started_at,
				last_builds_seen: latest.builds_seen,
				last_builds_new: latest.builds_new,
				error_runs: errors,
				total_runs: LENGTH(runs)
			}
	`

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{})
	if err != nil {
		return []map[string]interface{}{}, err
	}
	defer cursor.Close()

	results := []map[string]interface{}{}
	for cursor.HasMore() {
		var row map[string]interface{}
		if _, err := cursor.ReadDocument(ctx, &row); err == nil {
			results = append(results, row)
		}
	}
	return results, nil
}
