// Package builds implements the GraphQL resolvers for the build catalog.
package builds

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/graphql-go/graphql"

	"github.com/buildscout/buildcat-backend/database"
	"github.com/buildscout/buildcat-backend/model"
)

func getStringArg(p graphql.ResolveParams, name string) string {
	if v, ok := p.Args[name].(string); ok {
		return v
	}
	return ""
}

func getIntArg(p graphql.ResolveParams, name string, def int) int {
	if v, ok := p.Args[name].(int); ok {
		return v
	}
	return def
}

// ResolveFeedRuns fetches recent feed runs, optionally narrowed to one feed.
func ResolveFeedRuns(db database.DBConnection, feed string, limit int) ([]model.FeedRun, error) {
	ctx := context.Background()

	if limit <= 0 || limit > 500 {
		limit = 20
	}

	query := `
		FOR r IN feedrun
			FILTER @feed == "" || r.feed == @feed
			SORT r.started_at DESC
			LIMIT @limit
			RETURN r
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"feed":  feed,
			"limit": limit,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var runs []model.FeedRun
	for cursor.HasMore() {
		var run model.FeedRun
		if _, err := cursor.ReadDocument(ctx, &run); err != nil {
			continue
		}
		runs = append(runs, run)
	}

	return runs, nil
}
