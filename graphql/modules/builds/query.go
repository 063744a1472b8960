// Package builds defines the GraphQL queries for the build catalog.
package builds

import (
	"github.com/graphql-go/graphql"

	"github.com/buildscout/buildcat-backend/database"
	"github.com/buildscout/buildcat-backend/internal/services"
	"github.com/buildscout/buildcat-backend/model"
)

// GetQueryFields returns the build catalog queries to be mounted in the root schema.
func GetQueryFields(db database.DBConnection, catalog *services.CatalogService) graphql.Fields {
	return graphql.Fields{
		"builds": &graphql.Field{
			Type: graphql.NewList(BuildType),
			Args: graphql.FieldConfigArgument{
				"query": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "*.*.*@*"},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				raw := getStringArg(p, "query")

				q, err := catalog.ParseQuery(raw)
				if err != nil {
					return nil, err
				}
				return catalog.MatchQuery(q), nil
			},
		},
		"resolveBuild": &graphql.Field{
			Type: BuildType,
			Args: graphql.FieldConfigArgument{
				"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				raw := getStringArg(p, "query")

				q, err := catalog.ParseQuery(raw)
				if err != nil {
					return nil, err
				}

				best, ok := model.Newest(catalog.MatchQuery(q))
				if !ok {
					return nil, nil
				}
				return best, nil
			},
		},
		"branches": &graphql.Field{
			Type: graphql.NewList(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return catalog.Branches(), nil
			},
		},
		"feedRuns": &graphql.Field{
			Type: graphql.NewList(FeedRunType),
			Args: graphql.FieldConfigArgument{
				"feed":  &graphql.ArgumentConfig{Type: graphql.String},
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				feed := getStringArg(p, "feed")
				limit := getIntArg(p, "limit", 20)
				return ResolveFeedRuns(db, feed, limit)
			},
		},
	}
}
