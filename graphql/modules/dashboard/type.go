// Package dashboard defines the GraphQL types for the catalog dashboard.
package dashboard

import (
	"github.com/graphql-go/graphql"
)

// DashboardOverviewType represents the high-level metrics for the top cards
var DashboardOverviewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DashboardOverview",
	Fields: graphql.Fields{
		"total_builds":       &graphql.Field{Type: graphql.Int},
		"total_branches":     &graphql.Field{Type: graphql.Int},
		"total_feeds":        &graphql.Field{Type: graphql.Int},
		"latest_version":     &graphql.Field{Type: graphql.String},
		"latest_commit_time": &graphql.Field{Type: graphql.String},
	},
})

// BranchDistributionType represents one bar in the builds-per-branch chart
var BranchDistributionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BranchDistribution",
	Fields: graphql.Fields{
		"branch":             &graphql.Field{Type: graphql.String},
		"count":              &graphql.Field{Type: graphql.Int},
		"newest_commit_time": &graphql.Field{Type: graphql.String},
	},
})

// DiscoveryTrendPointType represents the daily count of newly cataloged builds
var DiscoveryTrendPointType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DiscoveryTrendPoint",
	Fields: graphql.Fields{
		"date":  &graphql.Field{Type: graphql.String},
		"count": &graphql.Field{Type: graphql.Int},
	},
})

// FeedHealthType represents the latest poll state of one configured feed
var FeedHealthType = graphql.NewObject(graphql.ObjectConfig{
	Name: "FeedHealth",
	Fields: graphql.Fields{
		"feed":             &graphql.Field{Type: graphql.String},
		"last_outcome":     &graphql.Field{Type: graphql.String},
		"last_started_at":  &graphql.Field{Type: graphql.String},
		"last_builds_seen": &graphql.Field{Type: graphql.Int},
		"last_builds_new":  &graphql.Field{Type: graphql.Int},
		"error_runs":       &graphql.Field{Type: graphql.Int},
		"total_runs":       &graphql.Field{Type: graphql.Int},
	},
})
