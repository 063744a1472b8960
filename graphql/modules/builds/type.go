// Package builds defines the GraphQL types for the build catalog.
package builds

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/buildscout/buildcat-backend/model"
)

// BuildType represents one catalog entry.
var BuildType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Build",
	Fields: graphql.Fields{
		"key":           &graphql.Field{Type: graphql.String},
		"version_major": &graphql.Field{Type: graphql.Int},
		"version_minor": &graphql.Field{Type: graphql.Int},
		"version_patch": &graphql.Field{Type: graphql.Int},
		"branch":        &graphql.Field{Type: graphql.String},
		"build_hash":    &graphql.Field{Type: graphql.String},
		"platform":      &graphql.Field{Type: graphql.String},
		"architecture":  &graphql.Field{Type: graphql.String},
		"download_url":  &graphql.Field{Type: graphql.String},
		"size_bytes":    &graphql.Field{Type: graphql.Int},
		"version": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if build, ok := p.Source.(model.Build); ok && build.Version != nil {
					return build.Version.String(), nil
				}
				return nil, nil
			},
		},
		"commit_time": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if build, ok := p.Source.(model.Build); ok {
					return build.CommitTime.UTC().Format(time.RFC3339), nil
				}
				return nil, nil
			},
		},
		"discovered_at": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if build, ok := p.Source.(model.Build); ok && !build.DiscoveredAt.IsZero() {
					return build.DiscoveredAt.UTC().Format(time.RFC3339), nil
				}
				return nil, nil
			},
		},
	},
})

// FeedRunType represents one recorded poll of an upstream feed.
var FeedRunType = graphql.NewObject(graphql.ObjectConfig{
	Name: "FeedRun",
	Fields: graphql.Fields{
		"key":         &graphql.Field{Type: graphql.String},
		"feed":        &graphql.Field{Type: graphql.String},
		"feed_url":    &graphql.Field{Type: graphql.String},
		"branch":      &graphql.Field{Type: graphql.String},
		"outcome":     &graphql.Field{Type: graphql.String},
		"builds_seen": &graphql.Field{Type: graphql.Int},
		"builds_new":  &graphql.Field{Type: graphql.Int},
		"error":       &graphql.Field{Type: graphql.String},
		"started_at": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if run, ok := p.Source.(model.FeedRun); ok {
					return run.StartedAt.UTC().Format(time.RFC3339), nil
				}
				return nil, nil
			},
		},
		"finished_at": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if run, ok := p.Source.(model.FeedRun); ok && !run.FinishedAt.IsZero() {
					return run.FinishedAt.UTC().Format(time.RFC3339), nil
				}
				return nil, nil
			},
		},
	},
})
