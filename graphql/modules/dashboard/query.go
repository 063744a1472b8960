// Package dashboard defines the GraphQL queries for the catalog dashboard.
package dashboard

import (
	"github.com/graphql-go/graphql"

	"github.com/buildscout/buildcat-backend/database"
	"github.com/buildscout/buildcat-backend/internal/services"
)

// GetQueryFields returns the dashboard queries to be mounted in the root schema
func GetQueryFields(db database.DBConnection, catalog *services.CatalogService) graphql.Fields {
	return graphql.Fields{
		// Section 1: Top Cards (Overview)
		"dashboardOverview": &graphql.Field{
			Type: DashboardOverviewType,
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return ResolveOverview(db, catalog)
			},
		},
		// Section 2: Charts (Builds per Branch)
		"dashboardBranches": &graphql.Field{
			Type: graphql.NewList(BranchDistributionType),
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return ResolveBranchDistribution(db)
			},
		},
		// Section 3: Trend Line (Builds Discovered per Day)
		"dashboardDiscoveryTrend": &graphql.Field{
			Type: graphql.NewList(DiscoveryTrendPointType),
			Args: graphql.FieldConfigArgument{
				"days": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 30},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				days, _ := p.Args["days"].(int)
				return ResolveDiscoveryTrend(db, days)
			},
		},
		// Section 4: Feed Poll Health
		"dashboardFeedHealth": &graphql.Field{
			Type: graphql.NewList(FeedHealthType),
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return ResolveFeedHealth(db)
			},
		},
	}
}
