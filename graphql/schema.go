// Package graphql assembles the root schema for the build catalog API.
package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/buildscout/buildcat-backend/database"
	buildsql "github.com/buildscout/buildcat-backend/graphql/modules/builds"
	"github.com/buildscout/buildcat-backend/graphql/modules/dashboard"
	"github.com/buildscout/buildcat-backend/internal/services"
)

var db database.DBConnection
var catalog *services.CatalogService

// Init wires the schema's data sources. Must be called before CreateSchema.
func Init(conn database.DBConnection, svc *services.CatalogService) {
	db = conn
	catalog = svc
}

// CreateSchema builds the root query schema from the module query fields.
func CreateSchema() (graphql.Schema, error) {
	fields := graphql.Fields{}

	for name, field := range buildsql.GetQueryFields(db, catalog) {
		fields[name] = field
	}
	for name, field := range dashboard.GetQueryFields(db, catalog) {
		fields[name] = field
	}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: fields,
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: rootQuery,
	})
}
