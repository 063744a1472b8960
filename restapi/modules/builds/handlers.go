// Package builds implements the REST API handlers for build catalog operations.
package builds

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/buildscout/buildcat-backend/internal/services"
	"github.com/buildscout/buildcat-backend/model"
	"github.com/buildscout/buildcat-backend/util"
)

// PostBuild handles POST requests for registering a build.
// It delegates core processing to the catalog service so REST, feed, and
// Kafka ingestion behave identically.
func PostBuild(catalog *services.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.BuildIngestRequest

		// Parse request body
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		// Validate required fields
		if util.IsEmpty(req.Version) || util.IsEmpty(req.Branch) || req.CommitTime.IsZero() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Build version, branch, and commit_time are required",
			})
		}

		ctx := context.Background()
		result, err := catalog.Ingest(ctx, req)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		status := fiber.StatusCreated
		message := "Build cataloged successfully"
		if !result.Created {
			status = fiber.StatusOK
			message = "Build already cataloged"
		}

		return c.Status(status).JSON(fiber.Map{
			"success": true,
			"message": message,
			"key":     result.Key,
			"created": result.Created,
		})
	}
}

// GetBuilds returns the catalog in version order, optionally narrowed to one branch.
func GetBuilds(catalog *services.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch := c.Query("branch")

		all := catalog.Builds()
		if branch != "" {
			filtered := make([]model.Build, 0, len(all))
			for _, b := range all {
				if b.Branch == branch {
					filtered = append(filtered, b)
				}
			}
			all = filtered
		}

		return c.JSON(fiber.Map{
			"success": true,
			"count":   len(all),
			"builds":  all,
		})
	}
}

// GetBranches returns the distinct branches present in the catalog.
func GetBranches(catalog *services.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success":  true,
			"branches": catalog.Branches(),
		})
	}
}

// SearchBuilds matches a version search query against the catalog and
// returns every build that satisfies it.
func SearchBuilds(catalog *services.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("query")
		if util.IsEmpty(raw) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Query parameter 'query' is required",
			})
		}

		q, err := catalog.ParseQuery(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		matches := catalog.MatchQuery(q)
		if matches == nil {
			matches = []model.Build{}
		}

		return c.JSON(model.BuildSearchResponse{
			Query:  q.String(),
			Count:  len(matches),
			Builds: matches,
		})
	}
}

// ResolveBuild matches a version search query and returns the single build
// a client should use, or 404 when nothing matches.
func ResolveBuild(catalog *services.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("query")
		if util.IsEmpty(raw) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Query parameter 'query' is required",
			})
		}

		q, err := catalog.ParseQuery(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		best, ok := model.Newest(catalog.MatchQuery(q))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "No build matches query " + q.String(),
			})
		}

		return c.JSON(model.BuildResolveResponse{
			Query: q.String(),
			Build: best,
		})
	}
}

// ValidateQuery parses a version search query without matching it, reporting
// the canonical form or the parse failure.
func ValidateQuery(catalog *services.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.QueryValidateRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		q, err := catalog.ParseQuery(req.Query)
		if err != nil {
			return c.JSON(model.QueryValidateResponse{
				Valid: false,
				Error: err.Error(),
			})
		}

		return c.JSON(model.QueryValidateResponse{
			Valid:     true,
			Canonical: q.String(),
		})
	}
}
