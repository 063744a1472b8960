// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/go-git/go-git/v5"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/buildscout/buildcat-backend/database"
	"github.com/buildscout/buildcat-backend/internal/services"
	"github.com/buildscout/buildcat-backend/restapi/modules/admin"
	"github.com/buildscout/buildcat-backend/restapi/modules/auth"
	"github.com/buildscout/buildcat-backend/restapi/modules/builds"
	"github.com/buildscout/buildcat-backend/util"
)

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, db database.DBConnection, schema graphql.Schema, catalog *services.CatalogService, poller *services.FeedPoller) {

	// Background initialization tasks
	go autoApplyFeedsOnStartup(poller)
	go startFeedRunCleanup(db)

	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL Route - Mounted within the api group to inherit path prefixes
	api.Post("/graphql", GraphQLHandler(schema))

	// Catalog Routes
	api.Get("/builds", builds.GetBuilds(catalog))
	api.Post("/builds", builds.PostBuild(catalog))
	api.Get("/builds/search", builds.SearchBuilds(catalog))
	api.Get("/builds/resolve", builds.ResolveBuild(catalog))
	api.Get("/branches", builds.GetBranches(catalog))
	api.Post("/queries/validate", builds.ValidateQuery(catalog))

	// Admin Routes
	adminGroup := api.Group("/admin", auth.RequireAdminToken)
	adminGroup.Post("/refresh", admin.PostRefresh(poller))
	adminGroup.Get("/refresh/status", admin.GetRefreshStatus())
	adminGroup.Get("/feeds", getFeedsConfig(poller))
	adminGroup.Post("/feeds/webhook", handleFeedsWebhook(poller))

	log.Println("API routes initialized successfully")
}

func getFeedsConfig(poller *services.FeedPoller) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cfg := poller.Config()
		return c.JSON(fiber.Map{
			"success":       true,
			"poll_interval": cfg.Interval().String(),
			"platform":      cfg.Platform,
			"architecture":  cfg.Architecture,
			"feeds":         cfg.Feeds,
		})
	}
}

func handleFeedsWebhook(poller *services.FeedPoller) fiber.Handler {
	return func(c *fiber.Ctx) error {
		yamlContent, err := syncFeedsFromRepo()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		config, err := util.ParseFeedsFile([]byte(yamlContent))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid feeds config: " + err.Error(),
			})
		}

		poller.SwapConfig(config)

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Feeds synchronized from repository",
			"feeds":   len(config.Feeds),
		})
	}
}

func syncFeedsFromRepo() (string, error) {
	repoURL := os.Getenv("FEEDS_REPO")
	token := os.Getenv("FEEDS_REPO_TOKEN")

	if repoURL == "" || token == "" {
		return "", fmt.Errorf("FEEDS_REPO and FEEDS_REPO_TOKEN must be configured")
	}

	tempDir, err := os.MkdirTemp("", "feeds-sync-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	authMethod := &githttp.BasicAuth{
		Username: "oauth2",
		Password: token,
	}

	_, err = git.PlainClone(tempDir, false, &git.CloneOptions{
		URL:      repoURL,
		Auth:     authMethod,
		Depth:    1,
		Progress: nil,
	})
	if err != nil {
		return "", fmt.Errorf("failed to clone feeds repo: %w", err)
	}

	yamlPath := filepath.Join(tempDir, "feeds.yaml")
	yamlContent, err := os.ReadFile(yamlPath)
	if err != nil {
		return "", fmt.Errorf("failed to read feeds.yaml: %w", err)
	}

	return string(yamlContent), nil
}

func startFeedRunCleanup(db database.DBConnection) {
	runCleanup(db)
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		runCleanup(db)
	}
}

func runCleanup(db database.DBConnection) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	count, err := cleanupOldFeedRuns(ctx, db)
	if err != nil {
		fmt.Printf("⚠️  Background Task: Failed to cleanup old feed runs: %v\n", err)
		return
	}
	if count > 0 {
		fmt.Printf("🧹 Background Task: Cleaned up %d old feed runs\n", count)
	}
}

// cleanupOldFeedRuns removes feed run records older than the retention window.
func cleanupOldFeedRuns(ctx context.Context, db database.DBConnection) (int, error) {
	retentionDays := 30
	if v := os.Getenv("FEEDRUN_RETENTION_DAYS"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &retentionDays); err != nil || retentionDays <= 0 {
			retentionDays = 30
		}
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	query := `
		FOR r IN feedrun
			FILTER r.started_at < @cutoff
			REMOVE r IN feedrun
			RETURN OLD._key
	`
	bindVars := map[string]interface{}{
		"cutoff": cutoff.Format(time.RFC3339),
	}

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return 0, err
	}
	defer cursor.Close()

	count := 0
	for cursor.HasMore() {
		var key string
		if _, err := cursor.ReadDocument(ctx, &key); err != nil {
			continue
		}
		count++
	}
	return count, nil
}

func autoApplyFeedsOnStartup(poller *services.FeedPoller) {
	// Check if a feeds repo is configured for GitOps mode
	repoURL := os.Getenv("FEEDS_REPO")
	token := os.Getenv("FEEDS_REPO_TOKEN")

	if repoURL == "" || token == "" {
		// Local file mode: the poller already carries the startup configuration
		return
	}

	fmt.Println("🔄 Auto-applying feeds configuration from GitHub:", repoURL)
	yamlContent, err := syncFeedsFromRepo()
	if err != nil {
		fmt.Printf("⚠️  Failed to sync feeds from GitHub: %v\n", err)
		return
	}

	config, err := util.ParseFeedsFile([]byte(yamlContent))
	if err != nil {
		fmt.Printf("⚠️  Failed to load feeds config: %v\n", err)
		return
	}

	poller.SwapConfig(config)
	fmt.Printf("✅ Feeds apply complete: %d feeds, interval %s\n", len(config.Feeds), config.Interval())
}
