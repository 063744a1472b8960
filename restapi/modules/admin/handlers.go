// Package admin implements the REST API handlers for admin operations.
// It provides endpoints for triggering feed refreshes and monitoring them.
package admin

import (
	"context"
	"log"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/buildscout/buildcat-backend/internal/services"
	"github.com/buildscout/buildcat-backend/model"
)

var refreshMu sync.Mutex
var refreshRunning = false
var refreshStatus model.RefreshStatus

// PostRefresh triggers an immediate poll of every configured feed
func PostRefresh(poller *services.FeedPoller) fiber.Handler {
	return func(c *fiber.Ctx) error {
		refreshMu.Lock()
		if refreshRunning {
			status := refreshStatus
			refreshMu.Unlock()
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Refresh already in progress",
				"status":  status,
			})
		}
		refreshRunning = true
		refreshStatus = model.RefreshStatus{Running: true}
		refreshMu.Unlock()

		go runRefresh(poller)

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Feed refresh started",
			"status":  "processing",
		})
	}
}

// GetRefreshStatus returns the current status of any running refresh
func GetRefreshStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		refreshMu.Lock()
		status := refreshStatus
		status.Running = refreshRunning
		refreshMu.Unlock()

		return c.JSON(status)
	}
}

func runRefresh(poller *services.FeedPoller) {
	log.Println("Starting feed refresh...")

	result := poller.RefreshAll(context.Background())

	refreshMu.Lock()
	refreshStatus = result
	refreshRunning = false
	refreshMu.Unlock()

	log.Printf("Feed refresh complete! Feeds: %d/%d, builds seen: %d, new: %d",
		result.FeedsDone, result.FeedsTotal, result.BuildsSeen, result.BuildsNew)
}
