package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/buildscout/buildcat-backend/database"
	buildsevents "github.com/buildscout/buildcat-backend/events/modules/builds"
	"github.com/buildscout/buildcat-backend/internal/api"
	"github.com/buildscout/buildcat-backend/internal/kafka"
	"github.com/buildscout/buildcat-backend/internal/metrics"
	"github.com/buildscout/buildcat-backend/internal/services"
	"github.com/buildscout/buildcat-backend/util"
)

func main() {
	ctx := context.Background()

	// Initialize database connection
	db := database.InitializeDatabase()

	// Initialize Prometheus metrics
	m := metrics.NewMetrics()

	// Build the in-memory catalog from the database
	catalog := services.NewCatalogService(db, m)
	if err := catalog.Reload(ctx); err != nil {
		log.Fatalf("Failed to load build catalog: %v", err)
	}

	// Load the feed poller configuration
	feedsPath := util.GetEnvDefault("FEEDS_CONFIG_PATH", "feeds.yaml")
	feedsCfg, err := util.LoadFeedsFile(feedsPath)
	if err != nil {
		log.Printf("Warning: no feeds configuration loaded: %v", err)
		feedsCfg = &util.FeedsFile{}
	}

	fetcher := services.NewFeedSourceFetcher()
	poller := services.NewFeedPoller(db, catalog, fetcher, m, feedsCfg)

	// Announce newly cataloged builds on Kafka
	brokersEnv := os.Getenv("KAFKA_BROKERS")
	var brokers []string
	if brokersEnv != "" {
		brokers = strings.Split(brokersEnv, ",")
	} else {
		brokers = []string{"localhost:9092"}
	}
	topic := util.GetEnvDefault("KAFKA_DISCOVERED_TOPIC", "buildcat.builds.discovered")
	producer := buildsevents.NewBuildProducer(brokers, topic)
	defer producer.Close()
	catalog.SetNotifier(producer)

	// Start the feed poller
	if len(feedsCfg.Feeds) > 0 {
		go poller.Run(ctx)
	} else {
		log.Println("No feeds configured, poller idle")
	}

	// Start the Kafka event processor for build submissions
	if err := kafka.RunEventProcessor(ctx, catalog); err != nil {
		log.Printf("Warning: Kafka event processor disabled: %v", err)
	}

	// Create Fiber app with REST and GraphQL routes
	app := api.NewFiberApp(db, catalog, poller)

	// Get port from environment or default to 3000
	port := util.GetEnvDefault("MS_PORT", "3000")

	// Start server
	log.Printf("Starting server on port %s", port)
	log.Printf("GraphQL endpoint available at /api/v1/graphql")
	log.Printf("Admin endpoints available at /api/v1/admin/*")
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
