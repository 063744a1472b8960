package kafka

import (
	"context"
	"crypto/tls"
	"log"
	"os"
	"strings"
	"time"

	builds "github.com/buildscout/buildcat-backend/events/modules/builds"
	"github.com/buildscout/buildcat-backend/internal/services"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// RunEventProcessor consumes build submission events and catalogs them
// through the shared ingestion path.
func RunEventProcessor(ctx context.Context, catalog *services.CatalogService) error {
	brokersEnv := os.Getenv("KAFKA_BROKERS")
	var brokers []string
	if brokersEnv != "" {
		brokers = strings.Split(brokersEnv, ",")
	} else {
		brokers = []string{"localhost:9092"}
	}

	// 1. Configure SASL/PLAIN using Environment Variables
	username := os.Getenv("KAFKA_API_KEY")
	password := os.Getenv("KAFKA_API_SECRET")

	var dialer *kafka.Dialer

	// Only configure SASL/TLS if credentials are provided
	if username != "" && password != "" {
		mechanism := plain.Mechanism{
			Username: username,
			Password: password,
		}

		dialer = &kafka.Dialer{
			Timeout:       10 * time.Second,
			DualStack:     true,
			SASLMechanism: mechanism,
			TLS:           &tls.Config{}, // Managed Kafka requires TLS
		}
	} else {
		// Default dialer for local development (no SASL/TLS)
		dialer = &kafka.Dialer{
			Timeout:   10 * time.Second,
			DualStack: true,
		}
	}

	topic := "buildcat.builds.submitted"
	var conn *kafka.Conn
	var err error

	// Retry logic: 3 tries
	for i := 1; i <= 3; i++ {
		log.Printf("Kafka connection attempt %d/3...", i)
		// Use the configured dialer (with SASL/TLS) for the check
		conn, err = dialer.DialContext(ctx, "tcp", brokers[0])
		if err == nil {
			conn.Close()
			break
		}
		if i < 3 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		return err
	}

	// 2. Configure the Reader to use the Dialer
	readerConfig := kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  "buildcat-backend-worker",
		Topic:    topic,
		MaxBytes: 10e6,
		Dialer:   dialer, // Inject the secure dialer here
	}

	reader := kafka.NewReader(readerConfig)

	go func() {
		defer reader.Close()
		service := &services.BuildServiceWrapper{Catalog: catalog}

		log.Println("Kafka Event Processor started. Listening for build submissions...")

		for {
			select {
			case <-ctx.Done():
				return
			default:
				msg, err := reader.ReadMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					continue
				}
				_ = builds.HandleBuildSubmittedWithService(ctx, msg.Value, service)
			}
		}
	}()

	return nil
}
