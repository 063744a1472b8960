// Package util - feed poll high-water marks kept in the metadata collection.
package util

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/buildscout/buildcat-backend/database"
)

// SanitizeKey ensures the database key is valid for ArangoDB
// ArangoDB keys cannot contain spaces, slashes, pipes, or brackets
func SanitizeKey(key string) string {
	// 1. Trim whitespace/newlines first
	key = strings.TrimSpace(key)

	// 2. Use Replacer for cleaner, faster, multi-string replacement
	replacer := strings.NewReplacer(
		" ", "-",
		"/", "-",
		"|", "_",
		"[", "",
		"]", "",
		"(", "",
		")", "",
	)

	return replacer.Replace(key)
}

// FeedMetadata stores the high-water mark for feed polling
type FeedMetadata struct {
	Key         string `json:"_key"`         // feed name, e.g. "stable", "daily"
	LastChecked string `json:"last_checked"` // RFC3339 Timestamp
	Type        string `json:"type"`         // "feed_metadata"
}

// GetLastPoll retrieves the timestamp of the last successful poll for a feed
func GetLastPoll(db database.DBConnection, feed string) (time.Time, error) {
	key := SanitizeKey(feed)
	if key == "" {
		return time.Time{}, nil
	}

	ctx := context.Background()
	query := `RETURN DOCUMENT("metadata", @key)`
	bindVars := map[string]interface{}{"key": key}

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return time.Time{}, nil
	}
	defer cursor.Close()

	var meta FeedMetadata
	if _, err := cursor.ReadDocument(ctx, &meta); err != nil {
		return time.Time{}, nil
	}

	return time.Parse(time.RFC3339, meta.LastChecked)
}

// SaveLastPoll updates the timestamp after a successful poll
func SaveLastPoll(db database.DBConnection, feed string, lastChecked time.Time) error {
	key := SanitizeKey(feed)

	// Final safety check to prevent empty keys
	if key == "" {
		return fmt.Errorf("cannot save last poll for empty feed key (original: %s)", feed)
	}

	ctx := context.Background()
	query := `
		UPSERT { _key: @key }
		INSERT { _key: @key, last_checked: @time, type: "feed_metadata" }
		UPDATE { last_checked: @time }
		IN metadata
	`

	bindVars := map[string]interface{}{
		"key":  key,
		"time": lastChecked.Format(time.RFC3339),
	}

	_, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	return err
}
