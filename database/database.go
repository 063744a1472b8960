// Package database - Handles all interaction with ArangoDB
package database

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = InitLogger() // setup the logger

// DBConnection is the structure that defined the database engine and collections
type DBConnection struct {
	Collections map[string]arangodb.Collection
	Database    arangodb.Database
}

// Define a struct to hold the index definition
type indexConfig struct {
	Collection string
	IdxName    string
	IdxField   string
}

var initDone = false          // has the data been initialized
var dbConnection DBConnection // database connection definition

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// InitLogger sets up the Zap Logger to log to the console in a human readable format
func InitLogger() *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	logger, _ := prodConfig.Build()
	return logger
}

func dbConnectionConfig(endpoint connection.Endpoint, dbuser string, dbpass string) connection.HttpConfiguration {
	return connection.HttpConfiguration{
		Authentication: connection.NewBasicAuth(dbuser, dbpass),
		Endpoint:       endpoint,
		ContentType:    connection.ApplicationJSON,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 90 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// InitializeDatabase is the function for connecting to the db engine, creating the database and collections
func InitializeDatabase() DBConnection {
	const initialInterval = 10 * time.Second
	const maxInterval = 2 * time.Minute

	var db arangodb.Database
	var collections map[string]arangodb.Collection
	const databaseName = "buildcat"

	ctx := context.Background()

	if initDone {
		return dbConnection
	}

	False := false
	True := true
	dbhost := GetEnvDefault("ARANGO_HOST", "localhost")
	dbport := GetEnvDefault("ARANGO_PORT", "8529")
	dbuser := GetEnvDefault("ARANGO_USER", "root")
	dbpass := GetEnvDefault("ARANGO_PASS", "mypassword")
	dburl := GetEnvDefault("ARANGO_URL", "http://"+dbhost+":"+dbport)

	var client arangodb.Client

	//
	// Database connection with backoff retry
	//

	// Configure exponential backoff
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = 0 // Set to 0 for indefinite retries

	// Retry logic
	err := backoff.RetryNotify(func() error {
		fmt.Println("Attempting to connect to ArangoDB")
		endpoint := connection.NewRoundRobinEndpoints([]string{dburl})
		conn := connection.NewHttpConnection(dbConnectionConfig(endpoint, dbuser, dbpass))

		client = arangodb.NewClient(conn)

		// Ask the version of the server
		versionInfo, err := client.Version(context.Background())
		if err != nil {
			return err
		}

		logger.Sugar().Infof("Database has version '%s' and license '%s'\n", versionInfo.Version, versionInfo.License)
		return nil

	}, bo, func(err error, _ time.Duration) {
		// Optionally, you can add a message here to be printed after each retry
		fmt.Printf("Retrying connection to ArangoDB: %v\n", err)
	})

	if err != nil {
		logger.Sugar().Fatalf("Backoff Error %v\n", err)
	}

	//
	// Database creation
	//

	exists := false
	dblist, _ := client.Databases(ctx)

	for _, dbinfo := range dblist {
		if dbinfo.Name() == databaseName {
			exists = true
			break
		}
	}

	if exists {
		var options arangodb.GetDatabaseOptions
		if db, err = client.GetDatabase(ctx, databaseName, &options); err != nil {
			logger.Sugar().Fatalf("Failed to get Database: %v", err)
		}
	} else {
		if db, err = client.CreateDatabase(ctx, databaseName, nil); err != nil {
			logger.Sugar().Fatalf("Failed to create Database: %v", err)
		}
	}

	//
	// Collection creation for document storage
	//

	collections = make(map[string]arangodb.Collection)
	// We keep "metadata" here so the collection is created
	collectionNames := []string{"build", "feedrun", "metadata"}

	for _, collectionName := range collectionNames {
		var col arangodb.Collection

		exists, _ = db.CollectionExists(ctx, collectionName)
		if exists {
			var options arangodb.GetCollectionOptions
			if col, err = db.GetCollection(ctx, collectionName, &options); err != nil {
				logger.Sugar().Fatalf("Failed to use collection: %v", err)
			}
		} else {
			if col, err = db.CreateCollectionV2(ctx, collectionName, nil); err != nil {
				logger.Sugar().Fatalf("Failed to create collection: %v", err)
			}
		}

		collections[collectionName] = col
	}

	//
	// Index creation for document collections
	//

	idxList := []indexConfig{
		// Build collection indexes for progressive narrowing queries
		{Collection: "build", IdxName: "build_branch", IdxField: "branch"},
		{Collection: "build", IdxName: "build_build_hash", IdxField: "build_hash"},
		{Collection: "build", IdxName: "build_commit_time", IdxField: "commit_time"},
		{Collection: "build", IdxName: "build_version", IdxField: "version"},
		{Collection: "build", IdxName: "build_version_major", IdxField: "version_major"},
		{Collection: "build", IdxName: "build_version_minor", IdxField: "version_minor"},
		{Collection: "build", IdxName: "build_version_patch", IdxField: "version_patch"},

		// Feed run collection indexes for refresh status and history queries
		{Collection: "feedrun", IdxName: "feedrun_feed", IdxField: "feed"},
		{Collection: "feedrun", IdxName: "feedrun_started_at", IdxField: "started_at"},
		{Collection: "feedrun", IdxName: "feedrun_outcome", IdxField: "outcome"},
	}

	for _, idx := range idxList {
		found := false

		if indexes, err := collections[idx.Collection].Indexes(ctx); err == nil {
			for _, index := range indexes {
				if idx.IdxName == index.Name {
					found = true
					break
				}
			}
		}

		if !found {
			// Define the index options
			indexOptions := arangodb.CreatePersistentIndexOptions{
				Unique: &False,
				Sparse: &False,
				Name:   idx.IdxName,
			}

			// Create the index
			_, _, err = collections[idx.Collection].EnsurePersistentIndex(ctx, []string{idx.IdxField}, &indexOptions)
			if err != nil {
				logger.Sugar().Fatalln("Error creating index:", err)
			} else {
				logger.Sugar().Infof("Created index: %s on %s.%s", idx.IdxName, idx.Collection, idx.IdxField)
			}
		}
	}

	//
	// Create composite indexes (multi-field indexes)
	//

	// Composite index for semantic version ordering of builds
	buildVersionSortIdx := "build_version_sort"
	found := false
	if indexes, err := collections["build"].Indexes(ctx); err == nil {
		for _, index := range indexes {
			if buildVersionSortIdx == index.Name {
				found = true
				break
			}
		}
	}
	if !found {
		compositeIdxOptions := arangodb.CreatePersistentIndexOptions{
			Unique: &False,
			Sparse: &False,
			Name:   buildVersionSortIdx,
		}
		_, _, err = collections["build"].EnsurePersistentIndex(ctx,
			[]string{"version_major", "version_minor", "version_patch", "commit_time"},
			&compositeIdxOptions)
		if err != nil {
			logger.Sugar().Fatalln("Error creating composite index:", err)
		} else {
			logger.Sugar().Infof("Created composite index: %s on build", buildVersionSortIdx)
		}
	}

	// Composite index for branch-scoped listings
	buildBranchVersionIdx := "build_branch_version"
	found = false
	if indexes, err := collections["build"].Indexes(ctx); err == nil {
		for _, index := range indexes {
			if buildBranchVersionIdx == index.Name {
				found = true
				break
			}
		}
	}
	if !found {
		compositeIdxOptions := arangodb.CreatePersistentIndexOptions{
			Unique: &False,
			Sparse: &False,
			Name:   buildBranchVersionIdx,
		}
		_, _, err = collections["build"].EnsurePersistentIndex(ctx,
			[]string{"branch", "version_major", "version_minor", "version_patch"},
			&compositeIdxOptions)
		if err != nil {
			logger.Sugar().Fatalln("Error creating composite index:", err)
		} else {
			logger.Sugar().Infof("Created composite index: %s on build", buildBranchVersionIdx)
		}
	}

	// Unique index on the build natural key to prevent duplicates
	buildNaturalKeyIdx := "build_natural_key_unique"
	found = false
	if indexes, err := collections["build"].Indexes(ctx); err == nil {
		for _, index := range indexes {
			if buildNaturalKeyIdx == index.Name {
				found = true
				break
			}
		}
	}
	if !found {
		uniqueIdxOptions := arangodb.CreatePersistentIndexOptions{
			Unique: &True,
			Sparse: &False,
			Name:   buildNaturalKeyIdx,
		}
		_, _, err = collections["build"].EnsurePersistentIndex(ctx, []string{"version", "branch", "build_hash"}, &uniqueIdxOptions)
		if err != nil {
			logger.Sugar().Fatalln("Error creating unique index on build natural key:", err)
		} else {
			logger.Sugar().Infof("Created unique index: %s on build", buildNaturalKeyIdx)
		}
	}

	// Composite index for per-feed run history
	feedrunFeedStartedIdx := "feedrun_feed_started"
	found = false
	if indexes, err := collections["feedrun"].Indexes(ctx); err == nil {
		for _, index := range indexes {
			if feedrunFeedStartedIdx == index.Name {
				found = true
				break
			}
		}
	}
	if !found {
		compositeIdxOptions := arangodb.CreatePersistentIndexOptions{
			Unique: &False,
			Sparse: &False,
			Name:   feedrunFeedStartedIdx,
		}
		_, _, err = collections["feedrun"].EnsurePersistentIndex(ctx, []string{"feed", "started_at"}, &compositeIdxOptions)
		if err != nil {
			logger.Sugar().Fatalln("Error creating composite index:", err)
		} else {
			logger.Sugar().Infof("Created composite index: %s on feedrun", feedrunFeedStartedIdx)
		}
	}

	initDone = true

	dbConnection = DBConnection{
		Database:    db,
		Collections: collections,
	}

	logger.Sugar().Infof("Database initialization complete with version-aware indexes and feed run tracking")

	return dbConnection
}

// FindBuildByNaturalKey checks if a build exists by version, branch, and build hash
func FindBuildByNaturalKey(ctx context.Context, db arangodb.Database, version, branch, buildHash string) (string, error) {
	query := `
		FOR b IN build
			FILTER b.version == @version
			   AND b.branch == @branch
			   AND b.build_hash == @build_hash
			LIMIT 1
			RETURN b._key
	`
	bindVars := map[string]interface{}{
		"version":    version,
		"branch":     branch,
		"build_hash": buildHash,
	}

	cursor, err := db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return "", err
	}
	defer cursor.Close()

	if cursor.HasMore() {
		var key string
		_, err := cursor.ReadDocument(ctx, &key)
		if err != nil {
			return "", err
		}
		return key, nil
	}

	return "", nil
}

// CountBuilds returns the number of build documents in the catalog collection
func CountBuilds(ctx context.Context, db arangodb.Database) (int64, error) {
	query := `RETURN LENGTH(build)`

	cursor, err := db.Query(ctx, query, &arangodb.QueryOptions{})
	if err != nil {
		return 0, err
	}
	defer cursor.Close()

	var count int64
	if _, err := cursor.ReadDocument(ctx, &count); err != nil {
		return 0, err
	}

	return count, nil
}
