package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "BUDGETKEEPER_"

// dotenvLoad is a seam for tests. Variables already present in the process
// environment win over .env entries.
var dotenvLoad = func() error { return godotenv.Load() }

// parseEnv overlays BUDGETKEEPER_* variables onto config. A missing .env
// file is not an error.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	if err := dotenvLoad(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	strs := map[string]*string{
		"GRPC_ADDR":        &config.EndpointAddrGRPC,
		"STORAGE_BACKEND":  &config.StorageBackend,
		"DATABASE_DSN":     &config.DatabaseDSN,
		"MONGO_URI":        &config.MongoURI,
		"MONGO_DATABASE":   &config.MongoDatabase,
		"SECRET_KEY":       &config.SecretKey,
		"S3_ROOT_USER":     &config.S3RootUser,
		"S3_ROOT_PASSWORD": &config.S3RootPassword,
		"S3_BUCKET":        &config.S3Bucket,
		"S3_REGION":        &config.S3Region,
		"S3_BASE_ENDPOINT": &config.S3BaseEndpoint,
		"LOG_LEVEL":        &config.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"EXPORT_LINK_TTL":  &config.ExportLinkTTL,
		"SHUTDOWN_TIMEOUT": &config.ShutdownTimeout,
	}
	for name, dst := range durations {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
	}
	return nil
}
