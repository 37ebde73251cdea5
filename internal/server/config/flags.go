package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/budgetkeeper/internal/flagx"
)

// serverFlags are the short flags parseFlags understands.
var serverFlags = []string{"-a", "-k", "-d", "-m", "-n", "-s", "-u", "-p", "-b", "-g", "-e", "-x", "-l"}

// parseFlags overlays command-line flags:
//
//	-a  gRPC bind address          -k  storage backend
//	-d  PostgreSQL DSN             -m  MongoDB URI
//	-n  MongoDB database           -s  JWT secret key
//	-u  S3 user   -p  S3 password  -b  S3 bucket
//	-g  S3 region -e  S3 endpoint  -x  export link TTL (e.g. 15m)
//	-l  log level
//
// Unknown arguments are filtered out first so -c/-config and flags of other
// components do not clash.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.StorageBackend, "k", config.StorageBackend, "storage backend: postgres|mongo|memory")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "mongo URI")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "mongo database")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.DurationVar(&config.ExportLinkTTL, "x", config.ExportLinkTTL, "export link validity")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level: debug|info|warn|error")

	return fs.Parse(flagx.FilterArgs(args, serverFlags))
}
