package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/sharelink/internal/flagx"
)

var knownFlags = []string{"-a", "-g", "-storage", "-d", "-blob", "-z", "-s", "-t", "-m", "-l", "-log", "-q", "-u", "-p", "-b", "-r", "-e"}

// parseFlags populates Config fields from command-line flags.
//
//	-a string       HTTP bind address (e.g. ":8080")
//	-g string       gRPC live channel bind address (e.g. ":50051")
//	-storage string metadata backend: memory | postgres
//	-d string       PostgreSQL DSN
//	-blob string    blob backend: memory | s3
//	-z bool         zstd-compress blobs
//	-s string       JWT HMAC secret key
//	-t int          access token validity, minutes
//	-m int          max file content size, bytes
//	-l string       share link base URL
//	-log string     log level
//	-q int          per-connection notifier queue size
//	-u / -p string  S3 access key / secret key
//	-b string       S3 bucket
//	-r string       S3 region
//	-e string       S3 base endpoint (e.g. "http://127.0.0.1:9000")
//
// Arguments are filtered through flagx.FilterArgs first so -c/-config and
// foreign flags do not trip the parser. A parse error panics.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.Storage, "storage", config.Storage, "metadata storage: memory | postgres")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BlobStorage, "blob", config.BlobStorage, "blob storage: memory | s3")
	fs.BoolVar(&config.BlobCompression, "z", config.BlobCompression, "compress blobs with zstd")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.Int64Var(&config.MaxContentSize, "m", config.MaxContentSize, "max file content size in bytes")
	fs.StringVar(&config.LinkBaseURL, "l", config.LinkBaseURL, "share link base URL")
	fs.StringVar(&config.LogLevel, "log", config.LogLevel, "log level")
	fs.IntVar(&config.NotifierQueueSize, "q", config.NotifierQueueSize, "notifier queue size per connection")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
