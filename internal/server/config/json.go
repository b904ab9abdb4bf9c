package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/sharelink/internal/flagx"
	"github.com/dmitrijs2005/sharelink/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations use timex.Duration so
// both "1h" and integer nanoseconds are accepted. Absent or zero fields keep
// the value already in Config.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	Storage                     string         `json:"storage"`
	DatabaseDSN                 string         `json:"database_dsn"`
	BlobStorage                 string         `json:"blob_storage"`
	BlobCompression             *bool          `json:"blob_compression"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	MaxContentSize              int64          `json:"max_content_size"`
	LinkBaseURL                 string         `json:"link_base_url"`
	LogLevel                    string         `json:"log_level"`
	NotifierQueueSize           int            `json:"notifier_queue_size"`
	S3AccessKey                 string         `json:"s3_access_key"`
	S3SecretKey                 string         `json:"s3_secret_key"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c/-config, if any, into config.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.Storage, c.Storage)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.BlobStorage, c.BlobStorage)
	if c.BlobCompression != nil {
		config.BlobCompression = *c.BlobCompression
	}
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.MaxContentSize > 0 {
		config.MaxContentSize = c.MaxContentSize
	}
	setString(&config.LinkBaseURL, c.LinkBaseURL)
	setString(&config.LogLevel, c.LogLevel)
	if c.NotifierQueueSize > 0 {
		config.NotifierQueueSize = c.NotifierQueueSize
	}
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
