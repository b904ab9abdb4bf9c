package config

import (
	"fmt"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/live"
)

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("%w: database DSN is required for postgres storage", common.ErrorValidation)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q", common.ErrorValidation, c.Storage)
	}

	switch c.BlobStorage {
	case BackendMemory:
	case BackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("%w: S3 bucket is required for s3 blob storage", common.ErrorValidation)
		}
	default:
		return fmt.Errorf("%w: unknown blob storage %q", common.ErrorValidation, c.BlobStorage)
	}

	if c.SecretKey == "" {
		return fmt.Errorf("%w: secret key is required", common.ErrorValidation)
	}
	if c.AccessTokenValidityDuration <= 0 {
		return fmt.Errorf("%w: token validity must be positive", common.ErrorValidation)
	}
	if c.MaxContentSize <= 0 {
		return fmt.Errorf("%w: max content size must be positive", common.ErrorValidation)
	}
	if live.FrameSize(c.MaxContentSize) > live.MaxFrameSize {
		return fmt.Errorf("%w: max content size %d does not fit a live frame", common.ErrorValidation, c.MaxContentSize)
	}
	return nil
}
