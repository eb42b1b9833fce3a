package blob

import (
	"context"
	"fmt"
	"os"

	"lodgecore/internal/infra/blob/fs"
	"lodgecore/internal/infra/blob/memory"
	"lodgecore/internal/infra/blob/s3"
)

// Open selects a blob.Store implementation using environment variables.
//
//	LODGECORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	LODGECORE_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	(S3 specific variables documented in the s3 package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("LODGECORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		root := os.Getenv("LODGECORE_BLOB_FS_ROOT")
		return fs.New(root)
	case DriverS3:
		return s3.OpenFromEnv(ctx)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewMemory returns an in-process store, primarily for tests and callers
// that must not touch the infra packages directly.
func NewMemory() Store {
	return memory.New()
}
