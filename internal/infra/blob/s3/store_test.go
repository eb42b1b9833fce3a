package s3

import (
	"context"
	"testing"

	"lodgecore/internal/blob/core"
)

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error without bucket")
	}
}

func TestNewWithStaticCredentials(t *testing.T) {
	store, err := New(context.Background(), Config{
		Bucket:          "lodgecore-artifacts",
		Region:          "eu-central-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		PathStyle:       true,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if store.Driver() != core.DriverS3 {
		t.Fatalf("driver = %s", store.Driver())
	}
}

func TestOpenFromEnvRequiresBucket(t *testing.T) {
	t.Setenv("LODGECORE_BLOB_S3_BUCKET", "")
	if _, err := OpenFromEnv(context.Background()); err == nil {
		t.Fatalf("expected error without bucket env")
	}
}

func TestOpenFromEnvReadsConfiguration(t *testing.T) {
	t.Setenv("LODGECORE_BLOB_S3_BUCKET", "lodgecore-artifacts")
	t.Setenv("LODGECORE_BLOB_S3_REGION", "eu-central-1")
	t.Setenv("LODGECORE_BLOB_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("LODGECORE_BLOB_S3_PATH_STYLE", "TRUE")
	t.Setenv("AWS_ACCESS_KEY_ID", "minio")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "minio123")

	store, err := OpenFromEnv(context.Background())
	if err != nil {
		t.Fatalf("open from env: %v", err)
	}
	if store.Driver() != core.DriverS3 {
		t.Fatalf("driver = %s", store.Driver())
	}
}
