package storage

import (
	"context"
	"io"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// UploadOptions conveys upload destination metadata.
type UploadOptions struct {
	Bucket      string
	ContentType string
}

// Service stores invoice exports in remote object storage.
type Service interface {
	Upload(ctx context.Context, key string, body io.Reader, opts UploadOptions) (string, error)
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
