package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/padloom/padloom/internal/document"
)

// ArchiveStore writes a final snapshot of a document to object storage before
// the sweeper hard-deletes it. Optional: when no MinIO endpoint is configured
// the sweeper runs without archival.
type ArchiveStore struct {
	client *minio.Client
	bucket string
}

// NewArchiveStore creates a MinIO-backed archive and ensures the bucket exists.
func NewArchiveStore(cfg *MinIOConfig) (*ArchiveStore, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &ArchiveStore{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// Archive stores the document snapshot as JSON under <id>/<timestamp>.json.
func (s *ArchiveStore) Archive(ctx context.Context, doc *document.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s/%d.json", doc.ID, time.Now().Unix())
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(b), int64(len(b)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("archive put: %w", err)
	}
	return nil
}
