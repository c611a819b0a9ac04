package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
)

const snapshotContentType = "application/json"

// GCSConfig captures the parameters required to talk to GCS.
type GCSConfig struct {
	Bucket         string
	ProjectID      string
	AllowedOrigins []string
}

// GCS implements Store backed by a Google Cloud Storage bucket.
// Authentication is handled via Application Default Credentials.
type GCS struct {
	client *gcs.Client
	cfg    GCSConfig
}

// NewGCS creates a GCS-backed store.
func NewGCS(client *gcs.Client, cfg GCSConfig) (*GCS, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &GCS{client: client, cfg: cfg}, nil
}

// Load reads the object at key. A missing object is reported as not found,
// not as an error.
func (s *GCS) Load(ctx context.Context, key string) ([]byte, bool, error) {
	reader, err := s.client.Bucket(s.cfg.Bucket).Object(key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open gs://%s/%s: %w", s.cfg.Bucket, key, err)
	}
	defer reader.Close() //nolint:errcheck // read error below is the one that matters

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, fmt.Errorf("read gs://%s/%s: %w", s.cfg.Bucket, key, err)
	}
	return data, true, nil
}

// Save uploads data to key, replacing any previous snapshot.
func (s *GCS) Save(ctx context.Context, key string, data []byte) error {
	writer := s.client.Bucket(s.cfg.Bucket).Object(key).NewWriter(ctx)
	writer.ContentType = snapshotContentType

	if _, err := writer.Write(data); err != nil {
		if closeErr := writer.Close(); closeErr != nil {
			return fmt.Errorf("write gs://%s/%s: %w (close: %v)", s.cfg.Bucket, key, err, closeErr)
		}
		return fmt.Errorf("write gs://%s/%s: %w", s.cfg.Bucket, key, err)
	}
	// Close finalizes the upload; buffered data is flushed here.
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close gs://%s/%s: %w", s.cfg.Bucket, key, err)
	}
	return nil
}

// EnsureBucket creates the bucket when missing and applies the CORS policy
// the website relies on to GET the snapshots cross-origin.
func (s *GCS) EnsureBucket(ctx context.Context) error {
	bucket := s.client.Bucket(s.cfg.Bucket)

	_, err := bucket.Attrs(ctx)
	switch {
	case errors.Is(err, gcs.ErrBucketNotExist):
		attrs := &gcs.BucketAttrs{CORS: s.corsRules()}
		if createErr := bucket.Create(ctx, s.cfg.ProjectID, attrs); createErr != nil {
			return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, createErr)
		}
		return nil
	case err != nil:
		return fmt.Errorf("bucket %s attrs: %w", s.cfg.Bucket, err)
	}

	update := gcs.BucketAttrsToUpdate{CORS: s.corsRules()}
	if _, err := bucket.Update(ctx, update); err != nil {
		return fmt.Errorf("update bucket %s cors: %w", s.cfg.Bucket, err)
	}
	return nil
}

func (s *GCS) corsRules() []gcs.CORS {
	if len(s.cfg.AllowedOrigins) == 0 {
		return nil
	}
	return []gcs.CORS{{
		Methods:         []string{"GET"},
		Origins:         s.cfg.AllowedOrigins,
		ResponseHeaders: []string{"*"},
		MaxAge:          time.Hour,
	}}
}
