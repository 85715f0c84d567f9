package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/peopleops/pkg/config"
)

// PayloadArchive keeps raw webhook bodies in object storage for replay and debugging
type PayloadArchive struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// NewPayloadArchive creates a MinIO-backed archive and makes sure the bucket exists
func NewPayloadArchive(ctx context.Context, cfg *config.StorageConfig) (*PayloadArchive, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	archive := &PayloadArchive{
		client: minioClient,
		bucket: cfg.BucketName,
		now:    time.Now,
	}
	if err := archive.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return archive, nil
}

// ensureBucket creates the bucket if it doesn't exist. Archived payloads stay private.
func (a *PayloadArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// ObjectKey builds tenants/<tenant>/meetings/<external id>/<unix nanos>.json
func ObjectKey(tenantID uuid.UUID, externalID string, at time.Time) string {
	return fmt.Sprintf("tenants/%s/meetings/%s/%d.json", tenantID, sanitizeSegment(externalID), at.UnixNano())
}

// ArchivePayload uploads one notification body and returns its object key
func (a *PayloadArchive) ArchivePayload(ctx context.Context, tenantID uuid.UUID, externalID string, body []byte) (string, error) {
	key := ObjectKey(tenantID, externalID, a.now())
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"tenant-id":   tenantID.String(),
			"external-id": externalID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive payload: %w", err)
	}
	return key, nil
}

// sanitizeSegment keeps provider ids from introducing extra path segments
func sanitizeSegment(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch r {
		case '/', '\\', ' ', '?', '#':
			out[i] = '_'
		}
	}
	if len(out) == 0 {
		return "_"
	}
	return string(out)
}
