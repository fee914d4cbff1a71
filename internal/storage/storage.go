// Package storage archives synthesized audio clips to object storage.
// The archive is best-effort: failures are logged and never fail the
// request that produced the clip.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bowerhall/rene/internal/logger"
)

type Archive struct {
	mc     *minio.Client
	bucket string
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

func NewArchive(cfg Config) (*Archive, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	return &Archive{mc: mc, bucket: cfg.Bucket}, nil
}

// Init creates the audio bucket if it doesn't exist.
func (a *Archive) Init(ctx context.Context) error {
	exists, err := a.mc.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}

	if !exists {
		if err := a.mc.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", a.bucket, err)
		}
		logger.Info("bucket created", "bucket", a.bucket)
	}

	return nil
}

// SaveClip stores one synthesized clip under the user's prefix. The
// object name carries a timestamp plus a short unique suffix.
func (a *Archive) SaveClip(ctx context.Context, userID string, audio []byte) {
	name := fmt.Sprintf("%s/%s-%s.wav",
		userID,
		time.Now().UTC().Format("20060102T150405"),
		uuid.New().String()[:8],
	)

	_, err := a.mc.PutObject(ctx, a.bucket, name, bytes.NewReader(audio), int64(len(audio)), minio.PutObjectOptions{
		ContentType: "audio/wav",
	})
	if err != nil {
		logger.Warn("audio archive failed", "user", userID, "error", err)
		return
	}

	logger.Debug("audio archived", "object", name, "size", len(audio))
}

// Healthy checks object storage reachability.
func (a *Archive) Healthy(ctx context.Context) bool {
	_, err := a.mc.BucketExists(ctx, a.bucket)
	return err == nil
}
