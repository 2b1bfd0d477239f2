package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"tezbeat/config"
	"tezbeat/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	minioClient *minio.Client
	bucket      string
)

// InitMinio initializes the MinIO client and ensures the audio cache bucket
// exists.
func InitMinio(cfg *config.Config) error {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{
			Region: cfg.MinioRegion,
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("Created MinIO bucket", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	bucket = cfg.MinioBucket
	logger.Info("MinIO client initialized", logger.String("endpoint", cfg.MinioEndpoint))
	return nil
}

// GetMinioClient returns the shared MinIO client.
func GetMinioClient() *minio.Client {
	return minioClient
}

// audioObjectName builds the object key for a cached track artifact.
func audioObjectName(trackID string) string {
	return fmt.Sprintf("audio/%s", trackID)
}

// PutAudio caches a track's audio stream fetched from an IPFS gateway.
// Pass size -1 when the gateway does not report a length.
func PutAudio(ctx context.Context, trackID, contentType string, r io.Reader, size int64) error {
	if minioClient == nil {
		return fmt.Errorf("MinIO client not initialized")
	}
	opts := minio.PutObjectOptions{ContentType: contentType}
	if size < 0 {
		// without a length the client stages multipart chunks; keep them
		// small since audio artifacts are a few MB at most
		opts.PartSize = 16 << 20
	}
	_, err := minioClient.PutObject(ctx, bucket, audioObjectName(trackID), r, size, opts)
	if err != nil {
		return fmt.Errorf("failed to cache audio for %s: %w", trackID, err)
	}
	return nil
}

// GetAudio returns a cached track's audio stream along with its content type
// and size. The caller must close the reader. Returns found=false when the
// track is not cached.
func GetAudio(ctx context.Context, trackID string) (io.ReadCloser, string, int64, bool, error) {
	if minioClient == nil {
		return nil, "", 0, false, fmt.Errorf("MinIO client not initialized")
	}

	stat, err := minioClient.StatObject(ctx, bucket, audioObjectName(trackID), minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, "", 0, false, nil
		}
		return nil, "", 0, false, fmt.Errorf("failed to stat cached audio for %s: %w", trackID, err)
	}

	obj, err := minioClient.GetObject(ctx, bucket, audioObjectName(trackID), minio.GetObjectOptions{})
	if err != nil {
		return nil, "", 0, false, fmt.Errorf("failed to read cached audio for %s: %w", trackID, err)
	}
	return obj, stat.ContentType, stat.Size, true, nil
}

// RemoveAudio drops a cached track artifact.
func RemoveAudio(ctx context.Context, trackID string) error {
	if minioClient == nil {
		return fmt.Errorf("MinIO client not initialized")
	}
	return minioClient.RemoveObject(ctx, bucket, audioObjectName(trackID), minio.RemoveObjectOptions{})
}
