package minio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const (
	EnvMinIOAccessKeyID     = "MINIO_ACCESS_KEY_ID"
	EnvMinIOSecretAccessKey = "MINIO_SECRET_ACCESS_KEY"
)

// ReplayStore 回放日志对象存储, 每个已结束的房间存一个 JSON 对象
type ReplayStore struct {
	client *minio.Client
	log    *zap.Logger
	bucket string
}

func NewReplayStore(log *zap.Logger, endpoint string, useSSL bool, bucket string) *ReplayStore {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv(EnvMinIOAccessKeyID), os.Getenv(EnvMinIOSecretAccessKey), ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Error("Failed to create MinIO client", zap.Error(err))
		return nil
	}

	return &ReplayStore{
		client: client,
		log:    log,
		bucket: bucket,
	}
}

// PutReplay 上传一份回放日志, 返回对象名
func (s *ReplayStore) PutReplay(ctx context.Context, roomID string, data []byte) (string, error) {
	objectKey := fmt.Sprintf("replays/%s.json", roomID)

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to put replay object: %w", err)
	}

	return objectKey, nil
}

// RemoveReplay 删除一份回放对象
func (s *ReplayStore) RemoveReplay(ctx context.Context, objectKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove replay object: %w", err)
	}
	return nil
}

// GetPresignedDownloadURL 获取回放对象的预签名下载 URL
func (s *ReplayStore) GetPresignedDownloadURL(ctx context.Context, objectKey string, durationSeconds int) (string, error) {
	expiration := time.Duration(durationSeconds) * time.Second

	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, expiration, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	return presignedURL.String(), nil
}
