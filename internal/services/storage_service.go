package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"foamworks/internal/common"
)

// StorageService stores job photos and generated estimate PDFs. Objects are
// keyed under the tenant so one company can never read another's files.
type StorageService interface {
	UploadPhoto(ctx context.Context, tenantID, fileName string, data []byte, contentType string) (string, error)
	SavePDF(ctx context.Context, tenantID, fileName string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, string, error)
	EnsureBucketExists(ctx context.Context) error
}

type minioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorageService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (StorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioStorage{client: client, bucket: bucket}, nil
}

func (m *minioStorage) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (m *minioStorage) UploadPhoto(ctx context.Context, tenantID, fileName string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", common.Invalidf("photo payload is empty")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if fileName == "" {
		fileName = fmt.Sprintf("photo_%d_%s.jpg", time.Now().UnixMilli(), uuid.NewString()[:8])
	}
	key := fmt.Sprintf("%s/photos/%s", tenantID, fileName)
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", common.Internal("upload photo", err)
	}
	return "/files/" + key, nil
}

func (m *minioStorage) SavePDF(ctx context.Context, tenantID, fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", common.Invalidf("pdf payload is empty")
	}
	key := fmt.Sprintf("%s/pdfs/%s", tenantID, fileName)
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return "", common.Internal("save pdf", err)
	}
	return "/files/" + key, nil
}

func (m *minioStorage) Get(ctx context.Context, key string) ([]byte, string, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", common.Internal("get object", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", common.NotFoundf("file %q not found", key)
	}
	stat, err := obj.Stat()
	if err != nil {
		return nil, "", common.NotFoundf("file %q not found", key)
	}
	return data, stat.ContentType, nil
}
