package storage

import (
	"context"
	"fmt"
	"mime"
	"path"

	"cloud.google.com/go/storage"
)

// Client writes whole objects to Google Cloud Storage. It satisfies cards.Writer.
type Client interface {
	SaveBytes(ctx context.Context, bucketName string, objectName string, data []byte) error
}

type gcsClient struct {
	storageClient *storage.Client
}

func New(storageClient *storage.Client) Client {
	return &gcsClient{storageClient: storageClient}
}

func (s *gcsClient) SaveBytes(ctx context.Context, bucketName string, objectName string, data []byte) error {
	bucket := s.storageClient.Bucket(bucketName)
	writer := bucket.Object(objectName).NewWriter(ctx)
	writer.ContentType = contentType(objectName)

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return nil
}

// E.g., "cards/1f0c.json" -> "application/json"
func contentType(objectName string) string {
	if contentType := mime.TypeByExtension(path.Ext(objectName)); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}
