package meta

import (
	"context"
	"fmt"
	"io"
	"path"

	"mod-manager/core/gamedata"
	"mod-manager/core/storage"

	"github.com/minio/minio-go/v7"
)

// StorageProvider reads base tables from an object storage bucket where the
// game data is laid out by game path under prefix.
type StorageProvider struct {
	client storage.Client
	bucket string
	prefix string
}

// NewStorageProvider creates a provider for bucket/prefix.
func NewStorageProvider(client storage.Client, bucket, prefix string) *StorageProvider {
	return &StorageProvider{client: client, bucket: bucket, prefix: prefix}
}

// ObjectName returns the storage object holding the table at p.
func (s *StorageProvider) ObjectName(p gamedata.GamePath) string {
	if s.prefix == "" {
		return p.String()
	}
	return path.Join(s.prefix, p.String())
}

// FetchTable downloads the raw bytes of the table at p.
func (s *StorageProvider) FetchTable(ctx context.Context, p gamedata.GamePath) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.ObjectName(p), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", s.ObjectName(p), err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", s.ObjectName(p), err)
	}
	return data, nil
}
