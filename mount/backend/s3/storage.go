package s3

import (
	"bytes"
	"context"
	"io"
	"slices"

	"github.com/minio/minio-go/v7"
	"github.com/mwantia/craftos/data"
)

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

func (sb *S3Backend) HeadObject(ctx context.Context, key string) (*data.Attributes, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	info, err := sb.client.StatObject(ctx, sb.config.Bucket, sb.objectName(key), minio.StatObjectOptions{})
	if err == nil {
		return &data.Attributes{
			Size:     info.Size,
			Created:  data.Millis(info.LastModified),
			Modified: data.Millis(info.LastModified),
		}, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	info, err = sb.client.StatObject(ctx, sb.config.Bucket, sb.markerName(key), minio.StatObjectOptions{})
	if err == nil {
		return &data.Attributes{
			IsDir:    true,
			Created:  data.Millis(info.LastModified),
			Modified: data.Millis(info.LastModified),
		}, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	// Prefixes without a marker still behave as directories
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for obj := range sb.client.ListObjects(listCtx, sb.config.Bucket, minio.ListObjectsOptions{
		Prefix:  sb.markerName(key),
		MaxKeys: 1,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		return &data.Attributes{IsDir: true}, nil
	}

	return nil, data.ErrNotExist
}

func (sb *S3Backend) ListObjects(ctx context.Context, key string) ([]string, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	prefix := sb.markerName(key)
	names := make([]string, 0)
	for obj := range sb.client.ListObjects(ctx, sb.config.Bucket, minio.ListObjectsOptions{
		Prefix: prefix,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}

		name := childName(prefix, obj.Key)
		if name == "" || slices.Contains(names, name) {
			continue
		}
		names = append(names, name)
	}

	slices.Sort(names)
	return names, nil
}

func (sb *S3Backend) ReadObject(ctx context.Context, key string) ([]byte, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	obj, err := sb.client.GetObject(ctx, sb.config.Bucket, sb.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	content, err := io.ReadAll(obj)
	if isNotFound(err) {
		return nil, data.ErrNotExist
	}
	return content, err
}

func (sb *S3Backend) WriteObject(ctx context.Context, key string, content []byte) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	_, err := sb.client.PutObject(ctx, sb.config.Bucket, sb.objectName(key),
		bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
	return err
}

func (sb *S3Backend) CreateDirectory(ctx context.Context, key string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	_, err := sb.client.PutObject(ctx, sb.config.Bucket, sb.markerName(key),
		bytes.NewReader(nil), 0, minio.PutObjectOptions{})
	return err
}

func (sb *S3Backend) DeleteObject(ctx context.Context, key string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if err := sb.client.RemoveObject(ctx, sb.config.Bucket, sb.objectName(key), minio.RemoveObjectOptions{}); err != nil && !isNotFound(err) {
		return err
	}

	for obj := range sb.client.ListObjects(ctx, sb.config.Bucket, minio.ListObjectsOptions{
		Prefix:    sb.markerName(key),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return obj.Err
		}
		if err := sb.client.RemoveObject(ctx, sb.config.Bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}

	return nil
}

func (sb *S3Backend) Usage(ctx context.Context) (int64, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	var used int64
	for obj := range sb.client.ListObjects(ctx, sb.config.Bucket, minio.ListObjectsOptions{
		Prefix:    sb.markerName(""),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return 0, obj.Err
		}
		used += obj.Size
	}
	return used, nil
}
