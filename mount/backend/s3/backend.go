package s3

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3BackendConfig contains configuration options for the S3 backend.
type S3BackendConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`

	// Prefix for all object names, allowing several computers per bucket
	Prefix string `yaml:"prefix"`

	// CreateBucket creates the bucket on open if it is missing
	CreateBucket bool `yaml:"create_bucket"`
}

// S3Backend stores files as objects of a bucket.
// Directories are empty marker objects whose name ends with "/".
type S3Backend struct {
	mu sync.RWMutex

	client *minio.Client
	config *S3BackendConfig
}

func NewS3Backend(config *S3BackendConfig) (*S3Backend, error) {
	if config == nil || config.Endpoint == "" || config.Bucket == "" {
		return nil, fmt.Errorf("s3 backend requires an endpoint and a bucket")
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, err
	}

	return &S3Backend{
		client: client,
		config: config,
	}, nil
}

// Returns the identifier name defined for this backend
func (*S3Backend) Name() string {
	return "s3"
}

// Open is part of the lifecycle behaviour and gets called when opening this backend.
func (sb *S3Backend) Open(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	exists, err := sb.client.BucketExists(ctx, sb.config.Bucket)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}
	if !sb.config.CreateBucket {
		return fmt.Errorf("bucket %q does not exist", sb.config.Bucket)
	}

	return sb.client.MakeBucket(ctx, sb.config.Bucket, minio.MakeBucketOptions{
		Region: sb.config.Region,
	})
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (sb *S3Backend) Close(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	return nil
}

func (sb *S3Backend) objectName(key string) string {
	prefix := strings.Trim(sb.config.Prefix, "/")
	key = strings.TrimPrefix(key, "/")

	if prefix == "" {
		return key
	}
	if key == "" {
		return prefix + "/"
	}
	return prefix + "/" + key
}

// markerName returns the directory marker, which doubles as the listing prefix.
func (sb *S3Backend) markerName(key string) string {
	name := sb.objectName(key)
	if name == "" || strings.HasSuffix(name, "/") {
		return name
	}
	return name + "/"
}

func childName(prefix, name string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, prefix), "/")
}
