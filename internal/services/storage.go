package services

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage backends selectable through S3_BACKEND.
const (
	BackendMinio = "minio"
	BackendAWS   = "aws"
)

// PutObjectInput describes a single object write
type PutObjectInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

// PutObjectOutput is what the provider reports back for a write
type PutObjectOutput struct {
	ETag      string
	VersionID string
}

// ObjectStore is the single remote call the uploader needs
type ObjectStore interface {
	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
}

// StoreFactory creates an authenticated store bound to one region
type StoreFactory interface {
	NewStore(creds Credentials) (ObjectStore, error)
}

// StoreOptions are the connection settings shared by both backends
type StoreOptions struct {
	UseSSL       bool
	UsePathStyle bool
}

// NewStoreFactory returns the factory for the named backend.
func NewStoreFactory(backend string, opts StoreOptions) (StoreFactory, error) {
	switch backend {
	case "", BackendMinio:
		return &MinioStoreFactory{UseSSL: opts.UseSSL}, nil
	case BackendAWS:
		return &AWSStoreFactory{UseSSL: opts.UseSSL, UsePathStyle: opts.UsePathStyle}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// minioStore wraps minio.Client to implement ObjectStore
type minioStore struct {
	client *minio.Client
}

func (s *minioStore) PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error) {
	info, err := s.client.PutObject(ctx, in.Bucket, in.Key, in.Body, in.Size, minio.PutObjectOptions{
		ContentType: in.ContentType,
	})
	if err != nil {
		return PutObjectOutput{}, err
	}
	return PutObjectOutput{ETag: info.ETag, VersionID: info.VersionID}, nil
}

// MinioStoreFactory builds stores on minio-go. It talks to AWS S3 as well as
// any S3-compatible endpoint.
type MinioStoreFactory struct {
	UseSSL bool
}

func (f *MinioStoreFactory) NewStore(creds Credentials) (ObjectStore, error) {
	client, err := minio.New(creds.Endpoint, &minio.Options{
		Creds:      credentials.NewStaticV4(creds.AccessKey, creds.SecretKey, creds.SessionToken),
		Secure:     f.UseSSL,
		Region:     creds.Region,
		MaxRetries: 1,
	})
	if err != nil {
		return nil, err
	}
	return &minioStore{client: client}, nil
}

// DefaultUseSSL is the TLS default for an endpoint: plain HTTP for loopback
// addresses and single-label hosts (docker service names), TLS otherwise.
func DefaultUseSSL(endpoint string) bool {
	if endpoint == "" {
		return true
	}
	host := endpoint
	if h, _, err := net.SplitHostPort(endpoint); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		return !ip.IsLoopback()
	}
	return strings.Contains(host, ".")
}

// SplitEndpointScheme strips an http:// or https:// prefix from endpoint.
// hasScheme reports whether one was present, secure whether it was https.
func SplitEndpointScheme(endpoint string) (host string, secure, hasScheme bool) {
	lower := strings.ToLower(endpoint)
	switch {
	case strings.HasPrefix(lower, "https://"):
		return strings.TrimSuffix(endpoint[len("https://"):], "/"), true, true
	case strings.HasPrefix(lower, "http://"):
		return strings.TrimSuffix(endpoint[len("http://"):], "/"), false, true
	}
	return strings.TrimSuffix(endpoint, "/"), false, false
}
