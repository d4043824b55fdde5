package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/damacus/bucket-drop/internal/metrics"
	"github.com/gabriel-vasile/mimetype"
)

// UploadRequest is built from the form each time a file is chosen
type UploadRequest struct {
	Path   string
	Bucket string
	Folder string
}

// UploadResult describes an object that was written
type UploadResult struct {
	Bucket      string
	Key         string
	Size        int64
	ContentType string
	ETag        string
}

// Status is the text and colour shown on the status line
type Status struct {
	Text string
	OK   bool
}

// ObjectKey is folder + "/" + basename(path), or just the basename when
// folder is empty. Neither part is sanitised.
func ObjectKey(path, folder string) string {
	name := filepath.Base(path)
	if folder != "" {
		return folder + "/" + name
	}
	return name
}

// StatusFor projects an upload outcome onto the status line.
func StatusFor(res *UploadResult, err error) Status {
	var credErr *CredentialsError
	switch {
	case errors.As(err, &credErr):
		return Status{Text: NoCredentialsMessage}
	case err != nil:
		return Status{Text: "An error occurred: " + err.Error()}
	case res == nil:
		return Status{}
	}
	return Status{Text: fmt.Sprintf("Successfully uploaded to %s/%s", res.Bucket, res.Key), OK: true}
}

// Uploader writes one local file per call to the object store. There is no
// retry and no multipart handling of its own.
type Uploader struct {
	store   ObjectStore
	creds   Credentials
	timeout time.Duration
}

// NewUploader creates an uploader. A zero timeout leaves the call bounded
// only by ctx.
func NewUploader(store ObjectStore, creds Credentials, timeout time.Duration) *Uploader {
	return &Uploader{store: store, creds: creds, timeout: timeout}
}

// Upload puts the file at req.Path into req.Bucket under ObjectKey.
func (u *Uploader) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	key := ObjectKey(req.Path, req.Folder)

	if err := u.creds.Validate(); err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.ResultCredentialsError).Inc()
		return nil, err
	}

	res, err := u.put(ctx, req.Bucket, key, req.Path)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.ResultUploadError).Inc()
		return nil, &UploadError{Bucket: req.Bucket, Key: key, Err: err}
	}

	metrics.UploadsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.UploadedBytes.Add(float64(res.Size))
	return res, nil
}

func (u *Uploader) put(ctx context.Context, bucket, key, path string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("detect content type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := u.store.PutObject(ctx, PutObjectInput{
		Bucket:      bucket,
		Key:         key,
		Body:        f,
		Size:        info.Size(),
		ContentType: mt.String(),
	})
	metrics.UploadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		Bucket:      bucket,
		Key:         key,
		Size:        info.Size(),
		ContentType: mt.String(),
		ETag:        out.ETag,
	}, nil
}
