package services

import (
	"fmt"
	"strings"
)

// NoCredentialsMessage is the status text for a CredentialsError.
const NoCredentialsMessage = "No credentials found."

// CredentialsError means the access key or secret key is missing.
type CredentialsError struct {
	Missing []string
	Err     error
}

func (e *CredentialsError) Error() string {
	return NoCredentialsMessage
}

func (e *CredentialsError) Unwrap() error {
	return e.Err
}

// Detail lists what is missing, for logs.
func (e *CredentialsError) Detail() string {
	if len(e.Missing) == 0 {
		if e.Err != nil {
			return e.Err.Error()
		}
		return "credentials incomplete"
	}
	return "missing " + strings.Join(e.Missing, ", ")
}

// UploadError is any other failure while writing an object. Its message is
// the underlying error's message.
type UploadError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *UploadError) Error() string {
	return e.Err.Error()
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// PreviewError means no thumbnail could be produced for a file.
type PreviewError struct {
	Path   string
	Source string
	URL    string
	Err    error
}

func (e *PreviewError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("preview %s: icon %s: %v", e.Path, e.URL, e.Err)
	}
	return fmt.Sprintf("preview %s: %v", e.Path, e.Err)
}

func (e *PreviewError) Unwrap() error {
	return e.Err
}
