package main

import (
	"bytes"
	"image"
	"image/jpeg"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/damacus/bucket-drop/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestUploadJourney(t *testing.T) {
	// 1. Setup
	icons := newIconServer(t)
	store := new(MockObjectStore)
	picker := new(MockPicker)
	e := newServer(testServerDeps(store, picker, icons.URL+"/icons/", nil))
	s := newSession(t, e)

	reportPath := writeTempFile(t, "report.pdf", []byte("%PDF-1.4 quarterly"))

	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, image.NewRGBA(image.Rect(0, 0, 400, 200)), nil))
	photoPath := writeTempFile(t, "photo.jpg", jpg.Bytes())

	// Step A: both gates closed while the bucket is empty
	rec := s.post("/form", url.Values{"bucketName": {""}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Regexp(t, `value="true" disabled`, rec.Body.String())
	assert.Regexp(t, `disabled>Upload File`, rec.Body.String())

	// Step B: typing a bucket opens the trigger and the toggle
	rec = s.post("/form", url.Values{"bucketName": {"my-bucket"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotRegexp(t, `value="true" disabled`, rec.Body.String())
	assert.NotRegexp(t, `disabled>Upload File`, rec.Body.String())

	// Step C: an empty bucket never reaches the dialog or the store
	rec = s.post("/upload", url.Values{"bucketName": {""}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	picker.AssertNotCalled(t, "Choose", mock.Anything)

	// Step D: upload without a folder fetches the mapped icon
	picker.On("Choose", mock.Anything).Return(reportPath, nil).Once()
	store.On("PutObject", mock.Anything, "my-bucket", "report.pdf", int64(18), "application/pdf", "%PDF-1.4 quarterly").
		Return(services.PutObjectOutput{ETag: "abc"}, nil).Once()

	rec = s.post("/upload", url.Values{"bucketName": {"my-bucket"}})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<span class="ok">Successfully uploaded to my-bucket/report.pdf</span>`)
	assert.Contains(t, body, `<img src="data:image/png;base64,`)
	assert.Contains(t, body, `width="100" height="100"`)
	assert.Contains(t, body, "(18 B)")
	assert.Equal(t, []string{"/icons/pdf.png"}, icons.requested())

	// Step E: with the toggle engaged, the folder becomes the key prefix and
	// images are decoded locally
	picker.On("Choose", mock.Anything).Return(photoPath, nil).Once()
	store.On("PutObject", mock.Anything, "my-bucket", "archive/photo.jpg", int64(jpg.Len()), "image/jpeg", mock.Anything).
		Return(services.PutObjectOutput{}, nil).Once()

	rec = s.post("/upload", url.Values{"bucketName": {"my-bucket"}, "folderToggle": {"true"}, "folderName": {"archive"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Successfully uploaded to my-bucket/archive/photo.jpg")
	assert.Contains(t, rec.Body.String(), `width="100" height="50"`)
	assert.Len(t, icons.requested(), 1, "local images are not fetched")

	// Step F: folder text is ignored once the toggle is off
	picker.On("Choose", mock.Anything).Return(photoPath, nil).Once()
	store.On("PutObject", mock.Anything, "my-bucket", "photo.jpg", mock.Anything, mock.Anything, mock.Anything).
		Return(services.PutObjectOutput{}, nil).Once()

	rec = s.post("/upload", url.Values{"bucketName": {"my-bucket"}, "folderName": {"archive"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Successfully uploaded to my-bucket/photo.jpg")

	// Step G: a failing store shows the error in red
	picker.On("Choose", mock.Anything).Return(reportPath, nil).Once()
	store.On("PutObject", mock.Anything, "locked-bucket", "report.pdf", mock.Anything, mock.Anything, mock.Anything).
		Return(services.PutObjectOutput{}, assert.AnError).Once()

	rec = s.post("/upload", url.Values{"bucketName": {"locked-bucket"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<span class="err">An error occurred: `+assert.AnError.Error()+`</span>`)

	store.AssertExpectations(t)
	picker.AssertExpectations(t)
}

func TestUploadJourney_CredentialsAbsent(t *testing.T) {
	icons := newIconServer(t)
	store := new(MockObjectStore)
	picker := new(MockPicker)
	deps := testServerDeps(store, picker, icons.URL, nil)
	deps.uploader = services.NewUploader(store, services.Credentials{Region: "us-east-1"}, 0)
	e := newServer(deps)
	s := newSession(t, e)

	path := writeTempFile(t, "notes.txt", []byte("hello"))
	picker.On("Choose", mock.Anything).Return(path, nil).Once()

	rec := s.post("/upload", url.Values{"bucketName": {"my-bucket"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<span class="err">No credentials found.</span>`)
	assert.Equal(t, []string{"/txt.png"}, icons.requested(), "preview still shown")
	store.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadJourney_PreviewUnavailable(t *testing.T) {
	store := new(MockObjectStore)
	picker := new(MockPicker)
	// nothing listens on port 1
	e := newServer(testServerDeps(store, picker, "http://127.0.0.1:1/", nil))
	s := newSession(t, e)

	path := writeTempFile(t, "data.csv", []byte("a,b\n1,2\n"))
	picker.On("Choose", mock.Anything).Return(path, nil).Once()
	store.On("PutObject", mock.Anything, "my-bucket", "data.csv", int64(8), mock.Anything, "a,b\n1,2\n").
		Return(services.PutObjectOutput{}, nil).Once()

	rec := s.post("/upload", url.Values{"bucketName": {"my-bucket"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Preview unavailable")
	assert.Contains(t, rec.Body.String(), "Successfully uploaded to my-bucket/data.csv")
	store.AssertExpectations(t)
}

func TestUploadJourney_Cancelled(t *testing.T) {
	store := new(MockObjectStore)
	picker := new(MockPicker)
	e := newServer(testServerDeps(store, picker, "http://127.0.0.1:1/", nil))
	s := newSession(t, e)

	picker.On("Choose", mock.Anything).Return("", nil).Once()

	rec := s.post("/upload", url.Values{"bucketName": {"my-bucket"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<span")
	assert.NotContains(t, rec.Body.String(), "<img")
	store.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
