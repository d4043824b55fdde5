package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/damacus/bucket-drop/internal/logger"
	"github.com/damacus/bucket-drop/internal/models"
	"github.com/damacus/bucket-drop/internal/services"
	"github.com/damacus/bucket-drop/internal/utils"
	"github.com/labstack/echo/v4"
)

// BusyMessage is shown when an upload is requested while another is running
const BusyMessage = "Another upload is already in progress."

// Previewer produces the thumbnail shown for a chosen file
type Previewer interface {
	Resolve(ctx context.Context, path string) (*services.Thumbnail, error)
}

// ObjectUploader writes a chosen file to the bucket
type ObjectUploader interface {
	Upload(ctx context.Context, req services.UploadRequest) (*services.UploadResult, error)
}

type UploadHandler struct {
	picker   services.FilePicker
	previews Previewer
	uploader ObjectUploader

	// held from the dialog opening until the upload returns
	busy sync.Mutex
}

func NewUploadHandler(picker services.FilePicker, previews Previewer, uploader ObjectUploader) *UploadHandler {
	return &UploadHandler{picker: picker, previews: previews, uploader: uploader}
}

// Index renders the upload page with both gates closed
func (h *UploadHandler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, "upload", models.UploadPage{
		Title:     models.AppTitle,
		CSRFToken: CSRFToken(c),
	})
}

// FormControls re-renders the folder field, toggle and Upload button for the
// posted form state
func (h *UploadHandler) FormControls(c echo.Context) error {
	form, err := BindForm(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "upload_controls", form)
}

// Upload opens the file dialog, previews the chosen file and uploads it,
// then renders the preview box and status line.
func (h *UploadHandler) Upload(c echo.Context) error {
	form, err := BindForm(c)
	if err != nil {
		return err
	}
	if !form.TriggerEnabled() {
		return echo.NewHTTPError(http.StatusBadRequest, "Bucket name is required")
	}

	ctx := c.Request().Context()
	log := logger.Ctx(ctx)

	if !h.busy.TryLock() {
		log.Warn().Str("bucket", form.BucketName).Msg("upload rejected, another is in progress")
		return c.Render(http.StatusOK, "upload_result", &models.ResultView{Message: BusyMessage})
	}
	defer h.busy.Unlock()

	path, err := h.picker.Choose(ctx)
	if err != nil {
		log.Error().Err(err).Msg("file dialog failed")
		return c.Render(http.StatusOK, "upload_result", &models.ResultView{
			Message: services.StatusFor(nil, err).Text,
		})
	}
	if path == "" {
		log.Debug().Msg("file selection cancelled")
		return c.Render(http.StatusOK, "upload_result", &models.ResultView{})
	}

	view := &models.ResultView{}
	h.preview(ctx, path, view)

	req := services.UploadRequest{Path: path, Bucket: form.BucketName, Folder: form.Folder()}
	res, err := h.uploader.Upload(ctx, req)

	status := services.StatusFor(res, err)
	view.Message, view.OK = status.Text, status.OK

	var credErr *services.CredentialsError
	switch {
	case errors.As(err, &credErr):
		log.Warn().Str("detail", credErr.Detail()).Msg("upload skipped, credentials incomplete")
	case err != nil:
		log.Error().Err(err).Str("bucket", req.Bucket).Str("path", path).Msg("upload failed")
	default:
		view.Size = utils.FormatFileSize(res.Size)
		log.Info().
			Str("bucket", res.Bucket).
			Str("key", res.Key).
			Str("size", view.Size).
			Str("content_type", res.ContentType).
			Msg("uploaded")
	}

	return c.Render(http.StatusOK, "upload_result", view)
}

// preview fills the thumbnail part of view. A failure only marks the
// preview as unavailable; the upload still goes ahead.
func (h *UploadHandler) preview(ctx context.Context, path string, view *models.ResultView) {
	thumb, err := h.previews.Resolve(ctx, path)
	if err == nil {
		var uri string
		uri, err = thumb.DataURI()
		if err == nil {
			view.PreviewURI = template.URL(uri) // #nosec G203 -- generated from PNG bytes
			view.PreviewWidth = thumb.Width
			view.PreviewHeight = thumb.Height
			view.PreviewAlt = filepath.Base(path)
			return
		}
	}
	logger.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("preview unavailable")
	view.PreviewUnavailable = true
}
