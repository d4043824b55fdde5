package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/damacus/bucket-drop/internal/metrics"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
)

// ThumbnailSize is the side of the square box thumbnails are fitted into.
const ThumbnailSize = 100

// maxIconBytes caps how much of an icon response is read.
const maxIconBytes = 5 << 20

// Preview sources.
const (
	SourceLocal = "local"
	SourceIcon  = "icon"
)

// OthersIcon is the icon table entry for unmapped extensions.
const OthersIcon = "others"

var imageExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// iconFiles maps extensions to icon file names under the icon base URL.
var iconFiles = map[string]string{
	"pdf":      "pdf.png",
	"txt":      "txt.png",
	"md":       "markdown.png",
	"json":     "json.png",
	"yaml":     "yaml.png",
	"doc":      "doc.png",
	"docx":     "word.png",
	"js":       "javascript.png",
	"html":     "html-5.png",
	"css":      "css3.png",
	"py":       "python.png",
	OthersIcon: "file.png",
}

// Extension returns the lowercased text after the last "." of the base name,
// or "" when there is no dot.
func Extension(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// IsImageExtension reports whether files with ext are decoded locally.
func IsImageExtension(ext string) bool {
	_, ok := imageExtensions[strings.ToLower(ext)]
	return ok
}

// Thumbnail is a decoded preview bounded to ThumbnailSize.
type Thumbnail struct {
	Image  image.Image
	Width  int
	Height int
	Source string
	// Origin is the local path or the icon URL the image came from.
	Origin string
}

// DataURI encodes the thumbnail as a PNG data URI.
func (t *Thumbnail) DataURI() (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, t.Image); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// PreviewResolver produces thumbnails: local decode for images, a fetched
// icon for everything else. Nothing is cached.
type PreviewResolver struct {
	client   *http.Client
	iconBase string
}

// NewPreviewResolver creates a resolver. A zero timeout means icon fetches
// are bounded only by the caller's context.
func NewPreviewResolver(iconBaseURL string, timeout time.Duration) *PreviewResolver {
	if !strings.HasSuffix(iconBaseURL, "/") {
		iconBaseURL += "/"
	}
	return &PreviewResolver{
		client:   &http.Client{Timeout: timeout},
		iconBase: iconBaseURL,
	}
}

// IconURL returns the icon URL for ext, falling back to the "others" icon.
func (r *PreviewResolver) IconURL(ext string) string {
	name, ok := iconFiles[strings.ToLower(ext)]
	if !ok {
		name = iconFiles[OthersIcon]
	}
	return r.iconBase + name
}

// Resolve builds the thumbnail for the file at path.
func (r *PreviewResolver) Resolve(ctx context.Context, path string) (*Thumbnail, error) {
	ext := Extension(path)

	if IsImageExtension(ext) {
		img, err := decodeFile(path)
		if err != nil {
			metrics.PreviewsTotal.WithLabelValues(SourceLocal, metrics.ResultError).Inc()
			return nil, &PreviewError{Path: path, Source: SourceLocal, Err: err}
		}
		metrics.PreviewsTotal.WithLabelValues(SourceLocal, metrics.ResultOK).Inc()
		return newThumbnail(img, SourceLocal, path), nil
	}

	url := r.IconURL(ext)
	img, err := r.fetchIcon(ctx, url)
	if err != nil {
		metrics.PreviewsTotal.WithLabelValues(SourceIcon, metrics.ResultError).Inc()
		return nil, &PreviewError{Path: path, Source: SourceIcon, URL: url, Err: err}
	}
	metrics.PreviewsTotal.WithLabelValues(SourceIcon, metrics.ResultOK).Inc()
	return newThumbnail(img, SourceIcon, url), nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func (r *PreviewResolver) fetchIcon(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes))
	if err != nil {
		return nil, fmt.Errorf("read icon: %w", err)
	}

	mt := mimetype.Detect(body)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("icon is %s, not an image", mt.String())
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode icon: %w", err)
	}
	return img, nil
}

func newThumbnail(img image.Image, source, origin string) *Thumbnail {
	thumb := FitWithin(img, ThumbnailSize)
	b := thumb.Bounds()
	return &Thumbnail{
		Image:  thumb,
		Width:  b.Dx(),
		Height: b.Dy(),
		Source: source,
		Origin: origin,
	}
}

// FitWithin scales src down to fit a box×box square, keeping the aspect
// ratio. Images that already fit are returned unchanged.
func FitWithin(src image.Image, box int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= box && h <= box {
		return src
	}

	nw, nh := box, box
	if w >= h {
		nh = max(1, (h*box+w/2)/w)
	} else {
		nw = max(1, (w*box+h/2)/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
