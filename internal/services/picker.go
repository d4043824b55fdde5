package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ncruces/zenity"
)

// FilePicker asks the user for one local file. An empty path with a nil
// error means the user cancelled.
type FilePicker interface {
	Choose(ctx context.Context) (string, error)
}

// DialogPicker opens the OS-native "open file" dialog
type DialogPicker struct {
	Title string
}

func (p DialogPicker) Choose(ctx context.Context) (string, error) {
	path, err := zenity.SelectFile(zenity.Title(p.Title), zenity.Context(ctx))
	if errors.Is(err, zenity.ErrCanceled) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("file dialog: %w", err)
	}
	if path == "" {
		return "", nil
	}
	return filepath.Abs(path)
}
