package camera

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileDevice serves a still image from disk as every frame. Useful for
// headless machines and demos.
type FileDevice struct {
	Path string
}

func (d FileDevice) Name() string { return "file:" + d.Path }

func (d FileDevice) Open(_ context.Context) (Stream, error) {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return nil, mapOSError(d.Path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrDeviceUnavailable, d.Path)
	}
	return &stillStream{frame: Frame{Data: data, MIMEType: mimeFromPath(d.Path)}}, nil
}

type stillStream struct {
	frame Frame
}

func (s *stillStream) Latest() (Frame, bool) {
	return Frame{Data: s.frame.Data, MIMEType: s.frame.MIMEType}, true
}

func (s *stillStream) Close() error { return nil }

func mimeFromPath(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}

// mapOSError translates file access errors into the camera taxonomy.
func mapOSError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s not found", ErrDeviceUnavailable, path)
	default:
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
}
