package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Downloader delivers an exported file.
type Downloader interface {
	Download(ctx context.Context, filename string, data []byte) error
}

// DownloaderFunc adapts a function to Downloader.
type DownloaderFunc func(ctx context.Context, filename string, data []byte) error

func (fn DownloaderFunc) Download(ctx context.Context, filename string, data []byte) error {
	return fn(ctx, filename, data)
}

// DirDownloader writes files into Dir, creating it when needed.
type DirDownloader struct {
	Dir string
}

func (d DirDownloader) Download(_ context.Context, filename string, data []byte) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(d.Dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
