package export

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// Fragment is a document attached somewhere a rasterizer can load it from
type Fragment interface {
	URL() string
	Detach() error
}

// Stage attaches documents for rasterization. Attached fragments are never
// visible to the user.
type Stage interface {
	Attach(ctx context.Context, doc []byte) (Fragment, error)
}

// TempDirStage writes each document into its own temporary directory.
type TempDirStage struct {
	// Dir is the parent directory; empty means os.TempDir.
	Dir string
}

func (s *TempDirStage) Attach(ctx context.Context, doc []byte) (Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp(s.Dir, "essaylens-export-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	path := filepath.Join(dir, "document.html")
	if err := os.WriteFile(path, doc, 0600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to write staged document: %w", err)
	}
	return &fileFragment{dir: dir, path: path}, nil
}

type fileFragment struct {
	dir  string
	path string
}

func (f *fileFragment) URL() string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(f.path)}).String()
}

func (f *fileFragment) Detach() error {
	return os.RemoveAll(f.dir)
}
