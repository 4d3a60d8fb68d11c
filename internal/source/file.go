package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// FileLoader reads sources from the local filesystem. Relative identifiers are
// resolved against root.
type FileLoader struct {
	root string
}

func NewFileLoader(root string) *FileLoader {
	return &FileLoader{root: root}
}

func (l *FileLoader) Fetch(ctx context.Context, source string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}

	path := strings.TrimPrefix(source, "file://")
	if !filepath.IsAbs(path) && l.root != "" {
		path = filepath.Join(l.root, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}

	return data, nil
}
