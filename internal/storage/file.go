package storage

import (
	"io"
	"os"
	"path/filepath"
)

// writeFile creates path and its parent directories and streams the content
// produced by write into it.
func writeFile(path string, write func(w io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &IOError{Op: "create directory for", Path: path, Err: err}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}

	if err := write(f); err != nil {
		f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}
