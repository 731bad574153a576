package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Dir saves exported files into a local directory, the command line
// counterpart of a browser download.
type Dir struct {
	Path string
}

func (d Dir) Save(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean := filepath.Base(name)
	if clean != name || strings.Trim(clean, ".") == "" {
		return fmt.Errorf("invalid file name %q", name)
	}
	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(d.Path, clean))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
