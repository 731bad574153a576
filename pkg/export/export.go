package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/PhantomInTheWire/image-toolbox/pkg/convert"
	"github.com/PhantomInTheWire/image-toolbox/pkg/split"
	"github.com/allape/gogger"
)

var l = gogger.New("export")

const (
	SplitArchiveName   = "split_images.zip"
	ConvertArchiveName = "converted_images.zip"
)

// Entry is one named file handed to a Sink.
type Entry struct {
	Name string
	Data []byte
}

// Sink receives exported files, e.g. a download directory or a bucket.
type Sink interface {
	Save(ctx context.Context, name string, r io.Reader) error
}

// TileEntries returns the selected, non-empty tiles as split_<row>_<col>.png entries.
func TileEntries(tiles []split.Tile) []Entry {
	var out []Entry
	for _, t := range tiles {
		if !t.Selected || t.Empty() {
			continue
		}
		out = append(out, Entry{Name: split.TileName(t.Row, t.Col), Data: t.Data})
	}
	return out
}

// ConvertedEntries returns every converted item as <basename>.<ext>.
func ConvertedEntries(items []*convert.Item) []Entry {
	var out []Entry
	for _, it := range items {
		if !it.Done() {
			continue
		}
		out = append(out, Entry{Name: it.OutputName(), Data: it.Converted})
	}
	return out
}

// Archive writes entries into a single zip. Clashing names get a " (n)" suffix
// ahead of the extension.
func Archive(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	seen := map[string]int{}
	for _, e := range entries {
		name := uniqueName(seen, e.Name)
		f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("zip %s: %w", name, err)
		}
		if _, err := f.Write(e.Data); err != nil {
			return fmt.Errorf("zip %s: %w", name, err)
		}
	}
	return zw.Close()
}

func uniqueName(seen map[string]int, name string) string {
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	candidate := fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), n, ext)
	return uniqueName(seen, candidate)
}

// Individual saves each entry on its own, one after another. It stops at the
// first failure.
func Individual(ctx context.Context, sink Sink, entries []Entry) error {
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.Save(ctx, e.Name, bytes.NewReader(e.Data)); err != nil {
			return fmt.Errorf("save %s: %w", e.Name, err)
		}
		l.Verbose().Println("saved", e.Name)
	}
	return nil
}

// Bundle zips entries and saves the archive under name.
func Bundle(ctx context.Context, sink Sink, name string, entries []Entry) error {
	var buf bytes.Buffer
	if err := Archive(&buf, entries); err != nil {
		return err
	}
	if err := sink.Save(ctx, name, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	l.Verbose().Println("saved", name, "with", len(entries), "entries")
	return nil
}
