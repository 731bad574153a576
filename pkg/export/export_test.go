package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/PhantomInTheWire/image-toolbox/pkg/codec"
	"github.com/PhantomInTheWire/image-toolbox/pkg/convert"
	"github.com/PhantomInTheWire/image-toolbox/pkg/split"
)

type memSink struct {
	files map[string][]byte
	order []string
	fail  string
}

func (m *memSink) Save(_ context.Context, name string, r io.Reader) error {
	if name == m.fail {
		return errors.New("disk full")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = data
	m.order = append(m.order, name)
	return nil
}

func TestTileEntriesOnlySelected(t *testing.T) {
	tiles := []split.Tile{
		{Row: 0, Col: 0, Data: []byte("a"), Selected: true},
		{Row: 0, Col: 1, Data: []byte("b"), Selected: false},
		{Row: 1, Col: 0, Selected: true},
		{Row: 1, Col: 1, Data: []byte("d"), Selected: true},
	}
	entries := TileEntries(tiles)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Name != "split_1_1.png" || entries[1].Name != "split_2_2.png" {
		t.Fatalf("names %s %s", entries[0].Name, entries[1].Name)
	}
}

func TestConvertedEntries(t *testing.T) {
	items := []*convert.Item{
		{Name: "a.jpg", Converted: []byte("x"), ConvertedFormat: codec.WEBP},
		{Name: "b.jpg"},
	}
	entries := ConvertedEntries(items)
	if len(entries) != 1 || entries[0].Name != "a.webp" {
		t.Fatalf("entries %+v", entries)
	}
}

func TestArchiveDeduplicatesNames(t *testing.T) {
	var buf bytes.Buffer
	err := Archive(&buf, []Entry{
		{Name: "a.png", Data: []byte("1")},
		{Name: "a.png", Data: []byte("2")},
		{Name: "a (1).png", Data: []byte("3")},
	})
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.png", "a (1).png", "a (1) (1).png"}
	if len(zr.File) != len(want) {
		t.Fatalf("got %d files", len(zr.File))
	}
	for i, f := range zr.File {
		if f.Name != want[i] {
			t.Errorf("file %d = %q, want %q", i, f.Name, want[i])
		}
	}
}

func TestIndividualAndBundle(t *testing.T) {
	entries := []Entry{{Name: "x.png", Data: []byte("x")}, {Name: "y.png", Data: []byte("y")}}

	sink := &memSink{}
	if err := Individual(context.Background(), sink, entries); err != nil {
		t.Fatal(err)
	}
	if len(sink.order) != 2 || sink.order[0] != "x.png" {
		t.Fatalf("saved %v", sink.order)
	}

	if err := Bundle(context.Background(), sink, SplitArchiveName, entries); err != nil {
		t.Fatal(err)
	}
	data := sink.files[SplitArchiveName]
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("archive holds %d files", len(zr.File))
	}

	failing := &memSink{fail: "y.png"}
	if err := Individual(context.Background(), failing, entries); err == nil {
		t.Fatal("expected the failing save to surface")
	}
}
