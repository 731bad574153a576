package convert

import (
	"context"
	"crypto/rand"
	"math/big"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PhantomInTheWire/image-toolbox/pkg/codec"
	"github.com/allape/gogger"
)

var l = gogger.New("convert")

// Item is one queued input file and, once converted, its output.
type Item struct {
	ID   string
	Name string
	Data []byte

	Converted       []byte
	ConvertedFormat codec.Format
	Err             error
}

// Done reports whether the item holds a converted output.
func (it *Item) Done() bool {
	return it.Converted != nil
}

// OutputName is the download name of the converted file.
func (it *Item) OutputName() string {
	return OutputName(it.Name, it.ConvertedFormat)
}

// OutputName swaps the last extension of name for the extension of f.
func OutputName(name string, f codec.Format) string {
	base := filepath.Base(name)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base + "." + f.Extension()
}

// Convert decodes data at its native resolution and re-encodes it as f.
func Convert(ctx context.Context, name string, data []byte, f codec.Format) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := codec.Decode(name, data)
	if err != nil {
		return nil, err
	}
	return codec.Encode(name, img, f)
}

// All converts every item that has no output yet, all at once. A failing item
// keeps its output unset and records the error; it never affects the others
// and is never returned to the caller.
func All(ctx context.Context, items []*Item, f codec.Format) {
	var wg sync.WaitGroup
	for _, it := range items {
		if it.Done() {
			continue
		}
		wg.Add(1)
		go func(it *Item) {
			defer wg.Done()
			out, err := Convert(ctx, it.Name, it.Data, f)
			if err != nil {
				l.Error().Println("convert", it.Name, "failed:", err)
				it.Err = err
				return
			}
			it.Converted = out
			it.ConvertedFormat = f
			it.Err = nil
		}(it)
	}
	wg.Wait()
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func newID() string {
	b := make([]byte, 9)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = idAlphabet[n.Int64()]
	}
	return string(b)
}
