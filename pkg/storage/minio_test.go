package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/PhantomInTheWire/image-toolbox/pkg/export"
)

// fakeBucket answers HeadBucket and records PutObject bodies by path.
type fakeBucket struct {
	mu   sync.Mutex
	puts map[string][]byte
}

func (f *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		f.mu.Lock()
		f.puts[r.URL.Path] = data
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestS3(t *testing.T) (*S3, *fakeBucket) {
	t.Helper()
	fake := &fakeBucket{puts: map[string][]byte{}}
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	s, err := NewS3(context.Background(), MinioConfig{
		Endpoint:  ts.URL,
		Region:    "us-east-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "tiles-bucket",
		Prefix:    "job1",
	})
	if err != nil {
		t.Fatal(err)
	}
	return s, fake
}

// onlyReader hides any Seek method of the wrapped reader.
type onlyReader struct {
	io.Reader
}

func TestS3SaveOverPlainHTTP(t *testing.T) {
	s, fake := newTestS3(t)

	if err := s.Save(context.Background(), "a.png", onlyReader{strings.NewReader("tile")}); err != nil {
		t.Fatal(err)
	}
	if got := fake.puts["/tiles-bucket/job1/a.png"]; !bytes.Contains(got, []byte("tile")) {
		t.Fatalf("puts %v", fake.puts)
	}
}

func TestS3BundleAndIndividual(t *testing.T) {
	s, fake := newTestS3(t)
	ctx := context.Background()
	entries := []export.Entry{{Name: "split_1_1.png", Data: []byte("one")}}

	if err := export.Individual(ctx, s, entries); err != nil {
		t.Fatal(err)
	}
	if err := export.Bundle(ctx, s, export.SplitArchiveName, entries); err != nil {
		t.Fatal(err)
	}
	if len(fake.puts) != 2 {
		t.Fatalf("want 2 objects, got %d", len(fake.puts))
	}
	if _, ok := fake.puts["/tiles-bucket/job1/split_images.zip"]; !ok {
		t.Fatalf("archive missing from %v", fake.puts)
	}
}
