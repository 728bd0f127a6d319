package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	staveerr "github.com/tessro/stave/internal/errors"
)

func TestFetchLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mid")
	if err := os.WriteFile(path, []byte("MThd"), 0644); err != nil {
		t.Fatal(err)
	}

	f := New()
	for _, locator := range []string{path, "file://" + path} {
		data, err := f.Fetch(context.Background(), locator)
		if err != nil {
			t.Fatalf("Fetch(%q) error = %v", locator, err)
		}
		if string(data) != "MThd" {
			t.Errorf("Fetch(%q) = %q, want MThd", locator, data)
		}
	}
}

func TestFetchMissingFile(t *testing.T) {
	_, err := New().Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.mid"))
	if !errors.Is(err, staveerr.ErrNotFound) {
		t.Errorf("Fetch() error = %v, want ErrNotFound", err)
	}
}

func TestFetchEmptyLocator(t *testing.T) {
	_, err := New().Fetch(context.Background(), "")
	if !errors.Is(err, staveerr.ErrNoContent) {
		t.Errorf("Fetch(\"\") error = %v, want ErrNoContent", err)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New(WithRetries(3, time.Millisecond))
	data, err := f.Fetch(context.Background(), srv.URL+"/song.mid")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "ok" {
		t.Errorf("Fetch() = %q, want ok", data)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestFetchDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New(WithRetries(3, time.Millisecond)).Fetch(context.Background(), srv.URL+"/missing.mid")
	if !errors.Is(err, staveerr.ErrNotFound) {
		t.Errorf("Fetch() error = %v, want ErrNotFound", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		base, name, want string
	}{
		{"https://example.com/sf/piano", "p60.wav", "https://example.com/sf/piano/p60.wav"},
		{"https://example.com/sf/piano/", "p60.wav", "https://example.com/sf/piano/p60.wav"},
		{"/srv/sf", "p60.wav", "/srv/sf/p60.wav"},
		{"file:///srv/sf", "p60.wav", "/srv/sf/p60.wav"},
	}
	for _, tt := range tests {
		if got := Join(tt.base, tt.name); got != tt.want {
			t.Errorf("Join(%q, %q) = %q, want %q", tt.base, tt.name, got, tt.want)
		}
	}
}
