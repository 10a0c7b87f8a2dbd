package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type staticTokens map[string]string

func (s staticTokens) Token(host string) (string, error) {
	if tok, ok := s[host]; ok {
		return tok, nil
	}
	return "", errors.New("no token")
}

func TestFetch(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"remote": true}`))
	}))
	defer srv.Close()

	f := NewFetcherWithConfig(srv.Client(), nil, NewCache())
	text, err := f.Fetch(context.Background(), srv.URL+"/doc.json")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if text != `{"remote": true}` {
		t.Errorf("Fetch() = %q", text)
	}
	if gotAuth != "" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
}

func TestFetchAttachesToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	f := NewFetcherWithConfig(srv.Client(), staticTokens{host: "tok-1"}, NewCache())
	if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("auth header = %q, want Bearer tok-1", gotAuth)
	}
}

func TestFetchServesFromCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	f := NewFetcherWithConfig(srv.Client(), nil, NewCacheWithConfig(10, time.Minute))
	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}
	if stats := f.Cache().Stats(); stats.Hits != 2 {
		t.Errorf("cache hits = %d, want 2", stats.Hits)
	}
}

func TestFetchErrors(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusNotFound)
		}))
		defer srv.Close()

		f := NewFetcherWithConfig(srv.Client(), nil, NewCache())
		if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
			t.Error("404 must error")
		}
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		f := NewFetcher(nil)
		_, err := f.Fetch(context.Background(), "ftp://example.com/doc.json")
		if !errors.Is(err, ErrUnsupportedScheme) {
			t.Errorf("error = %v, want ErrUnsupportedScheme", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(time.Second)
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		f := NewFetcherWithConfig(srv.Client(), nil, NewCache())
		if _, err := f.Fetch(ctx, srv.URL); err == nil {
			t.Error("canceled fetch must error")
		}
	})
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/a.json", true},
		{"http://localhost:8080/doc", true},
		{"/data/a.json", false},
		{"a.json", false},
		{"ftp://example.com", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.in); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
