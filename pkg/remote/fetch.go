// Package remote fetches documents over HTTP so the viewer can open a URL
// the same way it opens a file. Responses are cached with a TTL, and hosts
// with a stored keyring token get it attached as a bearer credential.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseSize caps how large a remote document may be.
const maxResponseSize = 32 << 20

// Fetch errors.
var (
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	ErrResponseTooLarge  = errors.New("remote document too large")
)

// TokenSource supplies bearer tokens by host. *storage.TokenStore satisfies
// it; a nil source means unauthenticated requests.
type TokenSource interface {
	Token(host string) (string, error)
}

// Fetcher retrieves remote documents with caching and optional auth.
type Fetcher struct {
	client *http.Client
	tokens TokenSource
	cache  *Cache
}

// NewFetcher creates a fetcher with a 30 second request timeout and the
// default cache.
func NewFetcher(tokens TokenSource) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
		tokens: tokens,
		cache:  NewCache(),
	}
}

// NewFetcherWithConfig creates a fetcher with a custom client and cache.
// Useful for testing.
func NewFetcherWithConfig(client *http.Client, tokens TokenSource, cache *Cache) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Fetcher{client: client, tokens: tokens, cache: cache}
}

// Cache exposes the fetcher's document cache.
func (f *Fetcher) Cache() *Cache {
	return f.cache
}

// IsURL reports whether a document source looks like a fetchable URL rather
// than a file path.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch retrieves the document text at rawURL, serving from cache when the
// entry is still fresh.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	if text, ok := f.cache.Get(rawURL); ok {
		return text, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain")
	if f.tokens != nil {
		if token, err := f.tokens.Token(u.Host); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if len(body) > maxResponseSize {
		return "", fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, maxResponseSize)
	}

	text := string(body)
	f.cache.Set(rawURL, text)
	return text, nil
}
