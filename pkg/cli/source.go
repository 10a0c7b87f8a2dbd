package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dshills/jsongraph/pkg/convert"
	"github.com/dshills/jsongraph/pkg/remote"
	"github.com/dshills/jsongraph/pkg/storage"
)

// loadSource reads a document from a local file or an http(s) URL and
// returns its text as JSON. YAML and TOML input is converted; unknown
// extensions are treated as JSON.
func loadSource(ctx context.Context, source string) (string, error) {
	return loadSourceCached(ctx, source, true)
}

// loadSourceCached is loadSource with control over the remote response
// cache, for commands that expose --no-cache.
func loadSourceCached(ctx context.Context, source string, useCache bool) (string, error) {
	var text string
	var err error

	if remote.IsURL(source) {
		fetcher := remote.NewFetcher(storage.NewTokenStore())
		if !useCache {
			fetcher.Cache().Disable()
		}
		text, err = fetcher.Fetch(ctx, source)
	} else {
		text, err = storage.ReadDocument(source)
	}
	if err != nil {
		return "", err
	}

	format, ferr := convert.DetectFormat(source)
	if ferr != nil {
		format = convert.FormatJSON
	}
	if format == convert.FormatJSON {
		return text, nil
	}

	converted, err := convert.ToJSON([]byte(text), format)
	if err != nil {
		return "", fmt.Errorf("converting %s input: %w", format, err)
	}
	return converted, nil
}

// historyKey normalizes a source for history records: absolute path for
// files, the URL itself for remote documents.
func historyKey(source string) string {
	if remote.IsURL(source) {
		return source
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return source
	}
	return abs
}
