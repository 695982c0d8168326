// Package fetch retrieves and decodes product images from HTTP(S) URLs
// or local files.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/huesort/huesort/internal/version"
)

const (
	// UserAgentName is the application name used in the User-Agent header.
	UserAgentName = "huesort"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 10 * time.Second
)

// ErrorKind classifies fetch failures.
type ErrorKind int

const (
	// KindTimeout means the request exceeded the configured timeout.
	KindTimeout ErrorKind = iota
	// KindTransport covers connection failures, non-2xx responses and
	// unreadable local files.
	KindTransport
	// KindDecode means bytes were retrieved but are not a supported image.
	KindDecode
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is a failed image retrieval. It is never fatal to a batch:
// callers convert it into an unclassifiable result for the one item.
type Error struct {
	Kind ErrorKind
	Ref  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.Ref, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Fetcher retrieves images with a bounded per-request timeout. The zero
// timeout means DefaultTimeout. A Fetcher is safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// New creates a Fetcher with the given timeout.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Fetch retrieves ref and decodes it into an in-memory image. ref is
// either an HTTP(S) URL or a local file path. There are no retries; a
// single failure yields one Error.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (image.Image, error) {
	var data []byte
	var err error

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		data, err = f.get(ctx, ref)
	} else {
		data, err = os.ReadFile(ref)
		if err != nil {
			err = &Error{Kind: KindTransport, Ref: ref, Err: err}
		}
	}
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Kind: KindDecode, Ref: ref, Err: fmt.Errorf("decode (format: %s): %w", format, err)}
	}

	return img, nil
}

// get performs a single GET with the configured timeout.
func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Ref: rawURL, Err: err}
	}

	req.Header.Set("User-Agent", fmt.Sprintf("%s/%s", UserAgentName, version.Version))

	resp, err := f.client.Do(req)
	if err != nil {
		kind := KindTransport
		var uerr *url.Error
		if errors.As(err, &uerr) && uerr.Timeout() {
			kind = KindTimeout
		}
		return nil, &Error{Kind: kind, Ref: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindTransport, Ref: rawURL, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		kind := KindTransport
		if ctx.Err() != nil {
			kind = KindTimeout
		}
		return nil, &Error{Kind: kind, Ref: rawURL, Err: err}
	}

	return data, nil
}
