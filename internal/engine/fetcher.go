package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-age/internal/config"
)

// ErrAddressBookTooLarge is returned while reading a download that outgrows
// the fetcher's limit. A truncated book would silently drop contacts.
var ErrAddressBookTooLarge = errors.New(config.ErrAddressBookSize)

// VCardFetcher retrieves an address book from a remote source.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher downloads a CardDAV/WebDAV address book export.
type HTTPFetcher struct {
	Client *http.Client

	// MaxBytes bounds the body. Zero means config.MaxAddressBookSize.
	MaxBytes int64
}

// NewHTTPFetcher returns a fetcher whose client times out after config.HTTPTimeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: config.HTTPTimeout},
		MaxBytes: config.MaxAddressBookSize,
	}
}

// Fetch opens the address book at targetURL. Reading past MaxBytes fails with
// ErrAddressBookTooLarge. The caller must close the returned reader.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, redactURL(u)),
	)
	log.Debug(config.MsgFetchStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeAcceptVCard)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("%s: %s", config.ErrFetchStatus, resp.Status)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = config.MaxAddressBookSize
	}
	if resp.ContentLength > limit {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %d bytes", ErrAddressBookTooLarge, resp.ContentLength)
	}

	log.Info(config.MsgFetchOpened, slog.Int64(config.LogKeyLength, resp.ContentLength))

	return &cappedBody{
		r:     io.LimitReader(resp.Body, limit+1),
		c:     resp.Body,
		limit: limit,
	}, nil
}

// redactURL drops credentials and the query string, which may hold tokens.
func redactURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}

// cappedBody reads up to limit bytes and reports ErrAddressBookTooLarge when
// the stream carries more. Close releases the connection.
type cappedBody struct {
	r     io.Reader
	c     io.Closer
	limit int64
	read  int64
}

func (b *cappedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.read += int64(n)
	if b.read > b.limit {
		return n - int(b.read-b.limit), ErrAddressBookTooLarge
	}
	return n, err
}

func (b *cappedBody) Close() error {
	return b.c.Close()
}
