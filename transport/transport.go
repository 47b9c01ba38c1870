package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brightwell-labs/fetchcore/models"
	"github.com/brightwell-labs/fetchcore/session"
	"github.com/brightwell-labs/fetchcore/urlguard"
)

// MaxResponseSize is the response body cap (spec §4.C), matching the
// teacher's 10 MiB io.LimitReader cap in scraper/httpfetch.go.
const MaxResponseSize = 10 * 1024 * 1024

// RequestTimeout is the default per-request transport-level timeout
// (spec §5).
const RequestTimeout = 10 * time.Second

const maxTransientRetries = 2

// Options configure a single GET/POST call (spec §4.C signature).
type Options struct {
	Headers map[string]string
	Preset  Preset
	Timeout time.Duration
	Proxy   string
	Cookies []models.Cookie
}

// Transport issues SSRF-guarded, fingerprinted HTTP requests through a
// session cache. Grounded on the teacher's scraper/httpfetch.fetch plus
// engine/http_engine.Fetch's header/validation shape.
type Transport struct {
	sessions *session.Cache
}

// New builds a Transport backed by a fresh session cache whose factory dials
// with the utls fingerprint for each preset.
func New() *Transport {
	return &Transport{sessions: session.NewCache(clientFactory, session.DefaultConfig())}
}

// clientFactory builds the *http.Client for a given (preset, proxy) pair,
// wiring its DialTLSContext to the utls fingerprint dialer. Grounded on the
// teacher's scraper/httpfetch.fetch transport construction.
func clientFactory(preset, proxy string) (*http.Client, error) {
	p := Preset(preset)
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLS(ctx, network, addr, p, proxy)
		},
	}
	if proxy != "" {
		if proxyURL, err := url.Parse(proxy); err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &http.Client{Transport: transport}, nil
}

// Close idles out every pooled session. Safe to call once at shutdown.
func (t *Transport) Close() {
	t.sessions.CloseAll()
}

// Get performs an SSRF-guarded GET request.
func (t *Transport) Get(ctx context.Context, rawURL string, opts Options) (*models.HTTPResponse, *models.FetchError) {
	return t.do(ctx, http.MethodGet, rawURL, nil, opts)
}

// Post performs an SSRF-guarded POST with form-encoded fields, forcing
// Content-Type: application/x-www-form-urlencoded (spec §4.C).
func (t *Transport) Post(ctx context.Context, rawURL string, form map[string]string, opts Options) (*models.HTTPResponse, *models.FetchError) {
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}
	body := strings.NewReader(values.Encode())
	if opts.Headers == nil {
		opts.Headers = map[string]string{}
	}
	opts.Headers["Content-Type"] = "application/x-www-form-urlencoded"
	return t.do(ctx, http.MethodPost, rawURL, body, opts)
}

func (t *Transport) do(ctx context.Context, method, rawURL string, body io.Reader, opts Options) (*models.HTTPResponse, *models.FetchError) {
	if _, err := urlguard.ValidateURL(ctx, rawURL); err != nil {
		return nil, &models.FetchError{Kind: models.ErrSSRFBlocked, Details: err.Error(), SuggestedAction: models.ActionGiveUp}
	}
	if opts.Proxy != "" {
		if _, err := urlguard.ValidateProxyURL(ctx, opts.Proxy); err != nil {
			return nil, &models.FetchError{Kind: models.ErrInvalidProxy, Details: err.Error(), SuggestedAction: models.ActionGiveUp}
		}
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = RequestTimeout
	}

	var lastErr *models.FetchError
	for attempt := 0; attempt <= maxTransientRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Second * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, &models.FetchError{Kind: models.ErrTimeout, Details: "context cancelled during backoff"}
			}
		}

		resp, ferr := t.attempt(ctx, method, rawURL, body, opts, timeout)
		if ferr == nil {
			return resp, nil
		}
		if !transient(ferr) {
			return nil, ferr
		}
		lastErr = ferr
	}
	return nil, lastErr
}

func transient(err *models.FetchError) bool {
	switch err.Kind {
	case models.ErrSSRFBlocked, models.ErrInvalidProxy:
		return false
	case models.ErrNetwork, models.ErrTimeout:
		return true
	default:
		return false
	}
}

func (t *Transport) attempt(ctx context.Context, method, rawURL string, body io.Reader, opts Options, timeout time.Duration) (*models.HTTPResponse, *models.FetchError) {
	entry, err := t.sessions.Get(string(opts.Preset), opts.Proxy)
	if err != nil {
		return nil, &models.FetchError{Kind: models.ErrNetwork, Details: err.Error()}
	}
	defer entry.Release()

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, rawURL, body)
	if err != nil {
		return nil, &models.FetchError{Kind: models.ErrNetwork, Details: fmt.Sprintf("build request: %v", err)}
	}
	applyDefaultHeaders(req, opts)
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	for _, c := range opts.Cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	resp, err := entry.Client().Do(req)
	if err != nil {
		if reqCtx.Err() != nil {
			return nil, &models.FetchError{Kind: models.ErrTimeout, Details: err.Error()}
		}
		return nil, &models.FetchError{Kind: models.ErrNetwork, Details: err.Error()}
	}
	defer resp.Body.Close()

	// Re-validate SSRF after connection, defending against DNS rebinding.
	// Exact IP match is not required — CDNs rotate anycast IPs — only that
	// the resolved host still maps to a non-private address.
	if _, verr := urlguard.ValidateURL(reqCtx, rawURL); verr != nil {
		return nil, &models.FetchError{Kind: models.ErrSSRFBlocked, Details: verr.Error(), SuggestedAction: models.ActionGiveUp}
	}

	if cl := resp.ContentLength; cl > MaxResponseSize {
		return nil, &models.FetchError{Kind: models.ErrResponseTooLarge, Details: fmt.Sprintf("content-length %d exceeds cap", cl)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, &models.FetchError{Kind: models.ErrNetwork, Details: fmt.Sprintf("read body: %v", err)}
	}
	if len(data) > MaxResponseSize {
		return nil, &models.FetchError{Kind: models.ErrResponseTooLarge, Details: "body exceeded cap while reading"}
	}

	return &models.HTTPResponse{
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Body:       string(data),
		Headers:    resp.Header,
		Cookies:    translateCookies(resp.Cookies(), req.URL.Hostname()),
	}, nil
}

func applyDefaultHeaders(req *http.Request, opts Options) {
	req.Header.Set("User-Agent", UserAgent(opts.Preset))
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
}

func translateCookies(cookies []*http.Cookie, defaultDomain string) []models.Cookie {
	out := make([]models.Cookie, 0, len(cookies))
	for _, c := range cookies {
		domain := c.Domain
		if domain == "" {
			domain = defaultDomain
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		out = append(out, models.Cookie{
			Name: c.Name, Value: c.Value, Domain: domain, Path: path,
			Expires: c.Expires, HTTPOnly: c.HttpOnly, Secure: c.Secure,
		})
	}
	return out
}
