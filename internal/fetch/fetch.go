// Package fetch retrieves remote markdown over HTTP(S). Direct fetches use
// a fixed wall-clock timeout; on failure a small list of proxy mirrors is
// tried in order until one yields non-empty content. Failures are
// classified into user-facing categories with guidance text.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Category buckets a fetch failure for user-facing guidance.
type Category string

const (
	CategoryTimeout   Category = "timeout"
	CategoryBlocked   Category = "blocked"
	CategoryNotFound  Category = "not_found"
	CategoryForbidden Category = "forbidden"
	CategoryGeneric   Category = "generic"
)

// guidance maps each category to the message shown to the user.
var guidance = map[Category]string{
	CategoryTimeout:   "The server took too long to respond. Try again, or check that the URL is reachable.",
	CategoryBlocked:   "The request was blocked before reaching the server. The host may be refusing connections.",
	CategoryNotFound:  "Nothing exists at that URL. Check the address for typos.",
	CategoryForbidden: "Access to that URL was denied. The file may be private.",
	CategoryGeneric:   "The URL could not be fetched. Check the address and try again.",
}

// Guidance returns the user-facing message for a category.
func Guidance(c Category) string {
	if g, ok := guidance[c]; ok {
		return g
	}
	return guidance[CategoryGeneric]
}

// Error is a classified fetch failure.
type Error struct {
	Category Category
	URL      string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Category, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Classify extracts the category from a fetch error, or CategoryGeneric.
func Classify(err error) Category {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Category
	}
	return CategoryGeneric
}

// maxBodyBytes caps how much remote content we will read.
const maxBodyBytes = 10 * 1024 * 1024

// Fetcher retrieves markdown documents by URL.
type Fetcher struct {
	client  *http.Client
	proxies []string
	timeout time.Duration
	log     *slog.Logger
}

func New(timeout time.Duration, proxies []string, log *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		proxies: proxies,
		timeout: timeout,
		log:     log,
	}
}

// Fetch retrieves the document at rawURL. GitHub blob URLs are rewritten to
// the raw-content host before the first attempt. On direct failure each
// proxy is tried in order; the first non-empty body wins. The returned
// error (if any) reflects the direct attempt's classification.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	target := RewriteGitHubBlob(strings.TrimSpace(rawURL))
	if _, err := url.ParseRequestURI(target); err != nil {
		return "", &Error{Category: CategoryGeneric, URL: rawURL, Err: err}
	}

	body, directErr := f.get(ctx, target)
	if directErr == nil && strings.TrimSpace(body) != "" {
		return body, nil
	}
	if directErr != nil {
		f.log.Warn("direct fetch failed", "url", target, "error", directErr)
	}

	for _, proxy := range f.proxies {
		proxied := proxy + url.QueryEscape(target)
		body, err := f.get(ctx, proxied)
		if err != nil {
			f.log.Warn("proxy fetch failed", "proxy", proxy, "error", err)
			continue
		}
		if strings.TrimSpace(body) != "" {
			return body, nil
		}
	}

	if directErr == nil {
		directErr = &Error{Category: CategoryGeneric, URL: target, Err: errors.New("empty response")}
	}
	return "", directErr
}

// get performs one HTTP GET with the configured timeout and classifies any
// failure.
func (f *Fetcher) get(ctx context.Context, target string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return "", &Error{Category: CategoryGeneric, URL: target, Err: err}
	}
	req.Header.Set("Accept", "text/plain, text/markdown, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &Error{Category: classifyTransport(err), URL: target, Err: err}
	}
	defer resp.Body.Close()

	if cat, ok := classifyStatus(resp.StatusCode); ok {
		return "", &Error{
			Category: cat,
			URL:      target,
			Err:      fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &Error{Category: CategoryGeneric, URL: target, Err: fmt.Errorf("read body: %w", err)}
	}
	return string(data), nil
}

func classifyTransport(err error) Category {
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	// net/http wraps client timeouts in a *url.Error with Timeout() true.
	var ue *url.Error
	if errors.As(err, &ue) {
		if ue.Timeout() {
			return CategoryTimeout
		}
		return CategoryBlocked
	}
	return CategoryGeneric
}

func classifyStatus(status int) (Category, bool) {
	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		return CategoryNotFound, true
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		return CategoryForbidden, true
	case status >= 400:
		return CategoryGeneric, true
	}
	return "", false
}

// RewriteGitHubBlob turns a github.com "blob" page URL into its
// raw.githubusercontent.com equivalent. Anything else passes through
// unchanged.
func RewriteGitHubBlob(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if !strings.EqualFold(u.Host, "github.com") {
		return rawURL
	}
	// /{owner}/{repo}/blob/{ref}/{path...}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 5 || parts[2] != "blob" {
		return rawURL
	}
	u.Host = "raw.githubusercontent.com"
	u.Path = "/" + strings.Join(append(parts[:2], parts[3:]...), "/")
	return u.String()
}
