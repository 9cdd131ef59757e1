package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRewriteGitHubBlob(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			"https://github.com/owner/repo/blob/main/README.md",
			"https://raw.githubusercontent.com/owner/repo/main/README.md",
		},
		{
			"https://github.com/owner/repo/blob/v1.2/docs/guide.md",
			"https://raw.githubusercontent.com/owner/repo/v1.2/docs/guide.md",
		},
		// Already raw: unchanged.
		{
			"https://raw.githubusercontent.com/owner/repo/main/README.md",
			"https://raw.githubusercontent.com/owner/repo/main/README.md",
		},
		// Not a blob path: unchanged.
		{
			"https://github.com/owner/repo",
			"https://github.com/owner/repo",
		},
		{
			"https://github.com/owner/repo/tree/main/docs",
			"https://github.com/owner/repo/tree/main/docs",
		},
		// Other hosts: unchanged.
		{
			"https://example.com/owner/repo/blob/main/x.md",
			"https://example.com/owner/repo/blob/main/x.md",
		},
	}
	for _, tt := range tests {
		if got := RewriteGitHubBlob(tt.in); got != tt.want {
			t.Errorf("RewriteGitHubBlob(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFetch_Direct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# remote doc"))
	}))
	defer srv.Close()

	f := New(2*time.Second, nil, testLogger())
	got, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "# remote doc" {
		t.Errorf("unexpected body %q", got)
	}
}

func TestFetch_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   Category
	}{
		{http.StatusNotFound, CategoryNotFound},
		{http.StatusGone, CategoryNotFound},
		{http.StatusForbidden, CategoryForbidden},
		{http.StatusUnauthorized, CategoryForbidden},
		{http.StatusInternalServerError, CategoryGeneric},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		f := New(2*time.Second, nil, testLogger())
		_, err := f.Fetch(context.Background(), srv.URL)
		srv.Close()
		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		if got := Classify(err); got != tt.want {
			t.Errorf("status %d: classified %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte("late"))
	}))
	defer srv.Close()

	f := New(50*time.Millisecond, nil, testLogger())
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if got := Classify(err); got != CategoryTimeout {
		t.Errorf("classified %q, want %q", got, CategoryTimeout)
	}
}

func TestFetch_ProxyFallback(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer direct.Close()

	var proxied string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied = r.URL.Query().Get("url")
		w.Write([]byte("via proxy"))
	}))
	defer proxy.Close()

	f := New(2*time.Second, []string{proxy.URL + "/?url="}, testLogger())
	got, err := f.Fetch(context.Background(), direct.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "via proxy" {
		t.Errorf("unexpected body %q", got)
	}
	if proxied != direct.URL {
		t.Errorf("proxy received %q, want %q", proxied, direct.URL)
	}
}

func TestFetch_ProxyListExhausted(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer direct.Close()

	badProxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer badProxy.Close()

	emptyProxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("   "))
	}))
	defer emptyProxy.Close()

	f := New(2*time.Second, []string{badProxy.URL + "/?url=", emptyProxy.URL + "/?url="}, testLogger())
	_, err := f.Fetch(context.Background(), direct.URL)
	if err == nil {
		t.Fatal("expected error after exhausting proxies")
	}
	// The reported category reflects the direct attempt.
	if got := Classify(err); got != CategoryNotFound {
		t.Errorf("classified %q, want %q", got, CategoryNotFound)
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	f := New(time.Second, nil, testLogger())
	_, err := f.Fetch(context.Background(), "not a url")
	if err == nil {
		t.Fatal("expected error for invalid URL")
	}
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *fetch.Error, got %T", err)
	}
}

func TestGuidance_CoversAllCategories(t *testing.T) {
	for _, c := range []Category{CategoryTimeout, CategoryBlocked, CategoryNotFound, CategoryForbidden, CategoryGeneric} {
		if Guidance(c) == "" {
			t.Errorf("no guidance for %q", c)
		}
	}
	if Guidance(Category("bogus")) != Guidance(CategoryGeneric) {
		t.Error("unknown category should fall back to generic guidance")
	}
}

func TestFetch_BlockedConnection(t *testing.T) {
	// A server that is immediately closed refuses connections.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead := srv.URL
	srv.Close()

	f := New(time.Second, nil, testLogger())
	_, err := f.Fetch(context.Background(), dead)
	if err == nil {
		t.Fatal("expected connection error")
	}
	if got := Classify(err); got != CategoryBlocked {
		t.Errorf("classified %q, want %q", got, CategoryBlocked)
	}

	var ue *url.Error
	if !errors.As(err, &ue) && !strings.Contains(err.Error(), "connect") {
		t.Logf("transport error shape: %v", err)
	}
}
