package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestFetcherFetch tests page retrieval behavior.
func TestFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("fetches an HTML page", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body>hello</body></html>"))
		}))
		defer server.Close()

		f := NewFetcher(server.Client(), WithHostInterval(time.Millisecond))
		result, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", result.StatusCode)
		}
		if !strings.Contains(result.Body, "hello") {
			t.Errorf("unexpected body %q", result.Body)
		}
	})

	t.Run("sends configured headers and cookie", func(t *testing.T) {
		t.Parallel()

		var gotUA, gotCookie, gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotCookie = r.Header.Get("Cookie")
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		}))
		defer server.Close()

		f := NewFetcher(server.Client(),
			WithHostInterval(time.Millisecond),
			WithUserAgent("clinicscan-test/1.0"),
			WithCookie("session=abc"),
			WithExtraHeaders(map[string]string{"Authorization": "Bearer tok"}),
		)
		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotUA != "clinicscan-test/1.0" {
			t.Errorf("unexpected User-Agent %q", gotUA)
		}
		if gotCookie != "session=abc" {
			t.Errorf("unexpected Cookie %q", gotCookie)
		}
		if gotAuth != "Bearer tok" {
			t.Errorf("unexpected Authorization %q", gotAuth)
		}
	})

	t.Run("non-2xx fails immediately with status", func(t *testing.T) {
		t.Parallel()

		var requests int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			http.NotFound(w, r)
		}))
		defer server.Close()

		f := NewFetcher(server.Client(), WithHostInterval(time.Millisecond))
		_, err := f.Fetch(context.Background(), server.URL+"/missing")
		if err == nil {
			t.Fatal("expected error for 404")
		}

		var fe *FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("expected *FetchError, got %T", err)
		}
		if fe.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", fe.StatusCode)
		}
		if requests != 1 {
			t.Errorf("expected no retries for 404, got %d requests", requests)
		}
	})

	t.Run("rejects non-HTML content", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"not": "html"}`))
		}))
		defer server.Close()

		f := NewFetcher(server.Client(), WithHostInterval(time.Millisecond))
		_, err := f.Fetch(context.Background(), server.URL)
		if !errors.Is(err, ErrNotHTML) {
			t.Errorf("expected ErrNotHTML, got %v", err)
		}
	})

	t.Run("caps response body size", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(strings.Repeat("x", 10_000)))
		}))
		defer server.Close()

		f := NewFetcher(server.Client(),
			WithHostInterval(time.Millisecond),
			WithMaxBodySize(1024),
		)
		result, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Body) != 1024 {
			t.Errorf("expected body capped at 1024 bytes, got %d", len(result.Body))
		}
	})
}

// TestIsTransient tests the retry classification.
func TestIsTransient(t *testing.T) {
	t.Parallel()

	if isTransient(errors.New("some random error")) {
		t.Error("expected unclassified errors to be permanent")
	}
}
