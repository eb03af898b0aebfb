package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestGateAllowed(t *testing.T) {
	t.Parallel()

	var robotsHits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits.Add(1)
			fmt.Fprint(w, "User-agent: *\nDisallow: /team\nDisallow: /admin/\n")
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	gate := NewGate(srv.Client(), "clinicscan/1.0")
	ctx := context.Background()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "allowed path", path: "/about", want: true},
		{name: "root allowed", path: "/", want: true},
		{name: "disallowed prefix", path: "/team", want: false},
		{name: "disallowed subtree", path: "/admin/users", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gate.Allowed(ctx, srv.URL+tt.path); got != tt.want {
				t.Errorf("Allowed(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}

	t.Run("robots fetched once per host", func(t *testing.T) {
		if got := robotsHits.Load(); got != 1 {
			t.Errorf("robots.txt fetched %d times, want 1", got)
		}
	})

	t.Run("unparseable URL rejected", func(t *testing.T) {
		if gate.Allowed(ctx, "http://%zz") {
			t.Error("Allowed() = true for unparseable URL, want false")
		}
		if gate.Allowed(ctx, "/relative/only") {
			t.Error("Allowed() = true for hostless URL, want false")
		}
	})
}

func TestGateAllowsAllOnMissingRobots(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	gate := NewGate(srv.Client(), "clinicscan/1.0")
	if !gate.Allowed(context.Background(), srv.URL+"/team") {
		t.Error("Allowed() = false with 404 robots.txt, want allow-all")
	}
}

func TestGateAllowsAllOnUnreachableHost(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	gate := NewGate(&http.Client{}, "clinicscan/1.0")
	if !gate.Allowed(context.Background(), url+"/anything") {
		t.Error("Allowed() = false when robots.txt is unreachable, want allow-all")
	}
}

func TestGateMatchesUserAgentGroup(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: clinicscan\nDisallow: /private\n\nUser-agent: *\nDisallow: /\n")
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	gate := NewGate(srv.Client(), "clinicscan/1.0")
	ctx := context.Background()

	if !gate.Allowed(ctx, srv.URL+"/about") {
		t.Error("Allowed(/about) = false, want true under the clinicscan group")
	}
	if gate.Allowed(ctx, srv.URL+"/private") {
		t.Error("Allowed(/private) = true, want false under the clinicscan group")
	}
}
