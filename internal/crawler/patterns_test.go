package crawler

import "testing"

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{name: "directory glob matches child", pattern: "/blog/*", path: "/blog/post-1", want: true},
		{name: "directory glob matches deep child", pattern: "/blog/*", path: "/blog/2024/post", want: true},
		{name: "directory glob matches directory itself", pattern: "/blog/*", path: "/blog", want: true},
		{name: "directory glob rejects sibling", pattern: "/blog/*", path: "/bloggers", want: false},
		{name: "extension glob matches root file", pattern: "*.aspx", path: "/default.aspx", want: true},
		{name: "extension glob matches nested file", pattern: "*.aspx", path: "/contact/index.aspx", want: true},
		{name: "extension glob rejects other extension", pattern: "*.aspx", path: "/contact/index.html", want: false},
		{name: "exact path", pattern: "/about", path: "/about", want: true},
		{name: "exact path mismatch", pattern: "/about", path: "/about-us", want: false},
		{name: "single segment wildcard", pattern: "/services/*", path: "/services/cardiology", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := matchPattern(tt.pattern, tt.path); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestAllowedByPatterns(t *testing.T) {
	t.Parallel()

	t.Run("no patterns allows everything", func(t *testing.T) {
		t.Parallel()
		if !allowedByPatterns("/anything", nil, nil) {
			t.Error("allowedByPatterns() = false with no patterns, want true")
		}
	})

	t.Run("ignore pattern blocks match", func(t *testing.T) {
		t.Parallel()
		ignore := []string{"/blog/*", "*.pdf"}
		if allowedByPatterns("/blog/post", ignore, nil) {
			t.Error("allowedByPatterns(/blog/post) = true, want ignored")
		}
		if !allowedByPatterns("/about", ignore, nil) {
			t.Error("allowedByPatterns(/about) = false, want true")
		}
	})

	t.Run("follow patterns act as whitelist", func(t *testing.T) {
		t.Parallel()
		follow := []string{"/about", "/locations/*"}
		if !allowedByPatterns("/locations/austin", nil, follow) {
			t.Error("allowedByPatterns(/locations/austin) = false, want whitelisted")
		}
		if allowedByPatterns("/blog", nil, follow) {
			t.Error("allowedByPatterns(/blog) = true, want outside whitelist")
		}
	})

	t.Run("ignore wins over follow", func(t *testing.T) {
		t.Parallel()
		if allowedByPatterns("/about", []string{"/about"}, []string{"/about"}) {
			t.Error("allowedByPatterns() = true when pattern is both ignored and followed, want ignore to win")
		}
	})

	t.Run("empty path treated as root", func(t *testing.T) {
		t.Parallel()
		if allowedByPatterns("", []string{"/"}, nil) {
			t.Error("allowedByPatterns(\"\") = true with root ignored, want false")
		}
	})
}
