package crawler

import (
	"path/filepath"
	"strings"
)

// matchPattern checks whether a URL path matches a glob pattern from
// per-site configuration. Supported forms:
//
//   - "/blog/*" matches "/blog/anything" and "/blog" itself
//   - "*.aspx" matches any path with that extension
//   - standard filepath.Match globs ("*" and "?" within one segment)
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	// Extension-style patterns should also match against the last
	// segment ("*.aspx" vs "/contact/index.aspx").
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}

	return false
}

// allowedByPatterns applies ignore and follow pattern lists to a path.
// Ignore patterns win; follow patterns, when present, are a whitelist.
func allowedByPatterns(path string, ignore, follow []string) bool {
	if path == "" {
		path = "/"
	}
	for _, p := range ignore {
		if matchPattern(p, path) {
			return false
		}
	}
	if len(follow) > 0 {
		for _, p := range follow {
			if matchPattern(p, path) {
				return true
			}
		}
		return false
	}
	return true
}
