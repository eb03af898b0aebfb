package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestGetVersion tests version resolution.
func TestGetVersion(t *testing.T) {
	t.Run("returns ldflags version when set", func(t *testing.T) {
		orig := version
		version = "v1.2.3"
		t.Cleanup(func() { version = orig })

		if got := getVersion(); got != "v1.2.3" {
			t.Errorf("expected 'v1.2.3', got %q", got)
		}
	})

	t.Run("never returns empty", func(t *testing.T) {
		orig := version
		version = ""
		t.Cleanup(func() { version = orig })

		if got := getVersion(); got == "" {
			t.Error("expected non-empty version")
		}
	})
}

// TestGetCommit tests commit hash resolution.
func TestGetCommit(t *testing.T) {
	t.Run("returns ldflags commit when set", func(t *testing.T) {
		orig := commit
		commit = "abc1234"
		t.Cleanup(func() { commit = orig })

		if got := getCommit(); got != "abc1234" {
			t.Errorf("expected 'abc1234', got %q", got)
		}
	})

	t.Run("never returns empty", func(t *testing.T) {
		orig := commit
		commit = ""
		t.Cleanup(func() { commit = orig })

		if got := getCommit(); got == "" {
			t.Error("expected non-empty commit")
		}
	})
}

// TestNewVersionCmd tests the version command output.
func TestNewVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()

	t.Run("has correct use", func(t *testing.T) {
		if cmd.Use != "version" {
			t.Errorf("expected use 'version', got %q", cmd.Use)
		}
	})

	t.Run("prints version information", func(t *testing.T) {
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.Run(cmd, nil)

		out := buf.String()
		if !strings.Contains(out, "clinicscan version") {
			t.Errorf("expected version line, got %q", out)
		}
		if !strings.Contains(out, "commit:") {
			t.Errorf("expected commit line, got %q", out)
		}
		if !strings.Contains(out, "built:") {
			t.Errorf("expected build date line, got %q", out)
		}
	})
}
