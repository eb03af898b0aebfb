package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "init" {
			t.Errorf("expected use 'init', got %q", cmd.Use)
		}
	})

	t.Run("has output flag with config default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.DefValue != ".clinicscan" {
			t.Errorf("expected default '.clinicscan', got %q", flag.DefValue)
		}
	})

	t.Run("has force flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("force") == nil {
			t.Error("expected force flag")
		}
	})
}

// TestRunInitCmd tests configuration file generation.
func TestRunInitCmd(t *testing.T) {
	t.Run("creates configuration file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".clinicscan")
		cmd := NewInitCmd()
		if err := cmd.Flags().Set("output", path); err != nil {
			t.Fatal(err)
		}

		if err := runInitCmd(cmd, nil); err != nil {
			t.Fatalf("runInitCmd() error = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("config file not written: %v", err)
		}
		content := string(data)
		for _, want := range []string{"sites:", "defaults:", "ignorePatterns"} {
			if !strings.Contains(content, want) {
				t.Errorf("template missing %q", want)
			}
		}
	})

	t.Run("creates nested directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "configs", "deep", ".clinicscan")
		cmd := NewInitCmd()
		if err := cmd.Flags().Set("output", path); err != nil {
			t.Fatal(err)
		}

		if err := runInitCmd(cmd, nil); err != nil {
			t.Fatalf("runInitCmd() error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("config file not written: %v", err)
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".clinicscan")
		if err := os.WriteFile(path, []byte("existing"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		if err := cmd.Flags().Set("output", path); err != nil {
			t.Fatal(err)
		}

		if err := runInitCmd(cmd, nil); err == nil {
			t.Error("expected error for existing file")
		}
		data, _ := os.ReadFile(path)
		if string(data) != "existing" {
			t.Error("existing file was overwritten")
		}
	})

	t.Run("force overwrites existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".clinicscan")
		if err := os.WriteFile(path, []byte("existing"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		if err := cmd.Flags().Set("output", path); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("force", "true"); err != nil {
			t.Fatal(err)
		}

		if err := runInitCmd(cmd, nil); err != nil {
			t.Fatalf("runInitCmd() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) == "existing" {
			t.Error("force did not overwrite the file")
		}
	})
}
