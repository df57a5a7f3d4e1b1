package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	t.Parallel()

	got := getVersion()
	if got == "" {
		t.Error("expected non-empty version")
	}
}

func TestGetCommit(t *testing.T) {
	t.Parallel()

	got := getCommit()
	if got == "" {
		t.Error("expected non-empty commit")
	}
}

func TestGetDate(t *testing.T) {
	t.Parallel()

	got := getDate()
	if got == "" {
		t.Error("expected non-empty date")
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "version" {
			t.Errorf("expected use 'version', got %q", cmd.Use)
		}
	})

	t.Run("prints version information", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		cmd := NewVersionCmd()
		cmd.SetOut(buf)

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "pricewatch version") {
			t.Errorf("expected output to contain 'pricewatch version', got %q", output)
		}
		if !strings.Contains(output, "commit:") {
			t.Errorf("expected output to contain 'commit:', got %q", output)
		}
		if !strings.Contains(output, "built:") {
			t.Errorf("expected output to contain 'built:', got %q", output)
		}
	})
}
