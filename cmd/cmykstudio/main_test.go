package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStudioURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8080", "http://localhost:8080/"},
		{"127.0.0.1:9000", "http://127.0.0.1:9000/"},
	}
	for _, tt := range tests {
		if got := studioURL(tt.addr); got != tt.want {
			t.Errorf("studioURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestFirstDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	os.WriteFile(file, []byte("x"), 0644)

	if got := firstDir("/configured", dir); got != "/configured" {
		t.Errorf("configured dir ignored: %q", got)
	}
	if got := firstDir("", filepath.Join(dir, "missing"), file, dir); got != dir {
		t.Errorf("firstDir() = %q, want %q", got, dir)
	}
	if got := firstDir("", filepath.Join(dir, "missing")); got != "" {
		t.Errorf("firstDir() = %q, want empty", got)
	}
}

func TestSeparateCommand(t *testing.T) {
	if err := separate([]string{filepath.Join(t.TempDir(), "missing.png")}); err == nil {
		t.Error("expected error for a missing image")
	}
}
