package storage

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestFSCacheRoundTrip(t *testing.T) {
	c, err := NewFSCache(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, ok, err := c.Get("progress"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v, want absent", ok, err)
	}

	payload := []byte(`{"version":"1.0"}`)
	if err := c.Put("progress", payload); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := c.Get("progress")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}

	if err := c.Delete("progress"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := c.Get("progress"); ok {
		t.Fatal("key survived delete")
	}
	// Deleting an absent key is not an error.
	if err := c.Delete("progress"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestFSCachePutEmptyKey(t *testing.T) {
	c, err := NewFSCache(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := c.Put("", []byte("x")); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestFSCacheOverwrite(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFSCache(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := c.Put("k", []byte("one")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Put("k", []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ := c.Get("k")
	if string(got) != "two" {
		t.Fatalf("got %q, want two", got)
	}
	// No temp files left behind.
	tmps, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(tmps) != 0 {
		t.Fatalf("leftover temp files: %v", tmps)
	}
}
