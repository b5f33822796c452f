package storage

import (
	"errors"
	"os"
	"path/filepath"
)

// FSCache stores snapshots as files under a base directory. It is the
// durable counterpart of the browser localStorage the product originally
// cached progress in.
type FSCache struct{ base string }

func NewFSCache(base string) (*FSCache, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSCache{base: base}, nil
}

func (c *FSCache) path(key string) string {
	return filepath.Join(c.base, filepath.Clean(key)+".json")
}

func (c *FSCache) Put(key string, data []byte) error {
	if key == "" {
		return errors.New("empty key")
	}
	dst := c.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	// Write-then-rename keeps a crash from leaving a torn snapshot behind.
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}

func (c *FSCache) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (c *FSCache) Delete(key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
