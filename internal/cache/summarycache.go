package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// SummaryCache stores summarizer output keyed by a digest of the model name
// and the source text, so re-opening the same legal document does not re-run
// the model.
type SummaryCache struct {
	Dir string
}

// KeyFrom builds a cache key from the model name and source text.
func KeyFrom(modelName, text string) string {
	h := sha256.Sum256([]byte(modelName + "\n\n" + text))
	return hex.EncodeToString(h[:])
}

func (c *SummaryCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	return os.MkdirAll(c.Dir, 0o755)
}

func (c *SummaryCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns cached bytes if present. Hits refresh the file mtime so age
// purging behaves like LRU.
func (c *SummaryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := c.ensureDir(); err != nil {
		return nil, false, err
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false, nil
	}
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return b, true, nil
}

// Save writes bytes to cache.
func (c *SummaryCache) Save(_ context.Context, key string, data []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	return os.WriteFile(c.pathFor(key), data, 0o644)
}
