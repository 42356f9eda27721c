package fetch

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// pageCache is a slug-keyed HTML cache used only in debug mode to avoid
// hammering the live site during development.
type pageCache struct {
	dir    string
	logger *zap.Logger
}

func newPageCache(dir string, logger *zap.Logger) *pageCache {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		logger.Warn("page cache disabled", zap.String("dir", dir), zap.Error(err))
		return nil
	}
	return &pageCache{dir: dir, logger: logger}
}

func (c *pageCache) read(slug string) (string, bool) {
	data, err := os.ReadFile(c.path(slug))
	if err != nil {
		return "", false
	}
	c.logger.Debug("page cache hit", zap.String("slug", slug))
	return string(data), true
}

func (c *pageCache) write(slug, html string) {
	if err := os.WriteFile(c.path(slug), []byte(html), 0o600); err != nil {
		c.logger.Warn("page cache write failed", zap.String("slug", slug), zap.Error(err))
	}
}

func (c *pageCache) path(slug string) string {
	return filepath.Join(c.dir, slug+".html")
}
