// Package artifact implements the hash-addressed store of raw HTML
// snapshots kept for failed scrapes.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store writes one snapshot per distinct content hash under a root
// directory, for later human review.
type Store struct {
	root string
}

// New creates a Store rooted at dir, creating it if needed.
func New(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("artifact root directory is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create artifact dir %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// SaveHTML writes the snapshot for hash and returns its path. The store is
// write-once per hash: an existing snapshot is left untouched.
func (s *Store) SaveHTML(hash, html string) (string, error) {
	if hash == "" {
		return "", fmt.Errorf("artifact hash is required")
	}
	target := s.path(hash)
	if _, err := os.Stat(target); err == nil {
		return target, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat artifact %s: %w", target, err)
	}
	if err := os.WriteFile(target, []byte(html), 0o600); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", target, err)
	}
	return target, nil
}

// Exists reports whether a snapshot for hash has already been written.
func (s *Store) Exists(hash string) bool {
	_, err := os.Stat(s.path(hash))
	return err == nil
}

func (s *Store) path(hash string) string {
	return filepath.Join(s.root, hash+".html")
}
