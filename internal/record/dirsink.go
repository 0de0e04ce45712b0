package record

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DirSink is the filesystem-backed stand-in for the real ZIM writer:
// one file per canonical path under an output directory, and a
// ".alias" redirect marker file for aliases. Collisions are resolved
// first-writer-wins, with a content digest logged for diagnostics when a
// write is dropped because the path was already claimed.
type DirSink struct {
	root    string
	written map[string]string // canonical path -> content digest of the first writer
	aliased map[string]bool
	logger  *slog.Logger
}

// NewDirSink creates a DirSink rooted at dir, creating it if necessary.
func NewDirSink(dir string, logger *slog.Logger) (*DirSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("record: creating output dir %q: %w", dir, err)
	}
	return &DirSink{
		root:    dir,
		written: make(map[string]string),
		aliased: make(map[string]bool),
		logger:  logger,
	}, nil
}

// Write implements EntrySink.
func (s *DirSink) Write(canonicalPath string, content []byte, mediaTypeHint string) (bool, error) {
	if _, exists := s.written[canonicalPath]; exists {
		s.logger.Warn("dirsink: dropping duplicate write (first-writer-wins)",
			"path", canonicalPath, "digest", ContentDigest(content), "media_type", mediaTypeHint)
		return false, nil
	}
	if s.aliased[canonicalPath] {
		return false, nil
	}

	fullPath := s.fsPath(canonicalPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return false, fmt.Errorf("record: creating directory for %q: %w", canonicalPath, err)
	}
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return false, fmt.Errorf("record: writing %q: %w", canonicalPath, err)
	}
	s.written[canonicalPath] = ContentDigest(content)
	return true, nil
}

// Alias implements EntrySink, writing a small redirect marker file
// (standing in for a real ZIM redirect entry).
func (s *DirSink) Alias(canonicalPath, target string) (bool, error) {
	if _, exists := s.written[canonicalPath]; exists {
		return false, nil
	}
	if s.aliased[canonicalPath] {
		return false, nil
	}

	fullPath := s.fsPath(canonicalPath) + ".alias"
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return false, fmt.Errorf("record: creating directory for alias %q: %w", canonicalPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(target), 0o644); err != nil {
		return false, fmt.Errorf("record: writing alias %q: %w", canonicalPath, err)
	}
	s.aliased[canonicalPath] = true
	return true, nil
}

// fsPath maps a canonical path onto a filesystem path under root. ".."
// segments are resolved against a virtual "/" by filepath.Clean, so the
// result cannot escape root; no error is reported for them.
func (s *DirSink) fsPath(canonicalPath string) string {
	cleaned := strings.TrimPrefix(filepath.Clean("/"+canonicalPath), "/")
	return filepath.Join(s.root, cleaned)
}

var _ EntrySink = (*DirSink)(nil)
