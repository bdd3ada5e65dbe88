// Package cookie provides file-based persistence for the Haivler bearer
// token.
//
// The token is the single persisted credential. It is stored as a
// cookie-shaped record in one JSON file with a fixed expiry horizon stamped
// at write time. This package provides atomic writes, file locking, and
// opportunistic cleanup of expired records. The token value itself is
// opaque: it is never parsed, only stored and attached to requests.
package cookie

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"
)

// TokenName is the cookie name the original web client used for the bearer
// token. Kept for wire-format compatibility of the session file.
const TokenName = "token"

// TTL is the fixed expiry horizon applied when a token is written.
const TTL = 3 * time.Hour

// Cookie is the persisted token record.
type Cookie struct {
	// Name identifies the record. Always TokenName today.
	Name string `json:"name"`

	// Value is the raw bearer token string.
	Value string `json:"value"`

	// ExpiresAt is the absolute expiry stamped at write time.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record has passed its expiry horizon.
func (c *Cookie) Expired() bool {
	return !c.ExpiresAt.After(time.Now())
}

// FileStore manages reading and writing the session token file.
// It provides atomic writes (write-tmp-then-rename) and file locking
// (flock for cross-process, mutex for in-process). An expired or missing
// file reads as "no token".
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileStore creates a FileStore for the given file path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Get returns the stored token, or the empty string if no unexpired token
// is persisted. An expired record is removed opportunistically so the next
// read is cheap.
func (s *FileStore) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("session file unreadable", "path", s.path, "error", err)
		}
		return ""
	}

	// Warn if the file has permissions more open than 0600. Skip on
	// Windows where Unix permission bits are not supported.
	if runtime.GOOS != "windows" {
		if info, statErr := os.Stat(s.path); statErr == nil {
			mode := info.Mode().Perm()
			if mode&0077 != 0 {
				s.logger.Warn("session file has too-open permissions, should be 0600",
					"path", s.path, "current_mode", fmt.Sprintf("%04o", mode))
			}
		}
	}

	var c Cookie
	if err := json.Unmarshal(data, &c); err != nil {
		s.logger.Warn("session file corrupt, ignoring", "path", s.path, "error", err)
		return ""
	}

	if c.Expired() {
		s.logger.Debug("session token expired", "expired_at", c.ExpiresAt)
		_ = s.remove()
		return ""
	}

	return c.Value
}

// Set persists the token with ExpiresAt = now + TTL.
//
// The write sequence is:
//  1. Acquire in-process mutex
//  2. Acquire flock on path+".lock"
//  3. Marshal the cookie record as indented JSON
//  4. Write to path+".tmp" with 0600 permissions
//  5. Fsync the temp file
//  6. Rename path+".tmp" -> path
//  7. Release flock and mutex
func (s *FileStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := Cookie{
		Name:      TokenName,
		Value:     token,
		ExpiresAt: time.Now().Add(TTL).UTC(),
	}

	lockPath := s.path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer func() { _ = lockFile.Close() }()

	if err := flockLock(lockFile.Fd()); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer flockUnlock(lockFile.Fd()) //nolint:errcheck

	data, err := json.MarshalIndent(&c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session token: %w", err)
	}
	data = append(data, '\n')

	if err := s.writeAtomic(data); err != nil {
		return err
	}

	// Explicitly ensure 0600 permissions after rename as a safety net.
	if err := os.Chmod(s.path, 0600); err != nil {
		s.logger.Warn("failed to set permissions on session file", "error", err)
	}

	s.logger.Debug("session token saved", "path", s.path, "expires_at", c.ExpiresAt)
	return nil
}

// Clear removes the persisted token. Clearing an absent token is not an
// error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove()
}

// Exists returns true if an unexpired token is persisted.
func (s *FileStore) Exists() bool {
	return s.Get() != ""
}

// Path returns the configured file path.
func (s *FileStore) Path() string {
	return s.path
}

// remove deletes the session file. Caller must hold s.mu.
func (s *FileStore) remove() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it over
// the target path. On any error the temp file is cleaned up.
func (s *FileStore) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp to session file: %w", err)
	}
	return nil
}
