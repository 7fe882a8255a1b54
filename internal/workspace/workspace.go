package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/gourcers/internal/logfields"
)

// Well-known names inside the data directory.
const (
	ReposDir   = "repos"
	GourceDir  = "gource"
	SortedFile = "sorted.txt"
	StateFile  = "state.db"
)

// PathFriendly turns a repository full name ("owner/repo") into a single
// path segment usable as a directory or file name.
func PathFriendly(fullName string) string {
	return strings.ReplaceAll(fullName, "/", "__")
}

// Manager handles data directory operations (both persistent and ephemeral)
type Manager struct {
	baseDir    string
	dataDir    string
	persistent bool // If true, use baseDir directly without timestamps
}

// NewManager creates a workspace manager with an ephemeral timestamped
// data directory under baseDir (system temp dir when empty).
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{
		baseDir:    baseDir,
		persistent: false,
	}
}

// NewPersistentManager creates a workspace manager over a fixed data
// directory. The directory is never removed by Cleanup().
func NewPersistentManager(dataDir string) *Manager {
	return &Manager{
		baseDir:    dataDir,
		dataDir:    dataDir,
		persistent: true,
	}
}

// Create creates the data directory together with the repos/ and gource/
// subdirectories every run needs.
// For ephemeral mode: creates a timestamped directory.
// For persistent mode: ensures the fixed directory exists.
func (m *Manager) Create() error {
	if m.persistent {
		if err := os.MkdirAll(m.dataDir, 0o750); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		slog.Info("Using persistent data directory", logfields.Path(m.dataDir))
	} else {
		timestamp := time.Now().Format("20060102-150405")
		dataDir := filepath.Join(m.baseDir, fmt.Sprintf("gourcers-%s", timestamp))
		if err := os.MkdirAll(dataDir, 0o750); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		m.dataDir = dataDir
		slog.Info("Created ephemeral data directory", logfields.Path(dataDir))
	}

	for _, sub := range []string{ReposDir, GourceDir} {
		if _, err := m.EnsureSubdir(sub); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the path to the data directory.
func (m *Manager) Path() string {
	return m.dataDir
}

// Persistent reports whether the data directory survives Cleanup().
func (m *Manager) Persistent() bool {
	return m.persistent
}

// SubdirPath joins path elements onto the data directory without
// creating anything.
func (m *Manager) SubdirPath(parts ...string) string {
	return filepath.Join(append([]string{m.dataDir}, parts...)...)
}

// EnsureSubdir creates a subdirectory within the data directory.
func (m *Manager) EnsureSubdir(parts ...string) (string, error) {
	if m.dataDir == "" {
		return "", fmt.Errorf("data directory not created")
	}

	subdir := m.SubdirPath(parts...)
	if err := os.MkdirAll(subdir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	return subdir, nil
}

// Cleanup removes the data directory.
// For persistent mode: does nothing (keeps clones for incremental runs).
// For ephemeral mode: removes the timestamped directory.
func (m *Manager) Cleanup() error {
	if m.dataDir == "" {
		return nil
	}

	if m.persistent {
		slog.Debug("Skipping cleanup for persistent data directory", logfields.Path(m.dataDir))
		return nil
	}

	if err := os.RemoveAll(m.dataDir); err != nil {
		return fmt.Errorf("failed to cleanup data directory: %w", err)
	}

	slog.Info("Cleaned up data directory", logfields.Path(m.dataDir))
	m.dataDir = ""
	return nil
}
