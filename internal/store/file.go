package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const sessionFileName = "session.json"

// sessionFile is the on-disk document holding all session keys.
type sessionFile struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

// File implements Store on the local filesystem. All keys live in a
// single JSON document so a returning CLI process can resume its
// session without re-authentication.
type File struct {
	baseDir string
}

// NewFile creates a new file-backed store.
// If baseDir is empty, uses ~/.fotofair/
func NewFile(baseDir string) (*File, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".fotofair")
	}

	// Create directory with 0700 permissions, tokens live here
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	store := &File{baseDir: baseDir}

	if err := store.ensureFile(); err != nil {
		return nil, err
	}

	log.Debug().Str("baseDir", baseDir).Msg("file store initialized")

	return store, nil
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (f *File) Get(ctx context.Context, key string) (string, error) {
	doc, err := f.load()
	if err != nil {
		return "", err
	}

	value, ok := doc.Values[key]
	if !ok {
		return "", ErrKeyNotFound
	}

	return value, nil
}

// Set writes value under key.
func (f *File) Set(ctx context.Context, key, value string) error {
	doc, err := f.load()
	if err != nil {
		return err
	}

	doc.Values[key] = value

	return f.save(doc)
}

// Delete removes key. Absent keys are ignored.
func (f *File) Delete(ctx context.Context, key string) error {
	doc, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := doc.Values[key]; !ok {
		return nil
	}

	delete(doc.Values, key)

	return f.save(doc)
}

// ensureFile creates an empty session file if it doesn't exist.
func (f *File) ensureFile() error {
	path := filepath.Join(f.baseDir, sessionFileName)

	if _, err := os.Stat(path); err == nil {
		return nil // File exists
	}

	return f.save(&sessionFile{
		Version: 1,
		Values:  make(map[string]string),
	})
}

// load reads the session file.
func (f *File) load() (*sessionFile, error) {
	path := filepath.Join(f.baseDir, sessionFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var doc sessionFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	// Ensure values map is initialized
	if doc.Values == nil {
		doc.Values = make(map[string]string)
	}

	return &doc, nil
}

// save writes the session file atomically.
func (f *File) save(doc *sessionFile) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session file: %w", err)
	}

	// Write to temp file first
	path := filepath.Join(f.baseDir, sessionFileName)
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save session file: %w", err)
	}

	return nil
}
