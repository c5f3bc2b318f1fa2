// Package ingest drives the document-to-knowledge-base pipeline: extract,
// section, chunk, score, embed, store.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LedgerEntry records one processed file version.
type LedgerEntry struct {
	Path        string `json:"path"`
	ProcessedAt string `json:"processed_at"`
	Chunks      int    `json:"chunks"`
}

// Ledger tracks which file versions have been ingested, keyed by path plus
// modification time. A touched or replaced file gets a new key and is
// re-processed; an unchanged file is skipped.
type Ledger struct {
	path string

	mu      sync.Mutex
	entries map[string]LedgerEntry
}

// NewLedger loads the ledger from path, starting empty when absent.
func NewLedger(path string) (*Ledger, error) {
	l := &Ledger{path: path, entries: make(map[string]LedgerEntry)}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if err := json.Unmarshal(data, &l.entries); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}
	return l, nil
}

// Fingerprint returns the ledger key for the file's current version.
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", path, info.ModTime().Unix()), nil
}

// Seen reports whether this file version was already ingested.
func (l *Ledger) Seen(fingerprint string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[fingerprint]
	return ok
}

// SeenPath reports whether any earlier version of the file was ingested,
// regardless of modification time.
func (l *Ledger) SeenPath(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, entry := range l.entries {
		if entry.Path == path {
			return true
		}
	}
	return false
}

// MarkProcessed records a completed ingestion and persists the ledger.
func (l *Ledger) MarkProcessed(fingerprint, path string, chunks int) error {
	l.mu.Lock()
	l.entries[fingerprint] = LedgerEntry{
		Path:        path,
		ProcessedAt: time.Now().Format(time.RFC3339),
		Chunks:      chunks,
	}
	data, err := json.MarshalIndent(l.entries, "", "  ")
	l.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// Len returns the number of recorded file versions.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
