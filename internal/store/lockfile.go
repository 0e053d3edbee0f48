package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"skilldock/internal/fsutil"
)

// Lock is the repository over the lock file. Reads are tolerant: a
// missing or unparseable file behaves as an empty lock, never an error.
// Writes are read-modify-write over the whole document, persisted with
// tmp+rename so a crash cannot truncate it. There is no cross-process
// locking; concurrent invocations are last-write-wins.
type Lock struct {
	path string
}

func NewLock(path string) *Lock {
	return &Lock{path: path}
}

func (l *Lock) Path() string { return l.path }

// Read returns the installed entries keyed by slug.
func (l *Lock) Read() map[string]LockEntry {
	blob, err := os.ReadFile(l.path)
	if err != nil {
		return map[string]LockEntry{}
	}
	var doc LockFile
	if err := json.Unmarshal(blob, &doc); err != nil {
		return map[string]LockEntry{}
	}
	if doc.Skills == nil {
		return map[string]LockEntry{}
	}
	return doc.Skills
}

func (l *Lock) Get(slug string) (LockEntry, bool) {
	entry, ok := l.Read()[slug]
	return entry, ok
}

// List returns all entries sorted by slug.
func (l *Lock) List() []LockEntry {
	skills := l.Read()
	out := make([]LockEntry, 0, len(skills))
	for _, entry := range skills {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// Write merges entry into the current document, keyed by slug. A
// re-install overwrites in place; entries are never implicitly deleted.
// InstalledAt is inherited from an existing entry when the caller leaves
// it zero, so the first-install timestamp survives updates.
func (l *Lock) Write(entry LockEntry) error {
	if entry.Slug == "" {
		return fmt.Errorf("LCK_ENTRY_SLUG: lock entry missing slug")
	}
	skills := l.Read()
	now := time.Now().UTC()
	if prev, ok := skills[entry.Slug]; ok && entry.InstalledAt.IsZero() {
		entry.InstalledAt = prev.InstalledAt
	}
	if entry.InstalledAt.IsZero() {
		entry.InstalledAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}
	skills[entry.Slug] = entry
	return l.save(skills)
}

// Replace rewrites the whole document from the given entries.
func (l *Lock) Replace(entries []LockEntry) error {
	skills := make(map[string]LockEntry, len(entries))
	now := time.Now().UTC()
	for _, entry := range entries {
		if entry.Slug == "" {
			return fmt.Errorf("LCK_ENTRY_SLUG: lock entry missing slug")
		}
		if entry.InstalledAt.IsZero() {
			entry.InstalledAt = now
		}
		if entry.UpdatedAt.IsZero() {
			entry.UpdatedAt = now
		}
		skills[entry.Slug] = entry
	}
	return l.save(skills)
}

func (l *Lock) save(skills map[string]LockEntry) error {
	doc := LockFile{Version: LockVersion, Skills: skills}
	blob, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("LCK_ENCODE: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	return fsutil.AtomicWrite(l.path, append(blob, '\n'), 0o644)
}
