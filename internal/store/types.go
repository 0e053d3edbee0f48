package store

import "time"

const LockVersion = 1

// LockFile is the persisted record of installed skills, keyed by slug.
type LockFile struct {
	Version int                  `json:"version"`
	Skills  map[string]LockEntry `json:"skills"`
}

// LockEntry describes one installed artifact. ZipHash is the source of
// truth for "has this artifact changed".
type LockEntry struct {
	Slug        string    `json:"slug"`
	Version     string    `json:"version"`
	ZipHash     string    `json:"zipHash"`
	Source      string    `json:"source,omitempty"`
	InstalledAt time.Time `json:"installedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
