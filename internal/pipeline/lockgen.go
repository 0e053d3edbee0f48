package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"skilldock/internal/audit"
	"skilldock/internal/registry"
	"skilldock/internal/store"
)

// GenerateLock rebuilds the lock file from whatever sits in the canonical
// store, fetching each slug's manifest from the registry. The zipHash of
// an extracted tree cannot be recomputed locally, so the registry
// manifest is authoritative. Slugs the registry no longer serves are
// returned separately and left out of the new document.
func (s *Service) GenerateLock(ctx context.Context) ([]store.LockEntry, []string, error) {
	slugs, err := storedSlugs(store.StoreRoot(s.Root))
	if err != nil {
		return nil, nil, err
	}
	entries := make([]store.LockEntry, 0, len(slugs))
	var missing []string
	for _, slug := range slugs {
		m, err := s.Client.FetchSkill(ctx, slug)
		if err != nil {
			if registry.IsNotFound(err) {
				missing = append(missing, slug)
				continue
			}
			return nil, nil, err
		}
		entries = append(entries, store.LockEntry{
			Slug:    m.Slug,
			Version: m.Version,
			ZipHash: m.ZipHash,
			Source:  s.Source,
		})
	}
	if err := s.Lock.Replace(entries); err != nil {
		return nil, nil, err
	}
	s.log(audit.OpGenerateLock, audit.PhaseCommit, "ok", filepath.Base(s.Lock.Path()))
	return entries, missing, nil
}

// storedSlugs enumerates skill directories under the store root. Slugs
// can be org-scoped ("org/skill") and then nest one level deep: a
// top-level directory holding nothing but directories is an org
// namespace, and each child is one skill. The registry serves at most
// two segments, so enumeration stops there.
func storedSlugs(root string) ([]string, error) {
	dirents, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var slugs []string
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		sub, err := os.ReadDir(filepath.Join(root, d.Name()))
		if err != nil {
			return nil, err
		}
		if namespaceDir(sub) {
			for _, s := range sub {
				slugs = append(slugs, d.Name()+"/"+s.Name())
			}
			continue
		}
		slugs = append(slugs, d.Name())
	}
	sort.Strings(slugs)
	return slugs, nil
}

// namespaceDir reports whether a directory looks like an org namespace:
// non-empty and holding only directories. A skill directory always
// carries at least one file at its top level (SKILL.md).
func namespaceDir(entries []os.DirEntry) bool {
	if len(entries) == 0 {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() {
			return false
		}
	}
	return true
}
