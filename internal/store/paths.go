package store

import (
	"os"
	"path/filepath"
)

func StoreRoot(root string) string {
	return filepath.Join(root, "store")
}

// SkillPath is the canonical location of an extracted skill. It is a pure
// function of the slug: the same slug always maps to the same directory.
func SkillPath(root, slug string) string {
	return filepath.Join(StoreRoot(root), filepath.FromSlash(slug))
}

func LockPath(root string) string {
	return filepath.Join(root, "skills.lock.json")
}

func AuditPath(root string) string {
	return filepath.Join(root, "audit.log")
}

func EnsureLayout(root string) error {
	for _, d := range []string{root, StoreRoot(root)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}
