package verify

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"

	"skilldock/internal/registry"
)

// Result is the outcome of manifest verification. Valid=false means the
// caller must abort before downloading anything. Warning is set when the
// check was skipped and only structural validation ran.
type Result struct {
	Valid   bool
	Warning string
	Reason  string
}

// ParseKey decodes a base64 ed25519 public key from config. An empty
// string yields a nil key.
func ParseKey(encoded string) (ed25519.PublicKey, error) {
	if encoded == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("VER_KEY_DECODE: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("VER_KEY_SIZE: expected %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// CanonicalPayload is the byte string the registry signs: the identity
// fields joined with newlines, in fixed order.
func CanonicalPayload(m registry.Manifest) []byte {
	return []byte(strings.Join([]string{m.Name, m.Slug, m.Version, m.ZipHash}, "\n"))
}

// Manifest checks the detached signature over the manifest's canonical
// fields. With skip set it degrades to structural validation and reports
// a warning instead of failing.
func Manifest(m registry.Manifest, pub ed25519.PublicKey, skip bool) Result {
	if reason := structural(m); reason != "" {
		return Result{Reason: reason}
	}
	if skip {
		return Result{Valid: true, Warning: "signature verification skipped"}
	}
	if len(pub) == 0 {
		return Result{Reason: "VER_KEY_MISSING: no registry signing key configured"}
	}
	if m.Signature == "" {
		return Result{Reason: "VER_SIG_MISSING: manifest carries no signature"}
	}
	sig, err := base64.StdEncoding.DecodeString(m.Signature)
	if err != nil {
		return Result{Reason: fmt.Sprintf("VER_SIG_DECODE: %v", err)}
	}
	if !ed25519.Verify(pub, CanonicalPayload(m), sig) {
		return Result{Reason: "VER_SIG_MISMATCH: manifest signature does not verify"}
	}
	return Result{Valid: true}
}

func structural(m registry.Manifest) string {
	if m.Slug == "" || m.Name == "" || m.Version == "" {
		return "VER_MANIFEST_SCHEMA: manifest missing name/slug/version"
	}
	if _, err := digest.Parse(m.ZipHash); err != nil {
		return fmt.Sprintf("VER_MANIFEST_SCHEMA: bad zipHash %q: %v", m.ZipHash, err)
	}
	return ""
}

// Archive recomputes the digest of the downloaded archive bytes and
// compares it to the manifest's zipHash. A mismatch is always fatal:
// extraction must never run after this fails.
func Archive(data []byte, zipHash string) error {
	want, err := digest.Parse(zipHash)
	if err != nil {
		return fmt.Errorf("VER_HASH_FORMAT: %w", err)
	}
	got := want.Algorithm().FromBytes(data)
	if got != want {
		return fmt.Errorf("VER_HASH_MISMATCH: expected %s, got %s", want, got)
	}
	return nil
}
