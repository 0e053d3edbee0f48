package registry

// Manifest is the signed metadata for one skill. Identity is
// (slug, version, zipHash); zipHash is an OCI-style digest string over the
// archive bytes. Signature is a base64 ed25519 detached signature over the
// canonical manifest fields.
type Manifest struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Version   string `json:"version"`
	ZipHash   string `json:"zipHash"`
	Author    string `json:"author,omitempty"`
	Signature string `json:"signature,omitempty"`
}

type PluginInfo struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Version string `json:"version"`
}

// PluginManifest is a named, versioned list of skill manifests. A plugin
// owns no files directly.
type PluginManifest struct {
	Plugin      PluginInfo `json:"plugin"`
	Skills      []Manifest `json:"skills"`
	GeneratedAt string     `json:"generatedAt,omitempty"`
}

// ReportResult is the registry's acknowledgement of a telemetry report.
type ReportResult struct {
	Success   bool `json:"success"`
	Duplicate bool `json:"duplicate"`
}
