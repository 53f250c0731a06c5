package workspace

import (
	"encoding/json"
	"fmt"
)

// Compression names accepted in metadata and on the command line.
const (
	CompressionNone = "none"
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
	CompressionXz   = "xz"
	CompressionLzma = "lzma"

	DefaultCompression = CompressionGzip
)

// Options is a member's [package.metadata.rpm] table.
type Options struct {
	Compression   string   `json:"compression,omitempty"`
	SigningKey    string   `json:"signing_key,omitempty"`
	Release       string   `json:"release,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Group         string   `json:"group,omitempty"`
	Dependencies  []string `json:"dependencies,omitempty"`
	Conflicts     []string `json:"conflicts,omitempty"`
	Provides      []string `json:"provides,omitempty"`
	Obsoletes     []string `json:"obsoletes,omitempty"`
	Assets        []Asset  `json:"assets,omitempty"`
	PreInstall    string   `json:"preinstall,omitempty"`
	PostInstall   string   `json:"postinstall,omitempty"`
	PreUninstall  string   `json:"preuninstall,omitempty"`
	PostUninstall string   `json:"postuninstall,omitempty"`
}

// Asset is a declared [source, install path, octal mode] triple.
type Asset struct {
	Source string
	Dest   string
	Mode   string
}

// UnmarshalJSON decodes the triple form.
func (a *Asset) UnmarshalJSON(data []byte) error {
	var triple []string
	if err := json.Unmarshal(data, &triple); err != nil {
		return fmt.Errorf("asset must be a [source, destination, mode] triple: %w", err)
	}
	if len(triple) != 3 {
		return fmt.Errorf("asset must be a [source, destination, mode] triple, got %d elements", len(triple))
	}
	a.Source, a.Dest, a.Mode = triple[0], triple[1], triple[2]
	return nil
}

// ValidCompression reports whether name (without level) is supported.
// Names are case-sensitive, as in the metadata schema.
func ValidCompression(name string) bool {
	switch name {
	case CompressionNone, CompressionGzip, CompressionZstd, CompressionXz, CompressionLzma:
		return true
	}
	return false
}
