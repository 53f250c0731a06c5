// Package workspace reads the build graph of a Cargo workspace: its
// members, their build targets and their declared packaging options.
package workspace

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
)

// BinKind is the target kind that gets packaged.
const BinKind = "bin"

// Manifest is the subset of `cargo metadata` output needed for packaging.
type Manifest struct {
	Packages         []Package `json:"packages"`
	WorkspaceMembers []string  `json:"workspace_members,omitempty"`
	WorkspaceRoot    string    `json:"workspace_root,omitempty"`
}

// Package is one workspace member.
type Package struct {
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	License      *string   `json:"license"`
	Description  *string   `json:"description"`
	Authors      []string  `json:"authors"`
	Targets      []Target  `json:"targets"`
	ManifestPath string    `json:"manifest_path"`
	Metadata     *Metadata `json:"metadata"`
	Homepage     *string   `json:"homepage"`
	Repository   *string   `json:"repository"`
}

// Target is a build target of a member.
type Target struct {
	Name string   `json:"name"`
	Kind []string `json:"kind"`
}

// Metadata is the member's [package.metadata] table. Only the rpm
// namespace is read.
type Metadata struct {
	RPM *Options `json:"rpm"`
}

// IsBin reports whether the target produces an executable.
func (t Target) IsBin() bool {
	return slices.Contains(t.Kind, BinKind)
}

// BinTargets returns the member's executable targets in declaration order.
func (p *Package) BinTargets() []Target {
	var bins []Target
	for _, t := range p.Targets {
		if t.IsBin() {
			bins = append(bins, t)
		}
	}
	return bins
}

// Eligible reports whether the member has anything to package.
func (p *Package) Eligible() bool {
	return len(p.BinTargets()) > 0
}

// Options returns the member's declared packaging options, or nil.
func (p *Package) Options() *Options {
	if p.Metadata == nil {
		return nil
	}
	return p.Metadata.RPM
}

// CrateDir is the directory declared paths of the member resolve against:
// the workspace root when known, otherwise the member's manifest directory.
func (m *Manifest) CrateDir(p *Package) string {
	if m.WorkspaceRoot != "" {
		return m.WorkspaceRoot
	}
	return filepath.Dir(p.ManifestPath)
}

// Members returns the eligible members matching filter, in manifest order.
// An empty filter matches every member.
func (m *Manifest) Members(filter string) []*Package {
	var out []*Package
	for i := range m.Packages {
		p := &m.Packages[i]
		if filter != "" && p.Name != filter {
			continue
		}
		if !p.Eligible() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Has reports whether a member with the given name exists at all.
func (m *Manifest) Has(name string) bool {
	for i := range m.Packages {
		if m.Packages[i].Name == name {
			return true
		}
	}
	return false
}

// String renders a short identifier for logs.
func (p *Package) String() string {
	return fmt.Sprintf("%s %s", p.Name, p.Version)
}

// rawPackage lets Parse validate the rpm metadata block before decoding it.
type rawPackage struct {
	Name     string `json:"name"`
	Metadata *struct {
		RPM json.RawMessage `json:"rpm"`
	} `json:"metadata"`
}
