package workspace

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/open-edge-platform/rpm-composer/internal/config/validate"
	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
	"github.com/open-edge-platform/rpm-composer/internal/utils/logger"
	"github.com/open-edge-platform/rpm-composer/internal/utils/shell"
)

// ReadOptions configures the metadata query.
type ReadOptions struct {
	Cargo string // cargo executable, "cargo" when empty
	Dir   string // directory to run in, the working directory when empty
}

// MetadataArgs is the argument list of the metadata query.
func MetadataArgs() []string {
	return []string{"metadata", "--no-deps", "--format-version", "1"}
}

// Read runs `cargo metadata` and parses its output.
func Read(ctx context.Context, opts ReadOptions) (*Manifest, error) {
	log := logger.Logger()

	cargo := opts.Cargo
	if cargo == "" {
		cargo = "cargo"
	}
	out, err := shell.ExecCmd(ctx, shell.Command{Name: cargo, Args: MetadataArgs(), Dir: opts.Dir})
	if err != nil {
		if !shell.IsCommandExist(cargo) {
			return nil, errs.Wrap(errs.KindManifest, err, "%s not found; install the Rust toolchain or set toolchain.cargo", cargo)
		}
		return nil, errs.Wrap(errs.KindManifest, err, "reading workspace metadata")
	}

	m, err := Parse([]byte(out))
	if err != nil {
		return nil, err
	}
	log.Debugf("workspace root %q has %d packages", m.WorkspaceRoot, len(m.Packages))
	return m, nil
}

// Parse decodes `cargo metadata` JSON. Each member's rpm metadata block is
// validated against the metadata schema first so errors name the member.
func Parse(data []byte) (*Manifest, error) {
	var raw struct {
		Packages []rawPackage `json:"packages"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.KindManifest, err, "parsing workspace metadata")
	}
	for _, p := range raw.Packages {
		if p.Metadata == nil || len(p.Metadata.RPM) == 0 || string(p.Metadata.RPM) == "null" {
			continue
		}
		if err := validate.ValidateRPMMetadataJSON(p.Metadata.RPM); err != nil {
			return nil, &errs.Error{Kind: errs.KindManifest, Member: p.Name, Message: "invalid package.metadata.rpm", Err: err}
		}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errs.Wrap(errs.KindManifest, err, "parsing workspace metadata")
	}
	for i := range m.Packages {
		p := &m.Packages[i]
		if p.Name == "" || p.Version == "" {
			return nil, errs.New(errs.KindManifest, "package %d has no name or version", i)
		}
		if p.ManifestPath == "" && m.WorkspaceRoot == "" {
			return nil, errs.New(errs.KindManifest, "package %s has no manifest path", p.Name)
		}
	}
	return &m, nil
}

// Summary describes the manifest for logs.
func (m *Manifest) Summary() string {
	eligible := len(m.Members(""))
	if len(m.WorkspaceMembers) > 0 {
		return fmt.Sprintf("%d packages (%d workspace members), %d with binaries", len(m.Packages), len(m.WorkspaceMembers), eligible)
	}
	return fmt.Sprintf("%d packages, %d with binaries", len(m.Packages), eligible)
}
