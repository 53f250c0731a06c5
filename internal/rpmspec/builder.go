package rpmspec

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/open-edge-platform/rpm-composer/internal/asset"
	"github.com/open-edge-platform/rpm-composer/internal/target"
	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
	"github.com/open-edge-platform/rpm-composer/internal/utils/logger"
	"github.com/open-edge-platform/rpm-composer/internal/workspace"
)

// Overrides are the command-line options that take precedence over what
// members declare.
type Overrides struct {
	Compression string
	SigningKey  string
}

// Builder assembles specs for the members of one workspace.
type Builder struct {
	Manifest  *workspace.Manifest
	Target    target.Resolution
	Arch      string
	Overrides Overrides
}

// BuildDir is crate_dir/target/<triplet-or-empty>/release.
func (b *Builder) BuildDir(crateDir string) string {
	return filepath.Join(crateDir, "target", b.Target.Dir(), "release")
}

// OutputDir is the rpm directory next to the release directory.
func (b *Builder) OutputDir(crateDir string) string {
	return filepath.Join(crateDir, "target", b.Target.Dir(), "rpm")
}

// Build assembles the spec for one member. Errors carry the member name.
func (b *Builder) Build(p *workspace.Package) (*Spec, error) {
	spec, err := b.build(p)
	if err != nil {
		return nil, errs.ForMember(p.Name, err)
	}
	return spec, nil
}

func (b *Builder) build(p *workspace.Package) (*Spec, error) {
	log := logger.Logger()

	crateDir := b.Manifest.CrateDir(p)
	buildDir := b.BuildDir(crateDir)
	outputDir := b.OutputDir(crateDir)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "creating output directory")
	}

	opts := p.Options()
	compression, err := ResolveCompression(b.Overrides.Compression, opts)
	if err != nil {
		return nil, err
	}

	license, err := requireField(p.License, "license")
	if err != nil {
		return nil, err
	}
	description, err := requireField(p.Description, "description")
	if err != nil {
		return nil, err
	}

	spec := &Spec{
		Name:        p.Name,
		Version:     p.Version,
		Release:     DefaultRelease,
		Arch:        b.Arch,
		License:     license,
		Summary:     description,
		Description: description,
		Compression: compression,
		OutputDir:   outputDir,
	}
	if len(p.Authors) > 0 {
		spec.Vendor = strings.Join(p.Authors, ", ")
	}
	if p.Homepage != nil && *p.Homepage != "" {
		spec.URL = *p.Homepage
	}
	if p.Repository != nil && *p.Repository != "" {
		spec.VCS = "git:" + *p.Repository
	}

	for _, t := range p.BinTargets() {
		entry, err := loadBinary(filepath.Join(buildDir, t.Name), path.Join(BinDir, t.Name))
		if err != nil {
			return nil, err
		}
		if err := spec.addFile(entry); err != nil {
			return nil, err
		}
	}

	if opts != nil {
		applyOptions(spec, opts)
		for _, a := range opts.Assets {
			entry, err := asset.Load(resolvePath(crateDir, a.Source), a.Dest, a.Mode)
			if err != nil {
				return nil, err
			}
			if err := spec.addFile(entry); err != nil {
				return nil, err
			}
		}
	}

	spec.SigningKey = ResolveSigningKey(b.Overrides.SigningKey, opts, crateDir)

	log.Debugf("assembled %s: %d files, compression %s, signed=%t",
		spec.FileName(), len(spec.Files), compression.Describe(), spec.Signed())
	return spec, nil
}

func applyOptions(spec *Spec, opts *workspace.Options) {
	if opts.Release != "" {
		spec.Release = opts.Release
	}
	if opts.Summary != "" {
		spec.Summary = opts.Summary
	}
	spec.Group = opts.Group
	spec.Scripts = Scripts{
		PreInstall:    opts.PreInstall,
		PostInstall:   opts.PostInstall,
		PreUninstall:  opts.PreUninstall,
		PostUninstall: opts.PostUninstall,
	}
	spec.Requires = append(spec.Requires, opts.Dependencies...)
	spec.Conflicts = append(spec.Conflicts, opts.Conflicts...)
	spec.Provides = append(spec.Provides, opts.Provides...)
	spec.Obsoletes = append(spec.Obsoletes, opts.Obsoletes...)
}

// ResolveSigningKey picks the signing key: the command line path as given,
// otherwise the member's declared path resolved against crateDir. Empty
// means unsigned.
func ResolveSigningKey(cli string, declared *workspace.Options, crateDir string) string {
	if cli != "" {
		return cli
	}
	if declared != nil && declared.SigningKey != "" {
		return resolvePath(crateDir, declared.SigningKey)
	}
	return ""
}

func requireField(v *string, field string) (string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", errs.New(errs.KindMissingField, "%s is required", field)
	}
	return *v, nil
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func loadBinary(src, dest string) (asset.Entry, error) {
	info, err := os.Stat(src)
	if err != nil {
		return asset.Entry{}, errs.Wrap(errs.KindIO, err, "built binary")
	}
	body, err := os.ReadFile(src)
	if err != nil {
		return asset.Entry{}, errs.Wrap(errs.KindIO, err, "reading built binary")
	}
	return asset.Entry{
		Source: src,
		Dest:   dest,
		Mode:   asset.TypeRegular | 0o755,
		MTime:  uint32(info.ModTime().Unix()),
		Body:   body,
	}, nil
}
