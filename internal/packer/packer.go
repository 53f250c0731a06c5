// Package packer runs the whole pipeline: read the workspace, resolve the
// target, build, then assemble and write one RPM per eligible member.
package packer

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/open-edge-platform/rpm-composer/internal/build"
	"github.com/open-edge-platform/rpm-composer/internal/rpmspec"
	"github.com/open-edge-platform/rpm-composer/internal/rpmwriter"
	"github.com/open-edge-platform/rpm-composer/internal/target"
	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
	"github.com/open-edge-platform/rpm-composer/internal/utils/logger"
	"github.com/open-edge-platform/rpm-composer/internal/utils/system"
	"github.com/open-edge-platform/rpm-composer/internal/workspace"
)

// Options configure one run.
type Options struct {
	// Dir is the directory cargo runs in; the working directory when empty.
	Dir   string
	Cargo string
	Rustc string

	Target      string
	Package     string
	Compression string
	SigningKey  string
	ArchPolicy  target.Policy
	Passphrase  []byte
	BuildArgs   []string
	// BuildHost overrides the build host recorded in package headers.
	BuildHost string

	// Detector overrides host triplet detection; rustc is asked when nil.
	Detector target.HostDetector
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
}

// Artifact is one written package.
type Artifact struct {
	Member string
	Path   string
	Arch   string
	Signed bool
}

// Run executes the pipeline. The first error aborts the run; artifacts
// written before it are returned alongside the error.
func Run(ctx context.Context, opts Options) ([]Artifact, error) {
	runID := uuid.NewString()
	log := logger.Logger().With("run", runID)
	start := time.Now()

	if opts.Compression != "" {
		if _, err := rpmspec.ParseCompression(opts.Compression); err != nil {
			return nil, err
		}
	}
	policy := opts.ArchPolicy
	if policy == "" {
		policy = target.Permissive
	}

	manifest, err := workspace.Read(ctx, workspace.ReadOptions{Cargo: opts.Cargo, Dir: opts.Dir})
	if err != nil {
		return nil, err
	}
	log.Infof("workspace %s: %s", manifest.WorkspaceRoot, manifest.Summary())
	if opts.Package != "" && !manifest.Has(opts.Package) {
		return nil, errs.New(errs.KindManifest, "no workspace member named %q", opts.Package)
	}

	detector := opts.Detector
	if detector == nil {
		detector = target.RustcDetector{Rustc: opts.Rustc}
	}
	res, err := target.Resolve(ctx, opts.Target, detector)
	if err != nil {
		return nil, err
	}
	if warning, ok := target.CheckOS(res.Triplet); !ok {
		log.Warn(warning)
	}
	arch, err := target.MapArch(res.Triplet, policy)
	if err != nil {
		return nil, err
	}
	log.Infof("target %s (explicit=%t), rpm arch %s", res.Triplet, res.Explicit, arch)
	if host, err := system.GetHostOsInfo(ctx); err != nil {
		log.Debugf("host detection: %v", err)
	} else if host.Arch != res.Triplet.Arch {
		log.Infof("cross packaging for %s on %s", res.Triplet.Arch, host)
	} else {
		log.Debugf("packaging on %s", host)
	}

	buildOpts := build.Options{
		Cargo:       opts.Cargo,
		Dir:         opts.Dir,
		Package:     opts.Package,
		Passthrough: opts.BuildArgs,
	}
	if res.Explicit {
		buildOpts.Target = res.Triplet.String()
	}
	if err := build.Run(ctx, buildOpts); err != nil {
		return nil, err
	}

	members := manifest.Members(opts.Package)
	if len(members) == 0 {
		log.Warnf("no workspace member with binary targets to package")
		return nil, nil
	}

	builder := &rpmspec.Builder{
		Manifest: manifest,
		Target:   res,
		Arch:     arch,
		Overrides: rpmspec.Overrides{
			Compression: opts.Compression,
			SigningKey:  opts.SigningKey,
		},
	}
	writeOpts := rpmwriter.Options{Passphrase: opts.Passphrase, BuildHost: opts.BuildHost}
	bar := newBar(opts.Progress, len(members))

	var artifacts []Artifact
	for _, p := range members {
		if err := ctx.Err(); err != nil {
			return artifacts, errs.Wrap(errs.KindIO, err, "packaging interrupted")
		}
		if bar != nil {
			bar.Describe("packaging " + p.Name)
		}

		spec, err := builder.Build(p)
		if err != nil {
			return artifacts, err
		}
		log.Debugf("writing %s", rpmwriter.Describe(spec))
		if err := rpmwriter.Write(spec, writeOpts); err != nil {
			return artifacts, errs.ForMember(p.Name, err)
		}
		artifacts = append(artifacts, Artifact{
			Member: p.Name,
			Path:   spec.OutputPath(),
			Arch:   spec.Arch,
			Signed: spec.Signed(),
		})

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	log.Infof("packaged %d member(s) in %s", len(artifacts), time.Since(start).Round(time.Millisecond))
	return artifacts, nil
}

func newBar(w io.Writer, total int) *progressbar.ProgressBar {
	if w == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("packaging"),
		progressbar.OptionShowDescriptionAtLineEnd(),
	)
}
