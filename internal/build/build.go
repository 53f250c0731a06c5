// Package build runs the workspace release build ahead of packaging.
package build

import (
	"context"
	"errors"
	"os/exec"

	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
	"github.com/open-edge-platform/rpm-composer/internal/utils/logger"
	"github.com/open-edge-platform/rpm-composer/internal/utils/shell"
)

// Options describes one release build.
type Options struct {
	Cargo string // cargo executable, "cargo" when empty
	Dir   string
	// Target is passed as --target only when the user gave one explicitly.
	Target string
	// Package restricts the build to one workspace member.
	Package string
	// Passthrough arguments are appended verbatim.
	Passthrough []string
}

// Args returns the cargo argument list for opts.
func Args(opts Options) []string {
	args := []string{"build", "--release"}
	if opts.Target != "" {
		args = append(args, "--target", opts.Target)
	}
	if opts.Package != "" {
		args = append(args, "-p", opts.Package)
	}
	return append(args, opts.Passthrough...)
}

// Run builds the workspace and blocks until cargo exits. A non-zero exit
// is a BuildFailure.
func Run(ctx context.Context, opts Options) error {
	log := logger.Logger()

	cargo := opts.Cargo
	if cargo == "" {
		cargo = "cargo"
	}
	cmd := shell.Command{Name: cargo, Args: Args(opts), Dir: opts.Dir}
	log.Infof("building: %s", cmd)

	if err := shell.ExecCmdWithStream(ctx, cmd); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return errs.Wrap(errs.KindBuildFailure, err, "%s exited with status %d", cargo, exitErr.ExitCode())
		}
		if !shell.IsCommandExist(cargo) {
			return errs.Wrap(errs.KindBuildFailure, err, "%s not found on PATH", cargo)
		}
		return errs.Wrap(errs.KindBuildFailure, err, "running %s", cargo)
	}
	return nil
}
