package target

import (
	"context"
	"regexp"
	"strings"

	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
	"github.com/open-edge-platform/rpm-composer/internal/utils/shell"
)

var hostPattern = regexp.MustCompile(`(?m)^host:\s*(\S+)\s*$`)

// HostDetector reports the toolchain's host triplet.
type HostDetector interface {
	HostTriplet(ctx context.Context) (string, error)
}

// RustcDetector asks rustc for its host triplet via `rustc --version --verbose`.
type RustcDetector struct {
	Rustc string
}

// HostTriplet implements HostDetector.
func (d RustcDetector) HostTriplet(ctx context.Context) (string, error) {
	rustc := d.Rustc
	if rustc == "" {
		rustc = "rustc"
	}
	out, err := shell.ExecCmd(ctx, shell.Command{Name: rustc, Args: []string{"--version", "--verbose"}})
	if err != nil {
		return "", errs.Wrap(errs.KindTargetResolution, err, "querying %s for the host triplet", rustc)
	}
	return ExtractHost(out)
}

// ExtractHost pulls the triplet out of a "host: <triplet>" report line.
func ExtractHost(report string) (string, error) {
	m := hostPattern.FindStringSubmatch(report)
	if m == nil {
		return "", errs.New(errs.KindTargetResolution, "no host triplet in toolchain report")
	}
	return m[1], nil
}

// Resolution is a resolved target.
type Resolution struct {
	Triplet Triplet
	// Explicit is true when the triplet came from the user rather than
	// host detection. Only explicit triplets are passed to the build and
	// appear in output paths.
	Explicit bool
}

// Dir is the target directory segment used under target/: the triplet
// when explicit, otherwise empty.
func (r Resolution) Dir() string {
	if r.Explicit {
		return r.Triplet.String()
	}
	return ""
}

// Resolve prefers explicit, and falls back to the detector.
func Resolve(ctx context.Context, explicit string, detector HostDetector) (Resolution, error) {
	if s := strings.TrimSpace(explicit); s != "" {
		t, err := ParseTriplet(s)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Triplet: t, Explicit: true}, nil
	}

	if detector == nil {
		return Resolution{}, errs.New(errs.KindTargetResolution, "no target given and no host detector configured")
	}
	host, err := detector.HostTriplet(ctx)
	if err != nil {
		return Resolution{}, errs.Wrap(errs.KindTargetResolution, err, "autodetecting host target")
	}
	t, err := ParseTriplet(host)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Triplet: t}, nil
}
