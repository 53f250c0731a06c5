// Package target resolves the platform triplet a workspace is built for and
// maps it to the architecture name RPM uses.
package target

import (
	"fmt"
	"strings"

	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
)

// LinuxOS is the only OS RPM packages are produced for.
const LinuxOS = "linux"

// Triplet is a parsed arch-vendor-os[-libc] platform identifier.
type Triplet struct {
	Arch   string
	Vendor string
	OS     string
	Libc   string // empty when the triplet has three segments
}

// ParseTriplet splits s on '-'. The first three segments must be
// non-empty; everything after the third hyphen is the libc flavor, so
// unusual identifiers with more than four segments still round-trip.
func ParseTriplet(s string) (Triplet, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 4)
	if len(parts) < 3 {
		return Triplet{}, errs.New(errs.KindTargetResolution, "invalid target triplet %q: expected arch-vendor-os[-libc]", s)
	}
	for i, name := range []string{"arch", "vendor", "os"} {
		if parts[i] == "" {
			return Triplet{}, errs.New(errs.KindTargetResolution, "invalid target triplet %q: empty %s", s, name)
		}
	}

	t := Triplet{Arch: parts[0], Vendor: parts[1], OS: parts[2]}
	if len(parts) == 4 {
		if parts[3] == "" {
			return Triplet{}, errs.New(errs.KindTargetResolution, "invalid target triplet %q: empty libc", s)
		}
		t.Libc = parts[3]
	}
	return t, nil
}

func (t Triplet) String() string {
	s := fmt.Sprintf("%s-%s-%s", t.Arch, t.Vendor, t.OS)
	if t.Libc != "" {
		s += "-" + t.Libc
	}
	return s
}

// IsLinux reports whether packages built for t can be installed by RPM.
func (t Triplet) IsLinux() bool {
	return t.OS == LinuxOS
}
