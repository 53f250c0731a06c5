package target

import (
	"fmt"
	"strings"

	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
)

// Policy selects how architectures missing from the mapping table are
// treated.
type Policy string

const (
	// Permissive passes unknown architectures through unchanged and maps
	// soft-float ARM to arm-nofp.
	Permissive Policy = "permissive"
	// Strict only accepts architectures on the allow-list below.
	Strict Policy = "strict"
)

// ParsePolicy accepts "strict" or "permissive"; empty is Permissive.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", Permissive:
		return Permissive, nil
	case Strict:
		return Strict, nil
	default:
		return "", errs.New(errs.KindConfig, "unknown architecture policy %q (expected strict or permissive)", s)
	}
}

// strictArches are the RPM architectures accepted under Strict.
var strictArches = map[string]bool{
	"x86_64":  true,
	"aarch64": true,
	"i386":    true,
	"s390x":   true,
	"armhfp":  true,
	"ppc64":   true,
	"ppc64le": true,
}

// MapArch returns the RPM architecture for t. ARM triplets without a libc
// segment are treated as hard-float.
func MapArch(t Triplet, policy Policy) (string, error) {
	var arch string
	switch t.Arch {
	case "armv7", "arm":
		if t.Libc == "" || strings.HasSuffix(t.Libc, "hf") {
			arch = "armhfp"
		} else {
			arch = "arm-nofp"
		}
	case "powerpc64":
		arch = "ppc64"
	case "powerpc64le":
		arch = "ppc64le"
	default:
		arch = t.Arch
	}

	if policy == Strict && !strictArches[arch] {
		return "", errs.New(errs.KindUnsupportedArch, "no RPM architecture for target %s", t)
	}
	return arch, nil
}

// CheckOS returns a warning when t does not target Linux. Packaging still
// proceeds; the caller decides how to report it.
func CheckOS(t Triplet) (warning string, ok bool) {
	if t.IsLinux() {
		return "", true
	}
	return fmt.Sprintf("target %s is for %s, not Linux; use --target to cross compile for a Linux target", t, t.OS), false
}
