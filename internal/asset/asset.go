// Package asset turns declared (source, destination, permission) triples
// into package file entries with correct file type bits.
package asset

import (
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"

	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
)

// File type bits as stored in the RPM file mode header.
const (
	TypeRegular   uint32 = 0o100000
	TypeDirectory uint32 = 0o040000
	TypeSymlink   uint32 = 0o120000

	permMask uint32 = 0o7777
)

// permPattern matches the asset mode pattern of the metadata schema.
var permPattern = regexp.MustCompile(`^(0[oO])?([0-7]{1,4})$`)

// ParsePerm parses an octal permission string such as "644" or "0o755".
func ParsePerm(perm string) (uint32, error) {
	m := permPattern.FindStringSubmatch(perm)
	if m == nil {
		return 0, fmt.Errorf("invalid octal permission %q: expected 1-4 octal digits, optionally prefixed with 0o", perm)
	}
	v, err := strconv.ParseUint(m[2], 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid octal permission %q: %w", perm, err)
	}
	return uint32(v) & permMask, nil
}

// TypeBits returns the type bits for a file mode, or an InvalidFileType
// error when the entry is not a regular file, directory or symlink.
func TypeBits(mode fs.FileMode, path string) (uint32, error) {
	switch {
	case mode.IsRegular():
		return TypeRegular, nil
	case mode.IsDir():
		return TypeDirectory, nil
	case mode&fs.ModeSymlink != 0:
		return TypeSymlink, nil
	default:
		return 0, errs.New(errs.KindInvalidFileType, "%s is a %s, expected a regular file, directory or symlink", path, describe(mode))
	}
}

// Mode stats path without following symlinks and combines its type bits
// with the requested permission.
func Mode(path, perm string) (uint32, error) {
	mode, _, err := stat(path, perm)
	return mode, err
}

func stat(path, perm string) (uint32, fs.FileInfo, error) {
	bits, err := ParsePerm(perm)
	if err != nil {
		return 0, nil, errs.Wrap(errs.KindManifest, err, "asset %s", path)
	}
	info, err := os.Lstat(path)
	if err != nil {
		return 0, nil, errs.Wrap(errs.KindIO, err, "stat asset")
	}
	typ, err := TypeBits(info.Mode(), path)
	if err != nil {
		return 0, nil, err
	}
	return typ | bits, info, nil
}

func describe(mode fs.FileMode) string {
	switch {
	case mode&fs.ModeNamedPipe != 0:
		return "named pipe"
	case mode&fs.ModeSocket != 0:
		return "socket"
	case mode&fs.ModeCharDevice != 0:
		return "character device"
	case mode&fs.ModeDevice != 0:
		return "device"
	case mode&fs.ModeIrregular != 0:
		return "irregular file"
	default:
		return "unsupported file type"
	}
}
