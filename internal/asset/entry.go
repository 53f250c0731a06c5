package asset

import (
	"os"

	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
)

// Entry is one file to be placed in a package.
type Entry struct {
	Source string // path on disk the entry was read from
	Dest   string // absolute install path inside the package
	Mode   uint32 // type bits | permission bits
	MTime  uint32
	// Body holds file content for regular files and the link target for
	// symlinks; directories have none.
	Body []byte
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Mode&0o170000 == TypeDirectory }

// IsSymlink reports whether the entry is a symbolic link.
func (e Entry) IsSymlink() bool { return e.Mode&0o170000 == TypeSymlink }

// Load resolves the mode of src and reads whatever the package needs to
// carry for it.
func Load(src, dest, perm string) (Entry, error) {
	mode, info, err := stat(src, perm)
	if err != nil {
		return Entry{}, err
	}

	e := Entry{Source: src, Dest: dest, Mode: mode, MTime: uint32(info.ModTime().Unix())}
	switch mode & 0o170000 {
	case TypeRegular:
		if e.Body, err = os.ReadFile(src); err != nil {
			return Entry{}, errs.Wrap(errs.KindIO, err, "reading asset")
		}
	case TypeSymlink:
		link, err := os.Readlink(src)
		if err != nil {
			return Entry{}, errs.Wrap(errs.KindIO, err, "reading symlink")
		}
		e.Body = []byte(link)
	}
	return e, nil
}
