// Package rpmspec assembles, for each workspace member, everything needed
// to write its RPM: identity, relations, scripts, files, compression and
// signing key.
package rpmspec

import (
	"fmt"
	"path/filepath"

	"github.com/open-edge-platform/rpm-composer/internal/asset"
	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
)

// DefaultRelease is the RPM release used when a member declares none.
const DefaultRelease = "1"

// BinDir is where executables are installed.
const BinDir = "/usr/bin"

// Scripts are the lifecycle scriptlets, stored verbatim.
type Scripts struct {
	PreInstall    string
	PostInstall   string
	PreUninstall  string
	PostUninstall string
}

// Spec is a fully assembled package specification.
type Spec struct {
	Name        string
	Version     string
	Release     string
	Arch        string
	License     string
	Summary     string
	Description string
	Group       string
	Vendor      string
	URL         string
	VCS         string

	Requires  []string
	Conflicts []string
	Provides  []string
	Obsoletes []string

	Scripts     Scripts
	Files       []asset.Entry
	Compression Compression

	// SigningKey is the path of an armored private key; empty produces an
	// unsigned package.
	SigningKey string

	OutputDir string
}

// Signed reports whether the package will carry a signature.
func (s *Spec) Signed() bool {
	return s.SigningKey != ""
}

// FileName is <name>-<version>.<arch>.rpm.
func (s *Spec) FileName() string {
	return fmt.Sprintf("%s-%s.%s.rpm", s.Name, s.Version, s.Arch)
}

// OutputPath is the full path the package is written to.
func (s *Spec) OutputPath() string {
	return filepath.Join(s.OutputDir, s.FileName())
}

// addFile appends e, rejecting a second entry for the same install path.
func (s *Spec) addFile(e asset.Entry) error {
	for _, f := range s.Files {
		if f.Dest == e.Dest {
			return errs.New(errs.KindManifest, "%s is installed by both %s and %s", e.Dest, f.Source, e.Source)
		}
	}
	s.Files = append(s.Files, e)
	return nil
}
