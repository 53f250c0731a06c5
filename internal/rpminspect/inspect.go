// Package rpminspect reads back RPM files: header fields, payload layout
// and signatures.
package rpminspect

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/ProtonMail/go-crypto/openpgp"
	rpmutils "github.com/sassoftware/go-rpmutils"

	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
)

// tagVCS is RPMTAG_VCS.
const tagVCS = 5034

// File is one payload entry.
type File struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Size int64  `json:"size"`
	Link string `json:"link,omitempty"`
}

// Summary describes a package.
type Summary struct {
	Path       string   `json:"path"`
	Name       string   `json:"name"`
	Epoch      string   `json:"epoch,omitempty"`
	Version    string   `json:"version"`
	Release    string   `json:"release"`
	Arch       string   `json:"arch"`
	License    string   `json:"license"`
	Summary    string   `json:"summary"`
	Vendor     string   `json:"vendor,omitempty"`
	URL        string   `json:"url,omitempty"`
	VCS        string   `json:"vcs,omitempty"`
	Group      string   `json:"group,omitempty"`
	Compressor string   `json:"compressor"`
	Requires   []string `json:"requires,omitempty"`
	Provides   []string `json:"provides,omitempty"`
	Conflicts  []string `json:"conflicts,omitempty"`
	Obsoletes  []string `json:"obsoletes,omitempty"`
	Files      []File   `json:"files"`
	// Signers lists the key ids of verified signatures. Only filled in by
	// Verify.
	Signers []string `json:"signers,omitempty"`
}

// NEVRA renders name-[epoch:]version-release.arch.
func (s *Summary) NEVRA() string {
	if s.Epoch != "" && s.Epoch != "0" {
		return fmt.Sprintf("%s-%s:%s-%s.%s", s.Name, s.Epoch, s.Version, s.Release, s.Arch)
	}
	return fmt.Sprintf("%s-%s-%s.%s", s.Name, s.Version, s.Release, s.Arch)
}

// Inspect reads the header of the package at path.
func Inspect(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "opening %s", path)
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "reading %s", path)
	}
	hdr := rpm.Header

	nevra, err := hdr.GetNEVRA()
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "reading NEVRA of %s", path)
	}
	s := &Summary{
		Path:       path,
		Name:       nevra.Name,
		Epoch:      nevra.Epoch,
		Version:    nevra.Version,
		Release:    nevra.Release,
		Arch:       nevra.Arch,
		License:    optString(hdr, rpmutils.LICENSE),
		Summary:    optString(hdr, rpmutils.SUMMARY),
		Vendor:     optString(hdr, rpmutils.VENDOR),
		URL:        optString(hdr, rpmutils.URL),
		VCS:        optString(hdr, tagVCS),
		Group:      optString(hdr, rpmutils.GROUP),
		Compressor: optString(hdr, rpmutils.PAYLOADCOMPRESSOR),
		Requires:   optStrings(hdr, rpmutils.REQUIRENAME),
		Provides:   optStrings(hdr, rpmutils.PROVIDENAME),
		Conflicts:  optStrings(hdr, rpmutils.CONFLICTNAME),
		Obsoletes:  optStrings(hdr, rpmutils.OBSOLETENAME),
	}

	files, err := hdr.GetFiles()
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "reading file list of %s", path)
	}
	for _, fi := range files {
		s.Files = append(s.Files, File{
			Path: fi.Name(),
			Mode: fmt.Sprintf("%07o", fi.Mode()),
			Size: fi.Size(),
			Link: fi.Linkname(),
		})
	}
	sort.Slice(s.Files, func(i, j int) bool { return s.Files[i].Path < s.Files[j].Path })
	return s, nil
}

// LoadKeyring reads armored public keys from each path.
func LoadKeyring(paths ...string) (openpgp.EntityList, error) {
	var ring openpgp.EntityList
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errs.Wrap(errs.KindIO, err, "reading key %s", p)
		}
		entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, errs.Wrap(errs.KindSigning, err, "parsing key %s", p)
		}
		ring = append(ring, entities...)
	}
	return ring, nil
}

// Verify checks the signatures of the package at path against keyring and
// returns the issuing key ids.
func Verify(path string, keyring openpgp.EntityList) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "opening %s", path)
	}
	defer f.Close()

	_, sigs, err := rpmutils.Verify(f, keyring)
	if err != nil {
		return nil, errs.Wrap(errs.KindSigning, err, "verifying %s", path)
	}
	if len(sigs) == 0 {
		return nil, errs.New(errs.KindSigning, "%s is not signed", path)
	}

	seen := map[string]bool{}
	var ids []string
	for _, sig := range sigs {
		if sig.KeyId == 0 {
			continue
		}
		id := fmt.Sprintf("%016X", sig.KeyId)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func optString(hdr *rpmutils.RpmHeader, tag int) string {
	if !hdr.HasTag(tag) {
		return ""
	}
	v, err := hdr.GetString(tag)
	if err != nil {
		return ""
	}
	return v
}

func optStrings(hdr *rpmutils.RpmHeader, tag int) []string {
	if !hdr.HasTag(tag) {
		return nil
	}
	v, err := hdr.GetStrings(tag)
	if err != nil {
		return nil
	}
	return v
}
