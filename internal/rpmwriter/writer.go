// Package rpmwriter serializes an assembled rpmspec.Spec into an RPM file,
// optionally signed.
package rpmwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/rpmpack"
	"github.com/open-edge-platform/rpm-composer/internal/rpmspec"
	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
	"github.com/open-edge-platform/rpm-composer/internal/utils/logger"
	"github.com/open-edge-platform/rpm-composer/internal/workspace"
)

// tagVCS is RPMTAG_VCS, which rpmpack has no field for.
const tagVCS = 5034

// Options tune how packages are written.
type Options struct {
	// Passphrase unlocks encrypted signing keys.
	Passphrase []byte
	// BuildTime is stamped into the header; zero means SOURCE_DATE_EPOCH
	// when set, otherwise the current time.
	BuildTime time.Time
	// BuildHost is stamped into the header; empty means the local
	// hostname, or nothing when SOURCE_DATE_EPOCH is set.
	BuildHost string
}

// Write serializes spec to spec.OutputPath(), creating or truncating it.
func Write(spec *rpmspec.Spec, opts Options) error {
	log := logger.Logger()

	r, err := NewRPM(spec, opts)
	if err != nil {
		return err
	}

	if spec.Signed() {
		signer, err := LoadSigner(spec.SigningKey, opts.Passphrase)
		if err != nil {
			return err
		}
		r.SetPGPSigner(signer)
	}

	path := spec.OutputPath()
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.KindIO, err, "creating %s", path)
	}
	if err := write(r, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(errs.KindIO, err, "closing %s", path)
	}

	log.Infof("wrote %s (signed=%t)", path, spec.Signed())
	return nil
}

func write(r *rpmpack.RPM, w io.Writer) error {
	if err := r.Write(w); err != nil {
		if errs.KindOf(err) == errs.KindSigning {
			return err
		}
		return errs.Wrap(errs.KindIO, err, "writing package")
	}
	return nil
}

// NewRPM maps spec onto an unsigned rpmpack package.
func NewRPM(spec *rpmspec.Spec, opts Options) (*rpmpack.RPM, error) {
	md := rpmpack.RPMMetaData{
		Name:        spec.Name,
		Version:     spec.Version,
		Release:     spec.Release,
		Arch:        spec.Arch,
		OS:          "linux",
		Summary:     spec.Summary,
		Description: spec.Description,
		Licence:     spec.License,
		Vendor:      spec.Vendor,
		URL:         spec.URL,
		Group:       spec.Group,
		Compressor:  CompressorSetting(spec.Compression),
		BuildTime:   buildTime(opts.BuildTime),
		BuildHost:   buildHost(opts.BuildHost),
	}

	var err error
	if md.Requires, err = relations(spec.Requires); err != nil {
		return nil, err
	}
	if md.Conflicts, err = relations(spec.Conflicts); err != nil {
		return nil, err
	}
	if md.Provides, err = relations(spec.Provides); err != nil {
		return nil, err
	}
	if md.Obsoletes, err = relations(spec.Obsoletes); err != nil {
		return nil, err
	}

	r, err := rpmpack.NewRPM(md)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "creating package")
	}

	if spec.VCS != "" {
		r.AddCustomTag(tagVCS, rpmpack.EntryString(spec.VCS))
	}
	if s := spec.Scripts.PreInstall; s != "" {
		r.AddPrein(s)
	}
	if s := spec.Scripts.PostInstall; s != "" {
		r.AddPostin(s)
	}
	if s := spec.Scripts.PreUninstall; s != "" {
		r.AddPreun(s)
	}
	if s := spec.Scripts.PostUninstall; s != "" {
		r.AddPostun(s)
	}

	for _, e := range spec.Files {
		f := rpmpack.RPMFile{
			Name:  e.Dest,
			Body:  e.Body,
			Mode:  uint(e.Mode),
			Owner: "root",
			Group: "root",
			MTime: e.MTime,
		}
		if strings.HasPrefix(e.Dest, "/etc/") && !e.IsDir() && !e.IsSymlink() {
			f.Type = rpmpack.ConfigFile | rpmpack.NoReplaceFile
		}
		r.AddFile(f)
	}
	return r, nil
}

// CompressorSetting maps a compression choice to rpmpack's compressor
// string. "none" is an uncompressed gzip stream, since RPM readers expect
// a payload compressor name.
func CompressorSetting(c rpmspec.Compression) string {
	if c.Name == workspace.CompressionNone {
		return "gzip:0"
	}
	return c.String()
}

func relations(names []string) (rpmpack.Relations, error) {
	var rels rpmpack.Relations
	for _, n := range names {
		if err := rels.Set(n); err != nil {
			return nil, errs.Wrap(errs.KindManifest, err, "invalid relation %q", n)
		}
	}
	return rels, nil
}

func buildTime(t time.Time) time.Time {
	if !t.IsZero() {
		return t
	}
	if epoch := os.Getenv("SOURCE_DATE_EPOCH"); epoch != "" {
		if secs, err := strconv.ParseInt(epoch, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC()
		}
	}
	return time.Now().UTC()
}

func buildHost(host string) string {
	if host != "" {
		return host
	}
	if os.Getenv("SOURCE_DATE_EPOCH") != "" {
		return ""
	}
	host, _ = os.Hostname()
	return host
}

// Describe returns a one line summary of what Write will produce.
func Describe(spec *rpmspec.Spec) string {
	signed := "unsigned"
	if spec.Signed() {
		signed = "signed"
	}
	return fmt.Sprintf("%s (%d files, %s, %s)", spec.FileName(), len(spec.Files), spec.Compression.Describe(), signed)
}
