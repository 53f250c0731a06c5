package rpmspec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
	"github.com/open-edge-platform/rpm-composer/internal/workspace"
)

// Compression is a payload compressor with an optional level.
type Compression struct {
	Name  string
	Level int // 0 means the compressor default, except for gzip where HasLevel distinguishes it
	// HasLevel is set when the level was given explicitly.
	HasLevel bool
}

var levelRanges = map[string][2]int{
	workspace.CompressionGzip: {0, 9},
	workspace.CompressionZstd: {1, 22},
}

// ParseCompression parses "name" or "name:level". Names are lower case,
// as the metadata schema requires.
func ParseCompression(s string) (Compression, error) {
	name, levelStr, hasLevel := strings.Cut(s, ":")
	if !workspace.ValidCompression(name) {
		return Compression{}, errs.New(errs.KindConfig, "unknown compression %q (expected none, gzip, zstd, xz or lzma)", s)
	}
	c := Compression{Name: name}
	if !hasLevel {
		return c, nil
	}

	bounds, ok := levelRanges[name]
	if !ok {
		return Compression{}, errs.New(errs.KindConfig, "compression %s does not take a level", name)
	}
	level, err := strconv.Atoi(levelStr)
	if err != nil || level < bounds[0] || level > bounds[1] {
		return Compression{}, errs.New(errs.KindConfig, "invalid %s level %q (expected %d-%d)", name, levelStr, bounds[0], bounds[1])
	}
	c.Level, c.HasLevel = level, true
	return c, nil
}

// String renders the setting in the form ParseCompression accepts.
func (c Compression) String() string {
	if c.HasLevel {
		return fmt.Sprintf("%s:%d", c.Name, c.Level)
	}
	return c.Name
}

// Describe is a human readable form for logs.
func (c Compression) Describe() string {
	switch {
	case c.Name == workspace.CompressionZstd && c.HasLevel:
		return fmt.Sprintf("zstd level %d (%s)", c.Level, zstd.EncoderLevelFromZstd(c.Level))
	case c.Name == workspace.CompressionZstd:
		// rpmpack's level when none is given.
		return fmt.Sprintf("zstd (%s)", zstd.SpeedBetterCompression)
	case c.HasLevel:
		return fmt.Sprintf("%s level %d", c.Name, c.Level)
	default:
		return c.Name
	}
}

// ResolveCompression picks the compressor: the command line wins over the
// member's declared option, which wins over gzip.
func ResolveCompression(cli string, declared *workspace.Options) (Compression, error) {
	if cli != "" {
		return ParseCompression(cli)
	}
	if declared != nil && declared.Compression != "" {
		return ParseCompression(declared.Compression)
	}
	return Compression{Name: workspace.DefaultCompression}, nil
}
