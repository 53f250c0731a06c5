// Package system describes the machine packages are built on.
package system

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/open-edge-platform/rpm-composer/internal/utils/logger"
	"github.com/open-edge-platform/rpm-composer/internal/utils/shell"
)

// OsReleaseFile is read for the distribution name and version.
var OsReleaseFile = "/etc/os-release"

// HostInfo identifies the build host.
type HostInfo struct {
	Name    string
	Version string
	Arch    string
}

func (h HostInfo) String() string {
	s := strings.TrimSpace(h.Name + " " + h.Version)
	if s == "" {
		s = "unknown OS"
	}
	return fmt.Sprintf("%s (%s)", s, h.Arch)
}

// GetHostOsInfo returns the machine architecture from `uname -m` and, when
// available, the distribution from os-release. A missing os-release file
// is not an error.
func GetHostOsInfo(ctx context.Context) (HostInfo, error) {
	log := logger.Logger()
	var info HostInfo

	output, err := shell.ExecCmd(ctx, shell.Command{Name: "uname", Args: []string{"-m"}})
	if err != nil {
		return info, fmt.Errorf("failed to get host architecture: %w", err)
	}
	info.Arch = strings.TrimSpace(output)

	file, err := os.Open(OsReleaseFile)
	if err != nil {
		log.Debugf("no os-release at %s: %v", OsReleaseFile, err)
		return info, nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "\"'")
		switch strings.TrimSpace(key) {
		case "NAME":
			info.Name = value
		case "VERSION_ID":
			info.Version = value
		}
	}
	if err := scanner.Err(); err != nil {
		return info, fmt.Errorf("reading %s: %w", OsReleaseFile, err)
	}
	return info, nil
}
