package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
	"github.com/open-edge-platform/rpm-composer/internal/utils/shell"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/metadata.json")
	require.NoError(t, err)
	return data
}

func TestParse(t *testing.T) {
	m, err := Parse(loadFixture(t))
	require.NoError(t, err)

	assert.Equal(t, "/ws", m.WorkspaceRoot)
	require.Len(t, m.Packages, 3)

	cli := m.Packages[0]
	assert.Equal(t, "demo-cli", cli.Name)
	require.NotNil(t, cli.License)
	assert.Equal(t, "Apache-2.0", *cli.License)
	assert.Equal(t, []string{"Ada Lovelace <ada@example.com>", "Grace Hopper"}, cli.Authors)
	require.NotNil(t, cli.Homepage)
	require.NotNil(t, cli.Repository)

	opts := cli.Options()
	require.NotNil(t, opts)
	assert.Equal(t, "zstd", opts.Compression)
	assert.Equal(t, "keys/release.asc", opts.SigningKey)
	assert.Equal(t, []string{"openssl-libs"}, opts.Dependencies)
	assert.Equal(t, []string{"demo-legacy"}, opts.Conflicts)
	assert.Equal(t, []Asset{{Source: "demo-cli/conf/demo.toml", Dest: "/etc/demo/demo.toml", Mode: "644"}}, opts.Assets)
	assert.Equal(t, "systemctl daemon-reload", opts.PostInstall)
	assert.Empty(t, opts.PreInstall)

	assert.Nil(t, m.Packages[1].Options())
	assert.Nil(t, m.Packages[2].License)
}

func TestMembers(t *testing.T) {
	m, err := Parse(loadFixture(t))
	require.NoError(t, err)

	names := func(ps []*Package) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Equal(t, []string{"demo-cli", "demo-daemon"}, names(m.Members("")))
	assert.Equal(t, []string{"demo-daemon"}, names(m.Members("demo-daemon")))
	assert.Empty(t, m.Members("demo-core"), "library-only members are not eligible")
	assert.Empty(t, m.Members("missing"))
	assert.True(t, m.Has("demo-core"))
	assert.False(t, m.Has("missing"))
}

func TestBinTargets(t *testing.T) {
	p := Package{Targets: []Target{
		{Name: "demo", Kind: []string{"bin"}},
		{Name: "demo", Kind: []string{"lib", "rlib"}},
		{Name: "bench", Kind: []string{"bench"}},
		{Name: "tool", Kind: []string{"bin"}},
	}}
	bins := p.BinTargets()
	require.Len(t, bins, 2)
	assert.Equal(t, "demo", bins[0].Name)
	assert.Equal(t, "tool", bins[1].Name)
	assert.True(t, p.Eligible())
	assert.False(t, (&Package{}).Eligible())
}

func TestCrateDir(t *testing.T) {
	p := &Package{ManifestPath: "/ws/member/Cargo.toml"}
	assert.Equal(t, "/ws", (&Manifest{WorkspaceRoot: "/ws"}).CrateDir(p))
	assert.Equal(t, "/ws/member", (&Manifest{}).CrateDir(p))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		member string
	}{
		{"not json", `not json`, ""},
		{"wrong shape", `{"packages": {"name": "x"}}`, ""},
		{"missing version", `{"packages": [{"name": "x", "manifest_path": "/x/Cargo.toml"}]}`, ""},
		{"bad rpm metadata", `{"packages": [{"name": "x", "version": "1", "manifest_path": "/x/Cargo.toml",
			"metadata": {"rpm": {"assets": [["only-two", "/fields"]]}}}]}`, "x"},
		{"bad compression", `{"packages": [{"name": "y", "version": "1", "manifest_path": "/y/Cargo.toml",
			"metadata": {"rpm": {"compression": "bzip3"}}}]}`, "y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Equal(t, errs.KindManifest, errs.KindOf(err))
			if tt.member != "" {
				var e *errs.Error
				require.True(t, errors.As(err, &e))
				assert.Equal(t, tt.member, e.Member)
			}
		})
	}
}

func TestAssetJSON(t *testing.T) {
	var a Asset
	require.NoError(t, json.Unmarshal([]byte(`["src", "/dst", "0755"]`), &a))
	assert.Equal(t, Asset{Source: "src", Dest: "/dst", Mode: "0755"}, a)

	assert.Error(t, json.Unmarshal([]byte(`["src", "/dst"]`), &a))
	assert.Error(t, json.Unmarshal([]byte(`{"source": "src"}`), &a))
}

func TestValidCompression(t *testing.T) {
	for _, name := range []string{"none", "gzip", "zstd", "xz", "lzma"} {
		assert.True(t, ValidCompression(name), name)
	}
	assert.False(t, ValidCompression("GZIP"))
	assert.False(t, ValidCompression("bzip2"))
	assert.False(t, ValidCompression(""))
}

func TestRead(t *testing.T) {
	originalExecCmd := shell.ExecCmd
	defer func() { shell.ExecCmd = originalExecCmd }()

	fixture := loadFixture(t)
	var got shell.Command
	shell.ExecCmd = func(_ context.Context, c shell.Command) (string, error) {
		got = c
		return string(fixture), nil
	}

	m, err := Read(context.Background(), ReadOptions{Cargo: "/usr/local/bin/cargo", Dir: "/ws"})
	require.NoError(t, err)
	assert.Len(t, m.Packages, 3)
	assert.Equal(t, "/usr/local/bin/cargo", got.Name)
	assert.Equal(t, "/ws", got.Dir)
	assert.Equal(t, "metadata --no-deps --format-version 1", strings.Join(got.Args, " "))
	assert.Equal(t, "3 packages (3 workspace members), 2 with binaries", m.Summary())
	assert.Equal(t, []string{"demo-cli 0.3.1", "demo-core 0.3.1", "demo-daemon 1.0.0"}, m.WorkspaceMembers)
}

func TestReadCommandFailure(t *testing.T) {
	originalExecCmd := shell.ExecCmd
	defer func() { shell.ExecCmd = originalExecCmd }()

	shell.ExecCmd = func(context.Context, shell.Command) (string, error) {
		return "", errors.New("could not find Cargo.toml")
	}
	_, err := Read(context.Background(), ReadOptions{})
	require.Error(t, err)
	assert.Equal(t, errs.KindManifest, errs.KindOf(err))
	assert.Contains(t, err.Error(), "could not find Cargo.toml")
}

func TestReadMissingCargo(t *testing.T) {
	originalExecCmd := shell.ExecCmd
	defer func() { shell.ExecCmd = originalExecCmd }()

	shell.ExecCmd = func(context.Context, shell.Command) (string, error) {
		return "", errors.New("executable file not found in $PATH")
	}
	_, err := Read(context.Background(), ReadOptions{Cargo: "rpm-composer-no-such-cargo"})
	require.Error(t, err)
	assert.Equal(t, errs.KindManifest, errs.KindOf(err))
	assert.Contains(t, err.Error(), "rpm-composer-no-such-cargo not found")
}

func TestSummaryWithoutWorkspaceMembers(t *testing.T) {
	m := &Manifest{Packages: []Package{{Name: "solo", Version: "1.0.0", Targets: []Target{{Name: "solo", Kind: []string{"bin"}}}}}}
	assert.Equal(t, "1 packages, 1 with binaries", m.Summary())
}
