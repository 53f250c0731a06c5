package asset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/open-edge-platform/rpm-composer/internal/config/validate"
	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
)

func TestParsePerm(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"644", 0o644, false},
		{"0755", 0o755, false},
		{"0o600", 0o600, false},
		{"0O600", 0o600, false},
		{"4755", 0o4755, false},
		{" 4755 ", 0, true},
		{"0o", 0, true},
		{"0o0o7", 0, true},
		{"00644", 0, true},
		{"888", 0, true},
		{"", 0, true},
		{"100644", 0, true},
		{"rw-r--r--", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePerm(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParsePerm(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParsePerm(%q) = %o, want %o", tt.in, got, tt.want)
		}
	}
}

func TestParsePermMatchesMetadataSchema(t *testing.T) {
	for _, perm := range []string{"644", "0755", "0o600", "0O600", "7", "4755", " 644", "644 ", "0o", "0o0o7", "00644", "0x1ff", "-644", "888"} {
		doc, err := json.Marshal(map[string]any{"assets": [][]string{{"src", "/dst", perm}}})
		if err != nil {
			t.Fatal(err)
		}
		_, parseErr := ParsePerm(perm)
		schemaErr := validate.ValidateRPMMetadataJSON(doc)
		if (parseErr == nil) != (schemaErr == nil) {
			t.Errorf("%q: ParsePerm error = %v, schema error = %v", perm, parseErr, schemaErr)
		}
	}
}

func TestModeRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.conf")
	if err := os.WriteFile(path, []byte("key = value\n"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := Mode(path, "644")
	if err != nil {
		t.Fatalf("Mode failed: %v", err)
	}
	if got != 0o100644 {
		t.Errorf("Mode = %o, want 100644", got)
	}
}

func TestModeDirectory(t *testing.T) {
	got, err := Mode(t.TempDir(), "755")
	if err != nil {
		t.Fatalf("Mode failed: %v", err)
	}
	if got != 0o040755 {
		t.Errorf("Mode = %o, want 40755", got)
	}
}

func TestModeSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	if err := os.WriteFile(target, nil, 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	got, err := Mode(link, "777")
	if err != nil {
		t.Fatalf("Mode failed: %v", err)
	}
	if got != 0o120000|0o777 {
		t.Errorf("Mode = %o, want 120777", got)
	}
}

func TestModeNamedPipe(t *testing.T) {
	fifo := filepath.Join(t.TempDir(), "pipe")
	if err := syscall.Mkfifo(fifo, 0644); err != nil {
		t.Skipf("mkfifo unsupported: %v", err)
	}
	_, err := Mode(fifo, "644")
	if errs.KindOf(err) != errs.KindInvalidFileType {
		t.Fatalf("expected invalid file type, got %v", err)
	}
}

func TestModeMissingSource(t *testing.T) {
	_, err := Mode(filepath.Join(t.TempDir(), "missing"), "644")
	if errs.KindOf(err) != errs.KindIO {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "unit.service")
	if err := os.WriteFile(file, []byte("[Unit]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "unit.link")
	if err := os.Symlink("unit.service", link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	e, err := Load(file, "/usr/lib/systemd/system/demo.service", "644")
	if err != nil {
		t.Fatalf("Load file failed: %v", err)
	}
	if string(e.Body) != "[Unit]\n" || e.IsDir() || e.IsSymlink() {
		t.Errorf("unexpected file entry %+v", e)
	}

	e, err = Load(link, "/etc/demo.service", "777")
	if err != nil {
		t.Fatalf("Load link failed: %v", err)
	}
	if string(e.Body) != "unit.service" || !e.IsSymlink() {
		t.Errorf("unexpected link entry %+v", e)
	}

	e, err = Load(dir, "/usr/share/demo", "755")
	if err != nil {
		t.Fatalf("Load dir failed: %v", err)
	}
	if !e.IsDir() || len(e.Body) != 0 {
		t.Errorf("unexpected dir entry %+v", e)
	}
}

func TestLoadTracksModTime(t *testing.T) {
	file := filepath.Join(t.TempDir(), "demo.toml")
	if err := os.WriteFile(file, []byte("port = 8080\n"), 0600); err != nil {
		t.Fatal(err)
	}
	mtime := time.Unix(1700000000, 0)
	if err := os.Chtimes(file, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	e, err := Load(file, "/etc/demo/demo.toml", "0o644")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if e.MTime != 1700000000 || e.Mode != TypeRegular|0o644 {
		t.Errorf("unexpected entry mode %o mtime %d", e.Mode, e.MTime)
	}
}

func TestLoadDanglingSymlink(t *testing.T) {
	link := filepath.Join(t.TempDir(), "current")
	if err := os.Symlink("missing-target", link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	e, err := Load(link, "/usr/bin/current", "777")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !e.IsSymlink() || string(e.Body) != "missing-target" {
		t.Errorf("unexpected link entry %+v", e)
	}
}
