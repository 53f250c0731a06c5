package validate

import (
	"strings"
	"testing"
)

func TestValidateRPMMetadataJSON(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"empty", `{}`, ""},
		{"full", `{
			"compression": "zstd:19",
			"signing_key": "keys/release.asc",
			"dependencies": ["openssl-libs", "glibc >= 2.28"],
			"conflicts": ["demo-legacy"],
			"assets": [["conf/demo.toml", "/etc/demo/demo.toml", "644"], ["share", "/usr/share/demo", "0755"]],
			"preinstall": "getent group demo || groupadd -r demo",
			"postuninstall": "rm -rf /var/lib/demo"
		}`, ""},
		{"unknown compression", `{"compression": "bzip3"}`, "compression"},
		{"asset with two fields", `{"assets": [["a", "/b"]]}`, "assets"},
		{"asset relative destination", `{"assets": [["a", "etc/b", "644"]]}`, "assets"},
		{"asset bad mode", `{"assets": [["a", "/b", "rw-r--r--"]]}`, "assets"},
		{"asset upper case mode prefix", `{"assets": [["a", "/b", "0O644"]]}`, ""},
		{"asset padded mode", `{"assets": [["a", "/b", " 644"]]}`, "assets"},
		{"upper case compression", `{"compression": "GZIP"}`, "compression"},
		{"dependencies not strings", `{"dependencies": [1]}`, "dependencies"},
		{"not an object", `[]`, "expected object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRPMMetadataJSON([]byte(tt.data))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfigJSON(t *testing.T) {
	if err := ValidateConfigJSON([]byte(`{"logging": {"level": "debug"}, "target": {"archPolicy": "strict"}}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateConfigJSON([]byte(`{"target": {"archPolicy": "loose"}}`)); err == nil {
		t.Error("expected error for unknown arch policy")
	}
	if err := ValidateConfigJSON([]byte(`{"workers": 4}`)); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestValidateAgainstSchemaInvalidJSON(t *testing.T) {
	err := ValidateAgainstSchema("basic.json", []byte(`{"type": "object"}`), []byte(`not json`), "")
	if err == nil || !strings.Contains(err.Error(), "invalid JSON") {
		t.Fatalf("expected invalid JSON error, got %v", err)
	}
}

func TestValidateAgainstSchemaRef(t *testing.T) {
	if err := ValidateAgainstSchema("rpm-metadata.json", rpmMetadataSchema, []byte(`["src", "/dst", "644"]`), "#/definitions/asset"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
