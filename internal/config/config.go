package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/open-edge-platform/rpm-composer/internal/config/validate"
	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
	"gopkg.in/yaml.v3"
	k8syaml "sigs.k8s.io/yaml"
)

const (
	// DefaultConfigFile is looked up in the working directory.
	DefaultConfigFile = "rpm-composer.yml"
	// xdgConfigFile is looked up under the XDG config directories.
	xdgConfigFile = "rpm-composer/config.yml"

	DefaultPassphraseEnv = "RPM_COMPOSER_KEY_PASSPHRASE"
)

// GlobalConfig is the tool configuration shared by all commands.
type GlobalConfig struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Toolchain ToolchainConfig `yaml:"toolchain"`
	Target    TargetConfig    `yaml:"target"`
	Signing   SigningConfig   `yaml:"signing"`
}

// LoggingConfig controls the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ToolchainConfig names the workspace build tools.
type ToolchainConfig struct {
	Cargo string `yaml:"cargo"`
	Rustc string `yaml:"rustc"`
}

// TargetConfig controls architecture mapping.
type TargetConfig struct {
	ArchPolicy string `yaml:"archPolicy"`
}

// SigningConfig controls how signing keys are unlocked.
type SigningConfig struct {
	PassphraseEnv string `yaml:"passphraseEnv"`
}

// DefaultGlobalConfig returns the configuration used when no file exists.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Logging:   LoggingConfig{Level: "info"},
		Toolchain: ToolchainConfig{Cargo: "cargo", Rustc: "rustc"},
		Target:    TargetConfig{ArchPolicy: "permissive"},
		Signing:   SigningConfig{PassphraseEnv: DefaultPassphraseEnv},
	}
}

// FindConfigFile returns the config file to load: explicit if set,
// otherwise ./rpm-composer.yml, otherwise the XDG config file. An empty
// result means no file was found and defaults apply.
func FindConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errs.Wrap(errs.KindConfig, err, "config file %s", explicit)
		}
		return explicit, nil
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile, nil
	}
	if path, err := xdg.SearchConfigFile(xdgConfigFile); err == nil {
		return path, nil
	}
	return "", nil
}

// Load reads the config at path. An empty path returns the defaults.
func Load(path string) (*GlobalConfig, error) {
	if path == "" {
		return DefaultGlobalConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.KindConfig, err, "config file %s", path)
		}
		return nil, errs.Wrap(errs.KindIO, err, "reading config file %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, err, "config file %s", filepath.Clean(path))
	}
	return cfg, nil
}

// Parse decodes YAML config data on top of the defaults after validating
// it against the config schema.
func Parse(data []byte) (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()
	if len(data) == 0 {
		return cfg, nil
	}

	jsonData, err := k8syaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if string(jsonData) != "null" {
		if err := validate.ValidateConfigJSON(jsonData); err != nil {
			return nil, err
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *GlobalConfig) applyDefaults() {
	def := DefaultGlobalConfig()
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Toolchain.Cargo == "" {
		c.Toolchain.Cargo = def.Toolchain.Cargo
	}
	if c.Toolchain.Rustc == "" {
		c.Toolchain.Rustc = def.Toolchain.Rustc
	}
	if c.Target.ArchPolicy == "" {
		c.Target.ArchPolicy = def.Target.ArchPolicy
	}
	if c.Signing.PassphraseEnv == "" {
		c.Signing.PassphraseEnv = def.Signing.PassphraseEnv
	}
}
