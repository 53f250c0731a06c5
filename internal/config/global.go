package config

import (
	"os"
	"sync"
)

var (
	globalMu     sync.RWMutex
	globalConfig = DefaultGlobalConfig()
)

// SetGlobal installs the configuration loaded at startup.
func SetGlobal(cfg *GlobalConfig) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if cfg == nil {
		cfg = DefaultGlobalConfig()
	}
	globalConfig = cfg
}

// Global returns the configuration installed by SetGlobal.
func Global() *GlobalConfig {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// CargoCommand returns the cargo executable to run.
func CargoCommand() string { return Global().Toolchain.Cargo }

// RustcCommand returns the rustc executable to run.
func RustcCommand() string { return Global().Toolchain.Rustc }

// ArchPolicy returns the configured architecture policy name.
func ArchPolicy() string { return Global().Target.ArchPolicy }

// KeyPassphrase returns the signing key passphrase from the configured
// environment variable, if set.
func KeyPassphrase() []byte {
	v, ok := os.LookupEnv(Global().Signing.PassphraseEnv)
	if !ok || v == "" {
		return nil
	}
	return []byte(v)
}
