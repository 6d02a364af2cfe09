// Package config loads CLASM's parser/compiler options from an optional
// TOML file: defaults first, then an on-disk file overlaid on top of them
// if one exists.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config groups the toolchain's options: ParserOptions control diagnostic
// behaviour and the lexer/parser's test-only forcing hooks;
// CompilerOptions hold the compile step's test-only forcing hook and its
// presentation settings.
type Config struct {
	Parser   ParserOptions   `toml:"parser"`
	Compiler CompilerOptions `toml:"compiler"`
}

// ParserOptions controls how the parser reports diagnostics and exposes a
// test-only hook that suppresses ExpectedToken errors during classification,
// for lexer-only assertions in tests.
type ParserOptions struct {
	ErrorReporting        bool `toml:"error_reporting"`
	TestForceTokenization bool `toml:"test_force_tokenization"`
}

// CompilerOptions holds a test-only hook (analogous to the parser's) that
// forces compilation to proceed past reported errors, which the CLI driver
// honours. ErrorReporting, ColorOutput and NumberFormat are loaded and
// defaulted here, but neither the emitter nor the diagnostic renderer
// reads them.
type CompilerOptions struct {
	ErrorReporting       bool   `toml:"error_reporting"`
	TestForceCompilation bool   `toml:"test_force_compilation"`
	ColorOutput          bool   `toml:"color_output"`
	NumberFormat         string `toml:"number_format"` // hex, dec, both
}

// DefaultConfig returns a Config with CLASM's built-in defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Parser.ErrorReporting = true
	cfg.Compiler.ErrorReporting = true
	cfg.Compiler.ColorOutput = true
	cfg.Compiler.NumberFormat = "hex"
	return cfg
}

// Load loads configuration from path, returning defaults if path doesn't
// exist. An empty path skips file loading entirely.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "config: failed to parse %s", path)
	}
	return cfg, nil
}
