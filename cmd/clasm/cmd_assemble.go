package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"github.com/Deji69/cl-toolchain/config"
	"github.com/Deji69/cl-toolchain/diag"
	"github.com/Deji69/cl-toolchain/emitter"
	"github.com/Deji69/cl-toolchain/parser"
	"github.com/Deji69/cl-toolchain/source"
)

// assembleCmd implements the "assemble" subcommand: parse one source file
// and write its Code and Data sections next to it.
type assembleCmd struct {
	configPath string
}

func (*assembleCmd) Name() string { return "assemble" }

func (*assembleCmd) Synopsis() string { return "Assemble a CLASM source file to bytecode." }

func (*assembleCmd) Usage() string {
	return `assemble [-config file.toml] file.clasm [file.clasm ...]:
  Assemble each source file, writing <name>.code and <name>.data next to it.
`
}

func (c *assembleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "path to an optional TOML config file")
}

func (c *assembleCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	status := subcommands.ExitSuccess
	for _, file := range f.Args() {
		if err := assembleFile(file, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", file, err)
			status = subcommands.ExitFailure
		}
	}
	return status
}

func assembleFile(file string, cfg *config.Config) error {
	content, err := os.ReadFile(file) // #nosec G304 -- user-provided assembly file path
	if err != nil {
		return errors.Wrapf(err, "reading %s", file)
	}

	src, err := source.New(filepath.Base(file), string(content))
	if err != nil {
		return errors.Wrap(err, "invalid source")
	}

	var reporter diag.Reporter = diag.NopReporter{}
	if cfg.Parser.ErrorReporting {
		reporter = diag.NewConsoleReporter(os.Stderr)
	}

	p := parser.NewParserWithOptions(src, reporter, parser.Options{
		TestForceTokenization: cfg.Parser.TestForceTokenization,
	})
	result := p.Parse()
	if !result.OK() && !cfg.Compiler.TestForceCompilation {
		return errors.Errorf("%d error(s), %d warning(s)", result.NumErrors, result.NumWarnings)
	}

	image := emitter.Emit(result.Info)

	base := strings.TrimSuffix(file, filepath.Ext(file))
	if err := os.WriteFile(base+".code", image.Code, 0644); err != nil {
		return errors.Wrap(err, "writing code section")
	}
	if err := os.WriteFile(base+".data", image.Data, 0644); err != nil {
		return errors.Wrap(err, "writing data section")
	}
	return nil
}
