package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/open-edge-platform/rpm-composer/internal/config"
	"github.com/open-edge-platform/rpm-composer/internal/packer"
	"github.com/open-edge-platform/rpm-composer/internal/rpmspec"
	"github.com/open-edge-platform/rpm-composer/internal/target"
	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
)

type packFlags struct {
	compression compressionFlag
	pkg         string
	target      string
	signingKey  string
	archPolicy  string
	buildHost   string
}

func createPackCommand() *cobra.Command {
	var flags packFlags

	cmd := &cobra.Command{
		Use:   "pack [flags] [-- BUILD-ARGS...]",
		Short: "Build the workspace and package each binary member as an RPM",
		Long: `Pack runs "cargo build --release" for the workspace, then writes
<crate_dir>/target/<triplet>/rpm/<name>-<version>.<arch>.rpm for every member
with binary targets. Arguments after -- are passed to cargo build as-is.`,
		Example: `  rpm-composer pack
  rpm-composer pack -p demo --compression zstd:19
  rpm-composer pack --target aarch64-unknown-linux-gnu -k keys/release.asc
  rpm-composer pack -- --features vendored`,
		RunE: func(cmd *cobra.Command, args []string) error {
			buildArgs, err := splitBuildArgs(cmd, args)
			if err != nil {
				return err
			}
			return executePack(cmd, flags, buildArgs)
		},
	}

	cmd.Flags().Var(&flags.compression, "compression",
		"Payload compression: none, gzip, zstd, xz or lzma, optionally with :level (default: member setting, then gzip)")
	cmd.Flags().StringVarP(&flags.pkg, "package", "p", "", "Only build and package this workspace member")
	cmd.Flags().StringVar(&flags.target, "target", "", "Target triplet to build for (default: host)")
	cmd.Flags().StringVarP(&flags.signingKey, "signing-key", "k", "", "Armored private key to sign packages with")
	cmd.Flags().StringVar(&flags.archPolicy, "arch-policy", "",
		"Architecture mapping policy: strict or permissive (default from config)")
	cmd.Flags().StringVar(&flags.buildHost, "build-host", "",
		"Build host recorded in packages (default: hostname, empty when SOURCE_DATE_EPOCH is set)")
	return cmd
}

// splitBuildArgs returns the arguments after "--". Anything before it is
// rejected since pack takes no positional arguments.
func splitBuildArgs(cmd *cobra.Command, args []string) ([]string, error) {
	dash := cmd.ArgsLenAtDash()
	if dash == -1 {
		if len(args) > 0 {
			return nil, errs.New(errs.KindConfig, "unexpected arguments %q (build arguments go after --)", args)
		}
		return nil, nil
	}
	if dash > 0 {
		return nil, errs.New(errs.KindConfig, "unexpected arguments %q before --", args[:dash])
	}
	return args[dash:], nil
}

func executePack(cmd *cobra.Command, flags packFlags, buildArgs []string) error {
	policyName := flags.archPolicy
	if policyName == "" {
		policyName = config.ArchPolicy()
	}
	policy, err := target.ParsePolicy(policyName)
	if err != nil {
		return err
	}

	opts := packer.Options{
		Cargo:       config.CargoCommand(),
		Rustc:       config.RustcCommand(),
		Target:      flags.target,
		Package:     flags.pkg,
		Compression: flags.compression.String(),
		SigningKey:  flags.signingKey,
		ArchPolicy:  policy,
		Passphrase:  config.KeyPassphrase(),
		BuildArgs:   buildArgs,
		BuildHost:   flags.buildHost,
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		opts.Progress = os.Stderr
	}

	artifacts, err := packer.Run(cmd.Context(), opts)
	for _, a := range artifacts {
		fmt.Fprintln(cmd.OutOrStdout(), a.Path)
	}
	return err
}

// compressionFlag rejects unknown compressors while flags are parsed.
type compressionFlag struct {
	value string
}

var _ pflag.Value = (*compressionFlag)(nil)

func (f *compressionFlag) String() string { return f.value }

func (f *compressionFlag) Set(s string) error {
	if _, err := rpmspec.ParseCompression(s); err != nil {
		return err
	}
	f.value = s
	return nil
}

func (f *compressionFlag) Type() string { return "compression" }
