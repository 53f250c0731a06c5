package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/rpm-composer/internal/rpminspect"
	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
)

func createInspectCommand() *cobra.Command {
	var (
		keys   []string
		format string
	)

	cmd := &cobra.Command{
		Use:   "inspect [flags] FILE.rpm...",
		Short: "Show the header and file list of RPM files",
		Long: `Inspect prints the identity, relations, payload compressor and file
list of each package. With --key, the package signature is verified as well
and a package that does not verify is an error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeInspect(cmd, args, keys, format)
		},
	}

	cmd.Flags().StringArrayVar(&keys, "key", nil, "Armored public key to verify signatures with (repeatable)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func executeInspect(cmd *cobra.Command, paths, keys []string, format string) error {
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return errs.New(errs.KindConfig, "invalid --format %q (expected text|json)", format)
	}

	ring, err := rpminspect.LoadKeyring(keys...)
	if err != nil {
		return err
	}
	verify := len(ring) > 0

	summaries := make([]*rpminspect.Summary, 0, len(paths))
	for _, p := range paths {
		s, err := rpminspect.Inspect(p)
		if err != nil {
			return err
		}
		if verify {
			if s.Signers, err = rpminspect.Verify(p, ring); err != nil {
				return err
			}
		}
		summaries = append(summaries, s)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return rpminspect.RenderJSON(out, summaries)
	}
	for i, s := range summaries {
		if i > 0 {
			if _, err := out.Write([]byte("\n")); err != nil {
				return err
			}
		}
		if err := rpminspect.RenderText(out, s); err != nil {
			return err
		}
	}
	return nil
}
