package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/rpm-composer/internal/config"
	"github.com/open-edge-platform/rpm-composer/internal/target"
	"github.com/open-edge-platform/rpm-composer/internal/utils/logger"
)

// hostDetector is replaced in tests.
var hostDetector = func() target.HostDetector {
	return target.RustcDetector{Rustc: config.RustcCommand()}
}

func createArchCommand() *cobra.Command {
	var triplet, archPolicy string

	cmd := &cobra.Command{
		Use:   "arch [flags]",
		Short: "Print the RPM architecture for the host or a target triplet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if archPolicy == "" {
				archPolicy = config.ArchPolicy()
			}
			policy, err := target.ParsePolicy(archPolicy)
			if err != nil {
				return err
			}
			res, err := target.Resolve(cmd.Context(), triplet, hostDetector())
			if err != nil {
				return err
			}
			if warning, ok := target.CheckOS(res.Triplet); !ok {
				logger.Logger().Warn(warning)
			}
			arch, err := target.MapArch(res.Triplet, policy)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), arch)
			return nil
		},
	}

	cmd.Flags().StringVar(&triplet, "target", "", "Target triplet (default: host)")
	cmd.Flags().StringVar(&archPolicy, "arch-policy", "", "Architecture mapping policy: strict or permissive")
	return cmd
}
