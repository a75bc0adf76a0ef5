package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inference-sim/fleetsim/sim/fleet"
)

// validateCmd checks a fleet spec without running it.
var validateCmd = &cobra.Command{
	Use:   "validate <fleet.yaml>",
	Short: "Validate a fleet spec",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := fleet.LoadSpec(args[0])
		if err != nil {
			return err
		}
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("invalid fleet spec: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d taxis, %d events expected\n", args[0], len(spec.Taxis), spec.TotalEvents())
		return nil
	},
}
