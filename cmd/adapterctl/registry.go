package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/adapterhub/internal/shared/types"
)

func newRegistryCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the adapter registry",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered adapters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *types.AdapterType
			if v, _ := cmd.Flags().GetString("type"); v != "" {
				t := types.AdapterType(v)
				if !t.Valid() {
					return fmt.Errorf("unknown adapter type %q", v)
				}
				filter = &t
			}
			return printJSON(cmd.OutOrStdout(), e.registry.List(filter))
		},
	}
	list.Flags().String("type", "", "Only adapters of this type (extraction, enrichment, notification, logging)")

	cmd.AddCommand(list)
	return cmd
}
