package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/adapterhub/internal/shared/types"
)

func newCallCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <adapter-id>",
		Short: "Invoke one adapter",
		Long:  `Invokes one adapter with retries and circuit breaking and prints its response. Exits non-zero when the adapter reports an error.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actx, err := contextFromFlags(cmd)
			if err != nil {
				return err
			}

			resp, err := e.client.Call(cmd.Context(), args[0], inputFromFlags(cmd), actx)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.OK() {
				return fmt.Errorf("adapter %s failed: %s", args[0], resp.Error)
			}
			return nil
		},
	}

	cmd.Flags().String("input", "", "Adapter input; omitted means null")
	addContextFlags(cmd)
	return cmd
}

func newBatchCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <adapter-id>...",
		Short: "Invoke several adapters concurrently",
		Long:  `Invokes every adapter concurrently with the same input and context. Prints one response per adapter, in argument order.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actx, err := contextFromFlags(cmd)
			if err != nil {
				return err
			}

			results := e.client.BatchCall(cmd.Context(), args, inputFromFlags(cmd), actx)
			return printJSON(cmd.OutOrStdout(), keyed(args, results))
		},
	}

	cmd.Flags().String("input", "", "Adapter input; omitted means null")
	addContextFlags(cmd)
	return cmd
}

type keyedResponse struct {
	AdapterID string `json:"adapterId"`
	types.AdapterResponse
}

func keyed(ids []string, results []types.AdapterResponse) []keyedResponse {
	out := make([]keyedResponse, len(results))
	for i, r := range results {
		out[i] = keyedResponse{AdapterID: ids[i], AdapterResponse: r}
	}
	return out
}
