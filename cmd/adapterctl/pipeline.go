package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBeforeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "before <adapter-id>...",
		Short: "Run a before-LLM pipeline",
		Long:  `Runs adapters in order, chaining each output into the next input and merging data into the context. Prints the final prompt and context.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actx, err := contextFromFlags(cmd)
			if err != nil {
				return err
			}
			input, _ := cmd.Flags().GetString("input")

			res, err := e.pipeline.RunBeforeLLM(cmd.Context(), input, args, actx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().String("input", "", "Initial prompt")
	addContextFlags(cmd)
	return cmd
}

func newAfterCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "after <adapter-id>...",
		Short: "Run an after-LLM pipeline",
		Long:  `Runs adapters in order for their side effects, merging data into the context between steps.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actx, err := contextFromFlags(cmd)
			if err != nil {
				return err
			}
			if err := e.pipeline.RunAfterLLM(cmd.Context(), actx, args); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}

	addContextFlags(cmd)
	return cmd
}

func newParallelCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parallel <adapter-id>...",
		Short: "Fan out one input to several adapters",
		Long:  `Runs every adapter concurrently with the same input. Results keep argument order and are not merged.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actx, err := contextFromFlags(cmd)
			if err != nil {
				return err
			}
			input, _ := cmd.Flags().GetString("input")

			results := e.pipeline.RunParallelContext(cmd.Context(), input, args, actx)
			return printJSON(cmd.OutOrStdout(), keyed(args, results))
		},
	}

	cmd.Flags().String("input", "", "Input sent to every adapter")
	addContextFlags(cmd)
	return cmd
}
