package main

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/adapterhub/internal/client"
	"github.com/GriffinCanCode/adapterhub/internal/infrastructure/config"
	"github.com/GriffinCanCode/adapterhub/internal/infrastructure/logging"
	"github.com/GriffinCanCode/adapterhub/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/adapterhub/internal/pipeline"
	"github.com/GriffinCanCode/adapterhub/internal/registry"
	"github.com/GriffinCanCode/adapterhub/internal/shared/types"
)

// env is what every subcommand works with, built once per invocation
type env struct {
	cfg      *config.Config
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	registry *registry.Registry
	client   *client.Client
	pipeline *pipeline.Orchestrator
}

func newRootCmd() *cobra.Command {
	e := &env{}

	cmd := &cobra.Command{
		Use:           "adapterctl",
		Short:         "adapterctl invokes adapters through the adapter hub",
		Long:          `adapterctl calls extraction, enrichment, notification and logging adapters with retries and circuit breaking, runs them as pipelines, and probes hub health.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return e.close()
		},
	}

	// Persistent flags (available to all commands)
	cmd.PersistentFlags().String("base-url", "", "Adapter hub base URL (overrides ADAPTER_BASE_URL)")
	cmd.PersistentFlags().String("registry", "", "Adapter manifest file, YAML or TOML (overrides ADAPTER_REGISTRY_FILE)")
	cmd.PersistentFlags().String("log-level", "", "Log level (overrides LOG_LEVEL)")
	cmd.PersistentFlags().Bool("dev", false, "Human readable logs")

	cmd.AddCommand(
		newCallCmd(e),
		newBatchCmd(e),
		newBeforeCmd(e),
		newAfterCmd(e),
		newParallelCmd(e),
		newHealthCmd(e),
		newRegistryCmd(e),
	)

	return cmd
}

func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("base-url"); v != "" {
		cfg.Adapter.BaseURL = v
	}
	if v, _ := flags.GetString("registry"); v != "" {
		cfg.Adapter.RegistryFile = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if flags.Changed("dev") {
		cfg.Logging.Development, _ = flags.GetBool("dev")
	}
	e.cfg = cfg

	logger, err := logging.New(cfg.ToLoggingConfig())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	e.logger = logger

	if cfg.Adapter.RegistryFile != "" {
		e.registry, err = registry.LoadFile(cfg.Adapter.RegistryFile)
		if err != nil {
			return err
		}
	} else {
		e.registry = registry.Default()
	}

	e.metrics = monitoring.NewMetrics()

	// Monitoring is started explicitly by the health command
	clientCfg := cfg.ToClientConfig()
	clientCfg.HealthCheck.Enabled = false

	e.client, err = client.New(clientCfg, e.registry,
		client.WithLogger(logger),
		client.WithMetrics(e.metrics))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	e.pipeline = pipeline.New(e.client,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(e.metrics))
	return nil
}

func (e *env) close() error {
	if e.client != nil {
		_ = e.client.Close()
	}
	if e.logger != nil {
		_ = e.logger.Sync()
	}
	return nil
}

// addContextFlags registers the flags that build the adapter context
func addContextFlags(cmd *cobra.Command) {
	cmd.Flags().String("user", "", "User id placed in the context")
	cmd.Flags().String("chat", "", "Chat id placed in the context")
	cmd.Flags().String("context", "", "Context as a JSON object; --user and --chat override its ids")
}

// contextFromFlags builds the adapter context from --context, --user and --chat
func contextFromFlags(cmd *cobra.Command) (types.Context, error) {
	var actx types.Context

	if raw, _ := cmd.Flags().GetString("context"); raw != "" {
		if err := sonic.UnmarshalString(raw, &actx); err != nil {
			return types.Context{}, fmt.Errorf("invalid --context: %w", err)
		}
	}

	overrides := map[string]interface{}{}
	if v, _ := cmd.Flags().GetString("user"); v != "" {
		overrides[types.KeyUserID] = v
	}
	if v, _ := cmd.Flags().GetString("chat"); v != "" {
		overrides[types.KeyChatID] = v
	}
	if len(overrides) > 0 {
		actx = actx.Merge(overrides)
	}

	return actx, nil
}

// inputFromFlags returns --input, or nil when the flag was not given
func inputFromFlags(cmd *cobra.Command) *string {
	if !cmd.Flags().Changed("input") {
		return nil
	}
	v, _ := cmd.Flags().GetString("input")
	return &v
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
