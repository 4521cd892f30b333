package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/storesim/internal/config"
	"github.com/roach88/storesim/internal/engine"
	"github.com/roach88/storesim/internal/report"
	"github.com/roach88/storesim/internal/store"
	"github.com/roach88/storesim/internal/telemetry"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath string
	Preset     string
	Customers  int
	Employees  int
	Books      int
	Steps      int
	Seed       int64
	Database   string
	Export     string
	Delay      time.Duration

	// Now stamps saved runs. If nil, defaults to time.Now.
	Now func() time.Time
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Long: `Run a bookstore simulation and print its report.

Settings come from the defaults, then --config, then STORESIM_* environment
variables, then flags. Passing any count flag switches the preset to custom.
With --db the run is saved and can be replayed later.

Example:
  storesim run --preset quick --seed 42
  storesim run --customers 10 --employees 3 --books 15 --steps 100
  storesim run --config ./sim.yaml --db ./runs.db --export report.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVar(&opts.Preset, "preset", "", "size preset (quick|standard|full|custom)")
	cmd.Flags().IntVar(&opts.Customers, "customers", 0, "number of customers (implies --preset custom)")
	cmd.Flags().IntVar(&opts.Employees, "employees", 0, "number of employees (implies --preset custom)")
	cmd.Flags().IntVar(&opts.Books, "books", 0, "number of books (implies --preset custom)")
	cmd.Flags().IntVar(&opts.Steps, "steps", 0, "number of steps (implies --preset custom)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 picks a time-based seed)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database to save the run")
	cmd.Flags().StringVar(&opts.Export, "export", "", "write the JSON report to this file")
	cmd.Flags().DurationVar(&opts.Delay, "delay", 0, "minimum time between steps")

	return cmd
}

func runSimulation(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := resolveConfig(opts, cmd.Flags())
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose, cfg.LogLevel())

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up telemetry", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	sim, err := engine.Initialize(cfg.Params(),
		engine.WithLogger(logger),
		engine.WithStepDelay(cfg.StepDelay),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize simulation", err)
	}

	faults := 0
	err = sim.Run(ctx, cfg.Steps, func(r engine.StepReport) {
		faults += len(r.Faults)
	})
	sim.Finish()
	if err != nil {
		if engine.IsCancelled(err) {
			return WrapExitError(ExitFailure, fmt.Sprintf("simulation cancelled after %d steps", sim.StepCount()), err)
		}
		return WrapExitError(ExitFailure, "simulation failed", err)
	}
	if faults > 0 {
		logger.Warn("agent faults during run", "faults", faults)
	}

	rep, err := report.FromSimulation(sim)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build report", err)
	}

	if cfg.Database != "" {
		runID, err := saveRun(ctx, cfg.Database, sim, opts.now())
		if err != nil {
			return err
		}
		rep.RunID = runID
		logger.Info("run saved", "run", runID, "db", cfg.Database)
	}

	if opts.Export != "" {
		if err := exportReport(opts.Export, rep); err != nil {
			return WrapExitError(ExitCommandError, "failed to export report", err)
		}
		logger.Info("report exported", "path", opts.Export)
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: rep, RunID: rep.RunID})
	}
	return report.WriteText(cmd.OutOrStdout(), rep)
}

// resolveConfig layers changed flags over the loaded config and validates
// the result.
func resolveConfig(opts *RunOptions, flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, configError(err)
	}

	if flags.Changed("preset") {
		cfg.Preset = opts.Preset
	}
	counts := []struct {
		flag  string
		value int
		field *int
	}{
		{"customers", opts.Customers, &cfg.Customers},
		{"employees", opts.Employees, &cfg.Employees},
		{"books", opts.Books, &cfg.Books},
		{"steps", opts.Steps, &cfg.Steps},
	}
	for _, c := range counts {
		if flags.Changed(c.flag) {
			cfg.Preset = config.PresetCustom
			*c.field = c.value
		}
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.Seed
	}
	if flags.Changed("db") {
		cfg.Database = opts.Database
	}
	if flags.Changed("delay") {
		cfg.StepDelay = opts.Delay
	}

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, configError(err)
	}
	return cfg, nil
}

func configError(err error) error {
	if errors.Is(err, config.ErrInvalid) {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return WrapExitError(ExitCommandError, "failed to load configuration", err)
}

func saveRun(ctx context.Context, path string, sim *engine.Simulation, now time.Time) (string, error) {
	st, err := store.Open(path)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	run, err := store.RunFromSimulation(store.NewRunID(), sim, now)
	if err != nil {
		return "", WrapExitError(ExitFailure, "failed to summarize run", err)
	}
	// The save runs even when ctx was cancelled after the last step.
	if err := st.SaveRun(context.WithoutCancel(ctx), run, sim.History(), sim.Snapshot()); err != nil {
		return "", WrapExitError(ExitCommandError, "failed to save run", err)
	}
	return run.ID, nil
}

func exportReport(path string, rep *report.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return report.WriteJSON(f, rep)
}

func (o *RunOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
