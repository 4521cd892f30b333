package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/storesim/internal/engine"
	"github.com/roach88/storesim/internal/ir"
	"github.com/roach88/storesim/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - latest run when empty
}

// ReplayResult holds the outcome of replaying one stored run.
type ReplayResult struct {
	RunID         string `json:"run_id"`
	Seed          int64  `json:"seed"`
	Steps         int64  `json:"steps"`
	ExpectedHash  string `json:"expected_hash"`
	ActualHash    string `json:"actual_hash"`
	StoredHashOK  bool   `json:"stored_snapshot_ok"`
	Transactions  int    `json:"transactions"`
	Deterministic bool   `json:"deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run a stored run and verify determinism",
		Long: `Re-run a stored simulation from its seed and parameters and compare the
final snapshot hash with the one saved at the end of the original run.

Exit codes:
  0 - The replay reproduced the stored snapshot
  1 - Determinism verification failed (hashes differ)
  2 - Command error (database not found, unknown run, etc.)

Examples:
  storesim replay --db ./runs.db
  storesim replay --db ./runs.db --run 0192f5e4-7c1a-7d3e-9a41-2b6f0c9e8d11
  storesim replay --db ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to replay (default: latest)")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := findRun(ctx, st, opts.RunID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			_ = formatter.Error(ErrCodeRunNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "run not found", err)
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	formatter.VerboseLog("Replaying run %s (seed %d, %d steps)", run.ID, run.Seed, run.Steps)

	result, err := replayRun(ctx, st, run)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result)
}

func findRun(ctx context.Context, st *store.Store, id string) (store.Run, error) {
	if id == "" {
		return st.LatestRun(ctx)
	}
	return st.ReadRun(ctx, id)
}

// replayRun rebuilds the simulation from the stored parameters and compares
// final snapshots. The stored snapshot body is rehashed too, so a corrupted
// row is reported rather than trusted.
func replayRun(ctx context.Context, st *store.Store, run store.Run) (ReplayResult, error) {
	sim, err := engine.Initialize(run.Params,
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		return ReplayResult{}, err
	}
	if err := sim.Run(ctx, int(run.Steps), nil); err != nil {
		return ReplayResult{}, err
	}
	sim.Finish()

	actual, err := sim.SnapshotHash()
	if err != nil {
		return ReplayResult{}, err
	}

	storedHash, body, err := st.ReadSnapshot(ctx, run.ID)
	if err != nil {
		return ReplayResult{}, err
	}
	storedOK := storedHash == run.SnapshotHash && ir.HashBytes(ir.DomainSnapshot, body) == storedHash

	return ReplayResult{
		RunID:         run.ID,
		Seed:          run.Seed,
		Steps:         run.Steps,
		ExpectedHash:  run.SnapshotHash,
		ActualHash:    actual,
		StoredHashOK:  storedOK,
		Transactions:  sim.TotalTransactions(),
		Deterministic: actual == run.SnapshotHash && sim.TotalTransactions() == run.Transactions,
	}, nil
}

func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{Status: "ok", Data: result, RunID: result.RunID}
	if !result.Deterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeReplayMismatch,
			Message: "replay diverged from stored run",
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.Deterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

func outputReplayText(cmd *cobra.Command, result ReplayResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Run %s\n", result.RunID)
	fmt.Fprintf(w, "  seed:         %d\n", result.Seed)
	fmt.Fprintf(w, "  steps:        %d\n", result.Steps)
	fmt.Fprintf(w, "  transactions: %d\n", result.Transactions)
	fmt.Fprintf(w, "  expected:     %s\n", result.ExpectedHash)
	fmt.Fprintf(w, "  actual:       %s\n", result.ActualHash)
	if !result.StoredHashOK {
		fmt.Fprintln(w, "  warning: stored snapshot does not match its hash")
	}

	if !result.Deterministic {
		fmt.Fprintln(w, "✗ Replay diverged")
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	fmt.Fprintln(w, "✓ Replay is deterministic")
	return nil
}
