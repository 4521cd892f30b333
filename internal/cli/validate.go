package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storesim/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Path   string         `json:"path"`
	Config *config.Config `json:"config,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Validate a config file without running",
		Long: `Validate a YAML config file against the config schema.

Environment overrides are applied exactly as the run command would, and the
resolved configuration is printed on success.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(path)
	if err != nil {
		code := ErrCodeGeneric
		exit := ExitCommandError
		if errors.Is(err, config.ErrInvalid) {
			code = ErrCodeInvalidConfig
			exit = ExitFailure
		}
		if opts.Format == "json" {
			_ = formatter.Error(code, "validation failed", ValidationResult{Path: path, Error: err.Error()})
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n  %v\n", path, err)
		}
		return WrapExitError(exit, "validation failed", err)
	}

	formatter.VerboseLog("Resolved preset %s: %d customers, %d employees, %d books, %d steps",
		cfg.Preset, cfg.Customers, cfg.Employees, cfg.Books, cfg.Steps)

	if opts.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Path: path, Config: cfg})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (preset %s, %d steps)\n", path, cfg.Preset, cfg.Steps)
	return nil
}
