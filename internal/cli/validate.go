package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/vigil/internal/config"
	"github.com/roach88/vigil/internal/harness"
)

// ValidationResult holds validation results for one file.
type ValidationResult struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate scenario and config files without running them",
		Long: `Validate scenario YAML files (.yaml, .yml) and CUE configuration
files (.cue) without executing anything. Checks syntax, required
fields, step operand wiring, and schema conformance.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	results := make([]ValidationResult, 0, len(paths))
	failures := 0

	for _, path := range paths {
		result := validateFile(path)
		if !result.Valid {
			failures++
		}
		results = append(results, result)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(formatter.Writer, "✓ %s\n", r.Path)
			} else {
				fmt.Fprintf(formatter.Writer, "✗ %s\n  %s\n", r.Path, r.Error)
			}
		}
	}

	if failures > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d of %d file(s)", failures, len(paths)))
	}
	return nil
}

func validateFile(path string) ValidationResult {
	result := ValidationResult{Path: path}

	var err error
	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		_, err = harness.LoadScenario(path)
	case strings.HasSuffix(path, ".cue"):
		_, err = config.Load(path)
	default:
		err = fmt.Errorf("unsupported file type: want .yaml, .yml or .cue")
	}

	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Valid = true
	return result
}
