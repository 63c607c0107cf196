package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/vigil/internal/harness"
	"github.com/roach88/vigil/internal/store"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run an enforcement scenario",
		Long: `Run a YAML enforcement scenario against a fresh engine and report
the violation trace. Exits non-zero when the run observed any soft or
hard violation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(rootOpts, args[0], dbPath, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "also record violations into a SQLite audit log")
	return cmd
}

func runRun(opts *RootOptions, scenarioPath, dbPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(scenarioPath)
	if err != nil {
		_ = formatter.Error("E001", err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading scenario", err)
	}

	formatter.VerboseLog("Running scenario %q (%d steps)", scenario.Name, len(scenario.Steps))

	result, err := harness.Run(scenario)
	if err != nil {
		_ = formatter.Error("E002", err.Error(), nil)
		return WrapExitError(ExitCommandError, "running scenario", err)
	}

	if dbPath != "" {
		if err := recordToAuditLog(dbPath, result); err != nil {
			_ = formatter.Error("E003", err.Error(), nil)
			return WrapExitError(ExitCommandError, "writing audit log", err)
		}
		formatter.VerboseLog("Recorded %d violation(s) to %s", len(result.Violations), dbPath)
	}

	return outputRunResult(formatter, scenario, result)
}

func recordToAuditLog(dbPath string, result *harness.Result) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	for _, v := range result.Violations {
		if err := st.WriteViolation(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

func outputRunResult(formatter *OutputFormatter, scenario *harness.Scenario, result *harness.Result) error {
	snapshot := harness.Snapshot(scenario, result)
	clean := len(result.Violations) == 0 && len(result.HardErrors) == 0

	if formatter.Format == "json" {
		if err := formatter.Success(snapshot); err != nil {
			return err
		}
	} else {
		if clean {
			fmt.Fprintf(formatter.Writer, "✓ %s: no violations\n", scenario.Name)
		} else {
			fmt.Fprintf(formatter.Writer, "✗ %s: %d violation(s), %d hard error(s)\n",
				scenario.Name, len(result.Violations), len(result.HardErrors))
			for _, v := range result.Violations {
				fmt.Fprintf(formatter.Writer, "  [%d] %s\n", v.Seq, v.String())
			}
			for _, h := range result.HardErrors {
				fmt.Fprintf(formatter.Writer, "  step %d: %s\n", h.Step, h.Message)
			}
		}
	}

	if !clean {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %q observed violations", scenario.Name))
	}
	return nil
}
