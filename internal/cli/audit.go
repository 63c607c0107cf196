package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/vigil/internal/diag"
	"github.com/roach88/vigil/internal/store"
)

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		codeFilter string
		counts     bool
	)

	cmd := &cobra.Command{
		Use:   "audit <db>",
		Short: "Inspect a violation audit log",
		Long: `List the violations recorded in a SQLite audit log, in the order the
engine reported them. Use --counts for a per-category summary instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(rootOpts, args[0], codeFilter, counts, cmd)
		},
	}

	cmd.Flags().StringVar(&codeFilter, "code", "", "only show violations of this category")
	cmd.Flags().BoolVar(&counts, "counts", false, "show per-category counts instead of entries")
	return cmd
}

func runAudit(opts *RootOptions, dbPath, codeFilter string, counts bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(dbPath); err != nil {
		_ = formatter.Error("E001", fmt.Sprintf("audit log not found: %s", dbPath), nil)
		return WrapExitError(ExitCommandError, "opening audit log", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error("E001", err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening audit log", err)
	}
	defer st.Close()

	ctx := context.Background()

	if counts {
		return outputAuditCounts(ctx, formatter, st)
	}

	var violations []diag.Violation
	if codeFilter != "" {
		violations, err = st.ListByCode(ctx, diag.Code(codeFilter))
	} else {
		violations, err = st.ListViolations(ctx)
	}
	if err != nil {
		_ = formatter.Error("E002", err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading audit log", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(violations)
	}

	if len(violations) == 0 {
		fmt.Fprintln(formatter.Writer, "no violations recorded")
		return nil
	}
	for _, v := range violations {
		fmt.Fprintf(formatter.Writer, "[%d] %s (id=%s)\n", v.Seq, v.String(), v.ID)
		if opts.Verbose && len(v.Origin) > 0 {
			fmt.Fprintf(formatter.Writer, "    origin: %s\n", v.Origin.String())
		}
		if opts.Verbose && len(v.Release) > 0 {
			fmt.Fprintf(formatter.Writer, "    released at: %s\n", v.Release.String())
		}
	}
	return nil
}

func outputAuditCounts(ctx context.Context, formatter *OutputFormatter, st *store.Store) error {
	counts, err := st.CountByCode(ctx)
	if err != nil {
		_ = formatter.Error("E002", err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading audit log", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(counts)
	}

	codes := make([]string, 0, len(counts))
	for c := range counts {
		codes = append(codes, string(c))
	}
	sort.Strings(codes)

	for _, c := range codes {
		fmt.Fprintf(formatter.Writer, "%-28s %d\n", c, counts[diag.Code(c)])
	}
	return nil
}
