package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/vigil/internal/config"
	"github.com/roach88/vigil/internal/diag"
	"github.com/roach88/vigil/internal/engine"
	"github.com/roach88/vigil/internal/store"
)

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in enforcement demo",
		Long: `Construct a small Account class and deliberately misuse it: read a
property that was never established, change a property's type, write
after release, and bypass the construction protocol. Prints every
violation the engine reports.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(rootOpts, configPath, cmd)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "CUE configuration file")
	return cmd
}

func runDemo(opts *RootOptions, configPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			_ = formatter.Error("E001", err.Error(), nil)
			return WrapExitError(ExitCommandError, "loading config", err)
		}
		cfg = loaded
	}

	engOpts, err := cfg.EngineOptions()
	if err != nil {
		_ = formatter.Error("E001", err.Error(), nil)
		return WrapExitError(ExitCommandError, "applying config", err)
	}

	recorder := diag.NewRecorder()
	sink := diag.Sink(recorder)

	if cfg.AuditDB != "" {
		st, err := store.Open(cfg.AuditDB)
		if err != nil {
			_ = formatter.Error("E002", err.Error(), nil)
			return WrapExitError(ExitCommandError, "opening audit log", err)
		}
		defer st.Close()
		sink = diag.Tee(recorder, store.NewSink(st))
		formatter.VerboseLog("Recording violations to %s", cfg.AuditDB)
	}

	engOpts = append(engOpts, engine.WithSink(sink))
	eng := engine.New(engOpts...)

	formatter.VerboseLog("Engine mode: %s", eng.Mode())

	if err := demoSequence(eng); err != nil {
		_ = formatter.Error("E003", err.Error(), nil)
		return WrapExitError(ExitCommandError, "running demo", err)
	}

	violations := recorder.All()
	if formatter.Format == "json" {
		return formatter.Success(violations)
	}

	fmt.Fprintf(formatter.Writer, "Demo complete: %d violation(s) reported\n", len(violations))
	for _, v := range violations {
		fmt.Fprintf(formatter.Writer, "  [%d] %s\n", v.Seq, v.String())
	}
	return nil
}

// demoSequence drives the misuse script. Every soft violation lands in
// the engine's sink; hard violations are expected and swallowed here.
func demoSequence(eng *engine.Engine) error {
	account := engine.DefFunc("Account", func(self *engine.Handle, args ...any) error {
		self.Set("owner", "alice")
		self.Set("balance", 100)
		return nil
	})

	acct, err := eng.New(account)
	if err != nil {
		return err
	}

	// Read outside the established property set.
	_ = acct.Get("nickname")

	// Change a property's classification.
	acct.Set("owner", 42)

	// Deletion is a hard violation; the error is the report.
	_ = acct.Delete("owner")

	// Access after release.
	eng.Release(acct)
	_ = acct.Get("owner")
	acct.Set("balance", 0)

	// Bypass the construction protocol, then reconcile.
	if _, err := eng.Construct(account); err != nil {
		return err
	}
	eng.Reconcile()

	return nil
}
