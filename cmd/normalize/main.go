// Command normalize runs the spreadsheet normalizer outside the server: it
// converts workbooks to JSON and CSV, extracts the dropout dataset and talks
// to the remote backend.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"eduboard/internal/config"
	apierrors "eduboard/internal/errors"
	"eduboard/internal/infrastructure"
	"eduboard/pkg/contracts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(apierrors.ExitCode(err))
	}
}

// cliEnv carries what every subcommand needs once the root has run.
type cliEnv struct {
	configFile string
	logLevel   string
	backendURL string

	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	env := &cliEnv{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize education spreadsheets into dashboard datasets",
		Long: `normalize reads .xlsx and .xls workbooks, detects the header row of
every sheet, and produces the same records, dropout dataset and summary the
dashboard server serves.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&env.configFile, "config", "", "path to a YAML configuration file")
	pf.StringVar(&env.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&env.backendURL, "backend-url", "", "override the backend base URL")

	root.AddCommand(
		newProcessCmd(env),
		newEducationCmd(env),
		newSubmitCmd(env),
		newBackendCmd(env),
		newVersionCmd(env),
	)
	return root
}

func (e *cliEnv) setup() error {
	var (
		cfg *config.Config
		err error
	)
	if e.configFile != "" {
		cfg, err = config.LoadFrom(e.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return apierrors.NewConfigError("failed to load configuration", err)
	}

	if e.logLevel != "" {
		cfg.Logging.Level = e.logLevel
	}
	if e.backendURL != "" {
		cfg.Backend.BaseURL = e.backendURL
		cfg.Backend.Enabled = true
	}

	e.cfg = cfg
	e.logger = infrastructure.NewLogger(cfg.Logging, e.stderr).With(slog.String("component", "normalize"))
	return nil
}

func newVersionCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(env.stdout, contracts.GetFullVersionString())
			return err
		},
	}
}
