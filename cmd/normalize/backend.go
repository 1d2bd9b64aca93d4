package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	apierrors "eduboard/internal/errors"
	"eduboard/internal/submission"
)

func newBackendCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Query the remote dashboard backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := env.setup(); err != nil {
				return err
			}
			if env.cfg.Backend.BaseURL == "" {
				return apierrors.NewConfigError("backend base URL is not configured", nil)
			}
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "health",
			Short: "Check that the backend is reachable",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				client := env.backendClient()
				if err := client.HealthCheck(cmd.Context()); err != nil {
					return apierrors.NewNetworkError("backend health check failed", err)
				}
				_, err := fmt.Fprintf(env.stdout, "backend %s is healthy\n", client.BaseURL())
				return err
			},
		},
		&cobra.Command{
			Use:   "files",
			Short: "List the files the backend has processed",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return env.printBackend(cmd.Context(), func(ctx context.Context, c *submission.Client) (*submission.Result, error) {
					return c.ProcessedFiles(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Print the backend statistics",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return env.printBackend(cmd.Context(), func(ctx context.Context, c *submission.Client) (*submission.Result, error) {
					return c.Statistics(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "upload FILE",
			Short: "Upload a raw workbook to the backend",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := args[0]
				if err := env.checkWorkbook(path); err != nil {
					return err
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return apierrors.NewAppError(apierrors.ErrTypeValidation, "failed to read "+path, err)
				}
				return env.printBackend(cmd.Context(), func(ctx context.Context, c *submission.Client) (*submission.Result, error) {
					return c.UploadFile(ctx, filepath.Base(path), bytes.NewReader(data))
				})
			},
		},
		&cobra.Command{
			Use:   "process-data FILE",
			Short: "Normalize a workbook locally and post its dropout dataset for processing",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := env.loadWorkbook(args[0])
				if err != nil {
					return err
				}
				if len(res.Education) == 0 {
					return apierrors.NewNotFoundError("education data in " + args[0])
				}
				return env.printBackend(cmd.Context(), func(ctx context.Context, c *submission.Client) (*submission.Result, error) {
					return c.ProcessData(ctx, filepath.Base(args[0]), res.Education)
				})
			},
		},
	)
	return cmd
}

func (e *cliEnv) backendClient() *submission.Client {
	return submission.NewClient(e.cfg.Backend, e.logger)
}

// printBackend runs call and writes the response body, indented, to stdout.
func (e *cliEnv) printBackend(ctx context.Context, call func(context.Context, *submission.Client) (*submission.Result, error)) error {
	client := e.backendClient()
	res, err := call(ctx, client)
	if err != nil {
		return apierrors.NewNetworkError("backend request failed", err)
	}

	if len(res.Body) == 0 {
		_, err := fmt.Fprintln(e.stdout, res.Message)
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, res.Body, "", "  "); err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(e.stdout)
	return err
}
