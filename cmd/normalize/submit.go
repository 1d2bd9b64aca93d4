package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	apierrors "eduboard/internal/errors"
	"eduboard/internal/services"
	"eduboard/internal/submission"
)

type submitOptions struct {
	fileName string
	dataType string
}

func newSubmitCmd(env *cliEnv) *cobra.Command {
	opts := submitOptions{}

	cmd := &cobra.Command{
		Use:   "submit FILE",
		Short: "Normalize a workbook and send its dropout dataset to the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, env, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.fileName, "file-name", "", "file name reported to the backend")
	f.StringVar(&opts.dataType, "type", "", "metadata type reported to the backend")
	return cmd
}

func runSubmit(cmd *cobra.Command, env *cliEnv, opts submitOptions, path string) error {
	if !env.cfg.Backend.Enabled {
		return apierrors.NewConfigError("backend submission is disabled", services.ErrSubmissionDisabled)
	}
	if err := env.checkWorkbook(path); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return apierrors.NewAppError(apierrors.ErrTypeValidation, "failed to read "+path, err)
	}

	client := submission.NewClient(env.cfg.Backend, env.logger)
	svc := services.NewDashboardService(env.logger,
		services.WithBackend(client),
		services.WithDefaultFileName(env.cfg.Backend.DefaultFileName))

	ctx := cmd.Context()
	if _, err := svc.Load(ctx, filepath.Base(path), data); err != nil {
		if errors.Is(err, services.ErrInvalidUpload) {
			return apierrors.NewAppError(apierrors.ErrTypeValidation, "invalid input file", err)
		}
		return apierrors.NewParsingError("failed to process "+path, err)
	}

	result, err := svc.Submit(ctx, services.SubmitOptions{FileName: opts.fileName, Type: opts.dataType})
	if err != nil {
		if errors.Is(err, services.ErrNoEducationData) {
			return apierrors.NewNotFoundError("education data in " + path)
		}
		return err
	}
	if !result.Success {
		return apierrors.NewNetworkError(fmt.Sprintf("submission to %s failed", client.BaseURL()),
			errors.New(result.Message))
	}

	enc := json.NewEncoder(env.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
