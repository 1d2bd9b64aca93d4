package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	apierrors "eduboard/internal/errors"
	"eduboard/internal/exporter"
	"eduboard/internal/services"
)

type educationOptions struct {
	csvPath  string
	xlsxPath string
	sample   bool
}

func newEducationCmd(env *cliEnv) *cobra.Command {
	opts := educationOptions{}

	cmd := &cobra.Command{
		Use:   "education [FILE]",
		Short: "Extract the dropout dataset of a workbook",
		Long: `education prints the dropout dataset with per-category and per-period
averages as JSON, or writes it to CSV and XLSX with --csv and --xlsx.
With --sample the built-in dataset is used instead of a file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEducation(env, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.csvPath, "csv", "", "write the dataset to this CSV file")
	f.StringVar(&opts.xlsxPath, "xlsx", "", "write the dataset to this XLSX file")
	f.BoolVar(&opts.sample, "sample", false, "use the built-in sample dataset")
	return cmd
}

func runEducation(env *cliEnv, opts educationOptions, args []string) error {
	var overview = services.SampleDataset()
	switch {
	case opts.sample:
	case len(args) == 1:
		res, err := env.loadWorkbook(args[0])
		if err != nil {
			return err
		}
		if len(res.Education) == 0 {
			return apierrors.NewNotFoundError("education data in " + args[0])
		}
		overview = services.Overview(res.Education)
	default:
		return apierrors.NewAppValidationError("a workbook file or --sample is required")
	}

	wrote := false
	if opts.csvPath != "" {
		csv := exporter.NewCSVWriter(exporter.WithBOM())
		if err := exporter.WriteFile(opts.csvPath, func(w io.Writer) error {
			return csv.WriteEducation(w, overview.Data)
		}); err != nil {
			return apierrors.NewExportError("failed to write CSV", err)
		}
		wrote = true
	}
	if opts.xlsxPath != "" {
		if err := exporter.WriteFile(opts.xlsxPath, func(w io.Writer) error {
			return exporter.NewXLSXWriter().WriteEducation(w, overview.Data)
		}); err != nil {
			return apierrors.NewExportError("failed to write XLSX", err)
		}
		wrote = true
	}
	if wrote {
		return nil
	}

	enc := json.NewEncoder(env.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(overview)
}
