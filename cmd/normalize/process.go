package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	apierrors "eduboard/internal/errors"
	"eduboard/internal/exporter"
	"eduboard/internal/spreadsheet"
	"eduboard/internal/validation"
)

type processOptions struct {
	outDir      string
	concurrency int
	sheets      bool
}

// fileReport is one line of the process summary.
type fileReport struct {
	path          string
	sheets        int
	records       int
	educationRows int
	err           error
}

func newProcessCmd(env *cliEnv) *cobra.Command {
	opts := processOptions{}

	cmd := &cobra.Command{
		Use:   "process FILE...",
		Short: "Normalize workbooks into JSON exports and CSV files",
		Long: `process writes, for every input workbook, <name>.json with the full export
bundle and <name>_education.csv when a dropout sheet is found. Files are
processed concurrently and independently; one bad file does not stop the rest.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(env, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.outDir, "out", "o", "out", "output directory")
	f.IntVarP(&opts.concurrency, "concurrency", "c", 4, "files processed at once")
	f.BoolVar(&opts.sheets, "sheets", false, "also write every processed sheet as CSV")
	return cmd
}

func runProcess(env *cliEnv, opts processOptions, paths []string) error {
	if opts.concurrency < 1 {
		return apierrors.NewAppValidationError("concurrency must be at least 1")
	}
	if err := validation.NewFileValidator(env.logger).ValidateOutputDirectory(opts.outDir); err != nil {
		return apierrors.NewExportError("output directory unavailable", err)
	}

	reports := make([]fileReport, len(paths))
	var g errgroup.Group
	g.SetLimit(opts.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			reports[i] = env.processFile(path, opts)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range reports {
		if r.err != nil {
			fmt.Fprintf(env.stdout, "FAIL\t%s\t%v\n", r.path, r.err)
			errs = append(errs, r.err)
			continue
		}
		fmt.Fprintf(env.stdout, "OK\t%s\tsheets=%d\trecords=%d\teducation_rows=%d\n",
			r.path, r.sheets, r.records, r.educationRows)
	}
	return errors.Join(errs...)
}

func (e *cliEnv) processFile(path string, opts processOptions) fileReport {
	report := fileReport{path: path}
	start := time.Now()

	res, err := e.loadWorkbook(path)
	if err != nil {
		report.err = err
		return report
	}
	report.sheets = res.Summary.SheetCount
	report.records = res.Summary.ProcessedRowCount
	report.educationRows = len(res.Education)

	base := baseName(path)
	export := spreadsheet.BuildExport(res.Workbook, res.Processed, time.Now())
	jsonPath := filepath.Join(opts.outDir, base+".json")
	if err := exporter.WriteFile(jsonPath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(export)
	}); err != nil {
		report.err = apierrors.NewExportError("failed to write "+jsonPath, err)
		return report
	}

	csvWriter := exporter.NewCSVWriter(exporter.WithBOM())
	if len(res.Education) > 0 {
		csvPath := filepath.Join(opts.outDir, base+"_education.csv")
		if err := exporter.WriteFile(csvPath, func(w io.Writer) error {
			return csvWriter.WriteEducation(w, res.Education)
		}); err != nil {
			report.err = apierrors.NewExportError("failed to write "+csvPath, err)
			return report
		}
	}

	if opts.sheets {
		for _, sheet := range res.Processed.Ordered() {
			sheetPath := filepath.Join(opts.outDir, base, safeName(sheet.Name)+".csv")
			if err := exporter.WriteFile(sheetPath, func(w io.Writer) error {
				return csvWriter.WriteSheet(w, sheet)
			}); err != nil {
				report.err = apierrors.NewExportError("failed to write "+sheetPath, err)
				return report
			}
		}
	}

	e.logger.Info("workbook normalized",
		slog.String("file", path),
		slog.Int("sheets", report.sheets),
		slog.Int("records", report.records),
		slog.Int("education_rows", report.educationRows),
		slog.Duration("duration", time.Since(start)))
	return report
}

// checkWorkbook verifies path names a readable spreadsheet file.
func (e *cliEnv) checkWorkbook(path string) error {
	if err := validation.NewFileValidator(e.logger).ValidateExcelFile(path); err != nil {
		return apierrors.NewAppError(apierrors.ErrTypeValidation, "invalid input file", err)
	}
	return nil
}

// loadWorkbook validates, reads and normalizes the workbook at path.
func (e *cliEnv) loadWorkbook(path string) (*spreadsheet.Result, error) {
	if err := e.checkWorkbook(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apierrors.NewAppError(apierrors.ErrTypeValidation, "failed to read "+path, err)
	}

	res, err := spreadsheet.Process(data)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to process "+path, err)
	}
	return res, nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// safeName replaces characters that are not allowed in file names.
func safeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "sheet"
	}
	return name
}
