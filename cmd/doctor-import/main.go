package main

import (
	"encoding/json"
	"fmt"
	"os"

	"doctor-registry/internal/common/database"
	commonlogger "doctor-registry/internal/common/logger"
	"doctor-registry/internal/config"
	"doctor-registry/internal/importer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	exitValidation = 2
	exitUsage      = 3
	exitDB         = 4
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }

func (e *cliError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func newRootCmd() *cobra.Command {
	var file string
	var dryRun bool

	cmd := &cobra.Command{
		Use:           "doctor-import",
		Short:         "Load a doctores.xlsx spreadsheet into the doctores table",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Load()

			logger, err := commonlogger.NewLogger(cfg.Log.Level, cfg.Log.Format, "doctor-import")
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("failed to init logger: %w", err))
			}
			defer logger.Sync()

			f, err := os.Open(file)
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("failed to open %s: %w", file, err))
			}
			defer f.Close()

			result, err := importer.ReadDoctors(f)
			if err != nil {
				return withCode(exitValidation, err)
			}
			if len(result.Ignored) > 0 {
				logger.Warn("Ignoring unknown columns", zap.Strings("columns", result.Ignored))
			}
			logger.Info("Spreadsheet read",
				zap.String("file", file),
				zap.Int("rows", len(result.Doctors)),
				zap.Int("skipped", result.Skipped),
			)

			summary := map[string]any{
				"file":     file,
				"rows":     len(result.Doctors),
				"skipped":  result.Skipped,
				"imported": 0,
				"dry_run":  dryRun,
			}
			if !dryRun {
				db, err := database.NewPostgresDB(ctx, &cfg.Database)
				if err != nil {
					return withCode(exitDB, err)
				}
				defer db.Close()

				w := importer.NewPostgresWriter(db, logger)
				if err := w.EnsureTable(ctx); err != nil {
					return withCode(exitDB, err)
				}
				n, err := w.Upsert(ctx, result.Doctors)
				if err != nil {
					return withCode(exitDB, err)
				}
				summary["imported"] = n
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			return enc.Encode(summary)
		},
	}

	cmd.Flags().StringVar(&file, "file", "doctores.xlsx", "Spreadsheet to import")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Read and validate without writing to the database")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		code := 1
		if ce, ok := err.(*cliError); ok {
			code = ce.code
		}
		os.Exit(code)
	}
}
