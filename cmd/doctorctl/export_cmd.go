package main

import (
	"context"
	"fmt"
	"os"

	"doctor-registry/internal/domain"
	"doctor-registry/internal/report"
	"doctor-registry/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const exportPageSize = 100

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every doctor into an .xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return withCode(exitUsage, fmt.Errorf("--output is required"))
			}
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			doctors, err := fetchAllDoctors(ctx, a.reader)
			if err != nil {
				return withCode(exitAPI, err)
			}
			data, err := report.GenerateDoctorsExport(doctors)
			if err != nil {
				return withCode(exitIO, err)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return withCode(exitIO, fmt.Errorf("failed to write %s: %w", output, err))
			}

			a.logger.Info("Doctors exported", zap.String("file", output), zap.Int("count", len(doctors)))
			return writeJSONLine(cmd.OutOrStdout(), map[string]any{"file": output, "count": len(doctors)})
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "Output .xlsx path (required)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// fetchAllDoctors 分页读取全部档案
func fetchAllDoctors(ctx context.Context, reader store.DoctorReader) ([]domain.Doctor, error) {
	var all []domain.Doctor
	for skip := 0; ; skip += exportPageSize {
		page, err := reader.ListDoctors(ctx, skip, exportPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Doctores...)
		if len(page.Doctores) < exportPageSize || len(all) >= page.TotalCount {
			return all, nil
		}
	}
}
