package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"doctor-registry/internal/domain"
	"doctor-registry/internal/store"

	"github.com/spf13/cobra"
)

func newAlertsCmd() *cobra.Command {
	var local bool
	var days int

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List retirements, personal leaves and sick leaves that end soon",
		Long: "By default asks the backend. With --local the end dates are computed from\n" +
			"the full doctor list, using a window of --days days starting today.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return withCode(exitUsage, fmt.Errorf("--days must be >= 0"))
			}
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var alerts []domain.ExpiryAlert
			if local {
				alerts, err = localAlerts(ctx, a.reader, time.Now(), days)
			} else {
				alerts, err = a.api.ListExpiryAlerts(ctx)
			}
			if err != nil {
				return withCode(exitAPI, err)
			}
			return writeAlerts(cmd.OutOrStdout(), alerts)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Compute alerts from the doctor list instead of the backend")
	cmd.Flags().IntVar(&days, "days", domain.DefaultAlertWindowDays, "Window in days (with --local)")
	return cmd
}

func localAlerts(ctx context.Context, reader store.DoctorReader, now time.Time, days int) ([]domain.ExpiryAlert, error) {
	doctors, err := fetchAllDoctors(ctx, reader)
	if err != nil {
		return nil, err
	}
	return domain.ExpiringWithin(doctors, now, days), nil
}

func writeAlerts(out io.Writer, alerts []domain.ExpiryAlert) error {
	for i := range alerts {
		if err := writeJSONLine(out, &alerts[i]); err != nil {
			return err
		}
	}
	return writeJSONLine(out, map[string]any{"count": len(alerts)})
}
