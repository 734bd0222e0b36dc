package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aleksanderujek/oro/internal/cli"
	"github.com/aleksanderujek/oro/internal/config"
	"github.com/aleksanderujek/oro/internal/dashboard"
	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/period"
	"github.com/aleksanderujek/oro/internal/service"
	"github.com/aleksanderujek/oro/internal/sheets"
)

func exportCmd() *cobra.Command {
	var (
		month         string
		spreadsheetID string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a monthly report to Google Sheets",
		Long: `Write one month's dashboard and expense rows to a Google
Spreadsheet.

Authentication comes from the sheets.* config: either a service account
file or an OAuth token established with 'oro auth sheets'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			sheetsCfg, err := config.LoadSheetsConfig()
			if err != nil {
				return fmt.Errorf("sheets configuration: %w", err)
			}
			if spreadsheetID != "" {
				sheetsCfg.SpreadsheetID = spreadsheetID
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			userID := cliUserID()
			loc, err := userLocation(ctx, store, userID)
			if err != nil {
				return err
			}

			if month == "" {
				month = period.MonthOf(time.Now(), loc).String()
			}
			target, err := period.ParseMonth(month)
			if err != nil {
				return fmt.Errorf("invalid --month %q (want YYYY-MM)", month)
			}

			slog.Info(cli.FormatTitle("Exporting monthly report..."), "month", month)

			snapshot, err := dashboard.New(store).Aggregate(ctx, userID, dashboard.Request{Month: month})
			if err != nil {
				return fmt.Errorf("failed to aggregate month: %w", err)
			}

			expenses, err := store.GetExpensesInWindow(ctx, userID, target.Bounds(loc), service.WindowFilter{})
			if err != nil {
				return fmt.Errorf("failed to load expenses: %w", err)
			}

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
			if err != nil {
				return fmt.Errorf("failed to create sheets writer: %w", err)
			}

			report := &sheets.MonthlyReport{
				GeneratedAt: time.Now().UTC(),
				Snapshot:    *snapshot,
				Categories:  model.Categories(categories),
				Expenses:    expenses,
			}
			if err := writer.Export(ctx, report); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %s (%d expenses)", month, len(expenses))))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to export as YYYY-MM (default: the current month)")
	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet-id", "", "target spreadsheet id (overrides config)")

	return cmd
}

// userLocation loads the profile timezone for CLI date math, defaulting to
// UTC like the aggregator does.
func userLocation(ctx context.Context, store service.Storage, userID string) (*time.Location, error) {
	profile, err := store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	tz := ""
	if profile != nil {
		tz = profile.Timezone
	}
	loc, err := period.LoadLocation(tz)
	if err != nil {
		slog.Warn("stored timezone does not load, using UTC", "timezone", tz, "error", err)
		return time.UTC, nil
	}
	return loc, nil
}
