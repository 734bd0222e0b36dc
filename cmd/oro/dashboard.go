package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aleksanderujek/oro/internal/cli"
	"github.com/aleksanderujek/oro/internal/dashboard"
	"github.com/aleksanderujek/oro/internal/model"
)

func dashboardCmd() *cobra.Command {
	var (
		month        string
		account      string
		categoryArgs []string
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the monthly spending dashboard",
		Long: `Aggregate one calendar month: total spend, change against the
previous month, the per-day series, and the category breakdown. Days are
bucketed in your profile timezone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			req := dashboard.Request{
				Month:   month,
				Account: model.AccountTag(account),
			}
			for _, arg := range categoryArgs {
				id, err := resolveCategoryArg(ctx, store, arg)
				if err != nil {
					return err
				}
				req.CategoryIDs = append(req.CategoryIDs, id)
			}

			snapshot, err := dashboard.New(store).Aggregate(ctx, cliUserID(), req)
			if err != nil {
				return fmt.Errorf("failed to aggregate dashboard: %w", err)
			}

			cli.RenderDashboard(os.Stdout, snapshot)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "target month as YYYY-MM (default: the current month)")
	cmd.Flags().StringVar(&account, "account", "", "account filter: cash, card, bank or savings")
	cmd.Flags().StringSliceVar(&categoryArgs, "category", nil, "category key or id (repeatable)")

	return cmd
}
