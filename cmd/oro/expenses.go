package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aleksanderujek/oro/internal/cli"
	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/query"
)

func expensesCmd() *cobra.Command {
	var (
		window         string
		from           string
		to             string
		search         string
		account        string
		categoryArgs   []string
		cursorToken    string
		limit          int
		includeDeleted bool
	)

	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "List expenses",
		Long: `List expenses newest first, with optional filters.

Use --window for a relative range (this-month, last-month, last-7-days)
or --from/--to for an explicit one; the two are mutually exclusive.
Pages continue from the cursor printed under the table.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			params := query.Params{
				Window:         window,
				Search:         search,
				Cursor:         cursorToken,
				Account:        model.AccountTag(account),
				Limit:          limit,
				IncludeDeleted: includeDeleted,
			}

			if from != "" {
				t, err := time.Parse("2006-01-02", from)
				if err != nil {
					return fmt.Errorf("invalid --from date %q (want YYYY-MM-DD)", from)
				}
				params.From = &t
			}
			if to != "" {
				t, err := time.Parse("2006-01-02", to)
				if err != nil {
					return fmt.Errorf("invalid --to date %q (want YYYY-MM-DD)", to)
				}
				params.To = &t
			}

			for _, arg := range categoryArgs {
				id, err := resolveCategoryArg(ctx, store, arg)
				if err != nil {
					return err
				}
				params.CategoryIDs = append(params.CategoryIDs, id)
			}

			page, err := query.New(store).List(ctx, cliUserID(), params)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			cli.RenderExpenses(os.Stdout, page.Items, model.Categories(categories))
			if page.HasMore {
				fmt.Println()
				fmt.Println(cli.SubtleStyle.Render("More results: oro expenses --cursor " + page.NextCursor))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&window, "window", "", "relative window: this-month, last-month or last-7-days")
	cmd.Flags().StringVar(&from, "from", "", "start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date, exclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&search, "search", "", "free-text search over name and description")
	cmd.Flags().StringVar(&account, "account", "", "account filter: cash, card, bank or savings")
	cmd.Flags().StringSliceVar(&categoryArgs, "category", nil, "category key or id (repeatable)")
	cmd.Flags().StringVar(&cursorToken, "cursor", "", "resume from a previous page")
	cmd.Flags().IntVar(&limit, "limit", 0, fmt.Sprintf("page size, at most %d (default %d)", query.MaxLimit, query.DefaultLimit))
	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "include soft-deleted expenses")

	return cmd
}
