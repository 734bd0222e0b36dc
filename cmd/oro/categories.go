package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aleksanderujek/oro/internal/cli"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the expense categories",
		Long: `Display the fixed category taxonomy.

Categories are seeded by migrations and referenced by key (for example
"groceries") in other commands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			cli.RenderCategories(os.Stdout, categories)
			return nil
		},
	}
}
