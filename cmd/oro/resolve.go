package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aleksanderujek/oro/internal/cli"
	"github.com/aleksanderujek/oro/internal/mapping"
	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/similarity"
)

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <merchant>",
		Short: "Show how a merchant name would resolve",
		Long: `Resolve a raw merchant name against the saved mappings: exact key
match first, then fuzzy matching for near misses. Useful to check what a
new expense with this merchant would be categorized as.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			resolver := mapping.NewResolver(store, similarity.NewTrigramScorer())
			match, err := resolver.Resolve(ctx, cliUserID(), args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve merchant: %w", err)
			}

			if match == nil {
				fmt.Println(cli.InfoStyle.Render("No mapping matches; the categorization provider would be asked."))
				return nil
			}

			category, err := store.GetCategoryByID(ctx, match.CategoryID)
			if err != nil {
				return fmt.Errorf("failed to load category: %w", err)
			}

			name := fmt.Sprintf("category %d", match.CategoryID)
			if category != nil {
				name = category.Name
			}

			switch match.Kind {
			case model.MatchExact:
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s (exact match on %q)", name, match.NormalizedKey)))
			default:
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s (fuzzy match, similarity %.2f)", name, match.Confidence)))
			}
			return nil
		},
	}
}
