package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aleksanderujek/oro/internal/cli"
	"github.com/aleksanderujek/oro/internal/common"
	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/normalize"
)

func mappingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "Manage merchant category mappings",
		Long: `View and edit the merchant-to-category rules that categorize
expenses without asking the provider.

Mappings are keyed by the normalized merchant name: lowercased with
everything but letters and digits stripped, so "Blue Bottle Coffee" and
"BLUE-BOTTLE coffee" share one rule.`,
	}

	cmd.AddCommand(mappingsListCmd())
	cmd.AddCommand(mappingsSetCmd())
	cmd.AddCommand(mappingsRemoveCmd())

	return cmd
}

func mappingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all merchant mappings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			mappings, err := store.ListMappings(ctx, cliUserID())
			if err != nil {
				return fmt.Errorf("failed to list mappings: %w", err)
			}

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			cli.RenderMappings(os.Stdout, mappings, model.Categories(categories))
			return nil
		},
	}
}

func mappingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <merchant> <category>",
		Short: "Map a merchant to a category",
		Long: `Create or replace the mapping for a merchant. The category can be
given as a key ("groceries") or a numeric id.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			merchant := args[0]

			key := normalize.Key(merchant)
			if key == "" {
				return fmt.Errorf("merchant %q has no normalizable characters", merchant)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categoryID, err := resolveCategoryArg(ctx, store, args[1])
			if err != nil {
				return err
			}

			mapping := &model.MerchantMapping{
				ID:          uuid.New().String(),
				UserID:      cliUserID(),
				MerchantKey: key,
				CategoryID:  categoryID,
				UpdatedAt:   time.Now().UTC(),
			}
			if err := store.SaveMapping(ctx, mapping); err != nil {
				return fmt.Errorf("failed to save mapping: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Mapped %q to category %s", key, args[1])))
			return nil
		},
	}
}

func mappingsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <merchant>",
		Short: "Remove a merchant mapping",
		Long:  `Delete the mapping for a merchant. Accepts the raw name or the normalized key.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			key := normalize.Key(args[0])
			if key == "" {
				return fmt.Errorf("merchant %q has no normalizable characters", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteMapping(ctx, cliUserID(), key); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return fmt.Errorf("no mapping for %q", key)
				}
				return fmt.Errorf("failed to remove mapping: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Removed mapping for %q", key)))
			return nil
		},
	}
}
