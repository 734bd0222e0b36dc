package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/aleksanderujek/oro/internal/cli"
)

// reindexBatchSize is how many expenses each scan page carries.
const reindexBatchSize = 200

func reindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Recompute derived expense fields",
		Long: `Rewrite every stored expense so its derived fields are recomputed:
the normalized merchant key, the search text, and the amount rounding.
The text-search index refreshes as rows are rewritten.

Run this after an upgrade that changes the normalization rules.`,
		RunE: runReindex,
	}
}

func runReindex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	total, err := store.CountExpenses(ctx)
	if err != nil {
		return fmt.Errorf("failed to count expenses: %w", err)
	}
	if total == 0 {
		fmt.Println(cli.InfoStyle.Render("No expenses to reindex."))
		return nil
	}

	bar := progressbar.NewOptions(int(total),
		progressbar.OptionSetWriter(os.Stdout),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Reindexing expenses...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	var (
		updated int64
		failed  int64
		afterID string
	)
	for {
		batch, err := store.ScanExpenses(ctx, afterID, reindexBatchSize)
		if err != nil {
			return fmt.Errorf("failed to scan expenses: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			exp := &batch[i]
			if err := store.UpdateExpense(ctx, exp); err != nil {
				failed++
				slog.Warn("failed to reindex expense", "expense_id", exp.ID, "error", err)
			} else {
				updated++
			}
			_ = bar.Add(1)
		}

		afterID = batch[len(batch)-1].ID
		if len(batch) < reindexBatchSize {
			break
		}
	}

	if failed > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("Reindexed %d expenses, %d failed (see log)", updated, failed)))
		return nil
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Reindexed %d expenses", updated)))
	return nil
}
