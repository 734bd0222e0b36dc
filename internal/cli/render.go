package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aleksanderujek/oro/internal/model"
)

// dateLayout is how expense dates are shown in tables.
const dateLayout = "Jan 2, 2006"

// RenderExpenses writes a table of expenses with their category names.
func RenderExpenses(out io.Writer, expenses []model.Expense, categories model.Categories) {
	if len(expenses) == 0 {
		fmt.Fprintln(out, InfoStyle.Render("No expenses found."))
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		TableHeaderStyle.Render("Date"),
		TableHeaderStyle.Render("Name"),
		TableHeaderStyle.Render("Amount"),
		TableHeaderStyle.Render("Category"),
		TableHeaderStyle.Render("Account"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 12),
		strings.Repeat("-", 24),
		strings.Repeat("-", 10),
		strings.Repeat("-", 16),
		strings.Repeat("-", 8))

	for i := range expenses {
		exp := &expenses[i]

		name := exp.Name
		if exp.Deleted() {
			name = SubtleStyle.Render(name + " (deleted)")
		}

		account := string(exp.Account)
		if account == "" {
			account = SubtleStyle.Render("-")
		}

		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
			exp.OccurredAt.Format(dateLayout),
			name,
			exp.Amount,
			categoryName(categories, exp.CategoryID),
			account)
	}
}

// RenderCategories writes the category table.
func RenderCategories(out io.Writer, categories []model.Category) {
	if len(categories) == 0 {
		fmt.Fprintln(out, InfoStyle.Render("No categories found. Run 'oro migrate' to seed them."))
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "%s\t%s\t%s\n",
		TableHeaderStyle.Render("ID"),
		TableHeaderStyle.Render("Key"),
		TableHeaderStyle.Render("Name"))
	fmt.Fprintf(w, "%s\t%s\t%s\n",
		strings.Repeat("-", 4),
		strings.Repeat("-", 16),
		strings.Repeat("-", 20))

	for _, cat := range categories {
		fmt.Fprintf(w, "%d\t%s\t%s\n", cat.ID, cat.Key, cat.Name)
	}
}

// RenderMappings writes the merchant mapping table.
func RenderMappings(out io.Writer, mappings []model.MerchantMapping, categories model.Categories) {
	if len(mappings) == 0 {
		fmt.Fprintln(out, InfoStyle.Render("No merchant mappings saved. Use 'oro mappings set' to add one."))
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "%s\t%s\t%s\n",
		TableHeaderStyle.Render("Merchant"),
		TableHeaderStyle.Render("Category"),
		TableHeaderStyle.Render("Updated"))
	fmt.Fprintf(w, "%s\t%s\t%s\n",
		strings.Repeat("-", 24),
		strings.Repeat("-", 16),
		strings.Repeat("-", 12))

	for i := range mappings {
		m := &mappings[i]
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			m.MerchantKey,
			categoryName(categories, m.CategoryID),
			m.UpdatedAt.Format(dateLayout))
	}
}

// RenderDashboard writes the monthly snapshot: a summary box, the category
// breakdown, and the busiest day.
func RenderDashboard(out io.Writer, snap *model.DashboardSnapshot) {
	summary := fmt.Sprintf("Total spend: %s\n", BoldStyle.Render(fmt.Sprintf("%.2f", snap.Total))) +
		fmt.Sprintf("Previous month: %.2f\n", snap.MonthOverMonth.Previous) +
		fmt.Sprintf("Change: %+.2f (%+.1f%%)\n", snap.MonthOverMonth.Delta, snap.MonthOverMonth.Percent) +
		fmt.Sprintf("Timezone: %s", snap.Timezone)

	fmt.Fprintln(out, RenderBox(ChartIcon+" "+snap.Month, summary))

	if len(snap.TopCategories) == 0 {
		fmt.Fprintln(out, InfoStyle.Render("No expenses recorded this month."))
		return
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n",
		TableHeaderStyle.Render("Category"),
		TableHeaderStyle.Render("Total"),
		TableHeaderStyle.Render("Share"))
	fmt.Fprintf(w, "%s\t%s\t%s\n",
		strings.Repeat("-", 16),
		strings.Repeat("-", 10),
		strings.Repeat("-", 6))
	for _, share := range snap.TopCategories {
		fmt.Fprintf(w, "%s\t%.2f\t%.1f%%\n", share.CategoryName, share.Total, share.Percent)
	}
	_ = w.Flush()

	if day, total := busiestDay(snap.Daily); total > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, SubtleStyle.Render(fmt.Sprintf("Busiest day: %s-%02d (%.2f)", snap.Month, day, total)))
	}
}

// RenderOutcome writes a categorization outcome the way the categorize and
// resolve commands show it.
func RenderOutcome(out io.Writer, outcome *model.CategorizationOutcome) {
	switch {
	case outcome.Status == model.OutcomeMapped:
		fmt.Fprintln(out, FormatSuccess(fmt.Sprintf("Mapped to %s (%s match)", outcome.Category.Name, outcome.MatchKind)))
	case outcome.Status == model.OutcomeAutoApplied:
		fmt.Fprintln(out, FormatSuccess(fmt.Sprintf("Categorized as %s (confidence %.2f)", outcome.Category.Name, outcome.Confidence)))
	case outcome.Status == model.OutcomeSuggested && len(outcome.Suggestions) > 0:
		fmt.Fprintln(out, FormatInfo("No confident match; suggestions:"))
		for _, s := range outcome.Suggestions {
			fmt.Fprintf(out, "  • %s (%.2f)\n", s.CategoryName, s.Confidence)
		}
	default:
		fmt.Fprintln(out, FormatWarning("Provider unavailable; expense would stay uncategorized."))
	}
}

func categoryName(categories model.Categories, id int64) string {
	if cat := categories.ByID(id); cat != nil {
		return cat.Name
	}
	return SubtleStyle.Render("(unknown)")
}

func busiestDay(daily []model.DailyTotal) (int, float64) {
	day, best := 0, 0.0
	for _, d := range daily {
		if d.Total > best {
			day, best = d.Day, d.Total
		}
	}
	return day, best
}
