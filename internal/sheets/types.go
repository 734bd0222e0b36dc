package sheets

import (
	"context"
	"time"

	"github.com/aleksanderujek/oro/internal/model"
)

// MonthlyReport is the complete payload for one month's spreadsheet export:
// the aggregate snapshot plus the expense rows it was computed from.
type MonthlyReport struct {
	GeneratedAt time.Time
	Snapshot    model.DashboardSnapshot
	Categories  model.Categories
	Expenses    []model.Expense
}

// Exporter writes a monthly report to some external destination.
type Exporter interface {
	Export(ctx context.Context, report *MonthlyReport) error
}
