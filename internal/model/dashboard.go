package model

// MonthOverMonth compares a month's total spend against the previous one.
// Delta and Percent are zero when the previous month had no spend and the
// current month does not either; when only the previous month is zero,
// Percent is pinned to 100 so a first month of spending reads as full growth
// rather than a division blowup.
type MonthOverMonth struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Delta    float64 `json:"absolute"`
	Percent  float64 `json:"percent"`
}

// DailyTotal is one day of a month's spending series. Day is the 1-based
// day of month; the series always covers every day of the month, with zero
// totals for days without expenses.
type DailyTotal struct {
	Day   int     `json:"day"`
	Total float64 `json:"total"`
}

// CategoryShare is one category's slice of a month's spend.
type CategoryShare struct {
	CategoryKey  string  `json:"categoryKey"`
	CategoryName string  `json:"categoryName"`
	Total        float64 `json:"total"`
	Percent      float64 `json:"percent"`
}

// DashboardSnapshot is the aggregate view for a single calendar month in the
// user's timezone.
type DashboardSnapshot struct {
	Month          string          `json:"month"`
	Timezone       string          `json:"timezone"`
	Total          float64         `json:"total"`
	MonthOverMonth MonthOverMonth  `json:"monthOverMonth"`
	Daily          []DailyTotal    `json:"daily"`
	TopCategories  []CategoryShare `json:"topCategories"`
}
