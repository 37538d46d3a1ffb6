package core

// MonthlyTotal is the statistics payload for one "YYYY-MM" month.
type MonthlyTotal struct {
	Month        string `json:"month"`
	TotalExpense Amount `json:"totalExpense"`
	TotalIncome  Amount `json:"totalIncome,omitempty"`
}

// YearRecord lists the months of a year that have at least one bill record.
type YearRecord struct {
	Year   int      `json:"year"`
	Months []string `json:"months"`
}
