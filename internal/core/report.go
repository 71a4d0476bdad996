package core

import (
	"strings"
	"time"
)

type ReportType string

const (
	ReportOverview ReportType = "overview"
	ReportExpenses ReportType = "expenses"
	ReportIncome   ReportType = "income"
)

func ParseReportType(s string) (ReportType, error) {
	switch rt := ReportType(strings.ToLower(strings.TrimSpace(s))); rt {
	case "", "all":
		return ReportOverview, nil
	case ReportOverview, ReportExpenses, ReportIncome:
		return rt, nil
	}
	return "", NewValidationError("reportType", "must be one of overview, expenses, income")
}

// Charts is keyed by chart name so that a report only carries what it asked for.
type Charts map[string]any

// Report is the reports payload.
type Report struct {
	Charts Charts `json:"charts"`
}

// BuildReport assembles the charts for reportType. rangeTxs must cover
// rangeMonths; yearTxs must cover the calendar year of now.
func BuildReport(reportType ReportType, rangeTxs []Transaction, rangeMonths []YearMonth, yearTxs []Transaction, now time.Time, names map[int64]string) Report {
	charts := Charts{}
	if reportType == ReportOverview || reportType == ReportIncome {
		charts["expenseVsIncome"] = MonthlyTotals(rangeTxs, rangeMonths)
	}
	if reportType == ReportOverview || reportType == ReportExpenses {
		charts["expenseByCategory"] = ExpenseByCategory(rangeTxs, names)
		charts["monthlyTrend"] = MonthlyTrend(yearTxs, MonthsOfYear(now.Year()))
	}
	return Report{Charts: charts}
}
