package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// CandidateReportRow is one ranked candidate in the ops report.
type CandidateReportRow struct {
	Rank          int
	Origin        string
	Destination   string
	Price         float64
	DiscountPct   *float64
	CategoryCode  string
	CategoryLabel string
	Score         float64
	StartDate     string
	EndDate       string
	Airline       string
	Main          bool
}

// ReportService writes the daily ranked-candidate spreadsheet for ops.
type ReportService struct {
	dir string
}

// NewReportService creates a report service writing under dir
func NewReportService(dir string) *ReportService {
	return &ReportService{dir: dir}
}

// WriteCandidateReport renders the ranked candidate list to an xlsx file
// named after the market and date, and returns its path.
func (s *ReportService) WriteCandidateReport(market string, date time.Time, rows []CandidateReportRow) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Candidates"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return "", err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Rank", "Main", "Origin", "Destination", "Price", "Discount %", "Category", "Label", "Score", "Depart", "Return", "Airline"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return "", err
		}
	}

	for i, row := range rows {
		values := []any{
			row.Rank,
			row.Main,
			row.Origin,
			row.Destination,
			row.Price,
			formatDiscount(row.DiscountPct),
			row.CategoryCode,
			row.CategoryLabel,
			row.Score,
			row.StartDate,
			row.EndDate,
			row.Airline,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", err
			}
		}
	}

	path := filepath.Join(s.dir, fmt.Sprintf("candidates_%s_%s.xlsx", market, date.Format("2006-01-02")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return path, nil
}

func formatDiscount(pct *float64) any {
	if pct == nil {
		return ""
	}
	return *pct
}
