package http

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"bloodbank-backend/internal/domain"
)

type sheet struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]any
}

// DonationReportWorkbook renders a donation report as an xlsx file: a summary
// sheet followed by the per-blood-type and per-day breakdowns.
func DonationReportWorkbook(report *domain.DonationReport) ([]byte, error) {
	return buildWorkbook([]sheet{
		{
			name:    "Summary",
			headers: []string{"Period", "Since", "Total Donations", "Total Units"},
			widths:  []float64{12, 22, 18, 14},
			rows: [][]any{{
				string(report.Period), report.Since.Format("2006-01-02 15:04"), report.TotalDonations, report.TotalUnits,
			}},
		},
		groupSheet("By Blood Type", "Blood Type", "Donations", report.ByBloodType),
		groupSheet("By Date", "Date", "Donations", report.ByDate),
	})
}

// RequestReportWorkbook renders a request report the same way.
func RequestReportWorkbook(report *domain.RequestReport) ([]byte, error) {
	return buildWorkbook([]sheet{
		{
			name:    "Summary",
			headers: []string{"Period", "Since", "Total Requests", "Total Units"},
			widths:  []float64{12, 22, 18, 14},
			rows: [][]any{{
				string(report.Period), report.Since.Format("2006-01-02 15:04"), report.TotalRequests, report.TotalUnits,
			}},
		},
		groupSheet("By Status", "Status", "Requests", report.ByStatus),
		groupSheet("By Blood Type", "Blood Type", "Requests", report.ByBloodType),
		groupSheet("By Urgency", "Urgency", "Requests", report.ByUrgency),
	})
}

func groupSheet(name, keyHeader, countHeader string, groups map[string]*domain.GroupStat) sheet {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := sheet{
		name:    name,
		headers: []string{keyHeader, countHeader, "Units"},
		widths:  []float64{16, 14, 12},
	}
	for _, k := range keys {
		s.rows = append(s.rows, []any{k, groups[k].Count, groups[k].Units})
	}
	return s
}

func buildWorkbook(sheets []sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8D7DA"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	for col, header := range s.headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(s.name, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(s.name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
		if col < len(s.widths) {
			name, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(s.name, name, name, s.widths[col]); err != nil {
				return fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	for r, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	return f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
