// Package export renders alert history and zone scores as an Excel workbook.
package export

import (
	"bytes"
	"fmt"
	"time"

	"climate-sentinel/internal/models"
	"climate-sentinel/internal/scoring"

	"github.com/xuri/excelize/v2"
)

const (
	AlertsSheet = "Alerts"
	ScoresSheet = "Zone Scores"
)

// AlertsHeader column titles of the alerts sheet
var AlertsHeader = []string{
	"Alert ID",
	"Zone ID",
	"Zone Name",
	"Severity",
	"RES Score",
	"PM2.5 (μg/m³)",
	"Message",
	"Created At (UTC)",
	"Active",
}

// ScoresHeader column titles of the zone scores sheet
var ScoresHeader = []string{
	"Zone ID",
	"Zone Name",
	"RES Score",
	"Band",
	"Air Risk",
	"Water Deficit",
	"Density Factor",
	"Industrial Penalty",
	"PM2.5 (μg/m³)",
	"Computed At (UTC)",
}

// AlertsWorkbook builds an xlsx with the alert history and, when given, the latest scores
func AlertsWorkbook(alerts []models.Alert, scores []models.ResScore) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(AlertsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
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

	alertRows := make([][]any, 0, len(alerts))
	for _, a := range alerts {
		alertRows = append(alertRows, []any{
			a.ID,
			a.ZoneID,
			a.ZoneName,
			string(a.Severity),
			round1(a.ResScore),
			round1(a.PM25),
			a.Message,
			formatTime(a.Timestamp),
			a.IsActive,
		})
	}
	if err := writeSheet(f, AlertsSheet, AlertsHeader, alertRows, headerStyle,
		[]float64{38, 38, 20, 10, 10, 14, 60, 22, 8}); err != nil {
		return nil, err
	}

	if len(scores) > 0 {
		if _, err := f.NewSheet(ScoresSheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
		scoreRows := make([][]any, 0, len(scores))
		for _, s := range scores {
			scoreRows = append(scoreRows, []any{
				s.ZoneID,
				s.ZoneName,
				round1(s.Score),
				scoring.Band(s.Score),
				round1(s.AirRisk),
				s.WaterDeficit,
				s.DensityFactor,
				s.IndustrialPenalty,
				round1(s.PM25),
				formatTime(s.Timestamp),
			})
		}
		if err := writeSheet(f, ScoresSheet, ScoresHeader, scoreRows, headerStyle,
			[]float64{38, 20, 10, 10, 10, 14, 14, 18, 14, 22}); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, headerStyle int, widths []float64) error {
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}
	return nil
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
