package export

import (
	"bytes"
	"testing"
	"time"

	"climate-sentinel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestAlertsWorkbook(t *testing.T) {
	ts := time.Date(2024, 11, 3, 8, 30, 0, 0, time.UTC)
	alerts := []models.Alert{
		{ID: "al-1", ZoneID: "z1", ZoneName: "East Delhi", Severity: models.SeverityCritical, ResScore: 28.04, PM25: 171.26,
			Message: "Critical resilience failure detected. RES score at 28/100.", Timestamp: ts, IsActive: true},
		{ID: "al-2", ZoneID: "z2", ZoneName: "New Delhi", Severity: models.SeverityMedium, ResScore: 71, PM25: 64,
			Message: "Moderate air quality detected. PM2.5 at 64.0 μg/m³.", Timestamp: ts, IsActive: false},
	}
	scores := []models.ResScore{{ZoneID: "z1", ZoneName: "East Delhi", Score: 28.04, PM25: 171.26, IndustrialPenalty: 10, Timestamp: ts}}

	data, err := AlertsWorkbook(alerts, scores)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{AlertsSheet, ScoresSheet}, f.GetSheetList())

	rows, err := f.GetRows(AlertsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, AlertsHeader, rows[0])
	assert.Equal(t, "al-1", rows[1][0])
	assert.Equal(t, "critical", rows[1][3])
	assert.Equal(t, "28", rows[1][4])
	assert.Equal(t, "2024-11-03T08:30:00Z", rows[1][7])
	assert.Contains(t, []string{"FALSE", "0"}, rows[2][8])

	scoreRows, err := f.GetRows(ScoresSheet)
	require.NoError(t, err)
	require.Len(t, scoreRows, 2)
	assert.Equal(t, "critical", scoreRows[1][3])
}

func TestAlertsWorkbook_EmptyHistory(t *testing.T) {
	data, err := AlertsWorkbook(nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{AlertsSheet}, f.GetSheetList())
	rows, err := f.GetRows(AlertsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
