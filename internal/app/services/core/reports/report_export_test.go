package reports

import (
	"hospital-service/internal/app/models"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCSV(t *testing.T) {
	period := models.NewDateRange(
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
	)
	content := models.NewAppointmentSummaryContent(period, models.MetricsFilter{}, &models.AppointmentMetrics{
		TotalAppointments: 4,
		NoShowRate:        25,
		PeakHours:         []models.CountItem{{Label: "9:00 AM", Count: 2}},
		AppointmentReasons: []models.CountItem{
			{Label: "checkup, annual", Count: 1},
		},
	})

	body, err := renderCSV(content, nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Equal(t, "section,metric,value", lines[0])
	assert.Equal(t, "report,type,appointment_summary", lines[1])
	assert.Equal(t, "report,period.startDate,2024-05-01T00:00:00Z", lines[2])
	assert.Contains(t, lines, "appointment,peakHours.0.label,9:00 AM")
	assert.Contains(t, lines, "appointment,peakHours.0.count,2")
	assert.Contains(t, lines, `appointment,appointmentReasons.0.label,"checkup, annual"`)
	assert.Contains(t, lines, "appointment,noShowRate,25")
	assert.Contains(t, lines, "appointment,totalAppointments,4")
}

func TestRenderExportSelectedMetrics(t *testing.T) {
	period := models.NewDateRange(
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
	)
	report := &models.Report{
		Title:      "May finance",
		ReportType: models.ReportTypeFinancialSummary,
		Parameters: models.ReportParameters{
			Metrics: []string{"financial.totalRevenue", "financial.paymentMethodDistribution", "financial.missing"},
		},
		Content: models.NewFinancialSummaryContent(period, models.MetricsFilter{}, &models.FinancialMetrics{
			TotalRevenue:      325,
			PaidBills:         4,
			OutstandingAmount: 50,
			PaymentMethodDistribution: models.PaymentMethodDistribution{
				Card: 3,
				Bank: 1,
			},
		}),
	}
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("json keeps only the requested paths", func(t *testing.T) {
		export, err := renderExport(report, models.ExportFormatJSON, now)
		require.NoError(t, err)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(export.Body, &body))
		assert.Equal(t, models.ReportTypeFinancialSummary, body["type"])
		assert.Contains(t, body, "period")
		assert.Equal(t, float64(325), body["financial.totalRevenue"])
		assert.Contains(t, body, "financial.paymentMethodDistribution")
		assert.NotContains(t, body, "financial.missing")
		assert.NotContains(t, body, "financial")
	})

	t.Run("csv keeps the requested rows and their children", func(t *testing.T) {
		export, err := renderExport(report, models.ExportFormatCSV, now)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(string(export.Body)), "\n")
		assert.Contains(t, lines, "financial,totalRevenue,325")
		assert.Contains(t, lines, "financial,paymentMethodDistribution.card,3")
		assert.NotContains(t, lines, "financial,paidBills,4")
		assert.NotContains(t, lines, "financial,outstandingAmount,50")
	})
}

func TestNormalizeExportFormat(t *testing.T) {
	format, err := normalizeExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatJSON, format)

	format, err = normalizeExportFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatCSV, format)

	_, err = normalizeExportFormat("xlsx")
	assert.Error(t, err)
}
