package reports

import (
	"bytes"
	"encoding/csv"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

var csvHeader = []string{"section", "metric", "value"}

// normalizeExportFormat defaults an empty format to json.
func normalizeExportFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "":
		return models.ExportFormatJSON, nil
	case models.ExportFormatJSON, models.ExportFormatCSV:
		return format, nil
	default:
		return "", exceptions.ErrReportExportFormat(nil, format)
	}
}

func renderExport(report *models.Report, format string, now time.Time) (*responses.ReportExport, error) {
	content := report.Content
	if content == nil {
		content = &models.ReportContent{Type: report.ReportType}
	}

	metrics := report.Parameters.Metrics

	switch format {
	case models.ExportFormatCSV:
		body, err := renderCSV(content, metrics)
		if err != nil {
			return nil, err
		}
		return &responses.ReportExport{
			Filename:    utils.GenerateExportFilename(report.Title, format, now),
			ContentType: constvars.MIMETextCSVCharsetUTF8,
			Body:        body,
		}, nil
	default:
		body, err := json.Marshal(content)
		if err != nil {
			return nil, exceptions.ErrCannotMarshalJSON(err)
		}
		if len(metrics) > 0 {
			if body, err = selectMetrics(body, metrics); err != nil {
				return nil, err
			}
		}
		return &responses.ReportExport{
			Filename:    utils.GenerateExportFilename(report.Title, format, now),
			ContentType: constvars.MIMEApplicationJSONCharsetUTF8,
			Body:        body,
		}, nil
	}
}

// selectMetrics keeps the report type and period plus each requested path,
// e.g. "financial.totalRevenue" or "appointment.peakHours.0". Unknown paths are skipped.
func selectMetrics(body []byte, paths []string) ([]byte, error) {
	selected := map[string]json.RawMessage{
		"type":   json.RawMessage(gjson.GetBytes(body, "type").Raw),
		"period": json.RawMessage(gjson.GetBytes(body, "period").Raw),
	}
	for _, path := range paths {
		result := gjson.GetBytes(body, path)
		if !result.Exists() {
			continue
		}
		selected[path] = json.RawMessage(result.Raw)
	}

	out, err := json.Marshal(selected)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}
	return out, nil
}

// renderCSV writes one section,metric,value row per leaf of the content.
// Nested objects are joined with dots and list entries by their index.
// A non-empty metrics list restricts the rows to those paths and their children.
func renderCSV(content *models.ReportContent, metrics []string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	rows := [][]string{
		csvHeader,
		{"report", "type", content.Type},
		{"report", "period.startDate", content.Period.StartDate.UTC().Format(time.RFC3339)},
		{"report", "period.endDate", content.Period.EndDate.UTC().Format(time.RFC3339)},
	}
	for _, section := range content.Sections() {
		raw, err := json.Marshal(section.Value)
		if err != nil {
			return nil, exceptions.ErrCannotMarshalJSON(err)
		}
		var tree interface{}
		if err := json.Unmarshal(raw, &tree); err != nil {
			return nil, exceptions.ErrCannotMarshalJSON(err)
		}
		flatten("", tree, func(metric, value string) {
			if metricSelected(joinMetric(section.Name, metric), metrics) {
				rows = append(rows, []string{section.Name, metric, value})
			}
		})
	}

	if err := writer.WriteAll(rows); err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}
	return buf.Bytes(), nil
}

func flatten(prefix string, node interface{}, emit func(metric, value string)) {
	switch v := node.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			flatten(joinMetric(prefix, key), v[key], emit)
		}
	case []interface{}:
		for i, item := range v {
			flatten(joinMetric(prefix, strconv.Itoa(i)), item, emit)
		}
	case nil:
		emit(prefix, "")
	case float64:
		emit(prefix, strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		emit(prefix, strconv.FormatBool(v))
	case string:
		emit(prefix, v)
	default:
		raw, _ := json.Marshal(v)
		emit(prefix, string(raw))
	}
}

func metricSelected(path string, metrics []string) bool {
	if len(metrics) == 0 {
		return true
	}
	for _, metric := range metrics {
		if path == metric || strings.HasPrefix(path, metric+".") {
			return true
		}
	}
	return false
}

func joinMetric(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
