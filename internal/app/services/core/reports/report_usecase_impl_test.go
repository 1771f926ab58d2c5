package reports

import (
	"context"
	"errors"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryReportRepository struct {
	mu      sync.Mutex
	reports map[primitive.ObjectID]*models.Report
}

func newMemoryReportRepository() *memoryReportRepository {
	return &memoryReportRepository{reports: map[primitive.ObjectID]*models.Report{}}
}

func (r *memoryReportRepository) Create(ctx context.Context, report *models.Report) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report.ID = primitive.NewObjectID()
	stored := *report
	r.reports[report.ID] = &stored
	return report, nil
}

func (r *memoryReportRepository) FindByID(ctx context.Context, reportID primitive.ObjectID) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[reportID]
	if !ok {
		return nil, nil
	}
	found := *report
	return &found, nil
}

func (r *memoryReportRepository) Find(ctx context.Context, query models.ReportQuery, pagination *requests.Pagination) ([]models.Report, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Report, 0)
	for _, report := range r.reports {
		if query.ReportType != "" && report.ReportType != query.ReportType {
			continue
		}
		if query.IsTemplate != nil && report.IsTemplate != *query.IsTemplate {
			continue
		}
		if query.Viewer != nil && !query.Viewer.IsAdmin() && !visibleTo(report, *query.Viewer) {
			continue
		}
		result = append(result, *report)
	}
	return result, len(result), nil
}

func visibleTo(report *models.Report, viewer models.Actor) bool {
	if report.AccessLevel == models.AccessLevelPublic {
		return true
	}
	for _, role := range report.AllowedRoles {
		if role == viewer.Role {
			return true
		}
	}
	for _, user := range report.AllowedUsers {
		if !viewer.IsSystem() && user == viewer.UserID {
			return true
		}
	}
	return false
}

func (r *memoryReportRepository) Update(ctx context.Context, reportID primitive.ObjectID, fields map[string]interface{}) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[reportID]
	if !ok {
		return nil, nil
	}
	for key, value := range fields {
		switch key {
		case "status":
			report.Status = value.(string)
		case "error":
			report.Error = value.(string)
		case "content":
			report.Content = value.(*models.ReportContent)
		case "generatedAt":
			at := value.(time.Time)
			report.GeneratedAt = &at
		case "expiresAt":
			at := value.(time.Time)
			report.ExpiresAt = &at
		case "updatedAt":
			report.UpdatedAt = value.(time.Time)
		case "title":
			report.Title = value.(string)
		case "accessLevel":
			report.AccessLevel = value.(string)
		case "allowedRoles":
			report.AllowedRoles = value.([]string)
		case "version":
			report.Version = value.(int)
		case "lastModifiedBy":
			report.LastModifiedBy = value.(*primitive.ObjectID)
		}
	}
	updated := *report
	return &updated, nil
}

func (r *memoryReportRepository) Delete(ctx context.Context, reportID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[reportID]; !ok {
		return exceptions.ErrReportNotFound(nil, reportID.Hex())
	}
	delete(r.reports, reportID)
	return nil
}

func (r *memoryReportRepository) IncrementViews(ctx context.Context, reportID primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[reportID]
	if !ok {
		return exceptions.ErrReportNotFound(nil, reportID.Hex())
	}
	report.Statistics.Views++
	report.Statistics.LastViewed = &at
	return nil
}

func (r *memoryReportRepository) IncrementDownloads(ctx context.Context, reportID primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[reportID]
	if !ok {
		return exceptions.ErrReportNotFound(nil, reportID.Hex())
	}
	report.Statistics.Downloads++
	report.Statistics.LastDownloaded = &at
	return nil
}

func (r *memoryReportRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, report := range r.reports {
		if report.ExpiresAt != nil && report.ExpiresAt.Before(now) {
			delete(r.reports, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memoryReportRepository) only(t *testing.T) *models.Report {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.Len(t, r.reports, 1)
	for _, report := range r.reports {
		return report
	}
	return nil
}

type stubMetricsUsecase struct {
	contracts.MetricsUsecase
	err     error
	windows []models.DateRange
}

func (s *stubMetricsUsecase) PatientMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.PatientMetrics, error) {
	s.windows = append(s.windows, window)
	if s.err != nil {
		return nil, s.err
	}
	return &models.PatientMetrics{TotalPatients: 10, ActivePatients: 4, PatientRetentionRate: 40}, nil
}

func (s *stubMetricsUsecase) GeographicMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.GeographicMetrics, error) {
	return &models.GeographicMetrics{
		PatientDistributionByCity:  []models.CountItem{{Label: "Toronto", Count: 6}},
		PatientDistributionByState: []models.CountItem{{Label: "ON", Count: 10}},
	}, nil
}

func (s *stubMetricsUsecase) FinancialMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.FinancialMetrics, error) {
	s.windows = append(s.windows, window)
	if s.err != nil {
		return nil, s.err
	}
	return &models.FinancialMetrics{TotalRevenue: 100, TotalBills: 1, PaidBills: 1, AverageBillAmount: 100}, nil
}

func (s *stubMetricsUsecase) SystemUsage(ctx context.Context, window models.DateRange) (*models.SystemUsageMetrics, error) {
	s.windows = append(s.windows, window)
	return &models.SystemUsageMetrics{TotalUsers: 3}, nil
}

type recordingPublisher struct {
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	p.keys = append(p.keys, routingKey)
	return p.err
}

var reportNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

type reportFixture struct {
	usecase   *reportUsecase
	repo      *memoryReportRepository
	metrics   *stubMetricsUsecase
	publisher *recordingPublisher
	admin     models.Actor
	doctor    models.Actor
	patient   models.Actor
}

func newReportFixture() *reportFixture {
	f := &reportFixture{
		repo:      newMemoryReportRepository(),
		metrics:   &stubMetricsUsecase{},
		publisher: &recordingPublisher{},
		admin:     models.NewUserActor(primitive.NewObjectID(), constvars.RoleAdmin),
		doctor:    models.NewUserActor(primitive.NewObjectID(), constvars.RoleDoctor),
		patient:   models.NewUserActor(primitive.NewObjectID(), constvars.RolePatient),
	}
	cfg := &config.InternalConfig{Report: config.AppReport{RetentionInDays: 30, DefaultWindowInDays: 30}}
	f.usecase = newReportUsecase(f.repo, f.metrics, f.publisher, cfg, zap.NewNop())
	f.usecase.now = func() time.Time { return reportNow }
	return f
}

func (f *reportFixture) generate(t *testing.T, actor models.Actor, request *requests.GenerateReport) *models.Report {
	t.Helper()
	report, err := f.usecase.Generate(context.Background(), actor, request)
	require.NoError(t, err)
	return report
}

func TestReportUsecase_Generate(t *testing.T) {
	f := newReportFixture()

	report := f.generate(t, f.doctor, &requests.GenerateReport{
		Title:      "Monthly patients",
		ReportType: models.ReportTypePatientSummary,
	})

	assert.Equal(t, models.ReportStatusCompleted, report.Status)
	assert.Equal(t, models.AccessLevelPrivate, report.AccessLevel)
	assert.Equal(t, models.ReportPriorityMedium, report.Priority)
	assert.Equal(t, f.doctor.Ref(), report.CreatedBy)
	assert.Equal(t, 1, report.Version)
	require.NotNil(t, report.GeneratedAt)
	require.NotNil(t, report.ExpiresAt)
	assert.True(t, reportNow.AddDate(0, 0, 30).Equal(*report.ExpiresAt))

	require.NotNil(t, report.Content)
	assert.Equal(t, models.ReportTypePatientSummary, report.Content.Type)
	assert.NotNil(t, report.Content.Patient)
	assert.NotNil(t, report.Content.Geographic)
	assert.Nil(t, report.Content.Financial)
	assert.True(t, reportNow.AddDate(0, 0, -30).Equal(report.Content.Period.StartDate))
	assert.True(t, reportNow.Equal(report.Content.Period.EndDate))

	assert.Equal(t, []string{constvars.EventReportGenerated}, f.publisher.keys)
}

func TestReportUsecase_GenerateExplicitWindow(t *testing.T) {
	f := newReportFixture()

	report := f.generate(t, f.admin, &requests.GenerateReport{
		Title:      "Q1 revenue",
		ReportType: models.ReportTypeFinancialSummary,
		Parameters: requests.ReportParameters{
			DateRange: &requests.DateRange{StartDate: "2024-01-01", EndDate: "2024-03-31"},
		},
	})

	require.Len(t, f.metrics.windows, 1)
	window := f.metrics.windows[0]
	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(window.StartDate))
	assert.True(t, window.Contains(time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 100.0, report.Content.Financial.TotalRevenue)
}

func TestReportUsecase_GenerateSystemActor(t *testing.T) {
	f := newReportFixture()

	report := f.generate(t, models.SystemActor, &requests.GenerateReport{
		Title:      "Usage",
		ReportType: models.ReportTypeSystemUsage,
	})
	assert.Nil(t, report.CreatedBy)
	assert.Equal(t, models.ReportStatusCompleted, report.Status)
}

func TestReportUsecase_GenerateFailure(t *testing.T) {
	f := newReportFixture()
	f.metrics.err = errors.New("aggregate: cursor timeout")

	_, err := f.usecase.Generate(context.Background(), f.admin, &requests.GenerateReport{
		Title:      "Broken",
		ReportType: models.ReportTypeFinancialSummary,
	})
	require.Error(t, err)

	stored := f.repo.only(t)
	assert.Equal(t, models.ReportStatusFailed, stored.Status)
	assert.Equal(t, "aggregate: cursor timeout", stored.Error)
	assert.Nil(t, stored.Content)
	assert.Empty(t, f.publisher.keys)
}

func TestReportUsecase_GenerateRejectsUnknownType(t *testing.T) {
	f := newReportFixture()

	_, err := f.usecase.Generate(context.Background(), f.admin, &requests.GenerateReport{Title: "x", ReportType: "weather"})
	require.Error(t, err)
	assert.Equal(t, constvars.StatusBadRequest, exceptions.StatusCodeOf(err))
	assert.Empty(t, f.repo.reports)
}

func TestReportUsecase_EventFailureIsNotFatal(t *testing.T) {
	f := newReportFixture()
	f.publisher.err = errors.New("channel closed")

	report := f.generate(t, f.admin, &requests.GenerateReport{Title: "Usage", ReportType: models.ReportTypeSystemUsage})
	assert.Equal(t, models.ReportStatusCompleted, report.Status)
}

func TestReportUsecase_FindByIDAccess(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	report := f.generate(t, f.admin, &requests.GenerateReport{
		Title:        "Doctors only",
		ReportType:   models.ReportTypeSystemUsage,
		AccessLevel:  models.AccessLevelRestricted,
		AllowedRoles: []string{constvars.RoleDoctor},
	})

	found, err := f.usecase.FindByID(ctx, f.doctor, report.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.Statistics.Views)
	require.NotNil(t, found.Statistics.LastViewed)

	_, err = f.usecase.FindByID(ctx, f.patient, report.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, constvars.StatusForbidden, exceptions.StatusCodeOf(err))
	assert.Equal(t, int64(1), f.repo.only(t).Statistics.Views)

	_, err = f.usecase.FindByID(ctx, f.doctor, primitive.NewObjectID().Hex())
	assert.True(t, exceptions.IsNotFound(err))
}

func TestReportUsecase_ExpiredReportIsDenied(t *testing.T) {
	f := newReportFixture()
	report := f.generate(t, f.admin, &requests.GenerateReport{Title: "Old", ReportType: models.ReportTypeSystemUsage})

	f.usecase.now = func() time.Time { return reportNow.AddDate(0, 0, 31) }
	_, err := f.usecase.FindByID(context.Background(), f.admin, report.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, constvars.StatusForbidden, exceptions.StatusCodeOf(err))
}

func TestReportUsecase_UpdateAndDelete(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()
	report := f.generate(t, f.doctor, &requests.GenerateReport{Title: "Mine", ReportType: models.ReportTypeSystemUsage})

	title := "Renamed"
	_, err := f.usecase.Update(ctx, f.patient, report.ID.Hex(), &requests.UpdateReport{Title: &title})
	require.Error(t, err)
	assert.Equal(t, constvars.StatusForbidden, exceptions.StatusCodeOf(err))

	updated, err := f.usecase.Update(ctx, f.doctor, report.ID.Hex(), &requests.UpdateReport{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, f.doctor.Ref(), updated.LastModifiedBy)

	err = f.usecase.Delete(ctx, models.SystemActor, report.ID.Hex())
	assert.Equal(t, constvars.StatusForbidden, exceptions.StatusCodeOf(err))

	require.NoError(t, f.usecase.Delete(ctx, f.admin, report.ID.Hex()))
	assert.Empty(t, f.repo.reports)
}

func TestReportUsecase_List(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	f.generate(t, f.admin, &requests.GenerateReport{Title: "Public", ReportType: models.ReportTypeSystemUsage, AccessLevel: models.AccessLevelPublic})
	f.generate(t, f.admin, &requests.GenerateReport{Title: "Doctors", ReportType: models.ReportTypeSystemUsage, AllowedRoles: []string{constvars.RoleDoctor}})
	f.generate(t, f.admin, &requests.GenerateReport{Title: "Private", ReportType: models.ReportTypeSystemUsage})

	page := requests.Pagination{Page: 1, PageSize: 10}

	_, total, err := f.usecase.List(ctx, f.admin, &requests.ReportFilter{Pagination: page})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	_, total, err = f.usecase.List(ctx, f.doctor, &requests.ReportFilter{Pagination: page})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	reports, total, err := f.usecase.List(ctx, f.patient, &requests.ReportFilter{Pagination: page})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Public", reports[0].Title)
}

func TestReportUsecase_Export(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()
	report := f.generate(t, f.admin, &requests.GenerateReport{Title: "Q2 revenue!", ReportType: models.ReportTypeFinancialSummary})

	t.Run("json", func(t *testing.T) {
		export, err := f.usecase.Export(ctx, f.admin, &requests.ExportReport{ReportID: report.ID.Hex(), Format: "json"})
		require.NoError(t, err)
		assert.Equal(t, "Q2_revenue__2024-05-15.json", export.Filename)
		assert.Equal(t, constvars.MIMEApplicationJSONCharsetUTF8, export.ContentType)

		var content models.ReportContent
		require.NoError(t, json.Unmarshal(export.Body, &content))
		assert.Equal(t, models.ReportTypeFinancialSummary, content.Type)
		assert.Equal(t, 100.0, content.Financial.TotalRevenue)
	})

	t.Run("csv", func(t *testing.T) {
		export, err := f.usecase.Export(ctx, f.admin, &requests.ExportReport{ReportID: report.ID.Hex(), Format: "CSV"})
		require.NoError(t, err)
		assert.Equal(t, constvars.MIMETextCSVCharsetUTF8, export.ContentType)

		body := string(export.Body)
		assert.True(t, strings.HasPrefix(body, "section,metric,value\n"))
		assert.Contains(t, body, "financial,totalRevenue,100\n")
		assert.Contains(t, body, "financial,paidBills,1\n")
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := f.usecase.Export(ctx, f.admin, &requests.ExportReport{ReportID: report.ID.Hex(), Format: "pdf"})
		require.Error(t, err)
		assert.Equal(t, constvars.StatusBadRequest, exceptions.StatusCodeOf(err))
	})

	assert.Equal(t, int64(2), f.repo.only(t).Statistics.Downloads)
}

func TestReportUsecase_ExportRequiresCompletedReport(t *testing.T) {
	f := newReportFixture()
	f.metrics.err = errors.New("boom")
	_, err := f.usecase.Generate(context.Background(), f.admin, &requests.GenerateReport{Title: "x", ReportType: models.ReportTypeFinancialSummary})
	require.Error(t, err)
	failed := f.repo.only(t)

	_, err = f.usecase.Export(context.Background(), f.admin, &requests.ExportReport{ReportID: failed.ID.Hex(), Format: "json"})
	require.Error(t, err)
	assert.Equal(t, constvars.StatusBadRequest, exceptions.StatusCodeOf(err))
	assert.Zero(t, failed.Statistics.Downloads)
}

func TestReportUsecase_Templates(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	template := f.generate(t, f.admin, &requests.GenerateReport{
		Title:       "Monthly finance",
		ReportType:  models.ReportTypeFinancialSummary,
		AccessLevel: models.AccessLevelPublic,
		IsTemplate:  true,
	})
	require.NotNil(t, template.ExpiresAt)
	assert.True(t, reportNow.AddDate(0, 0, 30).Equal(*template.ExpiresAt))

	templates, err := f.usecase.FindTemplates(ctx, f.doctor)
	require.NoError(t, err)
	require.Len(t, templates, 1)

	report, err := f.usecase.GenerateFromTemplate(ctx, f.doctor, template.ID.Hex(), &requests.GenerateFromTemplate{
		Title:     "April finance",
		DateRange: &requests.DateRange{StartDate: "2024-04-01", EndDate: "2024-04-30"},
	})
	require.NoError(t, err)
	assert.Equal(t, "April finance", report.Title)
	assert.False(t, report.IsTemplate)
	assert.Equal(t, &template.ID, report.TemplateID)
	assert.Equal(t, f.doctor.Ref(), report.CreatedBy)
	assert.Equal(t, models.AccessLevelPublic, report.AccessLevel)
	assert.True(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).Equal(report.Content.Period.StartDate))

	_, err = f.usecase.GenerateFromTemplate(ctx, f.doctor, report.ID.Hex(), &requests.GenerateFromTemplate{})
	assert.True(t, exceptions.IsNotFound(err))
}

func TestReportUsecase_PurgeExpired(t *testing.T) {
	f := newReportFixture()
	f.generate(t, f.admin, &requests.GenerateReport{Title: "Old", ReportType: models.ReportTypeSystemUsage})
	f.generate(t, f.admin, &requests.GenerateReport{Title: "Template", ReportType: models.ReportTypeSystemUsage, IsTemplate: true})

	deleted, err := f.usecase.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)

	f.usecase.now = func() time.Time { return reportNow.AddDate(0, 0, 31) }
	deleted, err = f.usecase.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted, "templates expire like any other report")
	assert.Empty(t, f.repo.reports)
}
