package analytics

import (
	"context"
	"errors"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryAnalyticsRepository struct {
	mu        sync.Mutex
	snapshots map[primitive.ObjectID]*models.Analytics
	updates   []map[string]interface{}
}

func newMemoryAnalyticsRepository() *memoryAnalyticsRepository {
	return &memoryAnalyticsRepository{snapshots: map[primitive.ObjectID]*models.Analytics{}}
}

func (r *memoryAnalyticsRepository) Create(ctx context.Context, analytics *models.Analytics) (*models.Analytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	analytics.ID = primitive.NewObjectID()
	stored := *analytics
	r.snapshots[analytics.ID] = &stored
	return analytics, nil
}

func (r *memoryAnalyticsRepository) FindByID(ctx context.Context, analyticsID primitive.ObjectID) (*models.Analytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot, ok := r.snapshots[analyticsID]
	if !ok {
		return nil, nil
	}
	found := *snapshot
	return &found, nil
}

func (r *memoryAnalyticsRepository) Find(ctx context.Context, reportType, status string, pagination *requests.Pagination) ([]models.Analytics, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Analytics, 0)
	for _, snapshot := range r.snapshots {
		if reportType != "" && snapshot.ReportType != reportType {
			continue
		}
		if status != "" && snapshot.Status != status {
			continue
		}
		result = append(result, *snapshot)
	}
	return result, len(result), nil
}

func (r *memoryAnalyticsRepository) Update(ctx context.Context, analyticsID primitive.ObjectID, fields map[string]interface{}) (*models.Analytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, fields)
	snapshot, ok := r.snapshots[analyticsID]
	if !ok {
		return nil, nil
	}
	for key, value := range fields {
		switch key {
		case "status":
			snapshot.Status = value.(string)
		case "updatedAt":
			snapshot.UpdatedAt = value.(time.Time)
		case "patientMetrics":
			snapshot.Patient = value.(*models.PatientMetrics)
		case "appointmentMetrics":
			snapshot.Appointment = value.(*models.AppointmentMetrics)
		case "doctorMetrics":
			snapshot.Doctor = value.(*models.DoctorMetrics)
		case "financialMetrics":
			snapshot.Financial = value.(*models.FinancialMetrics)
		case "medicalMetrics":
			snapshot.Medical = value.(*models.MedicalMetrics)
		case "geographicMetrics":
			snapshot.Geographic = value.(*models.GeographicMetrics)
		}
	}
	updated := *snapshot
	return &updated, nil
}

func (r *memoryAnalyticsRepository) Delete(ctx context.Context, analyticsID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.snapshots[analyticsID]; !ok {
		return exceptions.ErrAnalyticsNotFound(nil, analyticsID.Hex())
	}
	delete(r.snapshots, analyticsID)
	return nil
}

// stubMetricsUsecase records the windows it was asked for.
type stubMetricsUsecase struct {
	contracts.MetricsUsecase
	mu           sync.Mutex
	windows      []models.DateRange
	financialErr error
}

func (s *stubMetricsUsecase) record(window models.DateRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = append(s.windows, window)
}

func (s *stubMetricsUsecase) PatientMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.PatientMetrics, error) {
	s.record(window)
	return &models.PatientMetrics{TotalPatients: 12}, nil
}

func (s *stubMetricsUsecase) AppointmentMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.AppointmentMetrics, error) {
	s.record(window)
	return &models.AppointmentMetrics{TotalAppointments: 30}, nil
}

func (s *stubMetricsUsecase) DoctorMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.DoctorMetrics, error) {
	s.record(window)
	return &models.DoctorMetrics{TotalDoctors: 3}, nil
}

func (s *stubMetricsUsecase) FinancialMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.FinancialMetrics, error) {
	s.record(window)
	if s.financialErr != nil {
		return nil, s.financialErr
	}
	return &models.FinancialMetrics{TotalRevenue: 1250}, nil
}

func (s *stubMetricsUsecase) MedicalMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.MedicalMetrics, error) {
	s.record(window)
	return &models.MedicalMetrics{FollowUpRequired: 2}, nil
}

func (s *stubMetricsUsecase) GeographicMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.GeographicMetrics, error) {
	s.record(window)
	return &models.GeographicMetrics{}, nil
}

var analyticsNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func newTestAnalyticsUsecase(metrics *stubMetricsUsecase) (*analyticsUsecase, *memoryAnalyticsRepository) {
	repo := newMemoryAnalyticsRepository()
	usecase := newAnalyticsUsecase(repo, metrics, zap.NewNop())
	usecase.now = func() time.Time { return analyticsNow }
	return usecase, repo
}

func TestAnalyticsUsecase_Generate(t *testing.T) {
	metrics := &stubMetricsUsecase{}
	usecase, repo := newTestAnalyticsUsecase(metrics)
	admin := models.NewUserActor(primitive.NewObjectID(), constvars.RoleAdmin)

	snapshot, err := usecase.Generate(context.Background(), admin, &requests.GenerateAnalytics{ReportType: models.AnalyticsTypeMonthly})
	require.NoError(t, err)

	assert.Equal(t, models.AnalyticsStatusCompleted, snapshot.Status)
	assert.Equal(t, models.AnalyticsTypeMonthly, snapshot.ReportType)
	assert.Equal(t, admin.Ref(), snapshot.GeneratedBy)
	assert.True(t, analyticsNow.AddDate(0, -1, 0).Equal(snapshot.Period.StartDate))
	assert.True(t, analyticsNow.Equal(snapshot.Period.EndDate))

	require.NotNil(t, snapshot.Patient)
	require.NotNil(t, snapshot.Financial)
	assert.Equal(t, int64(12), snapshot.Patient.TotalPatients)
	assert.Equal(t, 1250.0, snapshot.Financial.TotalRevenue)
	assert.Len(t, metrics.windows, len(models.MetricsDomains))

	stored, err := usecase.FindByID(context.Background(), snapshot.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.AnalyticsStatusCompleted, stored.Status)
	assert.Len(t, repo.updates, 1)
}

func TestAnalyticsUsecase_GenerateSystemActor(t *testing.T) {
	usecase, _ := newTestAnalyticsUsecase(&stubMetricsUsecase{})

	snapshot, err := usecase.Generate(context.Background(), models.SystemActor, &requests.GenerateAnalytics{ReportType: models.AnalyticsTypeDaily})
	require.NoError(t, err)
	assert.Nil(t, snapshot.GeneratedBy)
}

func TestAnalyticsUsecase_GenerateMarksFailure(t *testing.T) {
	usecase, repo := newTestAnalyticsUsecase(&stubMetricsUsecase{financialErr: errors.New("aggregation timed out")})

	_, err := usecase.Generate(context.Background(), models.SystemActor, &requests.GenerateAnalytics{ReportType: models.AnalyticsTypeWeekly})
	require.Error(t, err)

	require.Len(t, repo.snapshots, 1)
	for _, snapshot := range repo.snapshots {
		assert.Equal(t, models.AnalyticsStatusFailed, snapshot.Status)
		assert.Nil(t, snapshot.Patient)
	}
}

func TestAnalyticsWindow(t *testing.T) {
	t.Run("custom with explicit dates", func(t *testing.T) {
		window, err := analyticsWindow(models.AnalyticsTypeCustom, &requests.GenerateAnalytics{
			StartDate: "2024-01-01",
			EndDate:   "2024-01-31",
		}, analyticsNow)
		require.NoError(t, err)
		assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(window.StartDate))
		assert.Equal(t, 31, window.EndDate.Day())
		assert.True(t, window.Contains(time.Date(2024, 1, 31, 18, 0, 0, 0, time.UTC)))
	})

	t.Run("custom without dates", func(t *testing.T) {
		_, err := analyticsWindow(models.AnalyticsTypeCustom, &requests.GenerateAnalytics{}, analyticsNow)
		require.Error(t, err)
		assert.Equal(t, constvars.StatusBadRequest, exceptions.StatusCodeOf(err))
	})

	t.Run("custom with only an end date", func(t *testing.T) {
		_, err := analyticsWindow(models.AnalyticsTypeCustom, &requests.GenerateAnalytics{EndDate: "2024-01-31"}, analyticsNow)
		require.Error(t, err)
	})

	t.Run("weekly derives from now", func(t *testing.T) {
		window, err := analyticsWindow(models.AnalyticsTypeWeekly, &requests.GenerateAnalytics{}, analyticsNow)
		require.NoError(t, err)
		assert.True(t, analyticsNow.AddDate(0, 0, -7).Equal(window.StartDate))
	})

	t.Run("start date overrides a derived window", func(t *testing.T) {
		window, err := analyticsWindow(models.AnalyticsTypeYearly, &requests.GenerateAnalytics{StartDate: "2024-05-01"}, analyticsNow)
		require.NoError(t, err)
		assert.True(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).Equal(window.StartDate))
		assert.True(t, analyticsNow.Equal(window.EndDate))
	})

	t.Run("reversed dates", func(t *testing.T) {
		_, err := analyticsWindow(models.AnalyticsTypeCustom, &requests.GenerateAnalytics{
			StartDate: "2024-02-01",
			EndDate:   "2024-01-01",
		}, analyticsNow)
		require.Error(t, err)
	})
}

func TestAnalyticsUsecase_FindAndDelete(t *testing.T) {
	usecase, _ := newTestAnalyticsUsecase(&stubMetricsUsecase{})
	ctx := context.Background()

	_, err := usecase.FindByID(ctx, "not-an-id")
	require.Error(t, err)
	assert.Equal(t, constvars.StatusBadRequest, exceptions.StatusCodeOf(err))

	_, err = usecase.FindByID(ctx, primitive.NewObjectID().Hex())
	assert.True(t, exceptions.IsNotFound(err))

	snapshot, err := usecase.Generate(ctx, models.SystemActor, &requests.GenerateAnalytics{ReportType: models.AnalyticsTypeDaily})
	require.NoError(t, err)

	list, total, err := usecase.List(ctx, &requests.AnalyticsFilter{ReportType: models.AnalyticsTypeDaily, Pagination: requests.Pagination{Page: 1, PageSize: 10}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)

	require.NoError(t, usecase.Delete(ctx, snapshot.ID.Hex()))
	assert.True(t, exceptions.IsNotFound(usecase.Delete(ctx, snapshot.ID.Hex())))
}
