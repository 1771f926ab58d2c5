package analytics

import (
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type analyticsUsecase struct {
	AnalyticsRepository contracts.AnalyticsRepository
	MetricsUsecase      contracts.MetricsUsecase
	Log                 *zap.Logger
	now                 func() time.Time
}

var (
	analyticsUsecaseInstance contracts.AnalyticsUsecase
	onceAnalyticsUsecase     sync.Once
)

func NewAnalyticsUsecase(
	analyticsRepository contracts.AnalyticsRepository,
	metricsUsecase contracts.MetricsUsecase,
	logger *zap.Logger,
) contracts.AnalyticsUsecase {
	onceAnalyticsUsecase.Do(func() {
		analyticsUsecaseInstance = newAnalyticsUsecase(analyticsRepository, metricsUsecase, logger)
	})
	return analyticsUsecaseInstance
}

func newAnalyticsUsecase(
	analyticsRepository contracts.AnalyticsRepository,
	metricsUsecase contracts.MetricsUsecase,
	logger *zap.Logger,
) *analyticsUsecase {
	return &analyticsUsecase{
		AnalyticsRepository: analyticsRepository,
		MetricsUsecase:      metricsUsecase,
		Log:                 logger,
		now:                 time.Now,
	}
}

// Generate persists a snapshot in the generating state, computes every domain
// concurrently and stores the result. A failed computation leaves the snapshot
// marked failed.
func (uc *analyticsUsecase) Generate(ctx context.Context, actor models.Actor, request *requests.GenerateAnalytics) (*models.Analytics, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("analyticsUsecase.Generate called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, actor.String()),
		zap.String(constvars.LoggingReportTypeKey, request.ReportType),
	)

	reportType := request.ReportType
	if reportType == "" {
		reportType = models.AnalyticsTypeCustom
	}

	now := uc.now()
	window, err := analyticsWindow(reportType, request, now)
	if err != nil {
		return nil, err
	}

	snapshot := &models.Analytics{
		ReportType:  reportType,
		Period:      window,
		Status:      models.AnalyticsStatusGenerating,
		GeneratedBy: actor.Ref(),
	}
	snapshot.SetCreatedAtUpdatedAt(now)

	snapshot, err = uc.AnalyticsRepository.Create(ctx, snapshot)
	if err != nil {
		uc.Log.Error("analyticsUsecase.Generate error creating snapshot",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	set, err := uc.computeAll(ctx, window)
	if err != nil {
		uc.Log.Error("analyticsUsecase.Generate error computing metrics",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAnalyticsIDKey, snapshot.ID.Hex()),
			zap.Error(err),
		)
		_, updateErr := uc.AnalyticsRepository.Update(context.WithoutCancel(ctx), snapshot.ID, map[string]interface{}{
			"status":    models.AnalyticsStatusFailed,
			"updatedAt": uc.now(),
		})
		if updateErr != nil {
			uc.Log.Warn("analyticsUsecase.Generate error marking snapshot failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(updateErr),
			)
		}
		return nil, err
	}

	completed, err := uc.AnalyticsRepository.Update(ctx, snapshot.ID, map[string]interface{}{
		"patientMetrics":     set.Patient,
		"appointmentMetrics": set.Appointment,
		"doctorMetrics":      set.Doctor,
		"financialMetrics":   set.Financial,
		"medicalMetrics":     set.Medical,
		"geographicMetrics":  set.Geographic,
		"status":             models.AnalyticsStatusCompleted,
		"updatedAt":          uc.now(),
	})
	if err != nil {
		return nil, err
	}
	if completed == nil {
		return nil, exceptions.ErrAnalyticsNotFound(nil, snapshot.ID.Hex())
	}

	utils.LogBusinessEvent(uc.Log, "analytics_generated", requestID,
		zap.String(constvars.LoggingAnalyticsIDKey, completed.ID.Hex()),
		zap.String(constvars.LoggingReportTypeKey, reportType),
	)
	return completed, nil
}

func (uc *analyticsUsecase) FindByID(ctx context.Context, analyticsID string) (*models.Analytics, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("analyticsUsecase.FindByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAnalyticsIDKey, analyticsID),
	)

	id, err := utils.ParseObjectID(analyticsID)
	if err != nil {
		return nil, err
	}
	snapshot, err := uc.AnalyticsRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, exceptions.ErrAnalyticsNotFound(nil, analyticsID)
	}
	return snapshot, nil
}

func (uc *analyticsUsecase) List(ctx context.Context, filter *requests.AnalyticsFilter) ([]models.Analytics, int, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("analyticsUsecase.List called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReportTypeKey, filter.ReportType),
	)

	return uc.AnalyticsRepository.Find(ctx, filter.ReportType, filter.Status, &filter.Pagination)
}

func (uc *analyticsUsecase) Delete(ctx context.Context, analyticsID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("analyticsUsecase.Delete called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAnalyticsIDKey, analyticsID),
	)

	id, err := utils.ParseObjectID(analyticsID)
	if err != nil {
		return err
	}
	return uc.AnalyticsRepository.Delete(ctx, id)
}

// computeAll runs the six domains concurrently. Each goroutine writes its own block.
func (uc *analyticsUsecase) computeAll(ctx context.Context, window models.DateRange) (*models.MetricsSet, error) {
	set := &models.MetricsSet{}
	filter := models.MetricsFilter{}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		set.Patient, err = uc.MetricsUsecase.PatientMetrics(groupCtx, window, filter)
		return err
	})
	group.Go(func() (err error) {
		set.Appointment, err = uc.MetricsUsecase.AppointmentMetrics(groupCtx, window, filter)
		return err
	})
	group.Go(func() (err error) {
		set.Doctor, err = uc.MetricsUsecase.DoctorMetrics(groupCtx, window, filter)
		return err
	})
	group.Go(func() (err error) {
		set.Financial, err = uc.MetricsUsecase.FinancialMetrics(groupCtx, window, filter)
		return err
	})
	group.Go(func() (err error) {
		set.Medical, err = uc.MetricsUsecase.MedicalMetrics(groupCtx, window, filter)
		return err
	})
	group.Go(func() (err error) {
		set.Geographic, err = uc.MetricsUsecase.GeographicMetrics(groupCtx, window, filter)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

// analyticsWindow prefers explicit dates and otherwise derives the window from
// the snapshot type. A custom snapshot needs both dates.
func analyticsWindow(reportType string, request *requests.GenerateAnalytics, now time.Time) (models.DateRange, error) {
	if request.StartDate != "" || request.EndDate != "" {
		derived, ok := models.AnalyticsWindow(reportType, now)
		var fallback *models.DateRange
		if ok {
			fallback = &derived
		}
		window, err := utils.ParseDateRange(requests.DateRange{StartDate: request.StartDate, EndDate: request.EndDate}, fallback)
		if err != nil {
			return models.DateRange{}, err
		}
		if window.StartDate.IsZero() {
			return models.DateRange{}, exceptions.ErrInvalidDateRange(nil)
		}
		return *window, nil
	}

	window, ok := models.AnalyticsWindow(reportType, now)
	if !ok {
		return models.DateRange{}, exceptions.ErrInvalidDateRange(nil)
	}
	return window, nil
}
