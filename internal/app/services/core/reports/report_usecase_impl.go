package reports

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	defaultReportWindowInDays    = 30
	defaultReportRetentionInDays = 30
)

type reportUsecase struct {
	ReportRepository contracts.ReportRepository
	MetricsUsecase   contracts.MetricsUsecase
	EventPublisher   contracts.EventPublisher
	InternalConfig   *config.InternalConfig
	Log              *zap.Logger
	now              func() time.Time
}

type reportEvent struct {
	ReportID    string    `json:"reportId"`
	ReportType  string    `json:"reportType"`
	Status      string    `json:"status"`
	GeneratedBy string    `json:"generatedBy"`
	GeneratedAt time.Time `json:"generatedAt"`
}

var (
	reportUsecaseInstance contracts.ReportUsecase
	onceReportUsecase     sync.Once
)

func NewReportUsecase(
	reportRepository contracts.ReportRepository,
	metricsUsecase contracts.MetricsUsecase,
	eventPublisher contracts.EventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.ReportUsecase {
	onceReportUsecase.Do(func() {
		reportUsecaseInstance = newReportUsecase(
			reportRepository,
			metricsUsecase,
			eventPublisher,
			internalConfig,
			logger,
		)
	})
	return reportUsecaseInstance
}

func newReportUsecase(
	reportRepository contracts.ReportRepository,
	metricsUsecase contracts.MetricsUsecase,
	eventPublisher contracts.EventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *reportUsecase {
	return &reportUsecase{
		ReportRepository: reportRepository,
		MetricsUsecase:   metricsUsecase,
		EventPublisher:   eventPublisher,
		InternalConfig:   internalConfig,
		Log:              logger,
		now:              time.Now,
	}
}

func (uc *reportUsecase) Generate(ctx context.Context, actor models.Actor, request *requests.GenerateReport) (*models.Report, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("reportUsecase.Generate called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, actor.String()),
		zap.String(constvars.LoggingReportTypeKey, request.ReportType),
	)

	draft, err := uc.draftFromRequest(request)
	if err != nil {
		uc.Log.Error("reportUsecase.Generate error building report",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	return uc.generate(ctx, actor, draft)
}

func (uc *reportUsecase) FindByID(ctx context.Context, actor models.Actor, reportID string) (*models.Report, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("reportUsecase.FindByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, actor.String()),
		zap.String(constvars.LoggingReportIDKey, reportID),
	)

	report, err := uc.findAccessible(ctx, actor, reportID)
	if err != nil {
		return nil, err
	}

	viewedAt := uc.now()
	if err := uc.ReportRepository.IncrementViews(ctx, report.ID, viewedAt); err != nil {
		uc.Log.Error("reportUsecase.FindByID error incrementing views",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReportIDKey, reportID),
			zap.Error(err),
		)
		return nil, err
	}
	report.Statistics.Views++
	report.Statistics.LastViewed = &viewedAt
	return report, nil
}

func (uc *reportUsecase) List(ctx context.Context, actor models.Actor, filter *requests.ReportFilter) ([]models.Report, int, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("reportUsecase.List called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, actor.String()),
		zap.String(constvars.LoggingReportTypeKey, filter.ReportType),
	)

	query := models.ReportQuery{
		Viewer:     &actor,
		ReportType: filter.ReportType,
		Status:     filter.Status,
		Category:   filter.Category,
		Tags:       filter.Tags,
	}
	return uc.ReportRepository.Find(ctx, query, &filter.Pagination)
}

func (uc *reportUsecase) Update(ctx context.Context, actor models.Actor, reportID string, request *requests.UpdateReport) (*models.Report, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("reportUsecase.Update called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, actor.String()),
		zap.String(constvars.LoggingReportIDKey, reportID),
	)

	report, err := uc.findModifiable(ctx, actor, reportID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"version":   report.Version + 1,
		"updatedAt": uc.now(),
	}
	if ref := actor.Ref(); ref != nil {
		fields["lastModifiedBy"] = ref
	}
	if request.Title != nil {
		fields["title"] = *request.Title
	}
	if request.Description != nil {
		fields["description"] = *request.Description
	}
	if request.AccessLevel != nil {
		fields["accessLevel"] = *request.AccessLevel
	}
	if request.AllowedRoles != nil {
		fields["allowedRoles"] = *request.AllowedRoles
	}
	if request.AllowedUsers != nil {
		allowedUsers, err := utils.ParseObjectIDs(*request.AllowedUsers)
		if err != nil {
			return nil, err
		}
		fields["allowedUsers"] = allowedUsers
	}
	if request.Tags != nil {
		fields["tags"] = *request.Tags
	}
	if request.Category != nil {
		fields["category"] = *request.Category
	}
	if request.Priority != nil {
		fields["priority"] = *request.Priority
	}

	updated, err := uc.ReportRepository.Update(ctx, report.ID, fields)
	if err != nil {
		uc.Log.Error("reportUsecase.Update error updating report",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReportIDKey, reportID),
			zap.Error(err),
		)
		return nil, err
	}
	if updated == nil {
		return nil, exceptions.ErrReportNotFound(nil, reportID)
	}
	return updated, nil
}

func (uc *reportUsecase) Delete(ctx context.Context, actor models.Actor, reportID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("reportUsecase.Delete called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, actor.String()),
		zap.String(constvars.LoggingReportIDKey, reportID),
	)

	report, err := uc.findModifiable(ctx, actor, reportID)
	if err != nil {
		return err
	}
	if err := uc.ReportRepository.Delete(ctx, report.ID); err != nil {
		uc.Log.Error("reportUsecase.Delete error deleting report",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReportIDKey, reportID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Export renders a completed report. The format is checked before anything
// is read so an unsupported format never counts as a download.
func (uc *reportUsecase) Export(ctx context.Context, actor models.Actor, request *requests.ExportReport) (*responses.ReportExport, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("reportUsecase.Export called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, actor.String()),
		zap.String(constvars.LoggingReportIDKey, request.ReportID),
		zap.String(constvars.LoggingExportFormatKey, request.Format),
	)

	format, err := normalizeExportFormat(request.Format)
	if err != nil {
		return nil, err
	}

	report, err := uc.findAccessible(ctx, actor, request.ReportID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportStatusCompleted {
		return nil, exceptions.ErrReportNotCompleted(nil, request.ReportID, report.Status)
	}

	now := uc.now()
	export, err := renderExport(report, format, now)
	if err != nil {
		uc.Log.Error("reportUsecase.Export error rendering report",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReportIDKey, request.ReportID),
			zap.Error(err),
		)
		return nil, err
	}

	if err := uc.ReportRepository.IncrementDownloads(ctx, report.ID, now); err != nil {
		uc.Log.Error("reportUsecase.Export error incrementing downloads",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReportIDKey, request.ReportID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "report_exported", requestID,
		zap.String(constvars.LoggingReportIDKey, request.ReportID),
		zap.String(constvars.LoggingExportFormatKey, format),
	)
	return export, nil
}

func (uc *reportUsecase) FindTemplates(ctx context.Context, actor models.Actor) ([]models.Report, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("reportUsecase.FindTemplates called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, actor.String()),
	)

	isTemplate := true
	templates, _, err := uc.ReportRepository.Find(ctx, models.ReportQuery{Viewer: &actor, IsTemplate: &isTemplate}, nil)
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// GenerateFromTemplate runs a fresh report with the template's type, parameters
// and access configuration. The request may override the title and window.
func (uc *reportUsecase) GenerateFromTemplate(ctx context.Context, actor models.Actor, templateID string, request *requests.GenerateFromTemplate) (*models.Report, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("reportUsecase.GenerateFromTemplate called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, actor.String()),
		zap.String(constvars.LoggingReportIDKey, templateID),
	)

	template, err := uc.findAccessible(ctx, actor, templateID)
	if err != nil {
		return nil, err
	}
	if !template.IsTemplate {
		return nil, exceptions.ErrReportNotFound(nil, templateID)
	}

	draft := &models.Report{
		Title:        template.Title,
		Description:  template.Description,
		ReportType:   template.ReportType,
		Parameters:   template.Parameters,
		AccessLevel:  template.AccessLevel,
		AllowedRoles: template.AllowedRoles,
		AllowedUsers: template.AllowedUsers,
		Tags:         template.Tags,
		Category:     template.Category,
		Priority:     template.Priority,
		TemplateID:   &template.ID,
	}
	if request.Title != "" {
		draft.Title = request.Title
	}
	if request.DateRange != nil {
		window, err := utils.ParseDateRange(*request.DateRange, nil)
		if err != nil {
			return nil, err
		}
		draft.Parameters.DateRange = window
	}
	return uc.generate(ctx, actor, draft)
}

func (uc *reportUsecase) PurgeExpired(ctx context.Context) (int64, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("reportUsecase.PurgeExpired called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	deleted, err := uc.ReportRepository.DeleteExpired(ctx, uc.now())
	if err != nil {
		uc.Log.Error("reportUsecase.PurgeExpired error deleting expired reports",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return 0, err
	}

	uc.Log.Info("reportUsecase.PurgeExpired succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingCountKey, deleted),
	)
	return deleted, nil
}

// generate stores the draft as pending, fills its content and settles it as
// completed or failed. A failed report is kept so the error stays visible.
func (uc *reportUsecase) generate(ctx context.Context, actor models.Actor, draft *models.Report) (*models.Report, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	now := uc.now()
	window := uc.reportWindow(draft.Parameters.DateRange, now)

	draft.Status = models.ReportStatusPending
	draft.CreatedBy = actor.Ref()
	draft.Version = 1
	if draft.AccessLevel == "" {
		draft.AccessLevel = models.AccessLevelPrivate
	}
	if draft.Priority == "" {
		draft.Priority = models.ReportPriorityMedium
	}
	if draft.AllowedRoles == nil {
		draft.AllowedRoles = []string{}
	}
	if draft.AllowedUsers == nil {
		draft.AllowedUsers = []primitive.ObjectID{}
	}
	draft.SetCreatedAtUpdatedAt(now)

	report, err := uc.ReportRepository.Create(ctx, draft)
	if err != nil {
		uc.Log.Error("reportUsecase.generate error creating report",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	content, err := uc.buildContent(ctx, report.ReportType, window, report.Parameters.Filters)
	if err != nil {
		uc.Log.Error("reportUsecase.generate error building content",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReportIDKey, report.ID.Hex()),
			zap.Error(err),
		)
		_, updateErr := uc.ReportRepository.Update(context.WithoutCancel(ctx), report.ID, map[string]interface{}{
			"status":    models.ReportStatusFailed,
			"error":     err.Error(),
			"updatedAt": uc.now(),
		})
		if updateErr != nil {
			uc.Log.Warn("reportUsecase.generate error marking report failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingReportIDKey, report.ID.Hex()),
				zap.Error(updateErr),
			)
		}
		return nil, err
	}

	generatedAt := uc.now()
	fields := map[string]interface{}{
		"content":     content,
		"status":      models.ReportStatusCompleted,
		"generatedAt": generatedAt,
		"updatedAt":   generatedAt,
		"expiresAt":   generatedAt.AddDate(0, 0, uc.retentionInDays()),
	}

	completed, err := uc.ReportRepository.Update(ctx, report.ID, fields)
	if err != nil {
		uc.Log.Error("reportUsecase.generate error completing report",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReportIDKey, report.ID.Hex()),
			zap.Error(err),
		)
		return nil, err
	}
	if completed == nil {
		return nil, exceptions.ErrReportNotFound(nil, report.ID.Hex())
	}

	event := reportEvent{
		ReportID:    completed.ID.Hex(),
		ReportType:  completed.ReportType,
		Status:      completed.Status,
		GeneratedBy: actor.String(),
		GeneratedAt: generatedAt,
	}
	if err := uc.EventPublisher.Publish(ctx, constvars.EventReportGenerated, event); err != nil {
		uc.Log.Warn("reportUsecase.generate error publishing event",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}

	utils.LogBusinessEvent(uc.Log, "report_generated", requestID,
		zap.String(constvars.LoggingReportIDKey, completed.ID.Hex()),
		zap.String(constvars.LoggingReportTypeKey, completed.ReportType),
		zap.String(constvars.LoggingUserIDKey, actor.String()),
	)
	return completed, nil
}

// buildContent maps a report type onto the aggregator calls that fill its blocks.
func (uc *reportUsecase) buildContent(ctx context.Context, reportType string, window models.DateRange, filter models.MetricsFilter) (*models.ReportContent, error) {
	var content *models.ReportContent
	switch reportType {
	case models.ReportTypePatientSummary:
		patient, err := uc.MetricsUsecase.PatientMetrics(ctx, window, filter)
		if err != nil {
			return nil, err
		}
		geographic, err := uc.MetricsUsecase.GeographicMetrics(ctx, window, filter)
		if err != nil {
			return nil, err
		}
		content = models.NewPatientSummaryContent(window, filter, patient, geographic)
	case models.ReportTypeAppointmentSummary:
		appointment, err := uc.MetricsUsecase.AppointmentMetrics(ctx, window, filter)
		if err != nil {
			return nil, err
		}
		content = models.NewAppointmentSummaryContent(window, filter, appointment)
	case models.ReportTypeFinancialSummary:
		financial, err := uc.MetricsUsecase.FinancialMetrics(ctx, window, filter)
		if err != nil {
			return nil, err
		}
		content = models.NewFinancialSummaryContent(window, filter, financial)
	case models.ReportTypeDoctorPerformance:
		performance, err := uc.MetricsUsecase.DoctorPerformance(ctx, window, filter)
		if err != nil {
			return nil, err
		}
		content = models.NewDoctorPerformanceContent(window, filter, performance)
	case models.ReportTypeMedicalTrends:
		medical, err := uc.MetricsUsecase.MedicalMetrics(ctx, window, filter)
		if err != nil {
			return nil, err
		}
		content = models.NewMedicalTrendsContent(window, filter, medical)
	case models.ReportTypeSystemUsage:
		usage, err := uc.MetricsUsecase.SystemUsage(ctx, window)
		if err != nil {
			return nil, err
		}
		content = models.NewSystemUsageContent(window, filter, usage)
	case models.ReportTypeCustom:
		custom, err := uc.MetricsUsecase.Custom(ctx, window, filter)
		if err != nil {
			return nil, err
		}
		content = models.NewCustomContent(window, filter, custom)
	default:
		return nil, exceptions.ErrReportInvalidType(nil, reportType)
	}

	if err := content.Validate(); err != nil {
		return nil, exceptions.ErrReportInvalidType(err, reportType)
	}
	return content, nil
}

func (uc *reportUsecase) draftFromRequest(request *requests.GenerateReport) (*models.Report, error) {
	reportType := request.ReportType
	if reportType == "" {
		reportType = models.ReportTypeCustom
	}
	if !isReportType(reportType) {
		return nil, exceptions.ErrReportInvalidType(nil, reportType)
	}

	filter, err := utils.BuildMetricsFilter(request.Parameters.Filters)
	if err != nil {
		return nil, err
	}
	allowedUsers, err := utils.ParseObjectIDs(request.AllowedUsers)
	if err != nil {
		return nil, err
	}

	var window *models.DateRange
	if request.Parameters.DateRange != nil {
		window, err = utils.ParseDateRange(*request.Parameters.DateRange, nil)
		if err != nil {
			return nil, err
		}
	}

	return &models.Report{
		Title:       request.Title,
		Description: request.Description,
		ReportType:  reportType,
		Parameters: models.ReportParameters{
			DateRange: window,
			Filters:   filter,
			GroupBy:   request.Parameters.GroupBy,
			Metrics:   request.Parameters.Metrics,
		},
		AccessLevel:  request.AccessLevel,
		AllowedRoles: request.AllowedRoles,
		AllowedUsers: allowedUsers,
		Tags:         request.Tags,
		Category:     request.Category,
		Priority:     request.Priority,
		IsTemplate:   request.IsTemplate,
	}, nil
}

// reportWindow fills the missing ends of a requested window. A report
// without dates covers the trailing default window ending now.
func (uc *reportUsecase) reportWindow(requested *models.DateRange, now time.Time) models.DateRange {
	window := models.NewDateRange(now.AddDate(0, 0, -uc.defaultWindowInDays()), now)
	if requested == nil {
		return window
	}
	if !requested.StartDate.IsZero() {
		window.StartDate = requested.StartDate
	}
	if !requested.EndDate.IsZero() {
		window.EndDate = requested.EndDate
	}
	return window
}

func (uc *reportUsecase) findAccessible(ctx context.Context, actor models.Actor, reportID string) (*models.Report, error) {
	report, err := uc.find(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !report.CanAccess(actor, uc.now()) {
		return nil, exceptions.ErrReportAccessDenied(nil, actor.String(), reportID)
	}
	return report, nil
}

func (uc *reportUsecase) findModifiable(ctx context.Context, actor models.Actor, reportID string) (*models.Report, error) {
	report, err := uc.find(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !report.CanModify(actor) {
		return nil, exceptions.ErrReportAccessDenied(nil, actor.String(), reportID)
	}
	return report, nil
}

func (uc *reportUsecase) find(ctx context.Context, reportID string) (*models.Report, error) {
	id, err := utils.ParseObjectID(reportID)
	if err != nil {
		return nil, err
	}
	report, err := uc.ReportRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, exceptions.ErrReportNotFound(nil, reportID)
	}
	return report, nil
}

func (uc *reportUsecase) defaultWindowInDays() int {
	if uc.InternalConfig == nil || uc.InternalConfig.Report.DefaultWindowInDays <= 0 {
		return defaultReportWindowInDays
	}
	return uc.InternalConfig.Report.DefaultWindowInDays
}

func (uc *reportUsecase) retentionInDays() int {
	if uc.InternalConfig == nil || uc.InternalConfig.Report.RetentionInDays <= 0 {
		return defaultReportRetentionInDays
	}
	return uc.InternalConfig.Report.RetentionInDays
}

func isReportType(reportType string) bool {
	for _, known := range models.ReportTypes {
		if known == reportType {
			return true
		}
	}
	return false
}
