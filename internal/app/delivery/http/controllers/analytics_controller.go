package controllers

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultMetricsWindowInDays = 30

type AnalyticsController struct {
	Log              *zap.Logger
	InternalConfig   *config.InternalConfig
	AnalyticsUsecase contracts.AnalyticsUsecase
	MetricsUsecase   contracts.MetricsUsecase
	now              func() time.Time
}

func NewAnalyticsController(logger *zap.Logger, internalConfig *config.InternalConfig, analyticsUsecase contracts.AnalyticsUsecase, metricsUsecase contracts.MetricsUsecase) *AnalyticsController {
	return &AnalyticsController{
		Log:              logger,
		InternalConfig:   internalConfig,
		AnalyticsUsecase: analyticsUsecase,
		MetricsUsecase:   metricsUsecase,
		now:              time.Now,
	}
}

func (ctrl *AnalyticsController) Generate(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		ctrl.Log.Error("AnalyticsController.Generate requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}

	actor, err := utils.GetActor(r.Context())
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	request := new(requests.GenerateAnalytics)
	if err := utils.DecodeJSONBody(r, request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.Log.Info("AnalyticsController.Generate called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, actor.String()),
		zap.String(constvars.LoggingReportTypeKey, request.ReportType),
	)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	response, err := ctrl.AnalyticsUsecase.Generate(ctx, actor, request)
	if err != nil {
		ctrl.Log.Error("AnalyticsController.Generate error from AnalyticsUsecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		buildUsecaseErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.GenerateAnalyticsSuccessMessage, response)
}

func (ctrl *AnalyticsController) Dashboard(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		ctrl.Log.Error("AnalyticsController.Dashboard requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("AnalyticsController.Dashboard called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	response, err := ctrl.MetricsUsecase.GenerateDashboardSummary(ctx)
	if err != nil {
		ctrl.Log.Error("AnalyticsController.Dashboard error from MetricsUsecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		buildUsecaseErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetDashboardSuccessMessage, response)
}

func (ctrl *AnalyticsController) Metrics(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		ctrl.Log.Error("AnalyticsController.Metrics requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}

	request := &requests.ComputeMetrics{
		Domain:    chi.URLParam(r, constvars.URLParamMetricsDomain),
		DateRange: utils.BuildDateRangeRequest(r),
		MetricsFilter: requests.MetricsFilter{
			DoctorID: r.URL.Query().Get(constvars.URLQueryParamDoctorID),
			Gender:   r.URL.Query().Get(constvars.URLQueryParamGender),
			Status:   r.URL.Query().Get(constvars.URLQueryParamStatus),
		},
	}
	ctrl.Log.Info("AnalyticsController.Metrics called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDomainKey, request.Domain),
		zap.String(constvars.LoggingStartDateKey, request.StartDate),
		zap.String(constvars.LoggingEndDateKey, request.EndDate),
	)

	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	window, err := utils.ParseDateRange(request.DateRange, ctrl.defaultWindow())
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	filter, err := utils.BuildMetricsFilter(request.MetricsFilter)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	response, err := ctrl.MetricsUsecase.Compute(ctx, request.Domain, *window, filter)
	if err != nil {
		ctrl.Log.Error("AnalyticsController.Metrics error from MetricsUsecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		buildUsecaseErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetMetricsSuccessMessage, response)
}

func (ctrl *AnalyticsController) List(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		ctrl.Log.Error("AnalyticsController.List requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}

	filter := &requests.AnalyticsFilter{
		ReportType: r.URL.Query().Get(constvars.URLQueryParamReportType),
		Status:     r.URL.Query().Get(constvars.URLQueryParamStatus),
		Pagination: *utils.BuildPaginationRequest(r),
	}
	ctrl.Log.Info("AnalyticsController.List called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Any(constvars.LoggingQueryParamsKey, filter),
	)

	if err := utils.ValidateStruct(filter); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	response, total, err := ctrl.AnalyticsUsecase.List(ctx, filter)
	if err != nil {
		ctrl.Log.Error("AnalyticsController.List error from AnalyticsUsecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		buildUsecaseErrorResponse(ctrl.Log, w, err)
		return
	}

	pagination := utils.BuildPaginationResponse(total, filter.Page, filter.PageSize, r.URL.Path)
	utils.BuildSuccessResponseWithPagination(w, constvars.StatusOK, constvars.ListAnalyticsSuccessMessage, pagination, response)
}

func (ctrl *AnalyticsController) FindByID(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		ctrl.Log.Error("AnalyticsController.FindByID requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}

	analyticsID := chi.URLParam(r, constvars.URLParamID)
	ctrl.Log.Info("AnalyticsController.FindByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAnalyticsIDKey, analyticsID),
	)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	response, err := ctrl.AnalyticsUsecase.FindByID(ctx, analyticsID)
	if err != nil {
		buildUsecaseErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetAnalyticsSuccessMessage, response)
}

func (ctrl *AnalyticsController) Delete(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		ctrl.Log.Error("AnalyticsController.Delete requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}

	analyticsID := chi.URLParam(r, constvars.URLParamID)
	ctrl.Log.Info("AnalyticsController.Delete called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAnalyticsIDKey, analyticsID),
	)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := ctrl.AnalyticsUsecase.Delete(ctx, analyticsID); err != nil {
		ctrl.Log.Error("AnalyticsController.Delete error from AnalyticsUsecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		buildUsecaseErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.DeleteAnalyticsSuccessMessage, nil)
}

func (ctrl *AnalyticsController) defaultWindow() *models.DateRange {
	days := defaultMetricsWindowInDays
	if ctrl.InternalConfig != nil && ctrl.InternalConfig.Report.DefaultWindowInDays > 0 {
		days = ctrl.InternalConfig.Report.DefaultWindowInDays
	}
	now := ctrl.now().UTC()
	window := models.NewDateRange(now.AddDate(0, 0, -days), now)
	return &window
}
