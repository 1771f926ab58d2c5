package analytics

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAppointmentDurationInMinutes = 30
	doctorSlotsPerDay                   = 8
	peakHoursLimit                      = 5
	rankingLimit                        = 10
	defaultDashboardCacheTTL            = 5 * time.Minute
)

type metricsUsecase struct {
	MetricsRepository contracts.MetricsRepository
	UserRepository    contracts.UserRepository
	RedisRepository   contracts.RedisRepository
	InternalConfig    *config.InternalConfig
	Log               *zap.Logger
	now               func() time.Time
}

var (
	metricsUsecaseInstance contracts.MetricsUsecase
	onceMetricsUsecase     sync.Once
)

func NewMetricsUsecase(
	metricsRepository contracts.MetricsRepository,
	userRepository contracts.UserRepository,
	redisRepository contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.MetricsUsecase {
	onceMetricsUsecase.Do(func() {
		metricsUsecaseInstance = newMetricsUsecase(
			metricsRepository,
			userRepository,
			redisRepository,
			internalConfig,
			logger,
		)
	})
	return metricsUsecaseInstance
}

func newMetricsUsecase(
	metricsRepository contracts.MetricsRepository,
	userRepository contracts.UserRepository,
	redisRepository contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *metricsUsecase {
	return &metricsUsecase{
		MetricsRepository: metricsRepository,
		UserRepository:    userRepository,
		RedisRepository:   redisRepository,
		InternalConfig:    internalConfig,
		Log:               logger,
		now:               time.Now,
	}
}

// Compute fills the single block of the requested domain.
func (uc *metricsUsecase) Compute(ctx context.Context, domain string, window models.DateRange, filter models.MetricsFilter) (*models.MetricsSet, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("metricsUsecase.Compute called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDomainKey, domain),
		zap.Time(constvars.LoggingStartDateKey, window.StartDate),
		zap.Time(constvars.LoggingEndDateKey, window.EndDate),
	)

	set := &models.MetricsSet{}
	var err error
	switch domain {
	case models.MetricsDomainPatient:
		set.Patient, err = uc.PatientMetrics(ctx, window, filter)
	case models.MetricsDomainAppointment:
		set.Appointment, err = uc.AppointmentMetrics(ctx, window, filter)
	case models.MetricsDomainDoctor:
		set.Doctor, err = uc.DoctorMetrics(ctx, window, filter)
	case models.MetricsDomainFinancial:
		set.Financial, err = uc.FinancialMetrics(ctx, window, filter)
	case models.MetricsDomainMedical:
		set.Medical, err = uc.MedicalMetrics(ctx, window, filter)
	case models.MetricsDomainGeographic:
		set.Geographic, err = uc.GeographicMetrics(ctx, window, filter)
	default:
		return nil, exceptions.ErrInvalidMetricsDomain(nil, domain)
	}
	if err != nil {
		uc.Log.Error("metricsUsecase.Compute error computing domain",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDomainKey, domain),
			zap.Error(err),
		)
		return nil, err
	}
	return set, nil
}

func (uc *metricsUsecase) PatientMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.PatientMetrics, error) {
	now := uc.now()
	base := patientQuery(filter, now)

	total, err := uc.MetricsRepository.CountPatients(ctx, base)
	if err != nil {
		return nil, err
	}

	created := base
	created.Created = &window
	newPatients, err := uc.MetricsRepository.CountPatients(ctx, created)
	if err != nil {
		return nil, err
	}

	active := base
	active.Status = models.PatientStatusActive
	active.LastVisit = &window
	activePatients, err := uc.MetricsRepository.CountPatients(ctx, active)
	if err != nil {
		return nil, err
	}

	// Repeat visitors count regardless of status.
	returning := base
	returning.LastVisit = &window
	returning.MinVisits = 2
	returningPatients, err := uc.MetricsRepository.CountPatients(ctx, returning)
	if err != nil {
		return nil, err
	}

	demographics, err := uc.MetricsRepository.PatientDemographics(ctx, base)
	if err != nil {
		return nil, err
	}

	metrics := &models.PatientMetrics{
		TotalPatients:        total,
		NewPatients:          newPatients,
		ActivePatients:       activePatients,
		PatientRetentionRate: utils.Percentage(float64(returningPatients), float64(activePatients)),
	}

	var totalAge, aged int
	for i := range demographics {
		patient := &demographics[i]
		switch patient.Gender {
		case models.GenderMale:
			metrics.GenderDistribution.Male++
		case models.GenderFemale:
			metrics.GenderDistribution.Female++
		case models.GenderOther:
			metrics.GenderDistribution.Other++
		}
		if patient.DateOfBirth.IsZero() {
			continue
		}
		age := patient.Age(now)
		metrics.AgeGroupDistribution.Add(age)
		totalAge += age
		aged++
	}
	metrics.AverageAge = utils.Round2(utils.SafeDivide(float64(totalAge), float64(aged)))

	return metrics, nil
}

func (uc *metricsUsecase) AppointmentMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.AppointmentMetrics, error) {
	query := models.AppointmentQuery{DoctorID: filter.DoctorID, Status: filter.Status, Window: &window}

	statuses, err := uc.MetricsRepository.CountAppointmentsBy(ctx, "status", query, 0)
	if err != nil {
		return nil, err
	}

	metrics := &models.AppointmentMetrics{AverageAppointmentDuration: defaultAppointmentDurationInMinutes}
	for _, status := range statuses {
		metrics.TotalAppointments += status.Count
		switch status.Label {
		case models.AppointmentStatusScheduled:
			metrics.ScheduledAppointments = status.Count
		case models.AppointmentStatusConfirmed:
			metrics.ConfirmedAppointments = status.Count
		case models.AppointmentStatusCompleted:
			metrics.CompletedAppointments = status.Count
		case models.AppointmentStatusCancelled:
			metrics.CancelledAppointments = status.Count
		}
	}
	metrics.NoShowRate = utils.Percentage(float64(metrics.CancelledAppointments), float64(metrics.TotalAppointments))

	// Appointments carry a day and a slot label, so the slot is the hour bucket.
	metrics.PeakHours, err = uc.MetricsRepository.CountAppointmentsBy(ctx, "time", query, peakHoursLimit)
	if err != nil {
		return nil, err
	}
	metrics.AppointmentReasons, err = uc.MetricsRepository.CountAppointmentsBy(ctx, "reason", query, rankingLimit)
	if err != nil {
		return nil, err
	}
	return metrics, nil
}

func (uc *metricsUsecase) DoctorMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.DoctorMetrics, error) {
	totalDoctors, err := uc.MetricsRepository.CountUsers(ctx, constvars.RoleDoctor, nil)
	if err != nil {
		return nil, err
	}
	end := window.EndDate
	activeDoctors, err := uc.MetricsRepository.CountUsers(ctx, constvars.RoleDoctor, &end)
	if err != nil {
		return nil, err
	}

	query := models.AppointmentQuery{DoctorID: filter.DoctorID, Status: filter.Status, Window: &window}
	perDoctor, err := uc.MetricsRepository.AppointmentsPerDoctor(ctx, query, 0)
	if err != nil {
		return nil, err
	}

	capacity := float64(doctorSlotsPerDay * window.Days())
	var booked int64
	for i := range perDoctor {
		booked += perDoctor[i].AppointmentCount
		perDoctor[i].UtilizationRate = utils.Percentage(float64(perDoctor[i].AppointmentCount), capacity)
	}

	top := perDoctor
	if len(top) > rankingLimit {
		top = top[:rankingLimit]
	}

	return &models.DoctorMetrics{
		TotalDoctors:             totalDoctors,
		ActiveDoctors:            activeDoctors,
		AveragePatientsPerDoctor: utils.Round2(utils.SafeDivide(float64(booked), float64(activeDoctors))),
		TopPerformingDoctors:     top,
		DoctorUtilization:        perDoctor,
	}, nil
}

// FinancialMetrics counts revenue from paid bills only. The billed total of
// every status stays visible in StatusDistribution.
func (uc *metricsUsecase) FinancialMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.FinancialMetrics, error) {
	query := models.BillQuery{DoctorID: filter.DoctorID, Status: filter.Status, Window: &window}

	byStatus, err := uc.MetricsRepository.SumBillsBy(ctx, "status", query)
	if err != nil {
		return nil, err
	}

	metrics := &models.FinancialMetrics{
		StatusDistribution:   byStatus,
		PaymentMethodAmounts: []models.AmountItem{},
		RevenueByMonth:       []models.MonthlyAmount{},
	}
	var billed float64
	for _, status := range byStatus {
		metrics.TotalBills += status.Count
		billed += status.TotalAmount
		switch status.Label {
		case models.BillStatusPaid:
			metrics.PaidBills = status.Count
			metrics.TotalRevenue = utils.Round2(status.TotalAmount)
		case models.BillStatusUnpaid:
			metrics.UnpaidBills = status.Count
			metrics.OutstandingAmount += status.TotalAmount
		case models.BillStatusOverdue:
			metrics.OverdueBills = status.Count
			metrics.OutstandingAmount += status.TotalAmount
		}
	}
	metrics.OutstandingAmount = utils.Round2(metrics.OutstandingAmount)
	metrics.AverageBillAmount = utils.Round2(utils.SafeDivide(billed, float64(metrics.TotalBills)))

	if filter.Status != "" && filter.Status != models.BillStatusPaid {
		return metrics, nil
	}

	paid := query
	paid.Status = models.BillStatusPaid
	metrics.PaymentMethodAmounts, err = uc.MetricsRepository.SumBillsBy(ctx, "paymentMethod", paid)
	if err != nil {
		return nil, err
	}
	for _, method := range metrics.PaymentMethodAmounts {
		switch method.Label {
		case models.PaymentMethodCard:
			metrics.PaymentMethodDistribution.Card = method.Count
		case models.PaymentMethodBank:
			metrics.PaymentMethodDistribution.Bank = method.Count
		case models.PaymentMethodWallet:
			metrics.PaymentMethodDistribution.Wallet = method.Count
		}
	}

	metrics.RevenueByMonth, err = uc.MetricsRepository.RevenueByMonth(ctx, paid)
	if err != nil {
		return nil, err
	}
	return metrics, nil
}

func (uc *metricsUsecase) MedicalMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.MedicalMetrics, error) {
	metrics := &models.MedicalMetrics{}
	rankings := []struct {
		field  string
		target *[]models.CountItem
	}{
		{"medicalHistory.diagnosis", &metrics.CommonDiagnoses},
		{"medicalHistory.symptoms", &metrics.CommonSymptoms},
		{"medicalHistory.medications.name", &metrics.MedicationPrescriptions},
		{"medicalHistory.labResults.testName", &metrics.LabTestFrequency},
	}
	for _, ranking := range rankings {
		items, err := uc.MetricsRepository.CountMedicalHistory(ctx, ranking.field, window, filter, rankingLimit)
		if err != nil {
			return nil, err
		}
		*ranking.target = items
	}

	followUps, err := uc.MetricsRepository.CountFollowUps(ctx, window, filter)
	if err != nil {
		return nil, err
	}
	metrics.FollowUpRequired = followUps
	return metrics, nil
}

// GeographicMetrics describes the whole registered population; the window is not applied.
func (uc *metricsUsecase) GeographicMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.GeographicMetrics, error) {
	base := patientQuery(filter, uc.now())

	byCity, err := uc.MetricsRepository.CountByPatientField(ctx, "address.city", base, rankingLimit)
	if err != nil {
		return nil, err
	}
	byState, err := uc.MetricsRepository.CountByPatientField(ctx, "address.state", base, 0)
	if err != nil {
		return nil, err
	}
	return &models.GeographicMetrics{
		PatientDistributionByCity:  byCity,
		PatientDistributionByState: byState,
	}, nil
}

// DoctorPerformance lists every doctor, including those without appointments
// in the window, ordered by appointment volume.
func (uc *metricsUsecase) DoctorPerformance(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.DoctorPerformanceMetrics, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("metricsUsecase.DoctorPerformance called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Time(constvars.LoggingStartDateKey, window.StartDate),
		zap.Time(constvars.LoggingEndDateKey, window.EndDate),
	)

	summary, err := uc.DoctorMetrics(ctx, window, filter)
	if err != nil {
		return nil, err
	}

	doctors, err := uc.UserRepository.FindByRole(ctx, constvars.RoleDoctor)
	if err != nil {
		return nil, err
	}

	query := models.AppointmentQuery{DoctorID: filter.DoctorID, Window: &window}
	workloads, err := uc.MetricsRepository.DoctorWorkloads(ctx, query)
	if err != nil {
		return nil, err
	}
	workloadByDoctor := make(map[string]models.DoctorWorkload, len(workloads))
	for _, workload := range workloads {
		workloadByDoctor[workload.DoctorID.Hex()] = workload
	}

	revenue, err := uc.MetricsRepository.SumBillsBy(ctx, "doctorId", models.BillQuery{DoctorID: filter.DoctorID, Window: &window})
	if err != nil {
		return nil, err
	}
	revenueByDoctor := make(map[string]float64, len(revenue))
	for _, item := range revenue {
		revenueByDoctor[item.Label] = item.TotalAmount
	}

	performance := make([]models.DoctorPerformance, 0, len(doctors))
	for _, doctor := range doctors {
		if filter.DoctorID != nil && doctor.ID != *filter.DoctorID {
			continue
		}
		workload := workloadByDoctor[doctor.ID.Hex()]
		total := revenueByDoctor[doctor.ID.Hex()]
		performance = append(performance, models.DoctorPerformance{
			DoctorID:                     doctor.ID,
			DoctorName:                   doctor.FullName(),
			Email:                        doctor.Email,
			TotalAppointments:            workload.TotalAppointments,
			CompletedAppointments:        workload.CompletedAppointments,
			CancelledAppointments:        workload.CancelledAppointments,
			CompletionRate:               utils.Percentage(float64(workload.CompletedAppointments), float64(workload.TotalAppointments)),
			TotalRevenue:                 utils.Round2(total),
			AverageRevenuePerAppointment: utils.Round2(utils.SafeDivide(total, float64(workload.CompletedAppointments))),
			Patients:                     workload.UniquePatients,
		})
	}
	sort.SliceStable(performance, func(i, j int) bool {
		if performance[i].TotalAppointments != performance[j].TotalAppointments {
			return performance[i].TotalAppointments > performance[j].TotalAppointments
		}
		return performance[i].DoctorName < performance[j].DoctorName
	})

	return &models.DoctorPerformanceMetrics{Summary: *summary, DoctorPerformance: performance}, nil
}

func (uc *metricsUsecase) SystemUsage(ctx context.Context, window models.DateRange) (*models.SystemUsageMetrics, error) {
	totalUsers, err := uc.MetricsRepository.CountUsers(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	end := window.EndDate
	activeUsers, err := uc.MetricsRepository.CountUsers(ctx, "", &end)
	if err != nil {
		return nil, err
	}
	trend, err := uc.MetricsRepository.RegistrationsByMonth(ctx, window)
	if err != nil {
		return nil, err
	}
	roles, err := uc.MetricsRepository.CountUsersBy(ctx, "role")
	if err != nil {
		return nil, err
	}
	return &models.SystemUsageMetrics{
		TotalUsers:            totalUsers,
		ActiveUsers:           activeUsers,
		UserRegistrationTrend: trend,
		RoleDistribution:      roles,
	}, nil
}

func (uc *metricsUsecase) Custom(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.CustomMetrics, error) {
	patients := patientQuery(filter, uc.now())
	patients.Created = &window
	patientCount, err := uc.MetricsRepository.CountPatients(ctx, patients)
	if err != nil {
		return nil, err
	}

	appointmentCount, err := uc.MetricsRepository.CountAppointments(ctx, models.AppointmentQuery{DoctorID: filter.DoctorID, Window: &window})
	if err != nil {
		return nil, err
	}

	paid, err := uc.MetricsRepository.SumBillsBy(ctx, "status", models.BillQuery{DoctorID: filter.DoctorID, Status: models.BillStatusPaid, Window: &window})
	if err != nil {
		return nil, err
	}
	var revenue float64
	for _, item := range paid {
		revenue += item.TotalAmount
	}

	return &models.CustomMetrics{
		Patients:     patientCount,
		Appointments: appointmentCount,
		Revenue:      utils.Round2(revenue),
	}, nil
}

// GenerateDashboardSummary runs month to date patient, week to date appointment
// and day to date financial metrics concurrently. Results are cached in redis;
// cache failures only degrade to a fresh computation.
func (uc *metricsUsecase) GenerateDashboardSummary(ctx context.Context) (*models.DashboardSummary, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("metricsUsecase.GenerateDashboardSummary called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	if cached := uc.cachedDashboard(ctx, requestID); cached != nil {
		return cached, nil
	}

	now := uc.now()
	noFilter := models.MetricsFilter{}
	summary := &models.DashboardSummary{GeneratedAt: now}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		metrics, err := uc.PatientMetrics(groupCtx, models.NewDateRange(utils.StartOfMonth(now), now), noFilter)
		summary.Monthly = metrics
		return err
	})
	group.Go(func() error {
		metrics, err := uc.AppointmentMetrics(groupCtx, models.NewDateRange(utils.StartOfWeek(now), now), noFilter)
		summary.Weekly = metrics
		return err
	})
	group.Go(func() error {
		metrics, err := uc.FinancialMetrics(groupCtx, models.NewDateRange(utils.StartOfDay(now), now), noFilter)
		summary.Daily = metrics
		return err
	})
	if err := group.Wait(); err != nil {
		uc.Log.Error("metricsUsecase.GenerateDashboardSummary error computing summary",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	if err := uc.RedisRepository.Set(ctx, constvars.RedisKeyDashboardSummary, summary, uc.dashboardCacheTTL()); err != nil {
		uc.Log.Warn("metricsUsecase.GenerateDashboardSummary error caching summary",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingCacheKey, constvars.RedisKeyDashboardSummary),
			zap.Error(err),
		)
	}
	return summary, nil
}

func (uc *metricsUsecase) cachedDashboard(ctx context.Context, requestID string) *models.DashboardSummary {
	raw, err := uc.RedisRepository.Get(ctx, constvars.RedisKeyDashboardSummary)
	if err != nil {
		uc.Log.Warn("metricsUsecase.cachedDashboard error reading cache",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingCacheKey, constvars.RedisKeyDashboardSummary),
			zap.Error(err),
		)
		return nil
	}
	if raw == "" {
		return nil
	}

	var summary models.DashboardSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		uc.Log.Warn("metricsUsecase.cachedDashboard discarding unreadable cache entry",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil
	}
	return &summary
}

func (uc *metricsUsecase) dashboardCacheTTL() time.Duration {
	if uc.InternalConfig == nil || uc.InternalConfig.Analytics.DashboardCacheTTLInSeconds <= 0 {
		return defaultDashboardCacheTTL
	}
	return time.Duration(uc.InternalConfig.Analytics.DashboardCacheTTLInSeconds) * time.Second
}

// patientQuery applies the population filters shared by patient domains.
// An age range becomes a date of birth window relative to now.
func patientQuery(filter models.MetricsFilter, now time.Time) models.PatientQuery {
	query := models.PatientQuery{Gender: filter.Gender, DoctorID: filter.DoctorID}
	if filter.AgeRange == nil {
		return query
	}

	born := models.NewDateRange(time.Time{}, now)
	if filter.AgeRange.Min > 0 {
		born.EndDate = now.AddDate(-filter.AgeRange.Min, 0, 0)
	}
	if filter.AgeRange.Max > 0 {
		born.StartDate = now.AddDate(-filter.AgeRange.Max-1, 0, 0)
	}
	query.BornWithin = &born
	return query
}
