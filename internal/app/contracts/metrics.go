package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"time"
)

type MetricsUsecase interface {
	Compute(ctx context.Context, domain string, window models.DateRange, filter models.MetricsFilter) (*models.MetricsSet, error)
	PatientMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.PatientMetrics, error)
	AppointmentMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.AppointmentMetrics, error)
	DoctorMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.DoctorMetrics, error)
	FinancialMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.FinancialMetrics, error)
	MedicalMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.MedicalMetrics, error)
	GeographicMetrics(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.GeographicMetrics, error)
	DoctorPerformance(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.DoctorPerformanceMetrics, error)
	SystemUsage(ctx context.Context, window models.DateRange) (*models.SystemUsageMetrics, error)
	Custom(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (*models.CustomMetrics, error)
	GenerateDashboardSummary(ctx context.Context) (*models.DashboardSummary, error)
}

// MetricsRepository holds the aggregation queries behind the metrics aggregator.
// Every window is inclusive on both ends.
type MetricsRepository interface {
	CountPatients(ctx context.Context, query models.PatientQuery) (int64, error)
	PatientDemographics(ctx context.Context, query models.PatientQuery) ([]models.Patient, error)
	CountByPatientField(ctx context.Context, field string, query models.PatientQuery, limit int64) ([]models.CountItem, error)
	CountMedicalHistory(ctx context.Context, field string, window models.DateRange, filter models.MetricsFilter, limit int64) ([]models.CountItem, error)
	CountFollowUps(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (int64, error)

	CountAppointments(ctx context.Context, query models.AppointmentQuery) (int64, error)
	CountAppointmentsBy(ctx context.Context, field string, query models.AppointmentQuery, limit int64) ([]models.CountItem, error)
	AppointmentsPerDoctor(ctx context.Context, query models.AppointmentQuery, limit int64) ([]models.DoctorAppointmentCount, error)
	DoctorWorkloads(ctx context.Context, query models.AppointmentQuery) ([]models.DoctorWorkload, error)

	CountUsers(ctx context.Context, role string, createdBefore *time.Time) (int64, error)
	RegistrationsByMonth(ctx context.Context, window models.DateRange) ([]models.MonthlyCount, error)
	CountUsersBy(ctx context.Context, field string) ([]models.CountItem, error)

	SumBillsBy(ctx context.Context, field string, query models.BillQuery) ([]models.AmountItem, error)
	RevenueByMonth(ctx context.Context, query models.BillQuery) ([]models.MonthlyAmount, error)
}
