package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MetricsDomainPatient     = "patient"
	MetricsDomainAppointment = "appointment"
	MetricsDomainDoctor      = "doctor"
	MetricsDomainFinancial   = "financial"
	MetricsDomainMedical     = "medical"
	MetricsDomainGeographic  = "geographic"
)

var MetricsDomains = []string{
	MetricsDomainPatient,
	MetricsDomainAppointment,
	MetricsDomainDoctor,
	MetricsDomainFinancial,
	MetricsDomainMedical,
	MetricsDomainGeographic,
}

// MetricsFilter carries the optional narrowing a caller may apply to a metrics run.
type MetricsFilter struct {
	DoctorID *primitive.ObjectID `json:"doctorId,omitempty" bson:"doctorId,omitempty"`
	Gender   string              `json:"gender,omitempty" bson:"gender,omitempty"`
	Status   string              `json:"status,omitempty" bson:"status,omitempty"`
	AgeRange *AgeRange           `json:"ageRange,omitempty" bson:"ageRange,omitempty"`
}

type AgeRange struct {
	Min int `json:"min,omitempty" bson:"min,omitempty"`
	Max int `json:"max,omitempty" bson:"max,omitempty"`
}

// CountItem is one bucket of a group-by count.
type CountItem struct {
	Label string `json:"label" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// AmountItem is one bucket of a group-by count with a summed amount.
type AmountItem struct {
	Label       string  `json:"label" bson:"_id"`
	Count       int64   `json:"count" bson:"count"`
	TotalAmount float64 `json:"totalAmount" bson:"totalAmount"`
}

type MonthlyAmount struct {
	Year   int     `json:"year" bson:"year"`
	Month  string  `json:"month" bson:"-"`
	Number int     `json:"-" bson:"month"`
	Amount float64 `json:"amount" bson:"amount"`
	Count  int64   `json:"count" bson:"count"`
}

type MonthlyCount struct {
	Year   int    `json:"year" bson:"year"`
	Month  string `json:"month" bson:"-"`
	Number int    `json:"-" bson:"month"`
	Count  int64  `json:"count" bson:"count"`
}

type GenderDistribution struct {
	Male   int64 `json:"male" bson:"male"`
	Female int64 `json:"female" bson:"female"`
	Other  int64 `json:"other" bson:"other"`
}

type AgeGroupDistribution struct {
	Child      int64 `json:"0-18" bson:"0-18"`
	YoungAdult int64 `json:"19-35" bson:"19-35"`
	Adult      int64 `json:"36-50" bson:"36-50"`
	MiddleAged int64 `json:"51-65" bson:"51-65"`
	Senior     int64 `json:"65+" bson:"65+"`
}

func (d *AgeGroupDistribution) Add(age int) {
	switch {
	case age <= 18:
		d.Child++
	case age <= 35:
		d.YoungAdult++
	case age <= 50:
		d.Adult++
	case age <= 65:
		d.MiddleAged++
	default:
		d.Senior++
	}
}

type PatientMetrics struct {
	TotalPatients        int64                `json:"totalPatients" bson:"totalPatients"`
	NewPatients          int64                `json:"newPatients" bson:"newPatients"`
	ActivePatients       int64                `json:"activePatients" bson:"activePatients"`
	PatientRetentionRate float64              `json:"patientRetentionRate" bson:"patientRetentionRate"`
	AverageAge           float64              `json:"averageAge" bson:"averageAge"`
	GenderDistribution   GenderDistribution   `json:"genderDistribution" bson:"genderDistribution"`
	AgeGroupDistribution AgeGroupDistribution `json:"ageGroupDistribution" bson:"ageGroupDistribution"`
}

type AppointmentMetrics struct {
	TotalAppointments          int64       `json:"totalAppointments" bson:"totalAppointments"`
	ScheduledAppointments      int64       `json:"scheduledAppointments" bson:"scheduledAppointments"`
	ConfirmedAppointments      int64       `json:"confirmedAppointments" bson:"confirmedAppointments"`
	CompletedAppointments      int64       `json:"completedAppointments" bson:"completedAppointments"`
	CancelledAppointments      int64       `json:"cancelledAppointments" bson:"cancelledAppointments"`
	NoShowRate                 float64     `json:"noShowRate" bson:"noShowRate"`
	AverageAppointmentDuration int         `json:"averageAppointmentDuration" bson:"averageAppointmentDuration"`
	PeakHours                  []CountItem `json:"peakHours" bson:"peakHours"`
	AppointmentReasons         []CountItem `json:"appointmentReasons" bson:"appointmentReasons"`
}

// DoctorAppointmentCount is the per doctor appointment volume in a window.
type DoctorAppointmentCount struct {
	DoctorID         primitive.ObjectID `json:"doctorId" bson:"_id"`
	DoctorName       string             `json:"doctorName" bson:"doctorName"`
	Email            string             `json:"email" bson:"email"`
	AppointmentCount int64              `json:"appointmentCount" bson:"appointmentCount"`
	UtilizationRate  float64            `json:"utilizationRate" bson:"utilizationRate"`
}

type DoctorMetrics struct {
	TotalDoctors             int64                    `json:"totalDoctors" bson:"totalDoctors"`
	ActiveDoctors            int64                    `json:"activeDoctors" bson:"activeDoctors"`
	AveragePatientsPerDoctor float64                  `json:"averagePatientsPerDoctor" bson:"averagePatientsPerDoctor"`
	TopPerformingDoctors     []DoctorAppointmentCount `json:"topPerformingDoctors" bson:"topPerformingDoctors"`
	DoctorUtilization        []DoctorAppointmentCount `json:"doctorUtilization" bson:"doctorUtilization"`
}

type PaymentMethodDistribution struct {
	Card   int64 `json:"card" bson:"card"`
	Bank   int64 `json:"bank" bson:"bank"`
	Wallet int64 `json:"wallet" bson:"wallet"`
}

type FinancialMetrics struct {
	TotalRevenue              float64                   `json:"totalRevenue" bson:"totalRevenue"`
	TotalBills                int64                     `json:"totalBills" bson:"totalBills"`
	PaidBills                 int64                     `json:"paidBills" bson:"paidBills"`
	UnpaidBills               int64                     `json:"unpaidBills" bson:"unpaidBills"`
	OverdueBills              int64                     `json:"overdueBills" bson:"overdueBills"`
	AverageBillAmount         float64                   `json:"averageBillAmount" bson:"averageBillAmount"`
	OutstandingAmount         float64                   `json:"outstandingAmount" bson:"outstandingAmount"`
	StatusDistribution        []AmountItem              `json:"statusDistribution" bson:"statusDistribution"`
	PaymentMethodDistribution PaymentMethodDistribution `json:"paymentMethodDistribution" bson:"paymentMethodDistribution"`
	PaymentMethodAmounts      []AmountItem              `json:"paymentMethodAmounts" bson:"paymentMethodAmounts"`
	RevenueByMonth            []MonthlyAmount           `json:"revenueByMonth" bson:"revenueByMonth"`
}

type MedicalMetrics struct {
	CommonDiagnoses         []CountItem `json:"commonDiagnoses" bson:"commonDiagnoses"`
	CommonSymptoms          []CountItem `json:"commonSymptoms" bson:"commonSymptoms"`
	MedicationPrescriptions []CountItem `json:"medicationPrescriptions" bson:"medicationPrescriptions"`
	LabTestFrequency        []CountItem `json:"labTestFrequency" bson:"labTestFrequency"`
	FollowUpRequired        int64       `json:"followUpRequired" bson:"followUpRequired"`
}

type GeographicMetrics struct {
	PatientDistributionByCity  []CountItem `json:"patientDistributionByCity" bson:"patientDistributionByCity"`
	PatientDistributionByState []CountItem `json:"patientDistributionByState" bson:"patientDistributionByState"`
}

// DoctorWorkload is the raw per doctor appointment breakdown read from storage.
type DoctorWorkload struct {
	DoctorID              primitive.ObjectID `bson:"_id"`
	DoctorName            string             `bson:"doctorName"`
	Email                 string             `bson:"email"`
	TotalAppointments     int64              `bson:"totalAppointments"`
	CompletedAppointments int64              `bson:"completedAppointments"`
	CancelledAppointments int64              `bson:"cancelledAppointments"`
	UniquePatients        int64              `bson:"uniquePatients"`
}

type DoctorPerformance struct {
	DoctorID                     primitive.ObjectID `json:"doctorId" bson:"doctorId"`
	DoctorName                   string             `json:"doctorName" bson:"doctorName"`
	Email                        string             `json:"email" bson:"email"`
	TotalAppointments            int64              `json:"totalAppointments" bson:"totalAppointments"`
	CompletedAppointments        int64              `json:"completedAppointments" bson:"completedAppointments"`
	CancelledAppointments        int64              `json:"cancelledAppointments" bson:"cancelledAppointments"`
	CompletionRate               float64            `json:"completionRate" bson:"completionRate"`
	TotalRevenue                 float64            `json:"totalRevenue" bson:"totalRevenue"`
	AverageRevenuePerAppointment float64            `json:"averageRevenuePerAppointment" bson:"averageRevenuePerAppointment"`
	Patients                     int64              `json:"patients" bson:"patients"`
}

type DoctorPerformanceMetrics struct {
	Summary           DoctorMetrics       `json:"summary" bson:"summary"`
	DoctorPerformance []DoctorPerformance `json:"doctorPerformance" bson:"doctorPerformance"`
}

type SystemUsageMetrics struct {
	TotalUsers            int64          `json:"totalUsers" bson:"totalUsers"`
	ActiveUsers           int64          `json:"activeUsers" bson:"activeUsers"`
	UserRegistrationTrend []MonthlyCount `json:"userRegistrationTrend" bson:"userRegistrationTrend"`
	RoleDistribution      []CountItem    `json:"roleDistribution" bson:"roleDistribution"`
}

type CustomMetrics struct {
	Patients     int64   `json:"patients" bson:"patients"`
	Appointments int64   `json:"appointments" bson:"appointments"`
	Revenue      float64 `json:"revenue" bson:"revenue"`
}

// MetricsSet holds one block per domain; a single domain run fills exactly one.
type MetricsSet struct {
	Patient     *PatientMetrics     `json:"patientMetrics,omitempty" bson:"patientMetrics,omitempty"`
	Appointment *AppointmentMetrics `json:"appointmentMetrics,omitempty" bson:"appointmentMetrics,omitempty"`
	Doctor      *DoctorMetrics      `json:"doctorMetrics,omitempty" bson:"doctorMetrics,omitempty"`
	Financial   *FinancialMetrics   `json:"financialMetrics,omitempty" bson:"financialMetrics,omitempty"`
	Medical     *MedicalMetrics     `json:"medicalMetrics,omitempty" bson:"medicalMetrics,omitempty"`
	Geographic  *GeographicMetrics  `json:"geographicMetrics,omitempty" bson:"geographicMetrics,omitempty"`
}

type DashboardSummary struct {
	Monthly     *PatientMetrics     `json:"monthly"`
	Weekly      *AppointmentMetrics `json:"weekly"`
	Daily       *FinancialMetrics   `json:"daily"`
	GeneratedAt time.Time           `json:"generatedAt"`
}

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}
