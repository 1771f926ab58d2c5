package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ReportTypePatientSummary     = "patient_summary"
	ReportTypeAppointmentSummary = "appointment_summary"
	ReportTypeFinancialSummary   = "financial_summary"
	ReportTypeDoctorPerformance  = "doctor_performance"
	ReportTypeMedicalTrends      = "medical_trends"
	ReportTypeSystemUsage        = "system_usage"
	ReportTypeCustom             = "custom"
)

var ReportTypes = []string{
	ReportTypePatientSummary,
	ReportTypeAppointmentSummary,
	ReportTypeFinancialSummary,
	ReportTypeDoctorPerformance,
	ReportTypeMedicalTrends,
	ReportTypeSystemUsage,
	ReportTypeCustom,
}

const (
	ReportStatusPending    = "pending"
	ReportStatusGenerating = "generating"
	ReportStatusCompleted  = "completed"
	ReportStatusFailed     = "failed"
)

const (
	AccessLevelPublic     = "public"
	AccessLevelPrivate    = "private"
	AccessLevelRestricted = "restricted"
)

const (
	ReportPriorityLow    = "low"
	ReportPriorityMedium = "medium"
	ReportPriorityHigh   = "high"
	ReportPriorityUrgent = "urgent"
)

const (
	ExportFormatJSON = "json"
	ExportFormatCSV  = "csv"
)

type ReportParameters struct {
	DateRange *DateRange    `json:"dateRange,omitempty" bson:"dateRange,omitempty"`
	Filters   MetricsFilter `json:"filters" bson:"filters"`
	GroupBy   string        `json:"groupBy,omitempty" bson:"groupBy,omitempty"`
	Metrics   []string      `json:"metrics,omitempty" bson:"metrics,omitempty"`
}

type ReportStatistics struct {
	Views          int64      `json:"views" bson:"views"`
	Downloads      int64      `json:"downloads" bson:"downloads"`
	LastViewed     *time.Time `json:"lastViewed,omitempty" bson:"lastViewed,omitempty"`
	LastDownloaded *time.Time `json:"lastDownloaded,omitempty" bson:"lastDownloaded,omitempty"`
}

type Report struct {
	ID             primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Title          string               `json:"title" bson:"title"`
	Description    string               `json:"description,omitempty" bson:"description,omitempty"`
	ReportType     string               `json:"reportType" bson:"reportType"`
	Parameters     ReportParameters     `json:"parameters" bson:"parameters"`
	Content        *ReportContent       `json:"content,omitempty" bson:"content,omitempty"`
	Status         string               `json:"status" bson:"status"`
	Error          string               `json:"error,omitempty" bson:"error,omitempty"`
	AccessLevel    string               `json:"accessLevel" bson:"accessLevel"`
	AllowedRoles   []string             `json:"allowedRoles" bson:"allowedRoles"`
	AllowedUsers   []primitive.ObjectID `json:"allowedUsers" bson:"allowedUsers"`
	Tags           []string             `json:"tags,omitempty" bson:"tags,omitempty"`
	Category       string               `json:"category,omitempty" bson:"category,omitempty"`
	Priority       string               `json:"priority" bson:"priority"`
	IsTemplate     bool                 `json:"isTemplate" bson:"isTemplate"`
	TemplateID     *primitive.ObjectID  `json:"templateId,omitempty" bson:"templateId,omitempty"`
	Statistics     ReportStatistics     `json:"statistics" bson:"statistics"`
	CreatedBy      *primitive.ObjectID  `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	LastModifiedBy *primitive.ObjectID  `json:"lastModifiedBy,omitempty" bson:"lastModifiedBy,omitempty"`
	Version        int                  `json:"version" bson:"version"`
	GeneratedAt    *time.Time           `json:"generatedAt,omitempty" bson:"generatedAt,omitempty"`
	ExpiresAt      *time.Time           `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	TimeModel      `bson:",inline"`
}

func (r *Report) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// CanAccess checks the role list, then the user list, then expiry. An empty
// list does not restrict. Expiry binds every actor, the creator included.
func (r *Report) CanAccess(actor Actor, now time.Time) bool {
	if len(r.AllowedRoles) > 0 && !containsString(r.AllowedRoles, actor.Role) {
		return false
	}
	if len(r.AllowedUsers) > 0 {
		if actor.IsSystem() || !containsObjectID(r.AllowedUsers, actor.UserID) {
			return false
		}
	}
	return !r.IsExpired(now)
}

// CanModify allows the creator and admins to update or delete a report.
func (r *Report) CanModify(actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return !actor.IsSystem() && r.CreatedBy != nil && *r.CreatedBy == actor.UserID
}

// ReportQuery narrows report listings. Viewer nil means no visibility restriction.
type ReportQuery struct {
	Viewer     *Actor
	ReportType string
	Status     string
	Category   string
	Tags       []string
	IsTemplate *bool
}

// ReportContent is a tagged union keyed by Type. Each report type fills only
// its own blocks.
type ReportContent struct {
	Type              string                    `json:"type" bson:"type"`
	Period            DateRange                 `json:"period" bson:"period"`
	Filters           MetricsFilter             `json:"filters" bson:"filters"`
	Patient           *PatientMetrics           `json:"patient,omitempty" bson:"patient,omitempty"`
	Geographic        *GeographicMetrics        `json:"geographic,omitempty" bson:"geographic,omitempty"`
	Appointment       *AppointmentMetrics       `json:"appointment,omitempty" bson:"appointment,omitempty"`
	Financial         *FinancialMetrics         `json:"financial,omitempty" bson:"financial,omitempty"`
	DoctorPerformance *DoctorPerformanceMetrics `json:"doctorPerformance,omitempty" bson:"doctorPerformance,omitempty"`
	Medical           *MedicalMetrics           `json:"medical,omitempty" bson:"medical,omitempty"`
	SystemUsage       *SystemUsageMetrics       `json:"systemUsage,omitempty" bson:"systemUsage,omitempty"`
	Custom            *CustomMetrics            `json:"custom,omitempty" bson:"custom,omitempty"`
}

func NewPatientSummaryContent(period DateRange, filters MetricsFilter, patient *PatientMetrics, geographic *GeographicMetrics) *ReportContent {
	return &ReportContent{Type: ReportTypePatientSummary, Period: period, Filters: filters, Patient: patient, Geographic: geographic}
}

func NewAppointmentSummaryContent(period DateRange, filters MetricsFilter, appointment *AppointmentMetrics) *ReportContent {
	return &ReportContent{Type: ReportTypeAppointmentSummary, Period: period, Filters: filters, Appointment: appointment}
}

func NewFinancialSummaryContent(period DateRange, filters MetricsFilter, financial *FinancialMetrics) *ReportContent {
	return &ReportContent{Type: ReportTypeFinancialSummary, Period: period, Filters: filters, Financial: financial}
}

func NewDoctorPerformanceContent(period DateRange, filters MetricsFilter, performance *DoctorPerformanceMetrics) *ReportContent {
	return &ReportContent{Type: ReportTypeDoctorPerformance, Period: period, Filters: filters, DoctorPerformance: performance}
}

func NewMedicalTrendsContent(period DateRange, filters MetricsFilter, medical *MedicalMetrics) *ReportContent {
	return &ReportContent{Type: ReportTypeMedicalTrends, Period: period, Filters: filters, Medical: medical}
}

func NewSystemUsageContent(period DateRange, filters MetricsFilter, usage *SystemUsageMetrics) *ReportContent {
	return &ReportContent{Type: ReportTypeSystemUsage, Period: period, Filters: filters, SystemUsage: usage}
}

func NewCustomContent(period DateRange, filters MetricsFilter, custom *CustomMetrics) *ReportContent {
	return &ReportContent{Type: ReportTypeCustom, Period: period, Filters: filters, Custom: custom}
}

// ContentSection is one named block of a report's content.
type ContentSection struct {
	Name  string
	Value interface{}
}

// Sections lists the populated blocks in a stable order.
func (c *ReportContent) Sections() []ContentSection {
	candidates := []ContentSection{
		{Name: "patient", Value: c.Patient},
		{Name: "geographic", Value: c.Geographic},
		{Name: "appointment", Value: c.Appointment},
		{Name: "financial", Value: c.Financial},
		{Name: "doctorPerformance", Value: c.DoctorPerformance},
		{Name: "medical", Value: c.Medical},
		{Name: "systemUsage", Value: c.SystemUsage},
		{Name: "custom", Value: c.Custom},
	}

	sections := make([]ContentSection, 0, 2)
	for _, candidate := range candidates {
		if !isNilBlock(candidate.Value) {
			sections = append(sections, candidate)
		}
	}
	return sections
}

// Validate reports an error when the populated blocks do not match Type.
func (c *ReportContent) Validate() error {
	expected, ok := reportTypeBlocks[c.Type]
	if !ok {
		return fmt.Errorf("unknown report type %q", c.Type)
	}

	sections := c.Sections()
	if len(sections) != len(expected) {
		return errors.New("report content blocks do not match report type " + c.Type)
	}
	for i, section := range sections {
		if section.Name != expected[i] {
			return errors.New("report content blocks do not match report type " + c.Type)
		}
	}
	return nil
}

var reportTypeBlocks = map[string][]string{
	ReportTypePatientSummary:     {"patient", "geographic"},
	ReportTypeAppointmentSummary: {"appointment"},
	ReportTypeFinancialSummary:   {"financial"},
	ReportTypeDoctorPerformance:  {"doctorPerformance"},
	ReportTypeMedicalTrends:      {"medical"},
	ReportTypeSystemUsage:        {"systemUsage"},
	ReportTypeCustom:             {"custom"},
}

func isNilBlock(value interface{}) bool {
	switch v := value.(type) {
	case *PatientMetrics:
		return v == nil
	case *GeographicMetrics:
		return v == nil
	case *AppointmentMetrics:
		return v == nil
	case *FinancialMetrics:
		return v == nil
	case *DoctorPerformanceMetrics:
		return v == nil
	case *MedicalMetrics:
		return v == nil
	case *SystemUsageMetrics:
		return v == nil
	case *CustomMetrics:
		return v == nil
	default:
		return value == nil
	}
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func containsObjectID(values []primitive.ObjectID, target primitive.ObjectID) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
