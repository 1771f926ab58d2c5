package requests

type GenerateAnalytics struct {
	ReportType string `json:"reportType" validate:"omitempty,oneof=daily weekly monthly yearly custom"`
	StartDate  string `json:"startDate" validate:"omitempty,date_value"`
	EndDate    string `json:"endDate" validate:"omitempty,date_value"`
}

type AnalyticsFilter struct {
	ReportType string `validate:"omitempty,oneof=daily weekly monthly yearly custom"`
	Status     string `validate:"omitempty,oneof=generating completed failed"`
	Pagination
}

type MetricsFilter struct {
	DoctorID string    `json:"doctorId" validate:"omitempty,object_id"`
	Gender   string    `json:"gender" validate:"omitempty,oneof=male female other"`
	Status   string    `json:"status" validate:"omitempty,max=30"`
	AgeRange *AgeRange `json:"ageRange" validate:"omitempty"`
}

type AgeRange struct {
	Min int `json:"min" validate:"gte=0"`
	Max int `json:"max" validate:"gte=0"`
}

type ComputeMetrics struct {
	Domain string `validate:"required,metrics_domain"`
	DateRange
	MetricsFilter
}
