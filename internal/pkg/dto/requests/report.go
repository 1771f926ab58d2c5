package requests

type ReportParameters struct {
	DateRange *DateRange    `json:"dateRange" validate:"omitempty"`
	Filters   MetricsFilter `json:"filters"`
	GroupBy   string        `json:"groupBy" validate:"omitempty,oneof=day week month year doctor department"`
	Metrics   []string      `json:"metrics"`
}

type GenerateReport struct {
	Title        string           `json:"title" validate:"required,max=200"`
	Description  string           `json:"description" validate:"max=1000"`
	ReportType   string           `json:"reportType" validate:"required,report_type"`
	Parameters   ReportParameters `json:"parameters"`
	AccessLevel  string           `json:"accessLevel" validate:"omitempty,oneof=public private restricted"`
	AllowedRoles []string         `json:"allowedRoles" validate:"dive,user_role"`
	AllowedUsers []string         `json:"allowedUsers" validate:"dive,object_id"`
	Tags         []string         `json:"tags" validate:"dive,max=50"`
	Category     string           `json:"category" validate:"max=50"`
	Priority     string           `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	IsTemplate   bool             `json:"isTemplate"`
}

type UpdateReport struct {
	Title        *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string   `json:"description" validate:"omitempty,max=1000"`
	AccessLevel  *string   `json:"accessLevel" validate:"omitempty,oneof=public private restricted"`
	AllowedRoles *[]string `json:"allowedRoles" validate:"omitempty,dive,user_role"`
	AllowedUsers *[]string `json:"allowedUsers" validate:"omitempty,dive,object_id"`
	Tags         *[]string `json:"tags" validate:"omitempty,dive,max=50"`
	Category     *string   `json:"category" validate:"omitempty,max=50"`
	Priority     *string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

type ReportFilter struct {
	ReportType string   `validate:"omitempty,report_type"`
	Status     string   `validate:"omitempty,oneof=pending generating completed failed"`
	Category   string
	Tags       []string
	Pagination
}

type GenerateFromTemplate struct {
	Title     string     `json:"title" validate:"omitempty,max=200"`
	DateRange *DateRange `json:"dateRange" validate:"omitempty"`
}

type ExportReport struct {
	ReportID string `validate:"required,object_id"`
	Format   string
}
