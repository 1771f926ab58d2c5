package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AnalyticsTypeDaily   = "daily"
	AnalyticsTypeWeekly  = "weekly"
	AnalyticsTypeMonthly = "monthly"
	AnalyticsTypeYearly  = "yearly"
	AnalyticsTypeCustom  = "custom"
)

const (
	AnalyticsStatusGenerating = "generating"
	AnalyticsStatusCompleted  = "completed"
	AnalyticsStatusFailed     = "failed"
)

// Analytics is a persisted snapshot of every metrics domain over one window.
type Analytics struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	ReportType  string              `json:"reportType" bson:"reportType"`
	Period      DateRange           `json:"period" bson:"period"`
	Status      string              `json:"status" bson:"status"`
	GeneratedBy *primitive.ObjectID `json:"generatedBy,omitempty" bson:"generatedBy,omitempty"`
	MetricsSet  `bson:",inline"`
	TimeModel   `bson:",inline"`
}

// AnalyticsWindow derives the window for a snapshot type ending at now.
func AnalyticsWindow(analyticsType string, now time.Time) (DateRange, bool) {
	switch analyticsType {
	case AnalyticsTypeDaily:
		return NewDateRange(now.AddDate(0, 0, -1), now), true
	case AnalyticsTypeWeekly:
		return NewDateRange(now.AddDate(0, 0, -7), now), true
	case AnalyticsTypeMonthly:
		return NewDateRange(now.AddDate(0, -1, 0), now), true
	case AnalyticsTypeYearly:
		return NewDateRange(now.AddDate(-1, 0, 0), now), true
	default:
		return DateRange{}, false
	}
}
