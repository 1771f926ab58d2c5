package models

import "time"

type TimeModel struct {
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (m *TimeModel) SetCreatedAtUpdatedAt(now time.Time) {
	m.CreatedAt = now
	m.UpdatedAt = now
}

func (m *TimeModel) SetUpdatedAt(now time.Time) {
	m.UpdatedAt = now
}

// DateRange is an inclusive window on both ends.
type DateRange struct {
	StartDate time.Time `json:"startDate" bson:"startDate"`
	EndDate   time.Time `json:"endDate" bson:"endDate"`
}

func NewDateRange(start, end time.Time) DateRange {
	return DateRange{StartDate: start, EndDate: end}
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.StartDate) && !t.After(r.EndDate)
}

func (r DateRange) IsValid() bool {
	return !r.StartDate.After(r.EndDate)
}

// Days returns the number of started days covered by the window.
func (r DateRange) Days() int {
	if !r.EndDate.After(r.StartDate) {
		return 0
	}
	hours := r.EndDate.Sub(r.StartDate).Hours()
	days := int(hours / 24)
	if float64(days)*24 < hours {
		days++
	}
	return days
}

// CalendarDay truncates t to midnight UTC of its calendar date.
func CalendarDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
