package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusCompleted = "completed"
)

// ActiveAppointmentStatuses hold a doctor's slot.
var ActiveAppointmentStatuses = []string{AppointmentStatusScheduled, AppointmentStatusConfirmed}

type Appointment struct {
	ID                 primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID             primitive.ObjectID  `json:"userId" bson:"userId"`
	DoctorID           primitive.ObjectID  `json:"doctorId" bson:"doctorId"`
	Date               time.Time           `json:"date" bson:"date"`
	Time               string              `json:"time" bson:"time"`
	Reason             string              `json:"reason" bson:"reason"`
	Status             string              `json:"status" bson:"status"`
	BillID             *primitive.ObjectID `json:"billId,omitempty" bson:"billId,omitempty"`
	CancellationReason string              `json:"cancellationReason,omitempty" bson:"cancellationReason,omitempty"`
	TimeModel          `bson:",inline"`
}

func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentStatusScheduled || a.Status == AppointmentStatusConfirmed
}

func (a *Appointment) IsCancellable() bool {
	return a.IsActive()
}

// SameSlot compares slot labels as opaque strings on the same calendar day.
func (a *Appointment) SameSlot(doctorID primitive.ObjectID, date time.Time, timeSlot string) bool {
	return a.DoctorID == doctorID && CalendarDay(a.Date).Equal(CalendarDay(date)) && a.Time == timeSlot
}

// AppointmentDetail is an appointment with its participants and bill resolved.
type AppointmentDetail struct {
	Appointment `bson:",inline"`
	Patient     *UserSummary `json:"patient,omitempty" bson:"patient,omitempty"`
	Doctor      *UserSummary `json:"doctor,omitempty" bson:"doctor,omitempty"`
	Bill        *Bill        `json:"bill,omitempty" bson:"bill,omitempty"`
}

// AppointmentQuery narrows appointment listings and aggregations. Zero fields are ignored.
type AppointmentQuery struct {
	UserID   *primitive.ObjectID
	DoctorID *primitive.ObjectID
	Status   string
	Window   *DateRange
}

// SlotAvailability is one entry of a doctor's daily schedule.
type SlotAvailability struct {
	Time      string  `json:"time"`
	Fee       float64 `json:"fee"`
	Available bool    `json:"available"`
}
