package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BillStatusVerified is reserved; no workflow transitions into it.
const (
	BillStatusUnpaid   = "unpaid"
	BillStatusPaid     = "paid"
	BillStatusOverdue  = "overdue"
	BillStatusVerified = "verified"
)

const (
	PaymentMethodCard   = "card"
	PaymentMethodBank   = "bank"
	PaymentMethodWallet = "wallet"
)

var PaymentMethods = []string{PaymentMethodCard, PaymentMethodBank, PaymentMethodWallet}

type Bill struct {
	ID             primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	AppointmentID  primitive.ObjectID     `json:"appointmentId" bson:"appointmentId"`
	UserID         primitive.ObjectID     `json:"userId" bson:"userId"`
	DoctorID       primitive.ObjectID     `json:"doctorId" bson:"doctorId"`
	Date           time.Time              `json:"date" bson:"date"`
	Amount         float64                `json:"amount" bson:"amount"`
	Status         string                 `json:"status" bson:"status"`
	PaymentMethod  string                 `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	PaidAt         *time.Time             `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	TransactionID  string                 `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	PaymentDetails map[string]interface{} `json:"paymentDetails,omitempty" bson:"paymentDetails,omitempty"`
	TimeModel      `bson:",inline"`
}

func (b *Bill) IsPaid() bool {
	return b.Status == BillStatusPaid
}

// BillPayment is the state a completing payment flow writes onto a bill.
type BillPayment struct {
	PaymentMethod  string
	TransactionID  string
	PaidAt         time.Time
	PaymentDetails map[string]interface{}
}

// BillDetail is a bill listing row with its appointment and participants resolved.
type BillDetail struct {
	Bill        `bson:",inline"`
	Appointment *AppointmentSummary `json:"appointment,omitempty" bson:"appointment,omitempty"`
	Patient     *UserSummary        `json:"patient,omitempty" bson:"patient,omitempty"`
	Doctor      *UserSummary        `json:"doctor,omitempty" bson:"doctor,omitempty"`
}

type AppointmentSummary struct {
	ID     primitive.ObjectID `json:"id" bson:"_id"`
	Date   time.Time          `json:"date" bson:"date"`
	Time   string             `json:"time" bson:"time"`
	Reason string             `json:"reason" bson:"reason"`
	Status string             `json:"status" bson:"status"`
}

// BillQuery narrows bill listings and aggregations. Zero fields are ignored.
type BillQuery struct {
	UserID   *primitive.ObjectID
	DoctorID *primitive.ObjectID
	Status   string
	Window   *DateRange
	PaidAt   *DateRange
	DueDay   *time.Time
}

type PaymentStats struct {
	TotalPaid   float64 `json:"totalPaid" bson:"totalPaid"`
	TotalUnpaid float64 `json:"totalUnpaid" bson:"totalUnpaid"`
	TotalBills  int64   `json:"totalBills" bson:"totalBills"`
	PaidBills   int64   `json:"paidBills" bson:"paidBills"`
	UnpaidBills int64   `json:"unpaidBills" bson:"unpaidBills"`
}

type StatusAmount struct {
	Count         int64   `json:"count" bson:"count"`
	TotalAmount   float64 `json:"totalAmount" bson:"totalAmount"`
	AverageAmount float64 `json:"averageAmount" bson:"averageAmount"`
}

type PaymentSummary struct {
	ByStatus    map[string]StatusAmount `json:"byStatus"`
	TotalBills  int64                   `json:"totalBills"`
	TotalAmount float64                 `json:"totalAmount"`
}
