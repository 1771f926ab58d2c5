package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/dto/requests"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AppointmentUsecase interface {
	Book(ctx context.Context, request *requests.BookAppointment) (*models.AppointmentDetail, error)
	FindAll(ctx context.Context, filter *requests.AppointmentFilter) ([]models.AppointmentDetail, int, error)
	FindByUserID(ctx context.Context, userID string) ([]models.AppointmentDetail, error)
	FindByID(ctx context.Context, appointmentID string) (*models.AppointmentDetail, error)
	Update(ctx context.Context, appointmentID string, request *requests.UpdateAppointment) (*models.AppointmentDetail, error)
	Cancel(ctx context.Context, appointmentID string, request *requests.CancelAppointment) (*models.Appointment, error)
	Complete(ctx context.Context, appointmentID string) (*models.Appointment, error)
	AvailableSlots(ctx context.Context, request *requests.AvailableSlots) ([]models.SlotAvailability, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error)
	FindByID(ctx context.Context, appointmentID primitive.ObjectID) (*models.Appointment, error)
	FindDetailByID(ctx context.Context, appointmentID primitive.ObjectID) (*models.AppointmentDetail, error)
	FindActiveBySlot(ctx context.Context, doctorID primitive.ObjectID, date time.Time, timeSlot string) (*models.Appointment, error)
	FindActiveByDoctorAndDay(ctx context.Context, doctorID primitive.ObjectID, date time.Time) ([]models.Appointment, error)
	Find(ctx context.Context, query models.AppointmentQuery, pagination *requests.Pagination) ([]models.AppointmentDetail, int, error)
	SetBillID(ctx context.Context, appointmentID, billID primitive.ObjectID) error
	Update(ctx context.Context, appointmentID primitive.ObjectID, fields map[string]interface{}) (*models.Appointment, error)
	// UpdateStatusIf moves the appointment to status only when its current status is from.
	UpdateStatusIf(ctx context.Context, appointmentID primitive.ObjectID, from, status string) (bool, error)
}
