package requests

type BookAppointment struct {
	UserID   string `json:"userId" validate:"required,object_id"`
	DoctorID string `json:"doctorId" validate:"required,object_id"`
	Date     string `json:"date" validate:"required,date_value"`
	Time     string `json:"time" validate:"required,time_slot"`
	Reason   string `json:"reason" validate:"required,max=500"`
}

type UpdateAppointment struct {
	Date   *string `json:"date" validate:"omitempty,date_value"`
	Time   *string `json:"time" validate:"omitempty,time_slot"`
	Reason *string `json:"reason" validate:"omitempty,min=1,max=500"`
}

type CancelAppointment struct {
	Reason string `json:"reason" validate:"max=500"`
}

type AppointmentFilter struct {
	UserID   string `validate:"omitempty,object_id"`
	DoctorID string `validate:"omitempty,object_id"`
	Status   string `validate:"omitempty,oneof=scheduled confirmed cancelled completed"`
	Date     string `validate:"omitempty,date_value"`
	DateRange
	Pagination
}

type AvailableSlots struct {
	DoctorID string `validate:"required,object_id"`
	Date     string `validate:"required,date_value"`
}
