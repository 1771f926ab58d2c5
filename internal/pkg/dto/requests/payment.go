package requests

type ProcessPayment struct {
	BillID         string                 `json:"billId" validate:"required,object_id"`
	PaymentMethod  string                 `json:"paymentMethod" validate:"required,payment_method"`
	Amount         *float64               `json:"amount" validate:"omitempty,gt=0"`
	PaymentDetails map[string]interface{} `json:"paymentDetails"`
}

type CreatePaymentIntent struct {
	BillID string `json:"billId" validate:"required,object_id"`
}

type ConfirmPayment struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
	BillID          string `json:"billId" validate:"required,object_id"`
}

type CreateCheckoutSession struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	ProductName   string  `json:"productName" validate:"required,max=200"`
	BillID        string  `json:"billId" validate:"required,object_id"`
	UserID        string  `json:"userId" validate:"omitempty,object_id"`
	DoctorID      string  `json:"doctorId" validate:"omitempty,object_id"`
	AppointmentID string  `json:"appointmentId" validate:"omitempty,object_id"`
	CustomerEmail string  `json:"customerEmail" validate:"omitempty,email"`
}

type CheckoutSuccess struct {
	SessionID string `validate:"required"`
	BillID    string `validate:"required,object_id"`
}

type BillFilter struct {
	PatientID string `validate:"omitempty,object_id"`
	Status    string `validate:"omitempty,oneof=unpaid paid overdue verified"`
	Date      string `validate:"omitempty,date_value"`
	DateRange
}
