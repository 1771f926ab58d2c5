package constvars

const (
	// Generic messages
	ResponseUnknown = "unknown"
	ResponseSuccess = "success"
	ResponseError   = "error"

	// User-related messages
	SignupSuccessMessage     = "user registered successfully"
	LoginSuccessMessage      = "successfully login"
	LogoutSuccessMessage     = "successfully logout"
	GetProfileSuccessMessage = "get profile successfully"
	GetDoctorsSuccessMessage = "doctors retrieved successfully"

	// Appointment messages
	BookAppointmentSuccessMessage     = "appointment booked successfully"
	GetAppointmentsSuccessMessage     = "appointments retrieved successfully"
	GetAppointmentSuccessMessage      = "appointment retrieved successfully"
	UpdateAppointmentSuccessMessage   = "appointment updated successfully"
	CancelAppointmentSuccessMessage   = "appointment cancelled successfully"
	CompleteAppointmentSuccessMessage = "appointment completed successfully"
	GetAvailableSlotsSuccessMessage   = "available slots retrieved successfully"

	// Payment messages
	GetUnpaidBillsSuccessMessage        = "unpaid bills retrieved successfully"
	GetPaymentHistorySuccessMessage     = "payment history retrieved successfully"
	ProcessPaymentSuccessMessage        = "payment processed successfully"
	GetPaymentSuccessMessage            = "payment details retrieved successfully"
	GetPaymentStatsSuccessMessage       = "payment statistics retrieved successfully"
	GetPaymentSummarySuccessMessage     = "payment summary retrieved successfully"
	CreatePaymentIntentSuccessMessage   = "payment intent created successfully"
	ConfirmPaymentSuccessMessage        = "payment confirmed successfully"
	CreateCheckoutSessionSuccessMessage = "checkout session created successfully"
	CheckoutSuccessMessage              = "checkout payment completed successfully"

	// Patient messages
	CreatePatientSuccessMessage       = "patient registered successfully"
	GetPatientSuccessMessage          = "patient retrieved successfully"
	GetPatientsSuccessMessage         = "patients retrieved successfully"
	UpdatePatientSuccessMessage       = "patient updated successfully"
	DeletePatientSuccessMessage       = "patient deleted successfully"
	GetPatientStatsSuccessMessage     = "patient statistics retrieved successfully"
	GetMedicalHistorySuccessMessage   = "medical history retrieved successfully"
	AddMedicalRecordSuccessMessage    = "medical record added successfully"
	UpdateMedicalRecordSuccessMessage = "medical record updated successfully"
	DeleteMedicalRecordSuccessMessage = "medical record deleted successfully"
	UpdateAllergiesSuccessMessage     = "allergies updated successfully"
	UpdateMedicationsSuccessMessage   = "medications updated successfully"
	UploadDocumentSuccessMessage      = "document uploaded successfully"
	GetDocumentURLSuccessMessage      = "document url generated successfully"

	// Analytics messages
	GenerateAnalyticsSuccessMessage = "analytics generated successfully"
	GetAnalyticsSuccessMessage      = "analytics retrieved successfully"
	ListAnalyticsSuccessMessage     = "analytics list retrieved successfully"
	DeleteAnalyticsSuccessMessage   = "analytics deleted successfully"
	GetDashboardSuccessMessage      = "dashboard summary retrieved successfully"
	GetMetricsSuccessMessage        = "metrics retrieved successfully"

	// Report messages
	GenerateReportSuccessMessage = "report generated successfully"
	GetReportSuccessMessage      = "report retrieved successfully"
	ListReportsSuccessMessage    = "reports retrieved successfully"
	UpdateReportSuccessMessage   = "report updated successfully"
	DeleteReportSuccessMessage   = "report deleted successfully"
	ExportReportSuccessMessage   = "report exported successfully"
	ListTemplatesSuccessMessage  = "report templates retrieved successfully"
)
