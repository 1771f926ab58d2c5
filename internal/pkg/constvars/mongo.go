package constvars

const (
	MongoCollectionUsers        = "users"
	MongoCollectionPatients     = "patients"
	MongoCollectionAppointments = "appointments"
	MongoCollectionBills        = "bills"
	MongoCollectionReports      = "reports"
	MongoCollectionAnalytics    = "analytics"
)
