package constvars

const (
	EventAppointmentBooked    = "appointment.booked"
	EventAppointmentCancelled = "appointment.cancelled"
	EventPaymentCompleted     = "payment.completed"
	EventReportGenerated      = "report.generated"
)

const (
	RedisKeySlotLockFormat        = "appointment:slot:%s:%s:%s"
	RedisKeyDashboardSummary      = "analytics:dashboard:summary"
	RedisKeyRevokedTokenFormat    = "auth:revoked:%s"
	RedisKeyRetentionWorkerLeader = "reports:retention:leader"
	RateLimiterGroupLogin         = "login"
)

const (
	RegexContainAtLeastOneSpecialChar = `[!@#~$%^&*()+|_.,<>?/\\-]`
	RegexContainAtLeastOneUppercase   = `[A-Z]`
	RegexTimeSlot                     = `^(1[0-2]|[1-9]):[0-5][0-9] (AM|PM)$`
)
