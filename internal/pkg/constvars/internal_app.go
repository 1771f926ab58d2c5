package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_ACTOR_KEY                ContextKey = "actor"
	CONTEXT_TOKEN_ID_KEY             ContextKey = "token_id"
	CONTEXT_TOKEN_EXPIRY_KEY         ContextKey = "token_expiry"
)

const (
	REQUEST_ID_PREFIX = "HSPTL_SVC_"
)

const (
	AppPaginationUrlFormat = "%s?page=%d&page_size=%d"
	AppDefaultPage         = 1
	AppDefaultPageSize     = 10
	AppMaxPageSize         = 100
)

const (
	// DateLayout is the calendar date format accepted on the wire.
	DateLayout = "2006-01-02"
)

const (
	ResourceAuth         = "auth"
	ResourceUsers        = "users"
	ResourcePatients     = "patients"
	ResourceAppointments = "appointments"
	ResourcePayments     = "payments"
	ResourceAnalytics    = "analytics"
	ResourceReports      = "reports"
)
