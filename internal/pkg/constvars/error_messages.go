package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required":       "is required",
	"email":          "must be a valid email",
	"alphanum":       "must contain only alphanumeric characters",
	"min":            "must be at least %s characters long",
	"max":            "maximum at %s characters long",
	"eqfield":        "must match %s",
	"password":       "must be at least 8 characters long, contain at least one special character, and one uppercase letter",
	"numeric":        "must be a number",
	"len":            "must be %s characters long",
	"oneof":          "must be one of [%s]",
	"gt":             "must be greater than %s",
	"gte":            "must be greater than or equal to %s",
	"lt":             "must be less than %s",
	"lte":            "must be less than or equal to %s",
	"url":            "must be a valid URL",
	"object_id":      "must be a valid identifier",
	"time_slot":      "must be a time slot such as 9:00 AM",
	"date_value":     "must be a date in YYYY-MM-DD or RFC3339 format",
	"metrics_domain": "must be one of [patient appointment doctor financial medical geographic]",
	"payment_method": "must be one of [card bank wallet]",
	"report_type":    "must be a supported report type",
	"user_role":      "must be one of [Patient Doctor Admin]",
	"required_with":  "is required when %s is present",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":           true,
	"max":           true,
	"len":           true,
	"eqfield":       true,
	"gt":            true,
	"gte":           true,
	"lt":            true,
	"lte":           true,
	"oneof":         true,
	"required_with": true,
}

// Error messages for clients
const (
	ErrClientEmailAlreadyExists            = "email already used"
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientInvalidEmailOrPassword        = "invalid email or password"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientTooManyRequests               = "too many requests, please slow down"

	ErrClientPatientNotFound         = "patient not found"
	ErrClientDoctorNotFound          = "doctor not found"
	ErrClientUserNotFound            = "user not found"
	ErrClientAppointmentNotFound     = "appointment not found"
	ErrClientBillNotFound            = "bill not found"
	ErrClientReportNotFound          = "report not found"
	ErrClientAnalyticsNotFound       = "analytics not found"
	ErrClientMedicalRecordNotFound   = "medical record not found"
	ErrClientDocumentNotFound        = "document not found"
	ErrClientDoctorUnavailable       = "doctor is not available at the requested time slot"
	ErrClientAppointmentNotCancelled = "appointment can no longer be cancelled"
	ErrClientAppointmentNotComplete  = "only confirmed appointments can be completed"
	ErrClientBillAlreadyPaid         = "bill is already paid"
	ErrClientDuplicateRecord         = "a record with the same unique value already exists"
	ErrClientHealthCardAlreadyExists = "health card number already registered"
	ErrClientPatientProfileExists    = "patient profile already exists for this user"
	ErrClientReportAccessDenied      = "you do not have access to this report"
	ErrClientReportNotCompleted      = "report is not ready for export"
	ErrClientReportExportFormat      = "unsupported export format"
	ErrClientInvalidMetricsDomain    = "unsupported metrics domain"
	ErrClientInvalidDateRange        = "start date must not be after end date"
	ErrClientFileTooLarge            = "the uploaded file is too large"
	ErrClientPaymentProcessingFailed = "payment processing failed: %s"
	ErrClientPaymentIntentFailed     = "payment intent creation failed: %s"
	ErrClientPaymentConfirmFailed    = "payment confirmation failed: %s"
	ErrClientCheckoutFailed          = "checkout session creation failed: %s"
	ErrClientCheckoutNotPaid         = "checkout session is not paid yet"
)

// Error messages for developers
const (
	ErrDevInvalidInput               = "invalid input"
	ErrDevValidationFailed           = "request validation failed"
	ErrDevCannotParseJSON            = "cannot parse JSON into struct or other data types"
	ErrDevCannotParseTime            = "cannot parse time into the given format"
	ErrDevCannotMarshalJSON          = "cannot convert struct or other data types to JSON"
	ErrDevInvalidFormat              = "invalid %s format"
	ErrDevCannotParseMultipartForm   = "cannot parse multipart form body"
	ErrDevURLParamIDValidationFailed = "failed to validate URL param %s"
	ErrDevServerDeadlineExceeded     = "server deadline exceeded"
	ErrDevMissingRequestID           = "request id is missing from context"
	ErrDevServerPanic                = "panic recovered while serving request"
	ErrDevMissingActor               = "authenticated actor is missing from context"
	ErrDevInvalidCredentials         = "invalid credentials"
	ErrDevFailedToHashPassword       = "failed to hash password"
	ErrDevEmailAlreadyExists         = "email already exists"
	ErrDevUserNotExists              = "user does not exist"
	ErrDevRoleNotAllowed             = "role %s is not allowed on this route"
	ErrDevTooManyRequests            = "rate limit exceeded for %s"

	ErrDevAuthTokenMissing          = "authorization token is missing"
	ErrDevAuthTokenInvalid          = "authorization token is invalid"
	ErrDevAuthTokenInvalidOrExpired = "authorization token is invalid or expired"
	ErrDevAuthTokenRevoked          = "authorization token has been revoked"
	ErrDevAuthSigningMethod         = "unexpected signing method"
	ErrDevAuthGenerateToken         = "failed to generate authorization token"

	ErrDevPatientNotFound          = "patient %s not found"
	ErrDevDoctorNotFound           = "doctor %s not found"
	ErrDevAppointmentNotFound      = "appointment %s not found"
	ErrDevBillNotFound             = "bill %s not found"
	ErrDevReportNotFound           = "report %s not found"
	ErrDevAnalyticsNotFound        = "analytics %s not found"
	ErrDevMedicalRecordNotFound    = "medical record %s not found"
	ErrDevDocumentNotFound         = "document %s not found"
	ErrDevDoctorUnavailable        = "doctor %s already has an active appointment at %s %s"
	ErrDevSlotLockNotAcquired      = "slot lock %s held by another booking"
	ErrDevAppointmentStatus        = "appointment %s has status %s"
	ErrDevBillAlreadyPaid          = "bill %s already paid"
	ErrDevDuplicateKey             = "duplicate key"
	ErrDevHealthCardAlreadyExists  = "health card number %s already exists"
	ErrDevPatientProfileExists     = "patient profile already exists for user %s"
	ErrDevReportAccessDenied       = "actor %s cannot access report %s"
	ErrDevReportNotCompleted       = "report %s has status %s"
	ErrDevReportExportFormat       = "export format %s is not supported"
	ErrDevReportInvalidType        = "report type %s is not supported"
	ErrDevInvalidMetricsDomain     = "metrics domain %s is not supported"
	ErrDevInvalidDateRange         = "invalid date range"
	ErrDevFileTooLarge             = "file size %d exceeds limit %d"
	ErrDevPaymentProvider          = "payment provider returned failure"
	ErrDevCheckoutNotPaid          = "checkout session %s payment status %s"
	ErrDevBillAppointmentNotLinked = "bill %s has no linked appointment"

	ErrDevDBFailedToFindDocument     = "failed to find document in database"
	ErrDevDBFailedToCountDocuments   = "failed to count documents in database"
	ErrDevDBFailedToInsertDocument   = "failed to insert document into database"
	ErrDevDBFailedToUpdateDocument   = "failed to update document in database"
	ErrDevDBFailedToDeleteDocument   = "failed to delete document from database"
	ErrDevDBFailedToIterateDocuments = "failed to iterate documents from database"
	ErrDevDBFailedToAggregate        = "failed to run aggregation pipeline"
	ErrDevDBFailedToCreateIndex      = "failed to create index"
	ErrDevDBStringNotObjectID        = "string is not a valid object id"
	ErrDevDBTransaction              = "database transaction failed"

	ErrDevRedisGetNoData      = "failed to get data from redis with key %s"
	ErrDevRedisSetData        = "failed to set data to redis"
	ErrDevRedisDeleteData     = "failed to delete data from redis"
	ErrDevRedisGetData        = "failed to get data from redis"
	ErrDevRedisSetNX          = "failed to set data to redis if not exists"
	ErrDevRedisExpire         = "failed to refresh redis key expiration"
	ErrDevRedisUnlock         = "failed to release redis lock"
	ErrDevMinioCreateObject   = "failed to create object in bucket %s"
	ErrDevMinioPresignedURL   = "failed to create pre-signed url in bucket %s"
	ErrDevRabbitMQPublish     = "failed to publish message to exchange %s"
	ErrDevRabbitMQOpenChannel = "failed to open rabbitmq channel"
)
