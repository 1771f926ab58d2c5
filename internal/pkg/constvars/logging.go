package constvars

const (
	LoggingRequestIDKey      = "request_id"
	LoggingMethodKey         = "method"
	LoggingEndpointKey       = "endpoint"
	LoggingRemoteAddrKey     = "remote_addr"
	LoggingUserAgentKey      = "user_agent"
	LoggingQueryKey          = "query"
	LoggingStatusCodeKey     = "status_code"
	LoggingDurationKey       = "duration"
	LoggingSuccessKey        = "success"
	LoggingRequestKey        = "request"
	LoggingResponseKey       = "response"
	LoggingResponseLengthKey = "response_length"
	LoggingQueryParamsKey    = "query_params"
	LoggingErrorTypeKey      = "error_type"

	LoggingUserIDKey        = "user_id"
	LoggingUserRoleKey      = "user_role"
	LoggingEmailKey         = "email"
	LoggingPatientIDKey     = "patient_id"
	LoggingDoctorIDKey      = "doctor_id"
	LoggingAppointmentIDKey = "appointment_id"
	LoggingBillIDKey        = "bill_id"
	LoggingReportIDKey      = "report_id"
	LoggingReportTypeKey    = "report_type"
	LoggingAnalyticsIDKey   = "analytics_id"
	LoggingDomainKey        = "domain"
	LoggingRecordIDKey      = "record_id"
	LoggingDocumentIDKey    = "document_id"

	LoggingTimeSlotKey       = "time_slot"
	LoggingDateKey           = "date"
	LoggingAmountKey         = "amount"
	LoggingPaymentMethodKey  = "payment_method"
	LoggingPaymentIntentKey  = "payment_intent_id"
	LoggingCheckoutIDKey     = "checkout_session_id"
	LoggingExportFormatKey   = "export_format"
	LoggingStartDateKey      = "start_date"
	LoggingEndDateKey        = "end_date"
	LoggingCountKey          = "count"
	LoggingCacheKey          = "cache_key"
	LoggingEventTypeKey      = "event_type"
	LoggingBucketNameKey     = "bucket_name"
	LoggingObjectNameKey     = "object_name"
	LoggingCollectionNameKey = "collection"

	LoggingRedisKey              = "redis_key"
	LoggingLockExpirationTimeKey = "lock_expiration_time"
	LoggingLockValueKey          = "lock_value"
	LoggingLockStoredValueKey    = "lock_stored_value"
	LoggingLockExpectedValueKey  = "lock_expected_value"
)
