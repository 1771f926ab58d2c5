package config

type InternalConfig struct {
	App       App          `mapstructure:"app"`
	JWT       AppJWT       `mapstructure:"jwt"`
	Login     AppLogin     `mapstructure:"login"`
	Minio     AppMinio     `mapstructure:"minio"`
	RabbitMQ  AppRabbitMQ  `mapstructure:"rabbitmq"`
	MongoDB   AppMongoDB   `mapstructure:"mongodb"`
	Stripe    AppStripe    `mapstructure:"stripe"`
	Booking   AppBooking   `mapstructure:"booking"`
	Report    AppReport    `mapstructure:"report"`
	Analytics AppAnalytics `mapstructure:"analytics"`
}

type App struct {
	Env                        string `mapstructure:"env"`
	Port                       string `mapstructure:"port"`
	Version                    string `mapstructure:"version"`
	Address                    string `mapstructure:"address"`
	Timezone                   string `mapstructure:"timezone"`
	FrontendDomain             string `mapstructure:"frontend_domain"`
	EndpointPrefix             string `mapstructure:"endpoint_prefix"`
	MaxRequests                int    `mapstructure:"max_requests"`
	ShutdownTimeoutInSeconds   int    `mapstructure:"shutdown_timeout_in_seconds"`
	MaxTimeRequestsPerSeconds  int    `mapstructure:"max_time_requests_per_seconds"`
	RequestBodyLimitInMegabyte int    `mapstructure:"request_body_limit_in_megabyte"`
}

type AppJWT struct {
	Secret        string `mapstructure:"secret"`
	ExpTimeInHour int    `mapstructure:"exp_time_in_hour"`
}

// AppLogin bounds failed and successful login attempts per email inside a fixed window.
type AppLogin struct {
	MaxAttempts     int `mapstructure:"max_attempts"`
	WindowInSeconds int `mapstructure:"window_in_seconds"`
}

type AppMinio struct {
	BucketName                      string `mapstructure:"bucket_name"`
	DocumentMaxUploadSizeInMB       int64  `mapstructure:"document_max_upload_size_in_mb"`
	PreSignedUrlObjectExpiryInHours int    `mapstructure:"pre_signed_url_object_expiry_in_hours"`
}

type AppRabbitMQ struct {
	Exchange string `mapstructure:"exchange"`
}

type AppMongoDB struct {
	DBName string `mapstructure:"db_name"`
}

// AppStripe holds payment provider configuration. An empty or malformed
// SecretKey switches the gateway into mock mode.
type AppStripe struct {
	SecretKey               string  `mapstructure:"secret_key"`
	Currency                string  `mapstructure:"currency"`
	SuccessURL              string  `mapstructure:"success_url"`
	CancelURL               string  `mapstructure:"cancel_url"`
	RequestsPerSecond       float64 `mapstructure:"requests_per_second"`
	RequestBurst            int     `mapstructure:"request_burst"`
	RequestTimeoutInSeconds int     `mapstructure:"request_timeout_in_seconds"`
}

type AppBooking struct {
	SlotLockTTLInSeconds int `mapstructure:"slot_lock_ttl_in_seconds"`
}

type AppReport struct {
	RetentionInDays     int `mapstructure:"retention_in_days"`
	DefaultWindowInDays int `mapstructure:"default_window_in_days"`
	// BillOverdueAfterInDays is the age after which unpaid bills are marked overdue by the retention worker
	BillOverdueAfterInDays int `mapstructure:"bill_overdue_after_in_days"`
	// RetentionWorkerCronSpec defines the cron expression for the retention worker schedule (e.g., "@hourly")
	RetentionWorkerCronSpec string `mapstructure:"retention_worker_cron_spec"`
	LeaderLockTTLInSeconds  int    `mapstructure:"leader_lock_ttl_in_seconds"`
}

type AppAnalytics struct {
	DashboardCacheTTLInSeconds int `mapstructure:"dashboard_cache_ttl_in_seconds"`
}
