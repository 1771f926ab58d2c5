package config

import (
	"hospital-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			URI:        utils.GetEnvString("MONGODB_URI", ""),
			Port:       utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:       utils.GetEnvString("MONGODB_HOST", "localhost"),
			Username:   utils.GetEnvString("MONGODB_USERNAME", ""),
			Password:   utils.GetEnvString("MONGODB_PASSWORD", ""),
			ReplicaSet: utils.GetEnvString("MONGODB_REPLICA_SET", "rs0"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
		Minio: Minio{
			Port:     utils.GetEnvString("MINIO_PORT", "9000"),
			Host:     utils.GetEnvString("MINIO_HOST", "localhost"),
			Username: utils.GetEnvString("MINIO_USERNAME", "minioadmin"),
			Password: utils.GetEnvString("MINIO_PASSWORD", "minioadmin"),
			UseSSL:   utils.GetEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", "development"),
			Port:                       utils.GetEnvString("APP_PORT", "5000"),
			Version:                    utils.GetEnvString("APP_VERSION", "v1"),
			Address:                    utils.GetEnvString("APP_ADDRESS", "0.0.0.0"),
			Timezone:                   utils.GetEnvString("APP_TIMEZONE", "UTC"),
			FrontendDomain:             utils.GetEnvString("APP_FRONTEND_DOMAIN", "http://localhost:3000"),
			EndpointPrefix:             utils.GetEnvString("APP_ENDPOINT_PREFIX", "api"),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUESTS", 100),
			ShutdownTimeoutInSeconds:   utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT_IN_SECONDS", 10),
			MaxTimeRequestsPerSeconds:  utils.GetEnvInt("APP_MAX_TIME_REQUESTS_PER_SECONDS", 60),
			RequestBodyLimitInMegabyte: utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 10),
		},
		JWT: AppJWT{
			Secret:        utils.GetEnvString("JWT_SECRET", "change-me"),
			ExpTimeInHour: utils.GetEnvInt("JWT_EXP_TIME_IN_HOUR", 24),
		},
		Login: AppLogin{
			MaxAttempts:     utils.GetEnvInt("APP_LOGIN_MAX_ATTEMPTS", 10),
			WindowInSeconds: utils.GetEnvInt("APP_LOGIN_WINDOW_IN_SECONDS", 900),
		},
		Minio: AppMinio{
			BucketName:                      utils.GetEnvString("MINIO_BUCKET_NAME", "patient-documents"),
			DocumentMaxUploadSizeInMB:       utils.GetEnvInt64("APP_MINIO_DOCUMENT_MAX_UPLOAD_SIZE_IN_MB", 10),
			PreSignedUrlObjectExpiryInHours: utils.GetEnvInt("APP_MINIO_PRE_SIGNED_URL_OBJECT_EXPIRY_TIME_IN_HOURS", 1),
		},
		RabbitMQ: AppRabbitMQ{
			Exchange: utils.GetEnvString("APP_RABBITMQ_EXCHANGE", "hospital.events"),
		},
		MongoDB: AppMongoDB{
			DBName: utils.GetEnvString("MONGODB_DB_NAME", "hospital"),
		},
		Stripe: AppStripe{
			SecretKey:               utils.GetEnvString("STRIPE_SECRET_KEY", ""),
			Currency:                utils.GetEnvString("STRIPE_CURRENCY", "usd"),
			SuccessURL:              utils.GetEnvString("STRIPE_SUCCESS_URL", "http://localhost:3000/payment/success"),
			CancelURL:               utils.GetEnvString("STRIPE_CANCEL_URL", "http://localhost:3000/payment/cancel"),
			RequestsPerSecond:       utils.GetEnvFloat("STRIPE_REQUESTS_PER_SECOND", 20),
			RequestBurst:            utils.GetEnvInt("STRIPE_REQUEST_BURST", 5),
			RequestTimeoutInSeconds: utils.GetEnvInt("STRIPE_REQUEST_TIMEOUT_IN_SECONDS", 15),
		},
		Booking: AppBooking{
			SlotLockTTLInSeconds: utils.GetEnvInt("BOOKING_SLOT_LOCK_TTL_IN_SECONDS", 15),
		},
		Report: AppReport{
			RetentionInDays:         utils.GetEnvInt("REPORT_RETENTION_IN_DAYS", 30),
			DefaultWindowInDays:     utils.GetEnvInt("REPORT_DEFAULT_WINDOW_IN_DAYS", 30),
			BillOverdueAfterInDays:  utils.GetEnvInt("BILL_OVERDUE_AFTER_IN_DAYS", 30),
			RetentionWorkerCronSpec: utils.GetEnvString("REPORT_RETENTION_WORKER_CRON_SPEC", "@hourly"),
			LeaderLockTTLInSeconds:  utils.GetEnvInt("REPORT_RETENTION_LEADER_LOCK_TTL_IN_SECONDS", 300),
		},
		Analytics: AppAnalytics{
			DashboardCacheTTLInSeconds: utils.GetEnvInt("ANALYTICS_DASHBOARD_CACHE_TTL_IN_SECONDS", 300),
		},
	}
}
