package main

import (
	"context"
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/delivery/http/controllers"
	"hospital-service/internal/app/delivery/http/middlewares"
	"hospital-service/internal/app/delivery/http/routers"
	"hospital-service/internal/app/drivers/database"
	"hospital-service/internal/app/drivers/logger"
	"hospital-service/internal/app/drivers/messaging"
	"hospital-service/internal/app/drivers/storage"
	"hospital-service/internal/app/services/core/analytics"
	"hospital-service/internal/app/services/core/appointments"
	"hospital-service/internal/app/services/core/patients"
	"hospital-service/internal/app/services/core/payments"
	"hospital-service/internal/app/services/core/reports"
	"hospital-service/internal/app/services/core/users"
	"hospital-service/internal/app/services/shared/events"
	"hospital-service/internal/app/services/shared/jwtmanager"
	"hospital-service/internal/app/services/shared/locker"
	paymentGateway "hospital-service/internal/app/services/shared/payment_gateway"
	"hospital-service/internal/app/services/shared/ratelimiter"
	"hospital-service/internal/app/services/shared/redis"
	sharedStorage "hospital-service/internal/app/services/shared/storage"
	"hospital-service/internal/app/services/shared/transaction"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Version sets the default build version
var Version = "develop"

// Tag sets the default latest commit tag
var Tag = "0.0.1-rc"

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewZapLogger(driverConfig, internalConfig)
	log.Info("Starting hospital service",
		zap.String("version", Version),
		zap.String("tag", Tag),
		zap.String("env", internalConfig.App.Env),
	)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatal("Error loading location", zap.Error(err))
	}
	time.Local = location

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	mongoDB := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	minioClient := storage.NewMinio(driverConfig)
	storage.EnsureBucket(startupCtx, minioClient, internalConfig)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig)
	messaging.DeclareExchange(rabbitMQ, internalConfig)

	chiRouter := chi.NewRouter()

	bootstrap := &config.Bootstrap{
		Router:         chiRouter,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		Minio:          minioClient,
		Logger:         log,
		RabbitMQ:       rabbitMQ,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}
	if err := bootstrapingTheApp(bootstrap); err != nil {
		log.Fatal("Failed to bootstrap the app", zap.Error(err))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", internalConfig.App.Address, internalConfig.App.Port),
		Handler:           chiRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("address", server.Addr))
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	err = bootstrap.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Failed to release resources", zap.Error(err))
	}

	log.Info("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) error {
	log := bootstrap.Logger
	internalConfig := bootstrap.InternalConfig
	dbName := internalConfig.MongoDB.DBName

	// Shared
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	lockService := locker.NewLockService(redisRepository, log)
	transactionManager := transaction.NewMongoTransactionManager(bootstrap.MongoDB, log)
	documentStorage := sharedStorage.NewMinioStorage(bootstrap.Minio, log)
	stripeService := paymentGateway.NewStripeService(internalConfig, log)

	eventPublisher, err := events.NewRabbitMQEventPublisher(bootstrap.RabbitMQ, internalConfig, log)
	if err != nil {
		log.Warn("RabbitMQ publisher unavailable, domain events will only be logged", zap.Error(err))
		eventPublisher = events.NewLogEventPublisher(log)
	}

	jwtManager, err := jwtmanager.NewJWTManager(internalConfig, log)
	if err != nil {
		return err
	}

	// Repositories
	userRepository := users.NewUserMongoRepository(bootstrap.MongoDB, dbName)
	patientRepository := patients.NewPatientMongoRepository(bootstrap.MongoDB, dbName)
	appointmentRepository := appointments.NewAppointmentMongoRepository(bootstrap.MongoDB, dbName)
	billRepository := payments.NewBillMongoRepository(bootstrap.MongoDB, dbName)
	analyticsRepository := analytics.NewAnalyticsMongoRepository(bootstrap.MongoDB, dbName)
	metricsRepository := analytics.NewMetricsMongoRepository(bootstrap.MongoDB, dbName)
	reportRepository := reports.NewReportMongoRepository(bootstrap.MongoDB, dbName)

	// Usecases
	userUsecase := users.NewUserUsecase(
		userRepository,
		redisRepository,
		jwtManager,
		ratelimiter.NewResourceLimiter(redisRepository, log),
		internalConfig,
		log,
	)
	patientUsecase := patients.NewPatientUsecase(patientRepository, userRepository, documentStorage, internalConfig, log)
	appointmentUsecase := appointments.NewAppointmentUsecase(
		transactionManager,
		appointmentRepository,
		billRepository,
		userRepository,
		lockService,
		eventPublisher,
		internalConfig,
		log,
	)
	paymentUsecase := payments.NewPaymentUsecase(
		transactionManager,
		billRepository,
		appointmentRepository,
		stripeService,
		eventPublisher,
		internalConfig,
		log,
	)
	metricsUsecase := analytics.NewMetricsUsecase(metricsRepository, userRepository, redisRepository, internalConfig, log)
	analyticsUsecase := analytics.NewAnalyticsUsecase(analyticsRepository, metricsUsecase, log)
	reportUsecase := reports.NewReportUsecase(reportRepository, metricsUsecase, eventPublisher, internalConfig, log)

	// Workers
	retentionWorker := reports.NewRetentionWorker(log, internalConfig, lockService, reportUsecase, billRepository)
	retentionWorker.Start(context.Background())
	bootstrap.WorkerStop = retentionWorker.Stop

	// Delivery
	httpMiddlewares := middlewares.NewMiddlewares(log, internalConfig, jwtManager, userUsecase)
	routers.SetupRoutes(bootstrap.Router, internalConfig, httpMiddlewares, &routers.Controllers{
		Auth:        controllers.NewAuthController(log, userUsecase),
		User:        controllers.NewUserController(log, userUsecase),
		Appointment: controllers.NewAppointmentController(log, appointmentUsecase),
		Payment:     controllers.NewPaymentController(log, paymentUsecase),
		Patient:     controllers.NewPatientController(log, patientUsecase),
		Analytics:   controllers.NewAnalyticsController(log, internalConfig, analyticsUsecase, metricsUsecase),
		Report:      controllers.NewReportController(log, reportUsecase),
	})

	return nil
}
