package appointments

import (
	"context"
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultSlotLockTTL = 15 * time.Second

// slotLockRefreshInterval is how often a held slot lock is extended.
var slotLockRefreshInterval = func(ttl time.Duration) time.Duration { return ttl / 3 }

type appointmentUsecase struct {
	TransactionManager    contracts.TransactionManager
	AppointmentRepository contracts.AppointmentRepository
	BillRepository        contracts.BillRepository
	UserRepository        contracts.UserRepository
	LockService           contracts.LockerService
	EventPublisher        contracts.EventPublisher
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
	now                   func() time.Time
}

var (
	appointmentUsecaseInstance contracts.AppointmentUsecase
	onceAppointmentUsecase     sync.Once
)

func NewAppointmentUsecase(
	transactionManager contracts.TransactionManager,
	appointmentRepository contracts.AppointmentRepository,
	billRepository contracts.BillRepository,
	userRepository contracts.UserRepository,
	lockService contracts.LockerService,
	eventPublisher contracts.EventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.AppointmentUsecase {
	onceAppointmentUsecase.Do(func() {
		appointmentUsecaseInstance = newAppointmentUsecase(
			transactionManager,
			appointmentRepository,
			billRepository,
			userRepository,
			lockService,
			eventPublisher,
			internalConfig,
			logger,
		)
	})
	return appointmentUsecaseInstance
}

func newAppointmentUsecase(
	transactionManager contracts.TransactionManager,
	appointmentRepository contracts.AppointmentRepository,
	billRepository contracts.BillRepository,
	userRepository contracts.UserRepository,
	lockService contracts.LockerService,
	eventPublisher contracts.EventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *appointmentUsecase {
	return &appointmentUsecase{
		TransactionManager:    transactionManager,
		AppointmentRepository: appointmentRepository,
		BillRepository:        billRepository,
		UserRepository:        userRepository,
		LockService:           lockService,
		EventPublisher:        eventPublisher,
		InternalConfig:        internalConfig,
		Log:                   logger,
		now:                   time.Now,
	}
}

type appointmentEvent struct {
	AppointmentID string    `json:"appointmentId"`
	UserID        string    `json:"userId"`
	DoctorID      string    `json:"doctorId"`
	Date          time.Time `json:"date"`
	Time          string    `json:"time"`
	Status        string    `json:"status"`
	BillID        string    `json:"billId,omitempty"`
	Amount        float64   `json:"amount,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}

// Book creates the appointment and its unpaid bill in one transaction. The
// slot lock serializes concurrent bookings of the same slot across instances
// and is kept alive until the transaction finishes.
func (uc *appointmentUsecase) Book(ctx context.Context, request *requests.BookAppointment) (*models.AppointmentDetail, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.Book called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, request.UserID),
		zap.String(constvars.LoggingDoctorIDKey, request.DoctorID),
		zap.String(constvars.LoggingDateKey, request.Date),
		zap.String(constvars.LoggingTimeSlotKey, request.Time),
	)

	userID, err := utils.ParseObjectID(request.UserID)
	if err != nil {
		return nil, err
	}
	doctorID, err := utils.ParseObjectID(request.DoctorID)
	if err != nil {
		return nil, err
	}
	date, err := utils.ParseDate(request.Date)
	if err != nil {
		return nil, err
	}
	date = models.CalendarDay(date)

	lockCtx, unlock, err := uc.lockSlot(ctx, doctorID, date, request.Time)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var detail *models.AppointmentDetail
	err = uc.TransactionManager.WithTransaction(lockCtx, func(txCtx context.Context) error {
		patient, err := uc.UserRepository.FindByID(txCtx, userID)
		if err != nil {
			return err
		}
		if patient == nil {
			return exceptions.ErrPatientNotFound(nil, request.UserID)
		}

		doctor, err := uc.UserRepository.FindByID(txCtx, doctorID)
		if err != nil {
			return err
		}
		if doctor == nil {
			return exceptions.ErrDoctorNotFound(nil, request.DoctorID)
		}

		existing, err := uc.AppointmentRepository.FindActiveBySlot(txCtx, doctorID, date, request.Time)
		if err != nil {
			return err
		}
		if existing != nil {
			return exceptions.ErrDoctorUnavailable(nil, request.DoctorID, request.Date, request.Time)
		}

		now := uc.now()
		appointment := &models.Appointment{
			UserID:   userID,
			DoctorID: doctorID,
			Date:     date,
			Time:     request.Time,
			Reason:   request.Reason,
			Status:   models.AppointmentStatusScheduled,
		}
		appointment.SetCreatedAtUpdatedAt(now)
		appointment, err = uc.AppointmentRepository.Create(txCtx, appointment)
		if err != nil {
			return err
		}

		bill := &models.Bill{
			AppointmentID: appointment.ID,
			UserID:        userID,
			DoctorID:      doctorID,
			Date:          date,
			Amount:        CalculateFee(request.Time, request.Reason),
			Status:        models.BillStatusUnpaid,
		}
		bill.SetCreatedAtUpdatedAt(now)
		bill, err = uc.BillRepository.Create(txCtx, bill)
		if err != nil {
			return err
		}

		if err := uc.AppointmentRepository.SetBillID(txCtx, appointment.ID, bill.ID); err != nil {
			return err
		}
		appointment.BillID = &bill.ID

		detail = &models.AppointmentDetail{
			Appointment: *appointment,
			Patient:     patient.Summary(),
			Doctor:      doctor.Summary(),
			Bill:        bill,
		}
		return slotLockHeld(lockCtx)
	})
	if lost := slotLockHeld(lockCtx); err != nil && lost != nil && ctx.Err() == nil {
		err = lost
	}
	if err != nil {
		uc.Log.Error("appointmentUsecase.Book error booking appointment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.publish(ctx, constvars.EventAppointmentBooked, appointmentEvent{
		AppointmentID: detail.ID.Hex(),
		UserID:        detail.UserID.Hex(),
		DoctorID:      detail.DoctorID.Hex(),
		Date:          detail.Date,
		Time:          detail.Time,
		Status:        detail.Status,
		BillID:        detail.Bill.ID.Hex(),
		Amount:        detail.Bill.Amount,
	})

	utils.LogBusinessEvent(uc.Log, "appointment_booked", requestID,
		zap.String(constvars.LoggingAppointmentIDKey, detail.ID.Hex()),
		zap.String(constvars.LoggingBillIDKey, detail.Bill.ID.Hex()),
		zap.Float64(constvars.LoggingAmountKey, detail.Bill.Amount),
	)
	return detail, nil
}

func (uc *appointmentUsecase) FindAll(ctx context.Context, filter *requests.AppointmentFilter) ([]models.AppointmentDetail, int, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.FindAll called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	query, err := buildAppointmentQuery(filter)
	if err != nil {
		return nil, 0, err
	}

	appointments, total, err := uc.AppointmentRepository.Find(ctx, query, &filter.Pagination)
	if err != nil {
		uc.Log.Error("appointmentUsecase.FindAll error fetching appointments",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, 0, err
	}

	uc.Log.Info("appointmentUsecase.FindAll succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(appointments)),
	)
	return appointments, total, nil
}

func (uc *appointmentUsecase) FindByUserID(ctx context.Context, userID string) ([]models.AppointmentDetail, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.FindByUserID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, userID),
	)

	id, err := utils.ParseObjectID(userID)
	if err != nil {
		return nil, err
	}

	appointments, _, err := uc.AppointmentRepository.Find(ctx, models.AppointmentQuery{UserID: &id}, nil)
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (uc *appointmentUsecase) FindByID(ctx context.Context, appointmentID string) (*models.AppointmentDetail, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.FindByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	id, err := utils.ParseObjectID(appointmentID)
	if err != nil {
		return nil, err
	}

	detail, err := uc.AppointmentRepository.FindDetailByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil, appointmentID)
	}
	return detail, nil
}

// Update reschedules or edits an appointment. Moving an active appointment to
// another slot repeats the availability check. The bill keeps the amount set
// at booking.
func (uc *appointmentUsecase) Update(ctx context.Context, appointmentID string, request *requests.UpdateAppointment) (*models.AppointmentDetail, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.Update called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	id, err := utils.ParseObjectID(appointmentID)
	if err != nil {
		return nil, err
	}

	current, err := uc.AppointmentRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil, appointmentID)
	}

	date, timeSlot, reason := current.Date, current.Time, current.Reason
	if request.Date != nil {
		parsed, err := utils.ParseDate(*request.Date)
		if err != nil {
			return nil, err
		}
		date = models.CalendarDay(parsed)
	}
	if request.Time != nil {
		timeSlot = *request.Time
	}
	if request.Reason != nil {
		reason = *request.Reason
	}

	slotChanged := !current.SameSlot(current.DoctorID, date, timeSlot)

	txBase := ctx
	if slotChanged && current.IsActive() {
		lockCtx, unlock, err := uc.lockSlot(ctx, current.DoctorID, date, timeSlot)
		if err != nil {
			return nil, err
		}
		defer unlock()
		txBase = lockCtx
	}

	err = uc.TransactionManager.WithTransaction(txBase, func(txCtx context.Context) error {
		if slotChanged && current.IsActive() {
			existing, err := uc.AppointmentRepository.FindActiveBySlot(txCtx, current.DoctorID, date, timeSlot)
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != current.ID {
				return exceptions.ErrDoctorUnavailable(nil, current.DoctorID.Hex(), date.Format(constvars.DateLayout), timeSlot)
			}
		}

		fields := map[string]interface{}{
			"date":      date,
			"time":      timeSlot,
			"reason":    reason,
			"updatedAt": uc.now(),
		}
		updated, err := uc.AppointmentRepository.Update(txCtx, id, fields)
		if err != nil {
			return err
		}
		if updated == nil {
			return exceptions.ErrAppointmentNotFound(nil, appointmentID)
		}
		return slotLockHeld(txBase)
	})
	if lost := slotLockHeld(txBase); err != nil && lost != nil && ctx.Err() == nil {
		err = lost
	}
	if err != nil {
		uc.Log.Error("appointmentUsecase.Update error updating appointment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	return uc.FindByID(ctx, appointmentID)
}

func (uc *appointmentUsecase) Cancel(ctx context.Context, appointmentID string, request *requests.CancelAppointment) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.Cancel called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	id, err := utils.ParseObjectID(appointmentID)
	if err != nil {
		return nil, err
	}

	current, err := uc.AppointmentRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil, appointmentID)
	}
	if !current.IsCancellable() {
		return nil, exceptions.ErrAppointmentNotCancellable(nil, appointmentID, current.Status)
	}

	cancelled, err := uc.AppointmentRepository.Update(ctx, id, map[string]interface{}{
		"status":             models.AppointmentStatusCancelled,
		"cancellationReason": request.Reason,
		"updatedAt":          uc.now(),
	})
	if err != nil {
		uc.Log.Error("appointmentUsecase.Cancel error updating appointment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if cancelled == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil, appointmentID)
	}

	uc.publish(ctx, constvars.EventAppointmentCancelled, appointmentEvent{
		AppointmentID: cancelled.ID.Hex(),
		UserID:        cancelled.UserID.Hex(),
		DoctorID:      cancelled.DoctorID.Hex(),
		Date:          cancelled.Date,
		Time:          cancelled.Time,
		Status:        cancelled.Status,
		Reason:        request.Reason,
	})
	return cancelled, nil
}

func (uc *appointmentUsecase) Complete(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.Complete called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	id, err := utils.ParseObjectID(appointmentID)
	if err != nil {
		return nil, err
	}

	moved, err := uc.AppointmentRepository.UpdateStatusIf(ctx, id, models.AppointmentStatusConfirmed, models.AppointmentStatusCompleted)
	if err != nil {
		return nil, err
	}

	appointment, err := uc.AppointmentRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil, appointmentID)
	}
	if !moved {
		return nil, exceptions.ErrAppointmentNotCompletable(nil, appointmentID, appointment.Status)
	}
	return appointment, nil
}

func (uc *appointmentUsecase) AvailableSlots(ctx context.Context, request *requests.AvailableSlots) ([]models.SlotAvailability, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.AvailableSlots called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, request.DoctorID),
		zap.String(constvars.LoggingDateKey, request.Date),
	)

	doctorID, err := utils.ParseObjectID(request.DoctorID)
	if err != nil {
		return nil, err
	}
	date, err := utils.ParseDate(request.Date)
	if err != nil {
		return nil, err
	}

	doctor, err := uc.UserRepository.FindByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, exceptions.ErrDoctorNotFound(nil, request.DoctorID)
	}

	booked, err := uc.AppointmentRepository.FindActiveByDoctorAndDay(ctx, doctorID, models.CalendarDay(date))
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(booked))
	for _, appointment := range booked {
		taken[appointment.Time] = true
	}

	slots := make([]models.SlotAvailability, 0, len(feeSchedule))
	for _, label := range ScheduledSlots() {
		slots = append(slots, models.SlotAvailability{
			Time:      label,
			Fee:       CalculateFee(label, ""),
			Available: !taken[label],
		})
	}
	return slots, nil
}

// lockSlot takes the distributed slot lock and keeps refreshing it until the
// returned release func runs. The returned context is cancelled with
// ErrSlotLocked as its cause once a refresh fails.
func (uc *appointmentUsecase) lockSlot(ctx context.Context, doctorID primitive.ObjectID, date time.Time, timeSlot string) (context.Context, func(), error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	ttl := time.Duration(uc.InternalConfig.Booking.SlotLockTTLInSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultSlotLockTTL
	}

	key := fmt.Sprintf(constvars.RedisKeySlotLockFormat, doctorID.Hex(), date.Format(constvars.DateLayout), timeSlot)
	acquired, token, err := uc.LockService.TryLock(ctx, key, ttl)
	if err != nil {
		uc.Log.Error("appointmentUsecase.lockSlot error acquiring slot lock",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRedisKey, key),
			zap.Error(err),
		)
		return nil, nil, err
	}
	if !acquired {
		return nil, nil, exceptions.ErrSlotLocked(nil, key)
	}

	lockCtx, cancel := context.WithCancelCause(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		tick := time.NewTicker(slotLockRefreshInterval(ttl))
		defer tick.Stop()
		for {
			select {
			case <-lockCtx.Done():
				return
			case <-tick.C:
				if err := uc.LockService.Refresh(lockCtx, key, token, ttl); err != nil {
					if lockCtx.Err() != nil {
						return
					}
					uc.Log.Error("appointmentUsecase.lockSlot lost slot lock",
						zap.String(constvars.LoggingRequestIDKey, requestID),
						zap.String(constvars.LoggingRedisKey, key),
						zap.Error(err),
					)
					cancel(exceptions.ErrSlotLocked(err, key))
					return
				}
			}
		}
	}()

	return lockCtx, func() {
		cancel(nil)
		<-done
		if err := uc.LockService.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			uc.Log.Warn("appointmentUsecase.lockSlot error releasing slot lock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingRedisKey, key),
				zap.Error(err),
			)
		}
	}, nil
}

// slotLockHeld fails once the slot lock behind lockCtx was lost, so the
// surrounding transaction rolls back instead of committing.
func slotLockHeld(lockCtx context.Context) error {
	if cause := context.Cause(lockCtx); cause != nil {
		return cause
	}
	return nil
}

// publish is best effort: the state change is already committed.
func (uc *appointmentUsecase) publish(ctx context.Context, eventType string, payload appointmentEvent) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if err := uc.EventPublisher.Publish(ctx, eventType, payload); err != nil {
		uc.Log.Warn("appointmentUsecase.publish error publishing event",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEventTypeKey, eventType),
			zap.Error(err),
		)
	}
}

func buildAppointmentQuery(filter *requests.AppointmentFilter) (models.AppointmentQuery, error) {
	var query models.AppointmentQuery
	var err error

	query.UserID, err = utils.ParseOptionalObjectID(filter.UserID)
	if err != nil {
		return query, err
	}
	query.DoctorID, err = utils.ParseOptionalObjectID(filter.DoctorID)
	if err != nil {
		return query, err
	}
	query.Status = filter.Status

	if filter.Date != "" {
		day, err := utils.ParseDate(filter.Date)
		if err != nil {
			return query, err
		}
		window := models.NewDateRange(models.CalendarDay(day), utils.EndOfDay(models.CalendarDay(day)))
		query.Window = &window
		return query, nil
	}

	query.Window, err = utils.ParseDateRange(filter.DateRange, nil)
	return query, err
}
