package appointments

import (
	"context"
	"errors"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// memoryStore backs both repositories so the fake transaction manager can
// snapshot and restore them together.
type memoryStore struct {
	appointments map[primitive.ObjectID]models.Appointment
	bills        map[primitive.ObjectID]models.Bill
	failSetBill  error
	onCreate     func(ctx context.Context)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		appointments: map[primitive.ObjectID]models.Appointment{},
		bills:        map[primitive.ObjectID]models.Bill{},
	}
}

type memoryTransactionManager struct {
	store *memoryStore
}

func (m *memoryTransactionManager) WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	appointments := make(map[primitive.ObjectID]models.Appointment, len(m.store.appointments))
	for k, v := range m.store.appointments {
		appointments[k] = v
	}
	bills := make(map[primitive.ObjectID]models.Bill, len(m.store.bills))
	for k, v := range m.store.bills {
		bills[k] = v
	}
	if err := fn(ctx); err != nil {
		m.store.appointments = appointments
		m.store.bills = bills
		return err
	}
	return nil
}

type memoryAppointmentRepository struct {
	store *memoryStore
}

func (r *memoryAppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	if r.store.onCreate != nil {
		r.store.onCreate(ctx)
	}
	appointment.ID = primitive.NewObjectID()
	r.store.appointments[appointment.ID] = *appointment
	return appointment, nil
}

func (r *memoryAppointmentRepository) FindByID(ctx context.Context, appointmentID primitive.ObjectID) (*models.Appointment, error) {
	appointment, ok := r.store.appointments[appointmentID]
	if !ok {
		return nil, nil
	}
	return &appointment, nil
}

func (r *memoryAppointmentRepository) FindDetailByID(ctx context.Context, appointmentID primitive.ObjectID) (*models.AppointmentDetail, error) {
	appointment, ok := r.store.appointments[appointmentID]
	if !ok {
		return nil, nil
	}
	detail := &models.AppointmentDetail{Appointment: appointment}
	if appointment.BillID != nil {
		bill := r.store.bills[*appointment.BillID]
		detail.Bill = &bill
	}
	return detail, nil
}

func (r *memoryAppointmentRepository) FindActiveBySlot(ctx context.Context, doctorID primitive.ObjectID, date time.Time, timeSlot string) (*models.Appointment, error) {
	for _, appointment := range r.store.appointments {
		if appointment.IsActive() && appointment.SameSlot(doctorID, date, timeSlot) {
			return &appointment, nil
		}
	}
	return nil, nil
}

func (r *memoryAppointmentRepository) FindActiveByDoctorAndDay(ctx context.Context, doctorID primitive.ObjectID, date time.Time) ([]models.Appointment, error) {
	result := make([]models.Appointment, 0)
	for _, appointment := range r.store.appointments {
		if appointment.IsActive() && appointment.DoctorID == doctorID && models.CalendarDay(appointment.Date).Equal(models.CalendarDay(date)) {
			result = append(result, appointment)
		}
	}
	return result, nil
}

func (r *memoryAppointmentRepository) Find(ctx context.Context, query models.AppointmentQuery, pagination *requests.Pagination) ([]models.AppointmentDetail, int, error) {
	result := make([]models.AppointmentDetail, 0)
	for _, appointment := range r.store.appointments {
		if query.UserID != nil && appointment.UserID != *query.UserID {
			continue
		}
		if query.Status != "" && appointment.Status != query.Status {
			continue
		}
		if query.Window != nil && !query.Window.Contains(appointment.Date) {
			continue
		}
		result = append(result, models.AppointmentDetail{Appointment: appointment})
	}
	return result, len(result), nil
}

func (r *memoryAppointmentRepository) SetBillID(ctx context.Context, appointmentID, billID primitive.ObjectID) error {
	if r.store.failSetBill != nil {
		return r.store.failSetBill
	}
	appointment := r.store.appointments[appointmentID]
	appointment.BillID = &billID
	r.store.appointments[appointmentID] = appointment
	return nil
}

func (r *memoryAppointmentRepository) Update(ctx context.Context, appointmentID primitive.ObjectID, fields map[string]interface{}) (*models.Appointment, error) {
	appointment, ok := r.store.appointments[appointmentID]
	if !ok {
		return nil, nil
	}
	for key, value := range fields {
		switch key {
		case "date":
			appointment.Date = value.(time.Time)
		case "time":
			appointment.Time = value.(string)
		case "reason":
			appointment.Reason = value.(string)
		case "status":
			appointment.Status = value.(string)
		case "cancellationReason":
			appointment.CancellationReason = value.(string)
		}
	}
	r.store.appointments[appointmentID] = appointment
	return &appointment, nil
}

func (r *memoryAppointmentRepository) UpdateStatusIf(ctx context.Context, appointmentID primitive.ObjectID, from, status string) (bool, error) {
	appointment, ok := r.store.appointments[appointmentID]
	if !ok || appointment.Status != from {
		return false, nil
	}
	appointment.Status = status
	r.store.appointments[appointmentID] = appointment
	return true, nil
}

type memoryBillRepository struct {
	store *memoryStore
}

func (r *memoryBillRepository) Create(ctx context.Context, bill *models.Bill) (*models.Bill, error) {
	bill.ID = primitive.NewObjectID()
	r.store.bills[bill.ID] = *bill
	return bill, nil
}

func (r *memoryBillRepository) FindByID(ctx context.Context, billID primitive.ObjectID) (*models.Bill, error) {
	bill, ok := r.store.bills[billID]
	if !ok {
		return nil, nil
	}
	return &bill, nil
}

func (r *memoryBillRepository) FindDetailByID(ctx context.Context, billID primitive.ObjectID) (*models.BillDetail, error) {
	return nil, nil
}

func (r *memoryBillRepository) FindDetails(ctx context.Context, query models.BillQuery, sortField string) ([]models.BillDetail, error) {
	return nil, nil
}

func (r *memoryBillRepository) MarkPaid(ctx context.Context, billID primitive.ObjectID, payment *models.BillPayment) (*models.Bill, error) {
	return nil, nil
}

func (r *memoryBillRepository) Stats(ctx context.Context, query models.BillQuery) (*models.PaymentStats, error) {
	return nil, nil
}

func (r *memoryBillRepository) SumByStatus(ctx context.Context, query models.BillQuery) (map[string]models.StatusAmount, error) {
	return nil, nil
}

func (r *memoryBillRepository) MarkOverdue(ctx context.Context, createdBefore time.Time) (int64, error) {
	return 0, nil
}

type memoryUserRepository struct {
	users map[primitive.ObjectID]*models.User
}

func (r *memoryUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return user, nil
}

func (r *memoryUserRepository) FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return r.users[userID], nil
}

func (r *memoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}

func (r *memoryUserRepository) FindByRole(ctx context.Context, role string) ([]models.User, error) {
	return nil, nil
}

type memoryLocker struct {
	mu         sync.Mutex
	held       map[string]string
	taken      []string
	refreshes  int
	refreshErr error
	refreshed  chan struct{}
}

func (l *memoryLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return false, "", nil
	}
	l.held[key] = "token-" + key
	l.taken = append(l.taken, key)
	return true, l.held[key], nil
}

func (l *memoryLocker) Unlock(ctx context.Context, key, lockValue string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == lockValue {
		delete(l.held, key)
	}
	return nil
}

func (l *memoryLocker) Refresh(ctx context.Context, key, lockValue string, expiration time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	defer func() {
		select {
		case l.refreshed <- struct{}{}:
		default:
		}
	}()
	if l.refreshErr != nil {
		delete(l.held, key)
		return l.refreshErr
	}
	if l.held[key] != lockValue {
		return errors.New("lock not held")
	}
	l.refreshes++
	return nil
}

func (l *memoryLocker) refreshCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refreshes
}

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	p.events = append(p.events, routingKey)
	return nil
}

type fixture struct {
	uc        *appointmentUsecase
	store     *memoryStore
	locker    *memoryLocker
	publisher *recordingPublisher
	patient   *models.User
	doctor    *models.User
}

func newFixture() *fixture {
	store := newMemoryStore()
	patient := &models.User{ID: primitive.NewObjectID(), FirstName: "Ada", LastName: "Lovelace", Role: constvars.RolePatient}
	doctor := &models.User{ID: primitive.NewObjectID(), FirstName: "Gregory", LastName: "House", Role: constvars.RoleDoctor}
	users := &memoryUserRepository{users: map[primitive.ObjectID]*models.User{patient.ID: patient, doctor.ID: doctor}}
	locker := &memoryLocker{held: map[string]string{}, refreshed: make(chan struct{}, 1)}
	publisher := &recordingPublisher{}
	cfg := &config.InternalConfig{Booking: config.AppBooking{SlotLockTTLInSeconds: 5}}

	uc := newAppointmentUsecase(
		&memoryTransactionManager{store: store},
		&memoryAppointmentRepository{store: store},
		&memoryBillRepository{store: store},
		users,
		locker,
		publisher,
		cfg,
		zap.NewNop(),
	)
	uc.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }
	return &fixture{uc: uc, store: store, locker: locker, publisher: publisher, patient: patient, doctor: doctor}
}

func (f *fixture) bookRequest(timeSlot, reason string) *requests.BookAppointment {
	return &requests.BookAppointment{
		UserID:   f.patient.ID.Hex(),
		DoctorID: f.doctor.ID.Hex(),
		Date:     "2024-05-10",
		Time:     timeSlot,
		Reason:   reason,
	}
}

func TestAppointmentUsecase_BookCreatesLinkedAppointmentAndBill(t *testing.T) {
	f := newFixture()

	detail, err := f.uc.Book(context.Background(), f.bookRequest("11:00 AM", "Emergency visit"))
	require.NoError(t, err)

	require.Len(t, f.store.appointments, 1)
	require.Len(t, f.store.bills, 1)

	appointment := f.store.appointments[detail.ID]
	bill := f.store.bills[detail.Bill.ID]
	assert.Equal(t, models.AppointmentStatusScheduled, appointment.Status)
	require.NotNil(t, appointment.BillID)
	assert.Equal(t, bill.ID, *appointment.BillID)
	assert.Equal(t, appointment.ID, bill.AppointmentID)
	assert.Equal(t, models.BillStatusUnpaid, bill.Status)
	assert.Equal(t, 150.0, bill.Amount)

	assert.Equal(t, "Ada", detail.Patient.FirstName)
	assert.Equal(t, "House", detail.Doctor.LastName)
	assert.Equal(t, []string{constvars.EventAppointmentBooked}, f.publisher.events)
	assert.Empty(t, f.locker.held, "slot lock is released")
	assert.Equal(t, []string{"appointment:slot:" + f.doctor.ID.Hex() + ":2024-05-10:11:00 AM"}, f.locker.taken)
}

func TestAppointmentUsecase_BookPreconditions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	request := f.bookRequest("9:00 AM", "consultation")
	request.UserID = primitive.NewObjectID().Hex()
	_, err := f.uc.Book(ctx, request)
	assert.True(t, exceptions.IsNotFound(err))

	request = f.bookRequest("9:00 AM", "consultation")
	request.DoctorID = primitive.NewObjectID().Hex()
	_, err = f.uc.Book(ctx, request)
	assert.True(t, exceptions.IsNotFound(err))

	_, err = f.uc.Book(ctx, f.bookRequest("9:00 AM", "consultation"))
	require.NoError(t, err)

	_, err = f.uc.Book(ctx, f.bookRequest("9:00 AM", "checkup"))
	assert.True(t, exceptions.IsConflict(err))
	assert.Len(t, f.store.appointments, 1)
	assert.Len(t, f.store.bills, 1)

	_, err = f.uc.Book(ctx, f.bookRequest("09:00 AM", "checkup"))
	assert.NoError(t, err, "slot labels are compared as opaque strings")
}

func TestAppointmentUsecase_BookRollsBackOnFailure(t *testing.T) {
	f := newFixture()
	f.store.failSetBill = errors.New("write conflict")

	_, err := f.uc.Book(context.Background(), f.bookRequest("2:00 PM", "checkup"))
	require.Error(t, err)
	assert.Empty(t, f.store.appointments)
	assert.Empty(t, f.store.bills)
	assert.Empty(t, f.publisher.events)
	assert.Empty(t, f.locker.held)
}

func TestAppointmentUsecase_BookRejectsLockedSlot(t *testing.T) {
	f := newFixture()
	key := "appointment:slot:" + f.doctor.ID.Hex() + ":2024-05-10:3:00 PM"
	f.locker.held[key] = "other-instance"

	_, err := f.uc.Book(context.Background(), f.bookRequest("3:00 PM", "checkup"))
	assert.True(t, exceptions.IsConflict(err))
	assert.Empty(t, f.store.appointments)
}

func TestAppointmentUsecase_CancelAndComplete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	detail, err := f.uc.Book(ctx, f.bookRequest("10:00 AM", "follow-up"))
	require.NoError(t, err)

	_, err = f.uc.Complete(ctx, detail.ID.Hex())
	assert.True(t, exceptions.IsConflict(err), "only confirmed appointments complete")

	cancelled, err := f.uc.Cancel(ctx, detail.ID.Hex(), &requests.CancelAppointment{Reason: "travel"})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, "travel", cancelled.CancellationReason)

	_, err = f.uc.Cancel(ctx, detail.ID.Hex(), &requests.CancelAppointment{})
	assert.True(t, exceptions.IsConflict(err))
	assert.Equal(t, []string{constvars.EventAppointmentBooked, constvars.EventAppointmentCancelled}, f.publisher.events)

	_, err = f.uc.Book(ctx, f.bookRequest("10:00 AM", "follow-up"))
	assert.NoError(t, err, "a cancelled booking frees the slot")

	confirmed, err := f.uc.Book(ctx, f.bookRequest("11:00 AM", "follow-up"))
	require.NoError(t, err)
	appointment := f.store.appointments[confirmed.ID]
	appointment.Status = models.AppointmentStatusConfirmed
	f.store.appointments[confirmed.ID] = appointment

	completed, err := f.uc.Complete(ctx, confirmed.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCompleted, completed.Status)

	_, err = f.uc.Complete(ctx, primitive.NewObjectID().Hex())
	assert.True(t, exceptions.IsNotFound(err))
}

func TestAppointmentUsecase_UpdateReschedulesKeepsBillAmount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.uc.Book(ctx, f.bookRequest("9:00 AM", "consultation"))
	require.NoError(t, err)
	booked := first.Bill.Amount
	_, err = f.uc.Book(ctx, f.bookRequest("11:00 AM", "consultation"))
	require.NoError(t, err)

	t.Run("taken slot conflicts", func(t *testing.T) {
		taken := "11:00 AM"
		_, err := f.uc.Update(ctx, first.ID.Hex(), &requests.UpdateAppointment{Time: &taken})
		assert.True(t, exceptions.IsConflict(err))
		assert.Equal(t, "9:00 AM", f.store.appointments[first.ID].Time)
	})

	t.Run("new slot and reason leave the bill amount alone", func(t *testing.T) {
		free := "3:00 PM"
		reason := "urgent review"
		require.NotEqual(t, booked, CalculateFee(free, reason))

		updated, err := f.uc.Update(ctx, first.ID.Hex(), &requests.UpdateAppointment{Time: &free, Reason: &reason})
		require.NoError(t, err)
		assert.Equal(t, "3:00 PM", updated.Time)
		assert.Equal(t, "urgent review", updated.Reason)
		require.NotNil(t, updated.Bill)
		assert.Equal(t, booked, updated.Bill.Amount)
		assert.Equal(t, booked, f.store.bills[updated.Bill.ID].Amount)
	})

	t.Run("same slot does not conflict with itself", func(t *testing.T) {
		sameSlotReason := "emergency"
		updated, err := f.uc.Update(ctx, first.ID.Hex(), &requests.UpdateAppointment{Reason: &sameSlotReason})
		require.NoError(t, err)
		require.NotNil(t, updated.Bill)
		assert.Equal(t, booked, updated.Bill.Amount)
	})
}

func TestAppointmentUsecase_BookKeepsSlotLockAlive(t *testing.T) {
	interval := slotLockRefreshInterval
	slotLockRefreshInterval = func(time.Duration) time.Duration { return 5 * time.Millisecond }
	t.Cleanup(func() { slotLockRefreshInterval = interval })

	t.Run("slow transaction keeps the slot locked", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		var concurrent error
		f.store.onCreate = func(txCtx context.Context) {
			f.store.onCreate = nil
			for i := 0; i < 2; i++ {
				select {
				case <-f.locker.refreshed:
				case <-time.After(time.Second):
					t.Error("slot lock was not refreshed")
					return
				}
			}
			_, concurrent = f.uc.Book(ctx, f.bookRequest("2:00 PM", "checkup"))
		}

		detail, err := f.uc.Book(ctx, f.bookRequest("2:00 PM", "checkup"))
		require.NoError(t, err)
		assert.True(t, exceptions.IsConflict(concurrent), "second booking sees the slot locked")
		assert.GreaterOrEqual(t, f.locker.refreshCount(), 2)
		assert.Len(t, f.store.appointments, 1)
		assert.Equal(t, "2:00 PM", f.store.appointments[detail.ID].Time)
		assert.Empty(t, f.locker.held, "slot lock is released")
	})

	t.Run("lost lock rolls the booking back", func(t *testing.T) {
		f := newFixture()
		f.locker.refreshErr = errors.New("lock expired")
		f.store.onCreate = func(txCtx context.Context) {
			select {
			case <-txCtx.Done():
			case <-time.After(time.Second):
				t.Error("booking context was not cancelled")
			}
		}

		_, err := f.uc.Book(context.Background(), f.bookRequest("2:00 PM", "checkup"))
		require.Error(t, err)
		assert.True(t, exceptions.IsConflict(err))
		assert.Empty(t, f.store.appointments)
		assert.Empty(t, f.store.bills)
		assert.Empty(t, f.publisher.events)
	})
}

func TestAppointmentUsecase_AvailableSlotsAndFilters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Book(ctx, f.bookRequest("2:00 PM", "consultation"))
	require.NoError(t, err)

	slots, err := f.uc.AvailableSlots(ctx, &requests.AvailableSlots{DoctorID: f.doctor.ID.Hex(), Date: "2024-05-10"})
	require.NoError(t, err)
	require.Len(t, slots, 5)
	for _, slot := range slots {
		assert.Equal(t, slot.Time != "2:00 PM", slot.Available, slot.Time)
	}
	assert.Equal(t, 75.0, slots[2].Fee)

	_, err = f.uc.AvailableSlots(ctx, &requests.AvailableSlots{DoctorID: primitive.NewObjectID().Hex(), Date: "2024-05-10"})
	assert.True(t, exceptions.IsNotFound(err))

	found, total, err := f.uc.FindAll(ctx, &requests.AppointmentFilter{Date: "2024-05-10", Pagination: requests.Pagination{Page: 1, PageSize: 10}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, found, 1)

	found, _, err = f.uc.FindAll(ctx, &requests.AppointmentFilter{Date: "2024-05-11"})
	require.NoError(t, err)
	assert.Empty(t, found)

	byUser, err := f.uc.FindByUserID(ctx, f.patient.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, byUser, 1)
}
