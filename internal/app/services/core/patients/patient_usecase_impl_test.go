package patients

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryPatientRepository struct {
	patients map[primitive.ObjectID]*models.Patient
}

func (r *memoryPatientRepository) Create(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	patient.ID = primitive.NewObjectID()
	r.patients[patient.ID] = patient
	return patient, nil
}

func (r *memoryPatientRepository) FindByID(ctx context.Context, patientID primitive.ObjectID) (*models.Patient, error) {
	return r.patients[patientID], nil
}

func (r *memoryPatientRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Patient, error) {
	for _, patient := range r.patients {
		if patient.User == userID {
			return patient, nil
		}
	}
	return nil, nil
}

func (r *memoryPatientRepository) FindByHealthCardNumber(ctx context.Context, healthCardNumber string) (*models.Patient, error) {
	for _, patient := range r.patients {
		if patient.HealthCardNumber == healthCardNumber {
			return patient, nil
		}
	}
	return nil, nil
}

func (r *memoryPatientRepository) Search(ctx context.Context, query models.PatientQuery, pagination *requests.Pagination) ([]models.Patient, int, error) {
	result := make([]models.Patient, 0)
	for _, patient := range r.patients {
		if query.Status == "" || patient.Status == query.Status {
			result = append(result, *patient)
		}
	}
	return result, len(result), nil
}

func (r *memoryPatientRepository) Update(ctx context.Context, patientID primitive.ObjectID, fields map[string]interface{}) (*models.Patient, error) {
	patient, ok := r.patients[patientID]
	if !ok {
		return nil, nil
	}
	for key, value := range fields {
		switch key {
		case "status":
			patient.Status = value.(string)
		case "phone":
			patient.Phone = value.(string)
		case "lastVisit":
			visit := value.(time.Time)
			patient.LastVisit = &visit
		case "allergies":
			patient.Allergies = value.([]models.Allergy)
		case "currentMedications":
			patient.CurrentMedications = value.([]models.CurrentMedication)
		case "updatedAt":
			patient.UpdatedAt = value.(time.Time)
		}
	}
	return patient, nil
}

func (r *memoryPatientRepository) Delete(ctx context.Context, patientID primitive.ObjectID) error {
	delete(r.patients, patientID)
	return nil
}

func (r *memoryPatientRepository) Stats(ctx context.Context, created *models.DateRange) (*models.PatientStats, error) {
	return &models.PatientStats{TotalPatients: int64(len(r.patients))}, nil
}

func (r *memoryPatientRepository) PushMedicalRecord(ctx context.Context, patientID primitive.ObjectID, record *models.MedicalRecord) error {
	patient := r.patients[patientID]
	patient.MedicalHistory = append(patient.MedicalHistory, *record)
	return nil
}

func (r *memoryPatientRepository) ReplaceMedicalRecord(ctx context.Context, patientID primitive.ObjectID, record *models.MedicalRecord) (bool, error) {
	patient := r.patients[patientID]
	for i := range patient.MedicalHistory {
		if patient.MedicalHistory[i].ID == record.ID {
			patient.MedicalHistory[i] = *record
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryPatientRepository) PullMedicalRecord(ctx context.Context, patientID, recordID primitive.ObjectID) (bool, error) {
	patient, ok := r.patients[patientID]
	if !ok {
		return false, nil
	}
	for i := range patient.MedicalHistory {
		if patient.MedicalHistory[i].ID == recordID {
			patient.MedicalHistory = append(patient.MedicalHistory[:i], patient.MedicalHistory[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryPatientRepository) PushDocument(ctx context.Context, patientID primitive.ObjectID, document *models.Document) error {
	patient := r.patients[patientID]
	patient.Documents = append(patient.Documents, *document)
	return nil
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

type recordingStorage struct {
	uploaded []string
}

func (s *recordingStorage) UploadObject(ctx context.Context, bucketName, objectName, contentType string, content io.Reader, size int64) (string, error) {
	s.uploaded = append(s.uploaded, bucketName+"/"+objectName)
	return objectName, nil
}

func (s *recordingStorage) GetObjectUrlWithExpiryTime(ctx context.Context, bucketName, objectName string, expiryTime time.Duration) (string, error) {
	return "https://storage.local/" + bucketName + "/" + objectName, nil
}

var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestUsecase() (*patientUsecase, *memoryPatientRepository, *memoryUserRepository, *recordingStorage) {
	patientRepo := &memoryPatientRepository{patients: map[primitive.ObjectID]*models.Patient{}}
	userRepo := &memoryUserRepository{users: map[primitive.ObjectID]*models.User{}}
	storage := &recordingStorage{}
	cfg := &config.InternalConfig{
		Minio: config.AppMinio{
			BucketName:                      "patient-documents",
			DocumentMaxUploadSizeInMB:       1,
			PreSignedUrlObjectExpiryInHours: 2,
		},
	}
	uc := newPatientUsecase(patientRepo, userRepo, storage, cfg, zap.NewNop())
	uc.now = func() time.Time { return fixedNow }
	return uc, patientRepo, userRepo, storage
}

func seedPatient(repo *memoryPatientRepository) *models.Patient {
	patient := &models.Patient{
		ID:               primitive.NewObjectID(),
		User:             primitive.NewObjectID(),
		HealthCardNumber: "HC-100",
		Status:           models.PatientStatusActive,
	}
	repo.patients[patient.ID] = patient
	return patient
}

func TestPatientUsecase_Register(t *testing.T) {
	uc, patientRepo, userRepo, _ := newTestUsecase()
	ctx := context.Background()

	userID := primitive.NewObjectID()
	userRepo.users[userID] = &models.User{ID: userID, Role: constvars.RolePatient}

	request := &requests.CreatePatient{
		UserID:           userID.Hex(),
		HealthCardNumber: " HC-200 ",
		DateOfBirth:      "1990-05-01",
		Gender:           models.GenderFemale,
		Phone:            "555-0100",
	}
	patient, err := uc.Register(ctx, request)
	require.NoError(t, err)
	assert.Equal(t, "HC-200", patient.HealthCardNumber)
	assert.Equal(t, models.PatientStatusActive, patient.Status)
	assert.Equal(t, fixedNow, patient.CreatedAt)
	assert.Equal(t, 1990, patient.DateOfBirth.Year())

	_, err = uc.Register(ctx, request)
	assert.True(t, exceptions.IsConflict(err))

	otherUser := primitive.NewObjectID()
	userRepo.users[otherUser] = &models.User{ID: otherUser}
	request.UserID = otherUser.Hex()
	_, err = uc.Register(ctx, request)
	assert.True(t, exceptions.IsConflict(err), "health card numbers are unique")

	request.UserID = primitive.NewObjectID().Hex()
	_, err = uc.Register(ctx, request)
	assert.True(t, exceptions.IsNotFound(err))
	assert.Len(t, patientRepo.patients, 1)
}

func TestPatientUsecase_FindVariants(t *testing.T) {
	uc, patientRepo, _, _ := newTestUsecase()
	ctx := context.Background()
	patient := seedPatient(patientRepo)

	found, err := uc.FindByID(ctx, patient.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, patient.ID, found.ID)

	found, err = uc.FindByUserID(ctx, patient.User.Hex())
	require.NoError(t, err)
	assert.Equal(t, patient.ID, found.ID)

	found, err = uc.FindByHealthCardNumber(ctx, "HC-100")
	require.NoError(t, err)
	assert.Equal(t, patient.ID, found.ID)

	_, err = uc.FindByID(ctx, primitive.NewObjectID().Hex())
	assert.True(t, exceptions.IsNotFound(err))

	_, err = uc.FindByHealthCardNumber(ctx, "missing")
	assert.True(t, exceptions.IsNotFound(err))

	_, err = uc.FindByID(ctx, "not-an-id")
	assert.Equal(t, constvars.StatusBadRequest, exceptions.StatusCodeOf(err))
}

func TestPatientUsecase_UpdateAndDelete(t *testing.T) {
	uc, patientRepo, _, _ := newTestUsecase()
	ctx := context.Background()
	patient := seedPatient(patientRepo)

	status := models.PatientStatusSuspended
	updated, err := uc.Update(ctx, patient.ID.Hex(), &requests.UpdatePatient{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.PatientStatusSuspended, updated.Status)
	assert.Equal(t, fixedNow, updated.UpdatedAt)

	_, err = uc.Update(ctx, primitive.NewObjectID().Hex(), &requests.UpdatePatient{Status: &status})
	assert.True(t, exceptions.IsNotFound(err))

	require.NoError(t, uc.Delete(ctx, patient.ID.Hex()))
	assert.Empty(t, patientRepo.patients)
	assert.True(t, exceptions.IsNotFound(uc.Delete(ctx, patient.ID.Hex())))
}

func TestPatientUsecase_MedicalHistory(t *testing.T) {
	uc, patientRepo, _, _ := newTestUsecase()
	ctx := context.Background()
	patient := seedPatient(patientRepo)
	doctorID := primitive.NewObjectID()

	first, err := uc.AddMedicalRecord(ctx, patient.ID.Hex(), &requests.MedicalRecord{
		RecordType: models.RecordTypeConsultation,
		Title:      "Initial consultation",
		Date:       "2024-01-15",
		DoctorID:   doctorID.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, "active", first.Status)
	require.NotNil(t, patient.LastVisit)
	assert.Equal(t, 15, patient.LastVisit.Day())

	_, err = uc.AddMedicalRecord(ctx, patient.ID.Hex(), &requests.MedicalRecord{
		RecordType: models.RecordTypeLabResult,
		Title:      "Blood panel",
		Date:       "2024-02-20",
	})
	require.NoError(t, err)
	assert.Equal(t, time.February, patient.LastVisit.Month())

	_, err = uc.AddMedicalRecord(ctx, patient.ID.Hex(), &requests.MedicalRecord{
		RecordType: models.RecordTypeOther,
		Title:      "Backdated note",
		Date:       "2023-12-01",
	})
	require.NoError(t, err)
	assert.Equal(t, time.February, patient.LastVisit.Month(), "older records keep lastVisit")

	history, err := uc.FindMedicalHistory(ctx, patient.ID.Hex(), &requests.MedicalHistoryFilter{})
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "Blood panel", history[0].Title)
	assert.Equal(t, "Backdated note", history[2].Title)

	history, err = uc.FindMedicalHistory(ctx, patient.ID.Hex(), &requests.MedicalHistoryFilter{DoctorID: doctorID.Hex()})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first.ID, history[0].ID)

	history, err = uc.FindMedicalHistory(ctx, patient.ID.Hex(), &requests.MedicalHistoryFilter{
		DateRange: requests.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-31"},
	})
	require.NoError(t, err)
	require.Len(t, history, 1)

	replaced, err := uc.UpdateMedicalRecord(ctx, patient.ID.Hex(), first.ID.Hex(), &requests.MedicalRecord{
		RecordType: models.RecordTypeDiagnosis,
		Title:      "Diagnosis confirmed",
	})
	require.NoError(t, err)
	assert.Equal(t, first.Date, replaced.Date, "date is kept when omitted")
	assert.Equal(t, "Diagnosis confirmed", patient.FindMedicalRecord(first.ID).Title)

	_, err = uc.UpdateMedicalRecord(ctx, patient.ID.Hex(), primitive.NewObjectID().Hex(), &requests.MedicalRecord{Title: "x"})
	assert.True(t, exceptions.IsNotFound(err))

	require.NoError(t, uc.DeleteMedicalRecord(ctx, patient.ID.Hex(), first.ID.Hex()))
	assert.Len(t, patient.MedicalHistory, 2)
	assert.True(t, exceptions.IsNotFound(uc.DeleteMedicalRecord(ctx, patient.ID.Hex(), first.ID.Hex())))
}

func TestPatientUsecase_ReplaceAllergiesAndMedications(t *testing.T) {
	uc, patientRepo, _, _ := newTestUsecase()
	ctx := context.Background()
	patient := seedPatient(patientRepo)
	patient.Allergies = []models.Allergy{{Allergen: "dust", Severity: models.AllergySeverityMild}}

	allergies, err := uc.UpdateAllergies(ctx, patient.ID.Hex(), &requests.UpdateAllergies{
		Allergies: []requests.Allergy{{Allergen: "penicillin", Severity: models.AllergySeveritySevere}},
	})
	require.NoError(t, err)
	require.Len(t, allergies, 1)
	assert.Equal(t, "penicillin", allergies[0].Allergen)
	assert.Equal(t, fixedNow, allergies[0].DateRecorded)

	inactive := false
	medications, err := uc.UpdateMedications(ctx, patient.ID.Hex(), &requests.UpdateMedications{
		Medications: []requests.CurrentMedication{
			{Name: "ibuprofen", Dosage: "200mg", Frequency: "daily"},
			{Name: "amoxicillin", Dosage: "500mg", Frequency: "twice daily", StartDate: "2024-01-01", IsActive: &inactive},
		},
	})
	require.NoError(t, err)
	require.Len(t, medications, 2)
	assert.True(t, medications[0].IsActive)
	assert.Equal(t, fixedNow, medications[0].StartDate)
	assert.False(t, medications[1].IsActive)

	_, err = uc.UpdateAllergies(ctx, primitive.NewObjectID().Hex(), &requests.UpdateAllergies{})
	assert.True(t, exceptions.IsNotFound(err))
}

func TestPatientUsecase_Documents(t *testing.T) {
	uc, patientRepo, _, storage := newTestUsecase()
	ctx := context.Background()
	patient := seedPatient(patientRepo)
	uploader := models.NewUserActor(primitive.NewObjectID(), constvars.RoleDoctor)

	document, err := uc.UploadDocument(ctx, uploader, &requests.UploadDocument{
		PatientID:    patient.ID.Hex(),
		Category:     "lab",
		OriginalName: "Scan.PDF",
		ContentType:  "application/pdf",
		Size:         4,
		Content:      []byte("%PDF"),
	})
	require.NoError(t, err)
	require.Len(t, storage.uploaded, 1)
	assert.Contains(t, document.Filename, patient.ID.Hex()+"/")
	assert.Contains(t, document.Filename, ".pdf")
	require.NotNil(t, document.UploadedBy)
	assert.Equal(t, uploader.UserID, *document.UploadedBy)
	assert.Len(t, patient.Documents, 1)

	_, err = uc.UploadDocument(ctx, uploader, &requests.UploadDocument{
		PatientID:    patient.ID.Hex(),
		OriginalName: "big.bin",
		Size:         2 * 1024 * 1024,
	})
	assert.Equal(t, constvars.StatusRequestEntityTooLarge, exceptions.StatusCodeOf(err))

	url, err := uc.GetDocumentURL(ctx, patient.ID.Hex(), document.ID.Hex())
	require.NoError(t, err)
	assert.Contains(t, url.URL, document.Filename)
	assert.Equal(t, fixedNow.Add(2*time.Hour), url.ExpiresAt)

	_, err = uc.GetDocumentURL(ctx, patient.ID.Hex(), primitive.NewObjectID().Hex())
	assert.True(t, exceptions.IsNotFound(err))
}
