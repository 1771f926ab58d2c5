package patients

import (
	"bytes"
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type patientUsecase struct {
	PatientRepository contracts.PatientRepository
	UserRepository    contracts.UserRepository
	Storage           contracts.Storage
	InternalConfig    *config.InternalConfig
	Log               *zap.Logger
	now               func() time.Time
}

var (
	patientUsecaseInstance contracts.PatientUsecase
	oncePatientUsecase     sync.Once
)

func NewPatientUsecase(
	patientRepository contracts.PatientRepository,
	userRepository contracts.UserRepository,
	storage contracts.Storage,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.PatientUsecase {
	oncePatientUsecase.Do(func() {
		patientUsecaseInstance = newPatientUsecase(patientRepository, userRepository, storage, internalConfig, logger)
	})
	return patientUsecaseInstance
}

func newPatientUsecase(
	patientRepository contracts.PatientRepository,
	userRepository contracts.UserRepository,
	storage contracts.Storage,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *patientUsecase {
	return &patientUsecase{
		PatientRepository: patientRepository,
		UserRepository:    userRepository,
		Storage:           storage,
		InternalConfig:    internalConfig,
		Log:               logger,
		now:               time.Now,
	}
}

func (uc *patientUsecase) Register(ctx context.Context, request *requests.CreatePatient) (*models.Patient, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.Register called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, request.UserID),
	)

	userID, err := utils.ParseObjectID(request.UserID)
	if err != nil {
		return nil, err
	}

	user, err := uc.UserRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, exceptions.ErrUserNotExist(nil)
	}

	existing, err := uc.PatientRepository.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, exceptions.ErrPatientProfileExist(nil, request.UserID)
	}

	healthCardNumber := strings.TrimSpace(request.HealthCardNumber)
	existing, err = uc.PatientRepository.FindByHealthCardNumber(ctx, healthCardNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, exceptions.ErrHealthCardAlreadyExist(nil, healthCardNumber)
	}

	dateOfBirth, err := utils.ParseDate(request.DateOfBirth)
	if err != nil {
		return nil, err
	}

	patient := &models.Patient{
		User:               userID,
		HealthCardNumber:   healthCardNumber,
		DateOfBirth:        dateOfBirth,
		Gender:             request.Gender,
		Phone:              request.Phone,
		Address:            toAddress(request.Address),
		MedicalHistory:     []models.MedicalRecord{},
		Allergies:          []models.Allergy{},
		CurrentMedications: []models.CurrentMedication{},
		Documents:          []models.Document{},
		Status:             models.PatientStatusActive,
	}
	if request.EmergencyContact != nil {
		patient.EmergencyContact = toEmergencyContact(request.EmergencyContact)
	}
	if request.Insurance != nil {
		patient.Insurance, err = toInsurance(request.Insurance)
		if err != nil {
			return nil, err
		}
	}
	patient.SetCreatedAtUpdatedAt(uc.now())

	patient, err = uc.PatientRepository.Create(ctx, patient)
	if err != nil {
		uc.Log.Error("patientUsecase.Register error creating patient",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("patientUsecase.Register succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, patient.ID.Hex()),
	)
	return patient, nil
}

func (uc *patientUsecase) FindByID(ctx context.Context, patientID string) (*models.Patient, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.FindByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, patientID),
	)

	_, patient, err := uc.findPatient(ctx, patientID)
	return patient, err
}

func (uc *patientUsecase) FindByUserID(ctx context.Context, userID string) (*models.Patient, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.FindByUserID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, userID),
	)

	id, err := utils.ParseObjectID(userID)
	if err != nil {
		return nil, err
	}
	patient, err := uc.PatientRepository.FindByUserID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, exceptions.ErrPatientNotFound(nil, userID)
	}
	return patient, nil
}

func (uc *patientUsecase) FindByHealthCardNumber(ctx context.Context, healthCardNumber string) (*models.Patient, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.FindByHealthCardNumber called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	patient, err := uc.PatientRepository.FindByHealthCardNumber(ctx, strings.TrimSpace(healthCardNumber))
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, exceptions.ErrPatientNotFound(nil, healthCardNumber)
	}
	return patient, nil
}

func (uc *patientUsecase) Search(ctx context.Context, request *requests.PatientSearch) ([]models.Patient, int, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.Search called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingQueryKey, request.Query),
	)

	query := models.PatientQuery{
		Search: strings.TrimSpace(request.Query),
		Status: request.Status,
	}
	patients, total, err := uc.PatientRepository.Search(ctx, query, &request.Pagination)
	if err != nil {
		uc.Log.Error("patientUsecase.Search error searching patients",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, 0, err
	}
	return patients, total, nil
}

func (uc *patientUsecase) Update(ctx context.Context, patientID string, request *requests.UpdatePatient) (*models.Patient, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.Update called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, patientID),
	)

	id, err := utils.ParseObjectID(patientID)
	if err != nil {
		return nil, err
	}

	fields, err := buildPatientUpdate(request)
	if err != nil {
		return nil, err
	}
	fields["updatedAt"] = uc.now()

	patient, err := uc.PatientRepository.Update(ctx, id, fields)
	if err != nil {
		uc.Log.Error("patientUsecase.Update error updating patient",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if patient == nil {
		return nil, exceptions.ErrPatientNotFound(nil, patientID)
	}
	return patient, nil
}

func (uc *patientUsecase) Delete(ctx context.Context, patientID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.Delete called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, patientID),
	)

	id, _, err := uc.findPatient(ctx, patientID)
	if err != nil {
		return err
	}
	if err := uc.PatientRepository.Delete(ctx, id); err != nil {
		uc.Log.Error("patientUsecase.Delete error deleting patient",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (uc *patientUsecase) Stats(ctx context.Context, window requests.DateRange) (*models.PatientStats, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.Stats called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	created, err := utils.ParseDateRange(window, nil)
	if err != nil {
		return nil, err
	}
	return uc.PatientRepository.Stats(ctx, created)
}

// FindMedicalHistory returns the matching records, newest first.
func (uc *patientUsecase) FindMedicalHistory(ctx context.Context, patientID string, filter *requests.MedicalHistoryFilter) ([]models.MedicalRecord, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.FindMedicalHistory called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, patientID),
	)

	_, patient, err := uc.findPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	doctorID, err := utils.ParseOptionalObjectID(filter.DoctorID)
	if err != nil {
		return nil, err
	}
	window, err := utils.ParseDateRange(filter.DateRange, nil)
	if err != nil {
		return nil, err
	}
	query := models.MedicalHistoryQuery{RecordType: filter.RecordType, DoctorID: doctorID, Window: window}

	history := make([]models.MedicalRecord, 0, len(patient.MedicalHistory))
	for i := range patient.MedicalHistory {
		if query.Matches(&patient.MedicalHistory[i]) {
			history = append(history, patient.MedicalHistory[i])
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})
	return history, nil
}

// AddMedicalRecord appends a record and moves lastVisit forward to its date.
func (uc *patientUsecase) AddMedicalRecord(ctx context.Context, patientID string, request *requests.MedicalRecord) (*models.MedicalRecord, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.AddMedicalRecord called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, patientID),
	)

	id, patient, err := uc.findPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	record, err := uc.toMedicalRecord(primitive.NewObjectID(), request)
	if err != nil {
		return nil, err
	}

	if err := uc.PatientRepository.PushMedicalRecord(ctx, id, record); err != nil {
		uc.Log.Error("patientUsecase.AddMedicalRecord error pushing record",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	fields := map[string]interface{}{"updatedAt": uc.now()}
	if patient.LastVisit == nil || record.Date.After(*patient.LastVisit) {
		fields["lastVisit"] = record.Date
	}
	if _, err := uc.PatientRepository.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	uc.Log.Info("patientUsecase.AddMedicalRecord succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRecordIDKey, record.ID.Hex()),
	)
	return record, nil
}

func (uc *patientUsecase) UpdateMedicalRecord(ctx context.Context, patientID, recordID string, request *requests.MedicalRecord) (*models.MedicalRecord, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.UpdateMedicalRecord called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, patientID),
		zap.String(constvars.LoggingRecordIDKey, recordID),
	)

	id, patient, err := uc.findPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	recordObjectID, err := utils.ParseObjectID(recordID)
	if err != nil {
		return nil, err
	}
	existing := patient.FindMedicalRecord(recordObjectID)
	if existing == nil {
		return nil, exceptions.ErrMedicalRecordNotFound(nil, recordID)
	}

	record, err := uc.toMedicalRecord(recordObjectID, request)
	if err != nil {
		return nil, err
	}
	if request.Date == "" {
		record.Date = existing.Date
	}
	record.Attachments = existing.Attachments

	matched, err := uc.PatientRepository.ReplaceMedicalRecord(ctx, id, record)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, exceptions.ErrMedicalRecordNotFound(nil, recordID)
	}
	return record, nil
}

func (uc *patientUsecase) DeleteMedicalRecord(ctx context.Context, patientID, recordID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.DeleteMedicalRecord called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, patientID),
		zap.String(constvars.LoggingRecordIDKey, recordID),
	)

	id, err := utils.ParseObjectID(patientID)
	if err != nil {
		return err
	}
	recordObjectID, err := utils.ParseObjectID(recordID)
	if err != nil {
		return err
	}

	removed, err := uc.PatientRepository.PullMedicalRecord(ctx, id, recordObjectID)
	if err != nil {
		return err
	}
	if !removed {
		return exceptions.ErrMedicalRecordNotFound(nil, recordID)
	}
	return nil
}

// UpdateAllergies replaces the patient's allergy list.
func (uc *patientUsecase) UpdateAllergies(ctx context.Context, patientID string, request *requests.UpdateAllergies) ([]models.Allergy, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.UpdateAllergies called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, patientID),
	)

	id, err := utils.ParseObjectID(patientID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	allergies := make([]models.Allergy, 0, len(request.Allergies))
	for _, allergy := range request.Allergies {
		allergies = append(allergies, models.Allergy{
			Allergen:     allergy.Allergen,
			Severity:     allergy.Severity,
			Reaction:     allergy.Reaction,
			Notes:        allergy.Notes,
			DateRecorded: now,
		})
	}

	patient, err := uc.PatientRepository.Update(ctx, id, map[string]interface{}{"allergies": allergies, "updatedAt": now})
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, exceptions.ErrPatientNotFound(nil, patientID)
	}
	return patient.Allergies, nil
}

// UpdateMedications replaces the patient's current medication list.
func (uc *patientUsecase) UpdateMedications(ctx context.Context, patientID string, request *requests.UpdateMedications) ([]models.CurrentMedication, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.UpdateMedications called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, patientID),
	)

	id, err := utils.ParseObjectID(patientID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	medications := make([]models.CurrentMedication, 0, len(request.Medications))
	for _, item := range request.Medications {
		medication, err := toCurrentMedication(item, now)
		if err != nil {
			return nil, err
		}
		medications = append(medications, medication)
	}

	patient, err := uc.PatientRepository.Update(ctx, id, map[string]interface{}{"currentMedications": medications, "updatedAt": now})
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, exceptions.ErrPatientNotFound(nil, patientID)
	}
	return patient.CurrentMedications, nil
}

func (uc *patientUsecase) UploadDocument(ctx context.Context, actor models.Actor, request *requests.UploadDocument) (*models.Document, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.UploadDocument called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, request.PatientID),
	)

	maxSize := uc.InternalConfig.Minio.DocumentMaxUploadSizeInMB * 1024 * 1024
	if maxSize > 0 && request.Size > maxSize {
		return nil, exceptions.ErrFileTooLarge(request.Size, maxSize)
	}

	id, _, err := uc.findPatient(ctx, request.PatientID)
	if err != nil {
		return nil, err
	}

	bucketName := uc.InternalConfig.Minio.BucketName
	objectName := utils.GenerateObjectName(id.Hex(), request.OriginalName)
	objectName, err = uc.Storage.UploadObject(ctx, bucketName, objectName, request.ContentType, bytes.NewReader(request.Content), request.Size)
	if err != nil {
		uc.Log.Error("patientUsecase.UploadDocument error uploading object",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	document := &models.Document{
		ID:           primitive.NewObjectID(),
		Filename:     objectName,
		OriginalName: request.OriginalName,
		FilePath:     bucketName + "/" + objectName,
		FileType:     request.ContentType,
		FileSize:     request.Size,
		Category:     request.Category,
		UploadedAt:   uc.now(),
		UploadedBy:   actor.Ref(),
	}
	if err := uc.PatientRepository.PushDocument(ctx, id, document); err != nil {
		return nil, err
	}

	uc.Log.Info("patientUsecase.UploadDocument succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDocumentIDKey, document.ID.Hex()),
		zap.String(constvars.LoggingObjectNameKey, objectName),
	)
	return document, nil
}

func (uc *patientUsecase) GetDocumentURL(ctx context.Context, patientID, documentID string) (*responses.DocumentURL, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("patientUsecase.GetDocumentURL called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, patientID),
		zap.String(constvars.LoggingDocumentIDKey, documentID),
	)

	_, patient, err := uc.findPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	documentObjectID, err := utils.ParseObjectID(documentID)
	if err != nil {
		return nil, err
	}
	document := patient.FindDocument(documentObjectID)
	if document == nil {
		return nil, exceptions.ErrDocumentNotFound(nil, documentID)
	}

	expiry := time.Duration(uc.InternalConfig.Minio.PreSignedUrlObjectExpiryInHours) * time.Hour
	url, err := uc.Storage.GetObjectUrlWithExpiryTime(ctx, uc.InternalConfig.Minio.BucketName, document.Filename, expiry)
	if err != nil {
		return nil, err
	}

	return &responses.DocumentURL{
		DocumentID:   document.ID.Hex(),
		OriginalName: document.OriginalName,
		URL:          url,
		ExpiresAt:    uc.now().Add(expiry),
	}, nil
}

func (uc *patientUsecase) findPatient(ctx context.Context, patientID string) (primitive.ObjectID, *models.Patient, error) {
	id, err := utils.ParseObjectID(patientID)
	if err != nil {
		return id, nil, err
	}
	patient, err := uc.PatientRepository.FindByID(ctx, id)
	if err != nil {
		return id, nil, err
	}
	if patient == nil {
		return id, nil, exceptions.ErrPatientNotFound(nil, patientID)
	}
	return id, patient, nil
}

func (uc *patientUsecase) toMedicalRecord(id primitive.ObjectID, request *requests.MedicalRecord) (*models.MedicalRecord, error) {
	record := &models.MedicalRecord{
		ID:               id,
		RecordType:       request.RecordType,
		Title:            request.Title,
		Description:      request.Description,
		Date:             uc.now(),
		Diagnosis:        request.Diagnosis,
		Treatment:        request.Treatment,
		Symptoms:         request.Symptoms,
		Notes:            request.Notes,
		FollowUpRequired: request.FollowUpRequired,
		Status:           request.Status,
	}
	if record.Status == "" {
		record.Status = "active"
	}

	if request.Date != "" {
		date, err := utils.ParseDate(request.Date)
		if err != nil {
			return nil, err
		}
		record.Date = date
	}

	doctorID, err := utils.ParseOptionalObjectID(request.DoctorID)
	if err != nil {
		return nil, err
	}
	record.Doctor = doctorID

	record.FollowUpDate, err = utils.ParseOptionalDate(request.FollowUpDate)
	if err != nil {
		return nil, err
	}

	for _, medication := range request.Medications {
		record.Medications = append(record.Medications, models.Medication{
			Name:         medication.Name,
			Dosage:       medication.Dosage,
			Frequency:    medication.Frequency,
			Duration:     medication.Duration,
			Instructions: medication.Instructions,
		})
	}
	for _, lab := range request.LabResults {
		record.LabResults = append(record.LabResults, models.LabResult{
			TestName:    lab.TestName,
			Result:      lab.Result,
			NormalRange: lab.NormalRange,
			Unit:        lab.Unit,
			Status:      lab.Status,
		})
	}
	if vitals := request.VitalSigns; vitals != nil {
		record.VitalSigns = &models.VitalSigns{
			HeartRate:        vitals.HeartRate,
			Temperature:      vitals.Temperature,
			RespiratoryRate:  vitals.RespiratoryRate,
			OxygenSaturation: vitals.OxygenSaturation,
			Weight:           vitals.Weight,
			Height:           vitals.Height,
			BMI:              vitals.BMI,
		}
		if vitals.BloodPressure != nil {
			record.VitalSigns.BloodPressure = &models.BloodPressure{
				Systolic:  vitals.BloodPressure.Systolic,
				Diastolic: vitals.BloodPressure.Diastolic,
			}
		}
	}
	return record, nil
}
