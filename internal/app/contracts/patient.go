package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PatientUsecase interface {
	Register(ctx context.Context, request *requests.CreatePatient) (*models.Patient, error)
	FindByID(ctx context.Context, patientID string) (*models.Patient, error)
	FindByUserID(ctx context.Context, userID string) (*models.Patient, error)
	FindByHealthCardNumber(ctx context.Context, healthCardNumber string) (*models.Patient, error)
	Search(ctx context.Context, request *requests.PatientSearch) ([]models.Patient, int, error)
	Update(ctx context.Context, patientID string, request *requests.UpdatePatient) (*models.Patient, error)
	Delete(ctx context.Context, patientID string) error
	Stats(ctx context.Context, window requests.DateRange) (*models.PatientStats, error)
	FindMedicalHistory(ctx context.Context, patientID string, filter *requests.MedicalHistoryFilter) ([]models.MedicalRecord, error)
	AddMedicalRecord(ctx context.Context, patientID string, request *requests.MedicalRecord) (*models.MedicalRecord, error)
	UpdateMedicalRecord(ctx context.Context, patientID, recordID string, request *requests.MedicalRecord) (*models.MedicalRecord, error)
	DeleteMedicalRecord(ctx context.Context, patientID, recordID string) error
	UpdateAllergies(ctx context.Context, patientID string, request *requests.UpdateAllergies) ([]models.Allergy, error)
	UpdateMedications(ctx context.Context, patientID string, request *requests.UpdateMedications) ([]models.CurrentMedication, error)
	UploadDocument(ctx context.Context, actor models.Actor, request *requests.UploadDocument) (*models.Document, error)
	GetDocumentURL(ctx context.Context, patientID, documentID string) (*responses.DocumentURL, error)
}

type PatientRepository interface {
	Create(ctx context.Context, patient *models.Patient) (*models.Patient, error)
	FindByID(ctx context.Context, patientID primitive.ObjectID) (*models.Patient, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Patient, error)
	FindByHealthCardNumber(ctx context.Context, healthCardNumber string) (*models.Patient, error)
	Search(ctx context.Context, query models.PatientQuery, pagination *requests.Pagination) ([]models.Patient, int, error)
	Update(ctx context.Context, patientID primitive.ObjectID, fields map[string]interface{}) (*models.Patient, error)
	Delete(ctx context.Context, patientID primitive.ObjectID) error
	Stats(ctx context.Context, created *models.DateRange) (*models.PatientStats, error)
	PushMedicalRecord(ctx context.Context, patientID primitive.ObjectID, record *models.MedicalRecord) error
	ReplaceMedicalRecord(ctx context.Context, patientID primitive.ObjectID, record *models.MedicalRecord) (bool, error)
	PullMedicalRecord(ctx context.Context, patientID, recordID primitive.ObjectID) (bool, error)
	PushDocument(ctx context.Context, patientID primitive.ObjectID, document *models.Document) error
}
