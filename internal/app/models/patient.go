package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PatientStatusActive    = "active"
	PatientStatusInactive  = "inactive"
	PatientStatusSuspended = "suspended"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

type Patient struct {
	ID                 primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	User               primitive.ObjectID  `json:"user" bson:"user"`
	HealthCardNumber   string              `json:"healthCardNumber" bson:"healthCardNumber"`
	DateOfBirth        time.Time           `json:"dateOfBirth" bson:"dateOfBirth"`
	Gender             string              `json:"gender" bson:"gender"`
	Phone              string              `json:"phone" bson:"phone"`
	Address            Address             `json:"address" bson:"address"`
	EmergencyContact   EmergencyContact    `json:"emergencyContact" bson:"emergencyContact"`
	MedicalHistory     []MedicalRecord     `json:"medicalHistory" bson:"medicalHistory"`
	Allergies          []Allergy           `json:"allergies" bson:"allergies"`
	CurrentMedications []CurrentMedication `json:"currentMedications" bson:"currentMedications"`
	Insurance          Insurance           `json:"insurance" bson:"insurance"`
	Documents          []Document          `json:"documents" bson:"documents"`
	Status             string              `json:"status" bson:"status"`
	LastVisit          *time.Time          `json:"lastVisit,omitempty" bson:"lastVisit,omitempty"`
	NextAppointment    *time.Time          `json:"nextAppointment,omitempty" bson:"nextAppointment,omitempty"`
	TimeModel          `bson:",inline"`
}

// Age counts completed years between the date of birth and now.
func (p *Patient) Age(now time.Time) int {
	if p.DateOfBirth.IsZero() {
		return 0
	}
	age := now.Year() - p.DateOfBirth.Year()
	if now.Month() < p.DateOfBirth.Month() || (now.Month() == p.DateOfBirth.Month() && now.Day() < p.DateOfBirth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

func (p *Patient) FindMedicalRecord(recordID primitive.ObjectID) *MedicalRecord {
	for i := range p.MedicalHistory {
		if p.MedicalHistory[i].ID == recordID {
			return &p.MedicalHistory[i]
		}
	}
	return nil
}

func (p *Patient) FindDocument(documentID primitive.ObjectID) *Document {
	for i := range p.Documents {
		if p.Documents[i].ID == documentID {
			return &p.Documents[i]
		}
	}
	return nil
}

type Address struct {
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	ZipCode string `json:"zipCode" bson:"zipCode"`
	Country string `json:"country" bson:"country"`
}

type EmergencyContact struct {
	Name         string `json:"name" bson:"name"`
	Relationship string `json:"relationship" bson:"relationship"`
	Phone        string `json:"phone" bson:"phone"`
	Email        string `json:"email,omitempty" bson:"email,omitempty"`
}

type Insurance struct {
	Provider     string     `json:"provider,omitempty" bson:"provider,omitempty"`
	PolicyNumber string     `json:"policyNumber,omitempty" bson:"policyNumber,omitempty"`
	GroupNumber  string     `json:"groupNumber,omitempty" bson:"groupNumber,omitempty"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty" bson:"expiryDate,omitempty"`
}

const (
	RecordTypeConsultation = "consultation"
	RecordTypeDiagnosis    = "diagnosis"
	RecordTypeTreatment    = "treatment"
	RecordTypePrescription = "prescription"
	RecordTypeLabResult    = "lab_result"
	RecordTypeVitalSigns   = "vital_signs"
	RecordTypeAllergy      = "allergy"
	RecordTypeMedication   = "medication"
	RecordTypeSurgery      = "surgery"
	RecordTypeOther        = "other"
)

type MedicalRecord struct {
	ID               primitive.ObjectID  `json:"id" bson:"_id"`
	RecordType       string              `json:"recordType" bson:"recordType"`
	Title            string              `json:"title" bson:"title"`
	Description      string              `json:"description,omitempty" bson:"description,omitempty"`
	Date             time.Time           `json:"date" bson:"date"`
	Doctor           *primitive.ObjectID `json:"doctor,omitempty" bson:"doctor,omitempty"`
	Diagnosis        string              `json:"diagnosis,omitempty" bson:"diagnosis,omitempty"`
	Treatment        string              `json:"treatment,omitempty" bson:"treatment,omitempty"`
	Symptoms         []string            `json:"symptoms,omitempty" bson:"symptoms,omitempty"`
	Medications      []Medication        `json:"medications,omitempty" bson:"medications,omitempty"`
	LabResults       []LabResult         `json:"labResults,omitempty" bson:"labResults,omitempty"`
	VitalSigns       *VitalSigns         `json:"vitalSigns,omitempty" bson:"vitalSigns,omitempty"`
	Notes            string              `json:"notes,omitempty" bson:"notes,omitempty"`
	Attachments      []string            `json:"attachments,omitempty" bson:"attachments,omitempty"`
	FollowUpRequired bool                `json:"followUpRequired" bson:"followUpRequired"`
	FollowUpDate     *time.Time          `json:"followUpDate,omitempty" bson:"followUpDate,omitempty"`
	Status           string              `json:"status" bson:"status"`
}

type Medication struct {
	Name         string `json:"name" bson:"name"`
	Dosage       string `json:"dosage,omitempty" bson:"dosage,omitempty"`
	Frequency    string `json:"frequency,omitempty" bson:"frequency,omitempty"`
	Duration     string `json:"duration,omitempty" bson:"duration,omitempty"`
	Instructions string `json:"instructions,omitempty" bson:"instructions,omitempty"`
}

const (
	LabStatusNormal   = "normal"
	LabStatusAbnormal = "abnormal"
	LabStatusCritical = "critical"
)

type LabResult struct {
	TestName    string `json:"testName" bson:"testName"`
	Result      string `json:"result" bson:"result"`
	NormalRange string `json:"normalRange,omitempty" bson:"normalRange,omitempty"`
	Unit        string `json:"unit,omitempty" bson:"unit,omitempty"`
	Status      string `json:"status,omitempty" bson:"status,omitempty"`
}

type BloodPressure struct {
	Systolic  int `json:"systolic" bson:"systolic"`
	Diastolic int `json:"diastolic" bson:"diastolic"`
}

type VitalSigns struct {
	BloodPressure    *BloodPressure `json:"bloodPressure,omitempty" bson:"bloodPressure,omitempty"`
	HeartRate        float64        `json:"heartRate,omitempty" bson:"heartRate,omitempty"`
	Temperature      float64        `json:"temperature,omitempty" bson:"temperature,omitempty"`
	RespiratoryRate  float64        `json:"respiratoryRate,omitempty" bson:"respiratoryRate,omitempty"`
	OxygenSaturation float64        `json:"oxygenSaturation,omitempty" bson:"oxygenSaturation,omitempty"`
	Weight           float64        `json:"weight,omitempty" bson:"weight,omitempty"`
	Height           float64        `json:"height,omitempty" bson:"height,omitempty"`
	BMI              float64        `json:"bmi,omitempty" bson:"bmi,omitempty"`
}

const (
	AllergySeverityMild     = "mild"
	AllergySeverityModerate = "moderate"
	AllergySeveritySevere   = "severe"
)

type Allergy struct {
	Allergen     string    `json:"allergen" bson:"allergen"`
	Severity     string    `json:"severity" bson:"severity"`
	Reaction     string    `json:"reaction,omitempty" bson:"reaction,omitempty"`
	Notes        string    `json:"notes,omitempty" bson:"notes,omitempty"`
	DateRecorded time.Time `json:"dateRecorded" bson:"dateRecorded"`
}

type CurrentMedication struct {
	Name         string              `json:"name" bson:"name"`
	Dosage       string              `json:"dosage" bson:"dosage"`
	Frequency    string              `json:"frequency" bson:"frequency"`
	StartDate    time.Time           `json:"startDate" bson:"startDate"`
	EndDate      *time.Time          `json:"endDate,omitempty" bson:"endDate,omitempty"`
	PrescribedBy *primitive.ObjectID `json:"prescribedBy,omitempty" bson:"prescribedBy,omitempty"`
	Instructions string              `json:"instructions,omitempty" bson:"instructions,omitempty"`
	IsActive     bool                `json:"isActive" bson:"isActive"`
}

type Document struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id"`
	Filename     string              `json:"filename" bson:"filename"`
	OriginalName string              `json:"originalName" bson:"originalName"`
	FilePath     string              `json:"filePath" bson:"filePath"`
	FileType     string              `json:"fileType" bson:"fileType"`
	FileSize     int64               `json:"fileSize" bson:"fileSize"`
	Category     string              `json:"category,omitempty" bson:"category,omitempty"`
	UploadedAt   time.Time           `json:"uploadedAt" bson:"uploadedAt"`
	UploadedBy   *primitive.ObjectID `json:"uploadedBy,omitempty" bson:"uploadedBy,omitempty"`
}

// PatientStats is the population summary served by the patient stats endpoint.
type PatientStats struct {
	TotalPatients     int64 `json:"totalPatients" bson:"totalPatients"`
	ActivePatients    int64 `json:"activePatients" bson:"activePatients"`
	InactivePatients  int64 `json:"inactivePatients" bson:"inactivePatients"`
	SuspendedPatients int64 `json:"suspendedPatients" bson:"suspendedPatients"`
}

// MedicalHistoryQuery narrows a patient's medical history. Zero fields are ignored.
type MedicalHistoryQuery struct {
	RecordType string
	DoctorID   *primitive.ObjectID
	Window     *DateRange
}

func (q MedicalHistoryQuery) Matches(record *MedicalRecord) bool {
	if q.RecordType != "" && record.RecordType != q.RecordType {
		return false
	}
	if q.DoctorID != nil && (record.Doctor == nil || *record.Doctor != *q.DoctorID) {
		return false
	}
	if q.Window != nil && !q.Window.Contains(record.Date) {
		return false
	}
	return true
}

// PatientQuery narrows the patient population for listings and aggregations.
// Zero fields are ignored.
type PatientQuery struct {
	Search     string
	Status     string
	Gender     string
	DoctorID   *primitive.ObjectID
	Created    *DateRange
	LastVisit  *DateRange
	BornWithin *DateRange
	MinVisits  int
}
