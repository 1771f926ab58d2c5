package requests

type Address struct {
	Street  string `json:"street" validate:"max=200"`
	City    string `json:"city" validate:"max=100"`
	State   string `json:"state" validate:"max=100"`
	ZipCode string `json:"zipCode" validate:"max=20"`
	Country string `json:"country" validate:"max=100"`
}

type EmergencyContact struct {
	Name         string `json:"name" validate:"required,max=100"`
	Relationship string `json:"relationship" validate:"required,max=50"`
	Phone        string `json:"phone" validate:"required,max=30"`
	Email        string `json:"email" validate:"omitempty,email"`
}

type Insurance struct {
	Provider     string `json:"provider" validate:"max=100"`
	PolicyNumber string `json:"policyNumber" validate:"max=100"`
	GroupNumber  string `json:"groupNumber" validate:"max=100"`
	ExpiryDate   string `json:"expiryDate" validate:"omitempty,date_value"`
}

type CreatePatient struct {
	UserID           string            `json:"userId" validate:"required,object_id"`
	HealthCardNumber string            `json:"healthCardNumber" validate:"required,max=50"`
	DateOfBirth      string            `json:"dateOfBirth" validate:"required,date_value"`
	Gender           string            `json:"gender" validate:"required,oneof=male female other"`
	Phone            string            `json:"phone" validate:"required,max=30"`
	Address          Address           `json:"address"`
	EmergencyContact *EmergencyContact `json:"emergencyContact" validate:"omitempty"`
	Insurance        *Insurance        `json:"insurance" validate:"omitempty"`
}

type UpdatePatient struct {
	DateOfBirth      *string           `json:"dateOfBirth" validate:"omitempty,date_value"`
	Gender           *string           `json:"gender" validate:"omitempty,oneof=male female other"`
	Phone            *string           `json:"phone" validate:"omitempty,max=30"`
	Address          *Address          `json:"address" validate:"omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact" validate:"omitempty"`
	Insurance        *Insurance        `json:"insurance" validate:"omitempty"`
	Status           *string           `json:"status" validate:"omitempty,oneof=active inactive suspended"`
}

type PatientSearch struct {
	Query  string
	Status string `validate:"omitempty,oneof=active inactive suspended"`
	Pagination
}

type Medication struct {
	Name         string `json:"name" validate:"required,max=100"`
	Dosage       string `json:"dosage" validate:"max=100"`
	Frequency    string `json:"frequency" validate:"max=100"`
	Duration     string `json:"duration" validate:"max=100"`
	Instructions string `json:"instructions" validate:"max=500"`
}

type LabResult struct {
	TestName    string `json:"testName" validate:"required,max=100"`
	Result      string `json:"result" validate:"required,max=200"`
	NormalRange string `json:"normalRange" validate:"max=100"`
	Unit        string `json:"unit" validate:"max=20"`
	Status      string `json:"status" validate:"omitempty,oneof=normal abnormal critical"`
}

type BloodPressure struct {
	Systolic  int `json:"systolic" validate:"gte=0"`
	Diastolic int `json:"diastolic" validate:"gte=0"`
}

type VitalSigns struct {
	BloodPressure    *BloodPressure `json:"bloodPressure" validate:"omitempty"`
	HeartRate        float64        `json:"heartRate" validate:"gte=0"`
	Temperature      float64        `json:"temperature" validate:"gte=0"`
	RespiratoryRate  float64        `json:"respiratoryRate" validate:"gte=0"`
	OxygenSaturation float64        `json:"oxygenSaturation" validate:"gte=0,lte=100"`
	Weight           float64        `json:"weight" validate:"gte=0"`
	Height           float64        `json:"height" validate:"gte=0"`
	BMI              float64        `json:"bmi" validate:"gte=0"`
}

type MedicalRecord struct {
	RecordType       string       `json:"recordType" validate:"required,oneof=consultation diagnosis treatment prescription lab_result vital_signs allergy medication surgery other"`
	Title            string       `json:"title" validate:"required,max=200"`
	Description      string       `json:"description" validate:"max=2000"`
	Date             string       `json:"date" validate:"omitempty,date_value"`
	DoctorID         string       `json:"doctor" validate:"omitempty,object_id"`
	Diagnosis        string       `json:"diagnosis" validate:"max=500"`
	Treatment        string       `json:"treatment" validate:"max=1000"`
	Symptoms         []string     `json:"symptoms" validate:"dive,max=100"`
	Medications      []Medication `json:"medications" validate:"dive"`
	LabResults       []LabResult  `json:"labResults" validate:"dive"`
	VitalSigns       *VitalSigns  `json:"vitalSigns" validate:"omitempty"`
	Notes            string       `json:"notes" validate:"max=2000"`
	FollowUpRequired bool         `json:"followUpRequired"`
	FollowUpDate     string       `json:"followUpDate" validate:"omitempty,date_value"`
	Status           string       `json:"status" validate:"omitempty,oneof=active inactive archived"`
}

type MedicalHistoryFilter struct {
	RecordType string `validate:"omitempty,oneof=consultation diagnosis treatment prescription lab_result vital_signs allergy medication surgery other"`
	DoctorID   string `validate:"omitempty,object_id"`
	DateRange
}

type Allergy struct {
	Allergen string `json:"allergen" validate:"required,max=100"`
	Severity string `json:"severity" validate:"required,oneof=mild moderate severe"`
	Reaction string `json:"reaction" validate:"max=200"`
	Notes    string `json:"notes" validate:"max=500"`
}

type UpdateAllergies struct {
	Allergies []Allergy `json:"allergies" validate:"dive"`
}

type CurrentMedication struct {
	Name           string `json:"name" validate:"required,max=100"`
	Dosage         string `json:"dosage" validate:"required,max=100"`
	Frequency      string `json:"frequency" validate:"required,max=100"`
	StartDate      string `json:"startDate" validate:"omitempty,date_value"`
	EndDate        string `json:"endDate" validate:"omitempty,date_value"`
	PrescribedByID string `json:"prescribedBy" validate:"omitempty,object_id"`
	Instructions   string `json:"instructions" validate:"max=500"`
	IsActive       *bool  `json:"isActive"`
}

type UpdateMedications struct {
	Medications []CurrentMedication `json:"medications" validate:"dive"`
}

type UploadDocument struct {
	PatientID    string
	Category     string `validate:"max=50"`
	OriginalName string `validate:"required"`
	ContentType  string
	Size         int64
	Content      []byte
}
