package patients

import (
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/utils"
	"time"
)

// buildPatientUpdate collects the $set fields of a partial patient update.
func buildPatientUpdate(request *requests.UpdatePatient) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if request.DateOfBirth != nil {
		dateOfBirth, err := utils.ParseDate(*request.DateOfBirth)
		if err != nil {
			return nil, err
		}
		fields["dateOfBirth"] = dateOfBirth
	}
	if request.Gender != nil {
		fields["gender"] = *request.Gender
	}
	if request.Phone != nil {
		fields["phone"] = *request.Phone
	}
	if request.Address != nil {
		fields["address"] = toAddress(*request.Address)
	}
	if request.EmergencyContact != nil {
		fields["emergencyContact"] = toEmergencyContact(request.EmergencyContact)
	}
	if request.Insurance != nil {
		insurance, err := toInsurance(request.Insurance)
		if err != nil {
			return nil, err
		}
		fields["insurance"] = insurance
	}
	if request.Status != nil {
		fields["status"] = *request.Status
	}
	return fields, nil
}

func toAddress(address requests.Address) models.Address {
	return models.Address{
		Street:  address.Street,
		City:    address.City,
		State:   address.State,
		ZipCode: address.ZipCode,
		Country: address.Country,
	}
}

func toEmergencyContact(contact *requests.EmergencyContact) models.EmergencyContact {
	return models.EmergencyContact{
		Name:         contact.Name,
		Relationship: contact.Relationship,
		Phone:        contact.Phone,
		Email:        contact.Email,
	}
}

func toInsurance(insurance *requests.Insurance) (models.Insurance, error) {
	expiryDate, err := utils.ParseOptionalDate(insurance.ExpiryDate)
	if err != nil {
		return models.Insurance{}, err
	}
	return models.Insurance{
		Provider:     insurance.Provider,
		PolicyNumber: insurance.PolicyNumber,
		GroupNumber:  insurance.GroupNumber,
		ExpiryDate:   expiryDate,
	}, nil
}

func toCurrentMedication(request requests.CurrentMedication, now time.Time) (models.CurrentMedication, error) {
	medication := models.CurrentMedication{
		Name:         request.Name,
		Dosage:       request.Dosage,
		Frequency:    request.Frequency,
		StartDate:    now,
		Instructions: request.Instructions,
		IsActive:     true,
	}
	if request.IsActive != nil {
		medication.IsActive = *request.IsActive
	}
	if request.StartDate != "" {
		startDate, err := utils.ParseDate(request.StartDate)
		if err != nil {
			return models.CurrentMedication{}, err
		}
		medication.StartDate = startDate
	}

	endDate, err := utils.ParseOptionalDate(request.EndDate)
	if err != nil {
		return models.CurrentMedication{}, err
	}
	medication.EndDate = endDate

	medication.PrescribedBy, err = utils.ParseOptionalObjectID(request.PrescribedByID)
	if err != nil {
		return models.CurrentMedication{}, err
	}
	return medication, nil
}
