package utils

import (
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

var (
	regexSpecialChar = regexp.MustCompile(constvars.RegexContainAtLeastOneSpecialChar)
	regexUppercase   = regexp.MustCompile(constvars.RegexContainAtLeastOneUppercase)
	regexTimeSlot    = regexp.MustCompile(constvars.RegexTimeSlot)
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonTagName)
	validate.RegisterValidation("password", validatePassword)
	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("time_slot", validateTimeSlot)
	validate.RegisterValidation("date_value", validateDateValue)
	validate.RegisterValidation("payment_method", validatePaymentMethod)
	validate.RegisterValidation("report_type", validateReportType)
	validate.RegisterValidation("metrics_domain", validateMetricsDomain)
	validate.RegisterValidation("user_role", validateUserRole)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func jsonTagName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	hasMinLen := len(password) >= 8
	return hasMinLen && regexSpecialChar.MatchString(password) && regexUppercase.MatchString(password)
}

func validateObjectID(fl validator.FieldLevel) bool {
	return primitive.IsValidObjectID(fl.Field().String())
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	return regexTimeSlot.MatchString(fl.Field().String())
}

func validateDateValue(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if _, err := time.Parse(constvars.DateLayout, value); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, value)
	return err == nil
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(), models.PaymentMethods)
}

func validateReportType(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(), models.ReportTypes)
}

func validateMetricsDomain(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(), models.MetricsDomains)
}

func validateUserRole(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(), []string{constvars.RolePatient, constvars.RoleDoctor, constvars.RoleAdmin})
}

func oneOf(value string, allowed []string) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	return false
}
