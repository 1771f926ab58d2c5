package utils

import (
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func BuildPaginationRequest(r *http.Request) *requests.Pagination {
	pageStr := r.URL.Query().Get(constvars.URLQueryParamPage)
	pageSizeStr := r.URL.Query().Get(constvars.URLQueryParamPageSize)

	page, err := strconv.Atoi(pageStr)
	if err != nil || page <= 0 {
		page = constvars.AppDefaultPage
	}

	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil || pageSize <= 0 {
		pageSize = constvars.AppDefaultPageSize
	}
	if pageSize > constvars.AppMaxPageSize {
		pageSize = constvars.AppMaxPageSize
	}

	return &requests.Pagination{
		Page:     page,
		PageSize: pageSize,
	}
}

func BuildDateRangeRequest(r *http.Request) requests.DateRange {
	return requests.DateRange{
		StartDate: r.URL.Query().Get(constvars.URLQueryParamStartDate),
		EndDate:   r.URL.Query().Get(constvars.URLQueryParamEndDate),
	}
}

// DecodeJSONBody decodes the request body into dst and validates it.
func DecodeJSONBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return exceptions.ErrCannotParseJSON(err)
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, dst); err != nil {
			return exceptions.ErrCannotParseJSON(err)
		}
	}
	if err := ValidateStruct(dst); err != nil {
		return exceptions.ErrInputValidation(err)
	}
	return nil
}

// ParseDate accepts a calendar date or an RFC3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(constvars.DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, exceptions.ErrCannotParseTime(err)
	}
	return t.UTC(), nil
}

// ParseEndDate is ParseDate, except a bare calendar date extends to the end of that day.
func ParseEndDate(value string) (time.Time, error) {
	if t, err := time.Parse(constvars.DateLayout, value); err == nil {
		return EndOfDay(t), nil
	}
	return ParseDate(value)
}

func ParseOptionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseDateRange resolves a request window. Missing bounds fall back to
// fallback, and nil is returned when neither bound nor fallback exists.
func ParseDateRange(input requests.DateRange, fallback *models.DateRange) (*models.DateRange, error) {
	if input.StartDate == "" && input.EndDate == "" {
		return fallback, nil
	}

	var window models.DateRange
	if fallback != nil {
		window = *fallback
	}

	if input.StartDate != "" {
		start, err := ParseDate(input.StartDate)
		if err != nil {
			return nil, err
		}
		window.StartDate = start
	}
	if input.EndDate != "" {
		end, err := ParseEndDate(input.EndDate)
		if err != nil {
			return nil, err
		}
		window.EndDate = end
	}
	if window.EndDate.IsZero() {
		window.EndDate = time.Now().UTC()
	}

	if !window.IsValid() {
		return nil, exceptions.ErrInvalidDateRange(nil)
	}
	return &window, nil
}

func ParseOptionalObjectID(value string) (*primitive.ObjectID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := ParseObjectID(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func ParseObjectID(value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, exceptions.ErrMongoDBNotObjectID(err)
	}
	return id, nil
}

func ParseObjectIDs(values []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, value := range values {
		id, err := ParseObjectID(value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func BuildMetricsFilter(input requests.MetricsFilter) (models.MetricsFilter, error) {
	doctorID, err := ParseOptionalObjectID(input.DoctorID)
	if err != nil {
		return models.MetricsFilter{}, err
	}

	filter := models.MetricsFilter{
		DoctorID: doctorID,
		Gender:   input.Gender,
		Status:   input.Status,
	}
	if input.AgeRange != nil && (input.AgeRange.Min > 0 || input.AgeRange.Max > 0) {
		filter.AgeRange = &models.AgeRange{Min: input.AgeRange.Min, Max: input.AgeRange.Max}
	}
	return filter, nil
}
