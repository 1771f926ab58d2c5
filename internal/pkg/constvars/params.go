package constvars

const (
	URLParamID            = "id"
	URLParamUserID        = "userId"
	URLParamPatientID     = "patientId"
	URLParamBillID        = "billId"
	URLParamRecordID      = "recordId"
	URLParamDocumentID    = "documentId"
	URLParamHealthCard    = "healthCardNumber"
	URLParamMetricsDomain = "domain"
	URLParamTemplateID    = "templateId"
)

const (
	URLQueryParamPage          = "page"
	URLQueryParamPageSize      = "page_size"
	URLQueryParamSearch        = "q"
	URLQueryParamStatus        = "status"
	URLQueryParamDate          = "date"
	URLQueryParamStartDate     = "startDate"
	URLQueryParamEndDate       = "endDate"
	URLQueryParamDoctorID      = "doctorId"
	URLQueryParamUserID        = "userId"
	URLQueryParamPatientID     = "patientId"
	URLQueryParamType          = "type"
	URLQueryParamReportType    = "reportType"
	URLQueryParamFormat        = "format"
	URLQueryParamSessionID     = "session_id"
	URLQueryParamCheckoutBill  = "bill_id"
	URLQueryParamDocumentField = "file"
	URLQueryParamCategory      = "category"
	URLQueryParamGender        = "gender"
	URLQueryParamTags          = "tags"
)
