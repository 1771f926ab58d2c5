package responses

// ReportExport is a rendered report body written outside the JSON envelope.
type ReportExport struct {
	Filename    string
	ContentType string
	Body        []byte
}
