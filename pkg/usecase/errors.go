package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Input errors
	ErrInvalidInput      = errors.New("invalid input")
	ErrClientUUIDMissing = errors.New("Client UUID is required")

	// Not found errors
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrReportNotFound     = errors.New("report not found")
	ErrResultNotFound     = errors.New("result not found")
	ErrReportIndexMissing = errors.New("QBR config index not found")

	// Conflict errors
	ErrAssessmentExists = errors.New("assessment already exists")
	ErrReportExists     = errors.New("report already exists")

	// Data errors
	ErrTemplateInvalid = errors.New("template does not parse")

	// Vendor errors
	ErrVendorNotConfigured = errors.New("vendor API key not configured")
	ErrRefreshFailed       = errors.New("vendor refresh failed")
	ErrVendorRequest       = errors.New("vendor request failed")
)

// Context keys for error values
const (
	AssessmentIDKey = "assessment_id"
	ReportIDKey     = "report_id"
	ResultIDKey     = "result_id"
	VendorKey       = "vendor"
	ClientUUIDKey   = "client_uuid"
)

// PublicError carries a message meant for API clients. It matches its kind
// sentinel and its cause with errors.Is.
type PublicError struct {
	msg   string
	kind  error
	cause error
}

func newPublicError(kind error, msg string, cause error) *PublicError {
	return &PublicError{msg: msg, kind: kind, cause: cause}
}

func (e *PublicError) Error() string { return e.msg }

func (e *PublicError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// PublicMessage returns the message of the first PublicError in err's
// chain, or "" when there is none
func PublicMessage(err error) string {
	var pe *PublicError
	if errors.As(err, &pe) {
		return pe.msg
	}
	return ""
}
