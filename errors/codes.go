package errors

// ErrorCode identifies an application error independently of its HTTP status
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 200

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1003
	ErrorCode_RATE_LIMITED     ErrorCode = 1004
	ErrorCode_CONFLICT         ErrorCode = 1005

	// Authentication
	ErrorCode_AUTH_MISSING_SECRET ErrorCode = 2000
	ErrorCode_AUTH_INVALID_SECRET ErrorCode = 2001
	ErrorCode_AUTH_INVALID_TOKEN  ErrorCode = 2002
	ErrorCode_AUTH_MISSING_TENANT ErrorCode = 2003

	// Tenancy
	ErrorCode_TENANT_NOT_FOUND ErrorCode = 3000

	// Meetings / one-on-ones
	ErrorCode_MEETING_ID_REQUIRED    ErrorCode = 4000
	ErrorCode_ONE_ON_ONE_NOT_FOUND   ErrorCode = 4001
	ErrorCode_TRANSCRIPT_NOT_FOUND   ErrorCode = 4002
	ErrorCode_EXTRACTION_FAILED      ErrorCode = 4003
	ErrorCode_EXTRACTION_IN_PROGRESS ErrorCode = 4004

	// Integrations
	ErrorCode_DB_QUERY_FAILED       ErrorCode = 5000
	ErrorCode_CONFIGURATION_INVALID ErrorCode = 5001
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                "HTTP_OK",
	ErrorCode_INTERNAL:               "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:       "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:              "NOT_FOUND",
	ErrorCode_INVALID_PAYLOAD:        "INVALID_PAYLOAD",
	ErrorCode_RATE_LIMITED:           "RATE_LIMITED",
	ErrorCode_CONFLICT:               "CONFLICT",
	ErrorCode_AUTH_MISSING_SECRET:    "AUTH_MISSING_SECRET",
	ErrorCode_AUTH_INVALID_SECRET:    "AUTH_INVALID_SECRET",
	ErrorCode_AUTH_INVALID_TOKEN:     "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_MISSING_TENANT:    "AUTH_MISSING_TENANT",
	ErrorCode_TENANT_NOT_FOUND:       "TENANT_NOT_FOUND",
	ErrorCode_MEETING_ID_REQUIRED:    "MEETING_ID_REQUIRED",
	ErrorCode_ONE_ON_ONE_NOT_FOUND:   "ONE_ON_ONE_NOT_FOUND",
	ErrorCode_TRANSCRIPT_NOT_FOUND:   "TRANSCRIPT_NOT_FOUND",
	ErrorCode_EXTRACTION_FAILED:      "EXTRACTION_FAILED",
	ErrorCode_EXTRACTION_IN_PROGRESS: "EXTRACTION_IN_PROGRESS",
	ErrorCode_DB_QUERY_FAILED:        "DB_QUERY_FAILED",
	ErrorCode_CONFIGURATION_INVALID:  "CONFIGURATION_INVALID",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText renders the code by name in JSON bodies
func (c ErrorCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
