package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
)

// Aliases used by call sites that predate the module-prefixed codes.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Validation Error Codes. A snapshot carrying one of these was built wrong by
// the caller and must be fixed before it is submitted again.
const (
	ErrCodeOutOfRange     ErrorCode = "VAL_001"
	ErrCodeMalformedInput ErrorCode = "VAL_002"
	ErrCodeUnknownEnum    ErrorCode = "VAL_003"
)

// Domain Error Codes. The snapshot is well formed but the requested
// assessment does not apply to it; retrying unchanged yields the same error.
const (
	ErrCodeUnderage              ErrorCode = "DOM_001"
	ErrCodeUnsupportedAssessment ErrorCode = "DOM_002"
)

// Configuration Error Codes
const (
	ErrCodeInvalidThresholdTable ErrorCode = "CFG_001"
	ErrCodeUnknownOverrideKey    ErrorCode = "CFG_002"
	ErrCodeWeightsSum            ErrorCode = "CFG_003"
	ErrCodeOverrideValue         ErrorCode = "CFG_004"
	ErrCodeConfigFile            ErrorCode = "CFG_005"
	ErrCodeConfigInvalid         ErrorCode = "CFG_006"
)

// ErrorCodeHTTPStatus maps ErrorCodes to the HTTP status an API layer should
// answer with when it surfaces the error to its own clients.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeFeatureDisabled:    http.StatusForbidden,

	ErrCodeOutOfRange:     http.StatusBadRequest,
	ErrCodeMalformedInput: http.StatusBadRequest,
	ErrCodeUnknownEnum:    http.StatusBadRequest,

	ErrCodeUnderage:              http.StatusUnprocessableEntity,
	ErrCodeUnsupportedAssessment: http.StatusUnprocessableEntity,

	ErrCodeInvalidThresholdTable: http.StatusInternalServerError,
	ErrCodeUnknownOverrideKey:    http.StatusBadRequest,
	ErrCodeWeightsSum:            http.StatusInternalServerError,
	ErrCodeOverrideValue:         http.StatusBadRequest,
	ErrCodeConfigFile:            http.StatusInternalServerError,
	ErrCodeConfigInvalid:         http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeFeatureDisabled:    "feature disabled",

	ErrCodeOutOfRange:     "value outside physiological bounds",
	ErrCodeMalformedInput: "malformed patient snapshot",
	ErrCodeUnknownEnum:    "unknown enumeration value",

	ErrCodeUnderage:              "assessment requires an adult",
	ErrCodeUnsupportedAssessment: "assessment not supported for this snapshot",

	ErrCodeInvalidThresholdTable: "invalid threshold table",
	ErrCodeUnknownOverrideKey:    "unknown threshold override key",
	ErrCodeWeightsSum:            "stability weights must sum to 100",
	ErrCodeOverrideValue:         "invalid threshold override value",
	ErrCodeConfigFile:            "configuration file unreadable",
	ErrCodeConfigInvalid:         "invalid configuration",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

// ExitCodeForCode returns the process exit status the CLI uses for an error
// carrying code: 2 for validation failures, 3 for domain rule violations and
// 1 for everything else.
func ExitCodeForCode(code ErrorCode) int {
	switch {
	case code == CodeOK:
		return 0
	case code == ErrCodeValidation || ModuleForCode(code) == "VAL":
		return 2
	case ModuleForCode(code) == "DOM":
		return 3
	default:
		return 1
	}
}
