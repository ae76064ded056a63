package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal ErrorCode = "COMMON_001"
)

// Aliases used across the code base.
const (
	CodeInternal = ErrCodeInternal
	CodeOK       = ErrorCode("OK")
	CodeUnknown  = ErrorCode("UNKNOWN")
)

// Substance Module Error Codes
const (
	ErrCodeMalformedIdentifier   ErrorCode = "SUB_001"
	ErrCodeInvalidChecksum       ErrorCode = "SUB_002"
	ErrCodeConflictingMerge      ErrorCode = "SUB_003"
	ErrCodeUnidentifiedSubstance ErrorCode = "SUB_004"
	ErrCodeDuplicateSubstance    ErrorCode = "SUB_005"
	ErrCodeUnknownAttribute      ErrorCode = "SUB_006"
)

// Source Error Codes
const (
	ErrCodeSourceReadFailure   ErrorCode = "SRC_001"
	ErrCodeSourceColumnMissing ErrorCode = "SRC_002"
)

// Configuration and Output Error Codes
const (
	ErrCodeInvalidConfig      ErrorCode = "CFG_001"
	ErrCodeOutputWriteFailure ErrorCode = "OUT_001"
)

// Severity describes how far a failure propagates.
type Severity int

const (
	// SeverityRow failures are logged and counted; processing continues with
	// the next row.
	SeverityRow Severity = iota
	// SeverityRun failures abort the whole run.
	SeverityRun
)

func (s Severity) String() string {
	if s == SeverityRow {
		return "row"
	}
	return "run"
}

// ErrorCodeSeverity maps ErrorCodes to their propagation scope.
var ErrorCodeSeverity = map[ErrorCode]Severity{
	ErrCodeMalformedIdentifier:   SeverityRow,
	ErrCodeInvalidChecksum:       SeverityRow,
	ErrCodeConflictingMerge:      SeverityRow,
	ErrCodeUnidentifiedSubstance: SeverityRow,
	ErrCodeDuplicateSubstance:    SeverityRow,
	ErrCodeSourceColumnMissing:   SeverityRow,

	ErrCodeSourceReadFailure:  SeverityRun,
	ErrCodeInvalidConfig:      SeverityRun,
	ErrCodeOutputWriteFailure: SeverityRun,
	ErrCodeUnknownAttribute:   SeverityRun,
	ErrCodeInternal:           SeverityRun,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal: "internal error",

	ErrCodeMalformedIdentifier:   "malformed identifier",
	ErrCodeInvalidChecksum:       "identifier check digit mismatch",
	ErrCodeConflictingMerge:      "conflicting identifiers in merge",
	ErrCodeUnidentifiedSubstance: "substance has no identifier",
	ErrCodeDuplicateSubstance:    "substance already registered",
	ErrCodeUnknownAttribute:      "unknown regulatory attribute",

	ErrCodeSourceReadFailure:   "failed to read source table",
	ErrCodeSourceColumnMissing: "source row is missing a configured column",

	ErrCodeInvalidConfig:      "invalid configuration",
	ErrCodeOutputWriteFailure: "failed to write output table",
}

// SeverityForCode returns the propagation scope for an ErrorCode.  Unknown
// codes are treated as run-level.
func SeverityForCode(code ErrorCode) Severity {
	if s, ok := ErrorCodeSeverity[code]; ok {
		return s
	}
	return SeverityRun
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsFatal reports whether err carries a run-level code.  A nil error is not
// fatal; a plain error without a code is.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return SeverityForCode(GetCode(err)) == SeverityRun
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
