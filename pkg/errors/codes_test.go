package errors

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "COMMON_001", ErrCodeInternal.String())
	assert.Equal(t, "SUB_003", ErrCodeConflictingMerge.String())
}

func TestSeverityForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected Severity
	}{
		{ErrCodeMalformedIdentifier, SeverityRow},
		{ErrCodeInvalidChecksum, SeverityRow},
		{ErrCodeConflictingMerge, SeverityRow},
		{ErrCodeUnidentifiedSubstance, SeverityRow},
		{ErrCodeSourceReadFailure, SeverityRun},
		{ErrCodeInvalidConfig, SeverityRun},
		{ErrorCode("UNKNOWN"), SeverityRun},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, SeverityForCode(tt.code), tt.code.String())
	}
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(New(ErrCodeInvalidChecksum, "bad check digit")))
	assert.True(t, IsFatal(New(ErrCodeSourceReadFailure, "missing file")))
	assert.True(t, IsFatal(fmt.Errorf("plain")))
	assert.True(t, IsFatal(fmt.Errorf("wrapped: %w", New(ErrCodeOutputWriteFailure, "disk full"))))
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "conflicting identifiers in merge", DefaultMessageForCode(ErrCodeConflictingMerge))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("NOPE_999")))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "SUB", ModuleForCode(ErrCodeMalformedIdentifier))
	assert.Equal(t, "SRC", ModuleForCode(ErrCodeSourceReadFailure))
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
	assert.Equal(t, "UNKNOWN", ModuleForCode(ErrorCode("")))
}

func TestErrorCodeFormat_Convention(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	for code := range ErrorCodeMessage {
		assert.Regexp(t, re, string(code))
	}
}

func TestErrorCodeMappings_Completeness(t *testing.T) {
	for code := range ErrorCodeSeverity {
		_, ok := ErrorCodeMessage[code]
		assert.True(t, ok, "missing default message for %s", code)
	}
}

//Personal.AI order the ending
