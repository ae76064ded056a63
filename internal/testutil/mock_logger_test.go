package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/SubstanceWatch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SubstanceWatch/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)
	assert.Equal(t, "value", messages[0].Field("key"))
	assert.Nil(t, messages[0].Field("missing"))

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_WithAndNamedShareStore(t *testing.T) {
	logger := testutil.NewMockLogger()
	child := logger.Named("clean").With(logging.String("source", "clp"))

	child.Warn("malformed CAS number", logging.Int("row", 3))
	child.Warn("malformed CAS number", logging.Int("row", 9))

	assert.Equal(t, 2, logger.Count("warn", "malformed CAS number"))
	assert.Equal(t, 2, logger.Count("warn", ""))
	msgs := logger.GetMessages()
	assert.Equal(t, "clean", msgs[0].Logger)
	assert.Equal(t, "clp", msgs[0].Field("source"))
	assert.Equal(t, 9, msgs[1].Field("row"))
}

//Personal.AI order the ending
