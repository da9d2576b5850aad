package pgerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	exclusion := fmt.Errorf("insert: %w", &pq.Error{Code: CodeExclusionViolation})
	serialization := &pq.Error{Code: CodeSerializationFailure}
	deadlock := &pq.Error{Code: CodeDeadlockDetected}

	assert.True(t, IsExclusionViolation(exclusion))
	assert.False(t, IsSerializationFailure(exclusion))
	assert.True(t, IsSerializationFailure(serialization))
	assert.True(t, IsSerializationFailure(deadlock))
	assert.True(t, IsUniqueViolation(&pq.Error{Code: CodeUniqueViolation}))
	assert.Equal(t, "", Code(errors.New("plain")))
}
