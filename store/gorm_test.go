package store

import (
	"errors"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapDriverError_DuplicateEntry(t *testing.T) {
	err := wrapDriverError(&gomysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry '7-2024-05-01' for key 'daily_check_ins.uniq_user_day'",
	})

	var uv *UniqueViolationError
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, "uniq_user_day", uv.Constraint)
}

func TestWrapDriverError_Serialization(t *testing.T) {
	for _, number := range []uint16{1213, 1205} {
		err := wrapDriverError(&gomysql.MySQLError{Number: number, Message: "aborted"})
		var se *SerializationError
		assert.ErrorAs(t, err, &se, "error number %d", number)
	}
}

func TestWrapDriverError_Passthrough(t *testing.T) {
	assert.NoError(t, wrapDriverError(nil))

	plain := errors.New("connection refused")
	assert.Equal(t, plain, wrapDriverError(plain))

	// Already-classified errors are not re-wrapped.
	uv := &UniqueViolationError{Constraint: "uniq_user_reward"}
	assert.Equal(t, error(uv), wrapDriverError(uv))
}

func TestDuplicateKeyName(t *testing.T) {
	assert.Equal(t, "uniq_user_day",
		duplicateKeyName("Duplicate entry '1-2024-05-01' for key 'daily_check_ins.uniq_user_day'"))
	assert.Equal(t, "uniq_user_reward",
		duplicateKeyName("Duplicate entry '1-streak_3' for key 'uniq_user_reward'"))
	assert.Equal(t, "unknown", duplicateKeyName("no key here"))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, FailureNone, Classify(nil).Kind)

	f := Classify(&UniqueViolationError{Constraint: "uniq_user_day"})
	assert.Equal(t, FailureUnique, f.Kind)
	assert.Equal(t, "uniq_user_day", f.Constraint)

	assert.Equal(t, FailureSerialization, Classify(&SerializationError{Cause: errors.New("deadlock")}).Kind)
	assert.Equal(t, FailureOther, Classify(errors.New("boom")).Kind)
}
