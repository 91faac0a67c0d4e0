// Package store is the persistence adapter for the engagement engine. It
// exposes atomic transaction execution over a typed Tx, and classifies
// driver failures into a small tagged taxonomy so the processors can map
// them to domain conflicts without knowing which driver is underneath.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/programeryk/stateful-engagement-backend/models"
)

// ErrNotFound is returned by keyed reads when no row exists.
var ErrNotFound = errors.New("store: record not found")

// UniqueViolationError marks an insert that lost against a uniqueness
// constraint (duplicate check-in day, duplicate applied reward, ...).
type UniqueViolationError struct {
	Constraint string
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("store: unique violation on %s", e.Constraint)
}

// SerializationError marks a transaction the store aborted to preserve
// isolation (deadlock victim, serialization failure). The losing caller may
// retry; the engine itself never does.
type SerializationError struct {
	Cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("store: serialization failure: %v", e.Cause)
}

func (e *SerializationError) Unwrap() error { return e.Cause }

// FailureKind tags the outcome of a failed transaction.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureUnique
	FailureSerialization
	FailureOther
)

// Failure is the classified result of a transaction error.
type Failure struct {
	Kind       FailureKind
	Constraint string
	Err        error
}

// Classify maps a transaction error onto the driver-agnostic taxonomy.
func Classify(err error) Failure {
	if err == nil {
		return Failure{Kind: FailureNone}
	}
	var uv *UniqueViolationError
	if errors.As(err, &uv) {
		return Failure{Kind: FailureUnique, Constraint: uv.Constraint, Err: err}
	}
	var se *SerializationError
	if errors.As(err, &se) {
		return Failure{Kind: FailureSerialization, Err: err}
	}
	return Failure{Kind: FailureOther, Err: err}
}

// Store runs blocks of reads and writes with all-or-nothing commit.
// Serializable is for the read-then-write races in tool buy/use; Atomic
// suffices for check-in, whose correctness rests on uniqueness constraints.
type Store interface {
	Atomic(ctx context.Context, fn func(Tx) error) error
	Serializable(ctx context.Context, fn func(Tx) error) error
	Ping(ctx context.Context) error
}

// Tx is the typed operation set available inside a transaction.
type Tx interface {
	// UserState returns ErrNotFound when the row is absent.
	UserState(userID uint) (*models.UserState, error)
	// EnsureUserState creates the row with defaults when absent.
	EnsureUserState(userID uint) (*models.UserState, error)
	SaveUserState(s *models.UserState) error

	HasCheckIn(userID uint, day time.Time) (bool, error)
	// CreateCheckIn returns a UniqueViolationError when the (user, day)
	// pair already exists.
	CreateCheckIn(c *models.DailyCheckIn) error

	Rewards() ([]models.Reward, error)
	AppliedRewardIDs(userID uint) (map[string]bool, error)
	// ApplyRewardOnce inserts the grant row if it does not exist yet and
	// reports whether this call inserted it. A concurrent duplicate is not
	// an error here; that is the idempotence the auto-grant loop relies on.
	ApplyRewardOnce(userID uint, rewardID string) (bool, error)

	Tool(id string) (*models.ToolDefinition, error)
	Tools() ([]models.ToolDefinition, error)
	UserTool(userID uint, toolID string) (*models.UserTool, error)
	UserTools(userID uint) ([]models.UserTool, error)
	// CountHeldTools counts distinct tool types with quantity > 0.
	CountHeldTools(userID uint) (int, error)
	SaveUserTool(t *models.UserTool) error
	DeleteUserTool(userID uint, toolID string) error
}
