package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/programeryk/stateful-engagement-backend/models"
)

// MySQL server error numbers we translate into the adapter taxonomy.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// GormStore implements Store on top of GORM/MySQL.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an initialized gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Atomic runs fn inside one transaction at the connection's default
// isolation level.
func (s *GormStore) Atomic(ctx context.Context, fn func(Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{tx: tx})
	})
	return wrapDriverError(err)
}

// Serializable runs fn at serializable isolation so read-then-write checks
// (inventory capacity, affordability) stay consistent against concurrent
// writers.
func (s *GormStore) Serializable(ctx context.Context, fn func(Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{tx: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	return wrapDriverError(err)
}

// Ping probes the underlying connection, for health checks.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// wrapDriverError folds MySQL error codes into the adapter taxonomy.
// Errors that are already classified (or domain errors from fn) pass through.
func wrapDriverError(err error) error {
	if err == nil {
		return nil
	}
	var uv *UniqueViolationError
	var se *SerializationError
	if errors.As(err, &uv) || errors.As(err, &se) {
		return err
	}
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrDuplicateEntry:
			return &UniqueViolationError{Constraint: duplicateKeyName(myErr.Message)}
		case mysqlErrDeadlock, mysqlErrLockWaitTimeout:
			return &SerializationError{Cause: err}
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &UniqueViolationError{Constraint: "unknown"}
	}
	return err
}

// duplicateKeyName extracts the index name from a MySQL 1062 message:
// "Duplicate entry 'x' for key 'daily_check_ins.uniq_user_day'".
func duplicateKeyName(msg string) string {
	const marker = "for key '"
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return "unknown"
	}
	rest := msg[i+len(marker):]
	if j := strings.Index(rest, "'"); j >= 0 {
		rest = rest[:j]
	}
	if j := strings.LastIndex(rest, "."); j >= 0 {
		rest = rest[j+1:]
	}
	return rest
}

type gormTx struct {
	tx *gorm.DB
}

func (t *gormTx) UserState(userID uint) (*models.UserState, error) {
	var s models.UserState
	if err := t.tx.First(&s, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapDriverError(err)
	}
	return &s, nil
}

func (t *gormTx) EnsureUserState(userID uint) (*models.UserState, error) {
	s, err := t.UserState(userID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	fresh := models.NewUserState(userID)
	if err := t.tx.Create(fresh).Error; err != nil {
		return nil, wrapDriverError(err)
	}
	return fresh, nil
}

func (t *gormTx) SaveUserState(s *models.UserState) error {
	return wrapDriverError(t.tx.Save(s).Error)
}

func (t *gormTx) HasCheckIn(userID uint, day time.Time) (bool, error) {
	var count int64
	err := t.tx.Model(&models.DailyCheckIn{}).
		Where("user_id = ? AND day = ?", userID, day).
		Count(&count).Error
	if err != nil {
		return false, wrapDriverError(err)
	}
	return count > 0, nil
}

func (t *gormTx) CreateCheckIn(c *models.DailyCheckIn) error {
	return wrapDriverError(t.tx.Create(c).Error)
}

func (t *gormTx) Rewards() ([]models.Reward, error) {
	var rewards []models.Reward
	if err := t.tx.Order("threshold ASC").Find(&rewards).Error; err != nil {
		return nil, wrapDriverError(err)
	}
	return rewards, nil
}

func (t *gormTx) AppliedRewardIDs(userID uint) (map[string]bool, error) {
	var ids []string
	err := t.tx.Model(&models.AppliedReward{}).
		Where("user_id = ?", userID).
		Pluck("reward_id", &ids).Error
	if err != nil {
		return nil, wrapDriverError(err)
	}
	applied := make(map[string]bool, len(ids))
	for _, id := range ids {
		applied[id] = true
	}
	return applied, nil
}

func (t *gormTx) ApplyRewardOnce(userID uint, rewardID string) (bool, error) {
	res := t.tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.AppliedReward{UserID: userID, RewardID: rewardID})
	if res.Error != nil {
		return false, wrapDriverError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (t *gormTx) Tool(id string) (*models.ToolDefinition, error) {
	var tool models.ToolDefinition
	if err := t.tx.First(&tool, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapDriverError(err)
	}
	return &tool, nil
}

func (t *gormTx) Tools() ([]models.ToolDefinition, error) {
	var tools []models.ToolDefinition
	if err := t.tx.Order("price ASC").Find(&tools).Error; err != nil {
		return nil, wrapDriverError(err)
	}
	return tools, nil
}

func (t *gormTx) UserTool(userID uint, toolID string) (*models.UserTool, error) {
	var ut models.UserTool
	err := t.tx.First(&ut, "user_id = ? AND tool_id = ?", userID, toolID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapDriverError(err)
	}
	return &ut, nil
}

func (t *gormTx) UserTools(userID uint) ([]models.UserTool, error) {
	var uts []models.UserTool
	err := t.tx.Where("user_id = ? AND quantity > 0", userID).
		Order("tool_id ASC").Find(&uts).Error
	if err != nil {
		return nil, wrapDriverError(err)
	}
	return uts, nil
}

func (t *gormTx) CountHeldTools(userID uint) (int, error) {
	var count int64
	err := t.tx.Model(&models.UserTool{}).
		Where("user_id = ? AND quantity > 0", userID).
		Count(&count).Error
	if err != nil {
		return 0, wrapDriverError(err)
	}
	return int(count), nil
}

func (t *gormTx) SaveUserTool(ut *models.UserTool) error {
	return wrapDriverError(t.tx.Save(ut).Error)
}

func (t *gormTx) DeleteUserTool(userID uint, toolID string) error {
	return wrapDriverError(t.tx.
		Where("user_id = ? AND tool_id = ?", userID, toolID).
		Delete(&models.UserTool{}).Error)
}
