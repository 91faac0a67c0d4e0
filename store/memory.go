package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/programeryk/stateful-engagement-backend/models"
)

// MemoryStore is an in-process Store used by tests and local development.
// A single mutex is held for the whole transaction, which makes every
// transaction trivially serializable; writes go to a staged copy that only
// replaces the live data on commit, so a failed fn leaves nothing behind.
// The same pattern as the redis-less fallbacks elsewhere in this codebase.
type MemoryStore struct {
	mu   sync.Mutex
	data memData
}

type memData struct {
	states    map[uint]models.UserState
	checkIns  map[uint]map[string]bool
	applied   map[uint]map[string]bool
	userTools map[uint]map[string]models.UserTool
	rewards   []models.Reward
	tools     []models.ToolDefinition
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemData()}
}

func newMemData() memData {
	return memData{
		states:    map[uint]models.UserState{},
		checkIns:  map[uint]map[string]bool{},
		applied:   map[uint]map[string]bool{},
		userTools: map[uint]map[string]models.UserTool{},
	}
}

// SeedCatalog installs the read-only reward and tool catalogs, validating
// effect payloads the same way the MySQL path does at load time.
func (m *MemoryStore) SeedCatalog(rewards []models.Reward, tools []models.ToolDefinition) error {
	for _, r := range rewards {
		if err := r.Effects.Validate(); err != nil {
			return err
		}
	}
	for _, t := range tools {
		if err := t.Effects.Validate(); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.rewards = append([]models.Reward(nil), rewards...)
	m.data.tools = append([]models.ToolDefinition(nil), tools...)
	return nil
}

// Atomic runs fn while holding the store lock and commits the staged copy
// only when fn succeeds.
func (m *MemoryStore) Atomic(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := m.data.clone()
	if err := fn(&memTx{data: &staged}); err != nil {
		return err
	}
	m.data = staged
	return nil
}

// Serializable is identical to Atomic: the global lock already gives full
// serial execution.
func (m *MemoryStore) Serializable(ctx context.Context, fn func(Tx) error) error {
	return m.Atomic(ctx, fn)
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (d memData) clone() memData {
	c := memData{
		states:    make(map[uint]models.UserState, len(d.states)),
		checkIns:  make(map[uint]map[string]bool, len(d.checkIns)),
		applied:   make(map[uint]map[string]bool, len(d.applied)),
		userTools: make(map[uint]map[string]models.UserTool, len(d.userTools)),
		rewards:   d.rewards,
		tools:     d.tools,
	}
	for k, v := range d.states {
		c.states[k] = v
	}
	for k, v := range d.checkIns {
		c.checkIns[k] = cloneSet(v)
	}
	for k, v := range d.applied {
		c.applied[k] = cloneSet(v)
	}
	for k, v := range d.userTools {
		inner := make(map[string]models.UserTool, len(v))
		for tk, tv := range v {
			inner[tk] = tv
		}
		c.userTools[k] = inner
	}
	return c
}

func cloneSet(s map[string]bool) map[string]bool {
	c := make(map[string]bool, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

type memTx struct {
	data *memData
}

func dayKey(day time.Time) string {
	return day.UTC().Format("2006-01-02")
}

func (t *memTx) UserState(userID uint) (*models.UserState, error) {
	s, ok := t.data.states[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := s
	return &cp, nil
}

func (t *memTx) EnsureUserState(userID uint) (*models.UserState, error) {
	if s, ok := t.data.states[userID]; ok {
		cp := s
		return &cp, nil
	}
	fresh := models.NewUserState(userID)
	fresh.CreatedAt = time.Now()
	t.data.states[userID] = *fresh
	cp := *fresh
	return &cp, nil
}

func (t *memTx) SaveUserState(s *models.UserState) error {
	s.UpdatedAt = time.Now()
	t.data.states[s.UserID] = *s
	return nil
}

func (t *memTx) HasCheckIn(userID uint, day time.Time) (bool, error) {
	return t.data.checkIns[userID][dayKey(day)], nil
}

func (t *memTx) CreateCheckIn(c *models.DailyCheckIn) error {
	key := dayKey(c.Day)
	if t.data.checkIns[c.UserID][key] {
		return &UniqueViolationError{Constraint: "uniq_user_day"}
	}
	if t.data.checkIns[c.UserID] == nil {
		t.data.checkIns[c.UserID] = map[string]bool{}
	}
	t.data.checkIns[c.UserID][key] = true
	c.CreatedAt = time.Now()
	return nil
}

func (t *memTx) Rewards() ([]models.Reward, error) {
	return append([]models.Reward(nil), t.data.rewards...), nil
}

func (t *memTx) AppliedRewardIDs(userID uint) (map[string]bool, error) {
	return cloneSet(t.data.applied[userID]), nil
}

func (t *memTx) ApplyRewardOnce(userID uint, rewardID string) (bool, error) {
	if t.data.applied[userID][rewardID] {
		return false, nil
	}
	if t.data.applied[userID] == nil {
		t.data.applied[userID] = map[string]bool{}
	}
	t.data.applied[userID][rewardID] = true
	return true, nil
}

func (t *memTx) Tool(id string) (*models.ToolDefinition, error) {
	for _, tool := range t.data.tools {
		if tool.ID == id {
			cp := tool
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) Tools() ([]models.ToolDefinition, error) {
	tools := append([]models.ToolDefinition(nil), t.data.tools...)
	sort.Slice(tools, func(i, j int) bool { return tools[i].Price < tools[j].Price })
	return tools, nil
}

func (t *memTx) UserTool(userID uint, toolID string) (*models.UserTool, error) {
	ut, ok := t.data.userTools[userID][toolID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := ut
	return &cp, nil
}

func (t *memTx) UserTools(userID uint) ([]models.UserTool, error) {
	var uts []models.UserTool
	for _, ut := range t.data.userTools[userID] {
		if ut.Quantity > 0 {
			uts = append(uts, ut)
		}
	}
	sort.Slice(uts, func(i, j int) bool { return uts[i].ToolID < uts[j].ToolID })
	return uts, nil
}

func (t *memTx) CountHeldTools(userID uint) (int, error) {
	count := 0
	for _, ut := range t.data.userTools[userID] {
		if ut.Quantity > 0 {
			count++
		}
	}
	return count, nil
}

func (t *memTx) SaveUserTool(ut *models.UserTool) error {
	if t.data.userTools[ut.UserID] == nil {
		t.data.userTools[ut.UserID] = map[string]models.UserTool{}
	}
	ut.UpdatedAt = time.Now()
	t.data.userTools[ut.UserID][ut.ToolID] = *ut
	return nil
}

func (t *memTx) DeleteUserTool(userID uint, toolID string) error {
	delete(t.data.userTools[userID], toolID)
	return nil
}
