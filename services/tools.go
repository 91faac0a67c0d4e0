package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/programeryk/stateful-engagement-backend/models"
	"github.com/programeryk/stateful-engagement-backend/state"
	"github.com/programeryk/stateful-engagement-backend/store"
)

// ToolService processes tool purchases and uses. Both run in serializable
// transactions: the capacity count and the affordability/quantity checks
// are read-then-write and must not race with concurrent callers.
type ToolService struct {
	store store.Store
	log   *zap.SugaredLogger
}

// NewToolService creates the processor.
func NewToolService(st store.Store, logger *zap.Logger) *ToolService {
	return &ToolService{store: st, log: logger.Sugar()}
}

// BuyResult is the committed outcome of one purchase.
type BuyResult struct {
	OK        bool                   `json:"ok"`
	Tool      *models.ToolDefinition `json:"tool"`
	Inventory *models.UserTool       `json:"inventory"`
	State     *models.UserState      `json:"state"`
}

// UseResult is the committed outcome of one consumption.
type UseResult struct {
	OK           bool                   `json:"ok"`
	Used         *models.ToolDefinition `json:"used"`
	RemainingQty int                    `json:"remaining_qty"`
	State        *models.UserState      `json:"state"`
	Meta         state.Meta             `json:"meta"`
}

// InventoryItem pairs one holding with its catalog definition.
type InventoryItem struct {
	Tool     models.ToolDefinition `json:"tool"`
	Quantity int                   `json:"quantity"`
}

// Capacity reports inventory usage against the distinct-type limit.
type Capacity struct {
	Max  int `json:"max"`
	Used int `json:"used"`
}

// InventoryResult lists a user's current holdings.
type InventoryResult struct {
	UserID    uint            `json:"user_id"`
	Capacity  Capacity        `json:"capacity"`
	Inventory []InventoryItem `json:"inventory"`
}

// Buy purchases one unit of a tool. The capacity limit only applies when
// the user is acquiring a tool type they do not already hold; affordability
// requires loyalty >= price before the debit. A transaction the store
// aborts for isolation surfaces as a retryable Conflict; the engine never
// retries on the caller's behalf.
func (s *ToolService) Buy(ctx context.Context, userID uint, toolID string) (*BuyResult, error) {
	var result *BuyResult
	err := s.store.Serializable(ctx, func(tx store.Tx) error {
		tool, err := tx.Tool(toolID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFound("tool %q not found", toolID)
			}
			return err
		}

		st, err := tx.EnsureUserState(userID)
		if err != nil {
			return err
		}

		holding, err := tx.UserTool(userID, toolID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if holding == nil || holding.Quantity <= 0 {
			held, err := tx.CountHeldTools(userID)
			if err != nil {
				return err
			}
			if held >= models.MaxToolTypes {
				return conflict("inventory capacity %d reached", models.MaxToolTypes)
			}
		}

		if st.Loyalty < tool.Price {
			return conflict("not enough loyalty")
		}

		if holding == nil {
			holding = &models.UserTool{UserID: userID, ToolID: toolID}
		}
		holding.Quantity++
		if err := tx.SaveUserTool(holding); err != nil {
			return err
		}

		st.Loyalty -= tool.Price
		if err := tx.SaveUserState(st); err != nil {
			return err
		}

		result = &BuyResult{OK: true, Tool: tool, Inventory: holding, State: st}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err)
	}

	s.log.Infow("tool purchased", "user_id", userID, "tool_id", toolID, "loyalty_left", result.State.Loyalty)
	return result, nil
}

// Use consumes one unit of a held tool and applies its effects through the
// meter engine. No base gains are involved; draining the last unit deletes
// the inventory row so quantity never rests at zero.
func (s *ToolService) Use(ctx context.Context, userID uint, toolID string) (*UseResult, error) {
	var result *UseResult
	err := s.store.Serializable(ctx, func(tx store.Tx) error {
		tool, err := tx.Tool(toolID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFound("tool %q not found", toolID)
			}
			return err
		}

		st, err := tx.UserState(userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFound("engagement state not initialized; call /me/state first")
			}
			return err
		}

		holding, err := tx.UserTool(userID, toolID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return conflict("tool not in inventory")
			}
			return err
		}
		if holding.Quantity <= 0 {
			return conflict("tool not in inventory")
		}

		holding.Quantity--
		if holding.Quantity == 0 {
			if err := tx.DeleteUserTool(userID, toolID); err != nil {
				return err
			}
		} else if err := tx.SaveUserTool(holding); err != nil {
			return err
		}

		next, meta := state.Apply(*st, state.Deltas{}.Add(tool.Effects))
		if err := tx.SaveUserState(&next); err != nil {
			return err
		}

		result = &UseResult{OK: true, Used: tool, RemainingQty: holding.Quantity, State: &next, Meta: meta}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	return result, nil
}

// Catalog lists tool definitions sorted by price.
func (s *ToolService) Catalog(ctx context.Context) ([]models.ToolDefinition, error) {
	var tools []models.ToolDefinition
	err := s.store.Atomic(ctx, func(tx store.Tx) error {
		var err error
		tools, err = tx.Tools()
		return err
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	return tools, nil
}

// Inventory lists the user's holdings with catalog details attached.
func (s *ToolService) Inventory(ctx context.Context, userID uint) (*InventoryResult, error) {
	var result *InventoryResult
	err := s.store.Atomic(ctx, func(tx store.Tx) error {
		holdings, err := tx.UserTools(userID)
		if err != nil {
			return err
		}
		catalog, err := tx.Tools()
		if err != nil {
			return err
		}
		byID := make(map[string]models.ToolDefinition, len(catalog))
		for _, tool := range catalog {
			byID[tool.ID] = tool
		}

		items := make([]InventoryItem, 0, len(holdings))
		for _, h := range holdings {
			items = append(items, InventoryItem{Tool: byID[h.ToolID], Quantity: h.Quantity})
		}
		result = &InventoryResult{
			UserID:    userID,
			Capacity:  Capacity{Max: models.MaxToolTypes, Used: len(items)},
			Inventory: items,
		}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	return result, nil
}
