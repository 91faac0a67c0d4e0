package models

import "time"

// MaxToolTypes is the inventory capacity: the most distinct tool types a
// user may hold with positive quantity at the same time.
const MaxToolTypes = 5

// ToolDefinition is a read-only catalog entry, seeded at startup.
type ToolDefinition struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Price     int       `gorm:"not null" json:"price"`
	Effects   Effects   `gorm:"type:json" json:"effects"`
	CreatedAt time.Time `json:"-"`
}

// UserTool is one inventory holding. Quantity is always >= 1; a use that
// drains the last unit deletes the row instead of keeping it at zero.
type UserTool struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uniq_user_tool" json:"user_id"`
	ToolID    string    `gorm:"size:64;not null;uniqueIndex:uniq_user_tool" json:"tool_id"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
