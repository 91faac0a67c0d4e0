package models

import "time"

// RewardTypeStreak is the only reward type currently defined. Rewards of
// other types never unlock.
const RewardTypeStreak = "streak"

// Reward is a read-only catalog entry, seeded at startup.
type Reward struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Title       string    `gorm:"size:128;not null" json:"title"`
	Description string    `gorm:"size:255" json:"description"`
	Type        string    `gorm:"size:32;not null" json:"type"`
	Threshold   int       `gorm:"not null" json:"threshold"`
	Effects     Effects   `gorm:"type:json" json:"effects"`
	CreatedAt   time.Time `json:"-"`
}

// AppliedReward records that a reward was granted to a user. The unique
// index on (user_id, reward_id) enforces "granted at most once ever": a
// concurrent duplicate insert loses on the constraint and is skipped.
type AppliedReward struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uniq_user_reward" json:"user_id"`
	RewardID  string    `gorm:"size:64;not null;uniqueIndex:uniq_user_reward" json:"reward_id"`
	CreatedAt time.Time `json:"created_at"`
}
