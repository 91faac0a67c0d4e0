package models

import "time"

// Default meter values for a freshly initialized state.
const (
	DefaultLevel  = 1
	DefaultEnergy = 50
)

// UserState holds the engagement meters for one user. Exactly one row per
// user, mutated only inside store transactions by the check-in and tool
// processors. Never deleted.
type UserState struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	Level     int       `gorm:"not null;default:1" json:"level"`
	Energy    int       `gorm:"not null;default:50" json:"energy"`
	Fatigue   int       `gorm:"not null;default:0" json:"fatigue"`
	Loyalty   int       `gorm:"not null;default:0" json:"loyalty"`
	Streak    int       `gorm:"not null;default:0" json:"streak"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserState returns a state row with default meters for the given user.
func NewUserState(userID uint) *UserState {
	return &UserState{
		UserID: userID,
		Level:  DefaultLevel,
		Energy: DefaultEnergy,
	}
}
