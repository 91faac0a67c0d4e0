package models

import "time"

// DailyCheckIn marks one successful check-in for a user on one UTC calendar
// day. The unique index on (user_id, day) is the concurrency guard against
// double check-ins: the second inserter loses at commit time. Rows are
// immutable once created.
type DailyCheckIn struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uniq_user_day" json:"user_id"`
	Day       time.Time `gorm:"type:date;not null;uniqueIndex:uniq_user_day" json:"day"`
	CreatedAt time.Time `json:"created_at"`
}

// UTCDay truncates t to its UTC calendar-day boundary. Streak and
// double-check-in semantics are defined over these boundaries.
func UTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
