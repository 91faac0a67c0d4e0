package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Effects is the typed delta payload attached to a reward or a tool. Each
// field is an optional meter delta; zero means "no change". Stored as a JSON
// column and validated when the catalog is loaded, not at use time.
type Effects struct {
	Energy  int `json:"energy,omitempty"`
	Fatigue int `json:"fatigue,omitempty"`
	Loyalty int `json:"loyalty,omitempty"`
}

// effectRange bounds a single delta; meters themselves live in [0,100] so
// anything larger is a seeding mistake, not a real effect.
const effectRange = 1000

// Validate rejects out-of-range deltas. Called once at catalog load.
func (e Effects) Validate() error {
	for name, v := range map[string]int{"energy": e.Energy, "fatigue": e.Fatigue, "loyalty": e.Loyalty} {
		if v < -effectRange || v > effectRange {
			return fmt.Errorf("effects: %s delta %d out of range", name, v)
		}
	}
	return nil
}

// IsZero reports whether the payload carries no deltas at all.
func (e Effects) IsZero() bool {
	return e.Energy == 0 && e.Fatigue == 0 && e.Loyalty == 0
}

// Value implements driver.Valuer so Effects maps onto a JSON column.
func (e Effects) Value() (driver.Value, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. Unknown keys are rejected so a catalog row
// seeded with a misspelled meter name fails loudly at load time.
func (e *Effects) Scan(value interface{}) error {
	if value == nil {
		*e = Effects{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("effects: unsupported column type %T", value)
	}
	if len(raw) == 0 {
		*e = Effects{}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var parsed Effects
	if err := dec.Decode(&parsed); err != nil {
		return fmt.Errorf("effects: invalid payload: %w", err)
	}
	if err := parsed.Validate(); err != nil {
		return err
	}
	*e = parsed
	return nil
}
