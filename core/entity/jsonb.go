package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONB maps a jsonb column onto a generic payload.
type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal(JSONB{})
	}
	return json.Marshal(a)
}

func (a *JSONB) Scan(value any) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &a)
}
