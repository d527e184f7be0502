package entity

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Setting stores one named JSON configuration document in app_settings.
type Setting struct {
	bun.BaseModel `bun:"table:app_settings"`

	ID         int64           `bun:",pk,autoincrement"`
	SettingKey string          `bun:"setting_key"`
	Value      json.RawMessage `bun:"value"`
	UpdatedAt  time.Time       `bun:"updated_at,nullzero"`
	UpdatedBy  *string         `bun:"updated_by"`
}
