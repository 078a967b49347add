package models

import (
	"encoding/json"
	"time"
)

// Product mirrors a Stripe product. Rows are created and updated exclusively
// by webhook reconciliation; the application never creates products locally.
type Product struct {
	ID          string          `gorm:"column:id;primaryKey"`
	Active      bool            `gorm:"column:active;not null;default:false"`
	Name        string          `gorm:"column:name;not null"`
	Description *string         `gorm:"column:description"`
	Image       *string         `gorm:"column:image"`
	Metadata    json.RawMessage `gorm:"column:metadata;type:jsonb"`
	Prices      []Price         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
