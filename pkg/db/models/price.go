package models

import (
	"encoding/json"
	"time"

	"github.com/calebmoran/tunewave-backend/pkg/enums"
)

// Price mirrors a Stripe price. UnitAmount is in minor currency units.
type Price struct {
	ID              string                 `gorm:"column:id;primaryKey"`
	ProductID       string                 `gorm:"column:product_id;not null;index"`
	Active          bool                   `gorm:"column:active;not null;default:false"`
	Currency        string                 `gorm:"column:currency;not null"`
	Description     *string                `gorm:"column:description"`
	UnitAmount      int64                  `gorm:"column:unit_amount;not null;default:0"`
	Type            enums.PricingType      `gorm:"column:type;type:pricing_type;not null"`
	Interval        *enums.PricingInterval `gorm:"column:interval;type:pricing_interval"`
	IntervalCount   *int64                 `gorm:"column:interval_count"`
	TrialPeriodDays *int64                 `gorm:"column:trial_period_days"`
	Metadata        json.RawMessage        `gorm:"column:metadata;type:jsonb"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
