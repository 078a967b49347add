package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer maps one application user to one Stripe customer. The mapping is
// created lazily on first checkout/portal interaction and never duplicated.
type Customer struct {
	UserID           uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	StripeCustomerID string    `gorm:"column:stripe_customer_id;not null;uniqueIndex"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
