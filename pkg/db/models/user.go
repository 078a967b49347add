package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity. Billing address and payment
// method summary are backfilled from Stripe on first subscription activation.
type User struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email          string          `gorm:"type:text;not null;uniqueIndex"`
	FullName       *string         `gorm:"column:full_name"`
	AvatarURL      *string         `gorm:"column:avatar_url"`
	BillingAddress json.RawMessage `gorm:"column:billing_address;type:jsonb"`
	PaymentMethod  json.RawMessage `gorm:"column:payment_method;type:jsonb"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
