package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents an account derived from the external identity provider.
// ExternalID is the provider's stable subject id; everything else is profile
// data refreshed on login. No credential material is stored here,
// authentication happens entirely at the provider.
type Customer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_customers_uuid" json:"uuid"`
	ExternalID string    `gorm:"size:255;not null;uniqueIndex:uk_customers_external_id" json:"external_id"`

	Email       string  `gorm:"size:255;not null;index:idx_customers_email" json:"email"`
	DisplayName string  `gorm:"size:255;not null" json:"display_name"`
	AvatarURL   *string `gorm:"size:512" json:"avatar_url,omitempty"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_customers_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time `gorm:"index:idx_customers_last_login_at" json:"last_login_at,omitempty"`

	Links []Link `gorm:"foreignKey:CustomerID" json:"-"`
}

func (Customer) TableName() string { return "customers" }

// CustomerFilter represents filter criteria for customer queries
type CustomerFilter struct {
	ID         *uint
	UUID       *uuid.UUID
	ExternalID *string
	Email      *string
}
