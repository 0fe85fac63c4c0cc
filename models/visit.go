package models

import "time"

// Device classes derived from the user agent at record time
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
)

// Visit represents a single recorded redirect of a short link.
// Rows are append-only and never updated; every analytics summary is
// recomputed from them, so the log is the sole source of truth.
// Fingerprint is the visitor pseudo-identity (hash of IP + user agent) used
// for unique-visitor counting; it deliberately conflates distinct people
// sharing the same IP and browser.
type Visit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LinkID      uint      `gorm:"not null;index:idx_visits_link_id" json:"link_id"`
	Timestamp   time.Time `gorm:"not null;default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_visits_timestamp" json:"timestamp"`
	UserAgent   string    `gorm:"type:text" json:"user_agent"`
	IPAddress   string    `gorm:"size:64" json:"ip_address"`
	Country     *string   `gorm:"size:64" json:"country,omitempty"`
	City        *string   `gorm:"size:128" json:"city,omitempty"`
	Browser     *string   `gorm:"size:64" json:"browser,omitempty"`
	OS          *string   `gorm:"size:64" json:"os,omitempty"`
	DeviceType  string    `gorm:"size:32;not null;default:desktop" json:"device_type"`
	Referrer    *string   `gorm:"type:text" json:"referrer,omitempty"`
	Language    *string   `gorm:"size:35" json:"language,omitempty"`
	Fingerprint string    `gorm:"size:64;not null;index:idx_visits_fingerprint" json:"fingerprint"`
}

// TableName returns the table name for Visit
func (Visit) TableName() string { return "visits" }

// VisitFilter provides filter fields for repository queries
type VisitFilter struct {
	LinkID      *uint
	LinkIDs     []uint
	Fingerprint *string
	Since       *time.Time
	Until       *time.Time
}
