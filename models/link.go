// Package models contains domain entities and business models for the link shortening system
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Topic is the optional campaign category a link is tagged with.
// The empty value means "no topic"; empty strings coming from clients are
// folded into TopicNone at the DTO boundary, never stored as a distinct state.
type Topic string

const (
	TopicNone        Topic = ""
	TopicAcquisition Topic = "acquisition"
	TopicActivation  Topic = "activation"
	TopicRetention   Topic = "retention"
)

// ParseTopic normalizes a client-supplied topic value
func ParseTopic(s string) (Topic, error) {
	switch Topic(s) {
	case TopicNone, TopicAcquisition, TopicActivation, TopicRetention:
		return Topic(s), nil
	}
	return TopicNone, fmt.Errorf("unknown topic %q", s)
}

func (t Topic) IsNone() bool { return t == TopicNone }

// Link represents a long URL to short code mapping owned by a customer.
// ShortCode is globally unique. When a custom alias is requested, the alias is
// stored as both ShortCode and CustomAlias, so the unique index on short_code
// guards the whole code namespace; CustomAlias keeps its own unique index so a
// generated code can never land on an alias that predates this convention.
// Clicks only ever increases; rows are never deleted.
type Link struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_links_uuid" json:"uuid"`
	LongURL     string    `gorm:"type:text;not null" json:"long_url"`
	ShortCode   string    `gorm:"size:64;not null;uniqueIndex:uk_links_short_code" json:"short_code"`
	CustomAlias *string   `gorm:"size:64;uniqueIndex:uk_links_custom_alias" json:"custom_alias,omitempty"`
	Topic       Topic     `gorm:"size:20;index:idx_links_topic" json:"topic"`
	CustomerID  uint      `gorm:"not null;index:idx_links_customer_id" json:"customer_id"`
	Customer    *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"-"`
	Clicks      int64     `gorm:"not null;default:0" json:"clicks"`

	CreatedAt      time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_links_created_at" json:"created_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
}

// TableName returns the table name for Link
func (Link) TableName() string { return "links" }

// LinkFilter provides filter fields for repository queries
type LinkFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	ShortCode     *string
	CustomerID    *uint
	Topic         *Topic
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
