// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information captured at the edge
// for click tracking and audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	Referrer  string `json:"referrer,omitempty"`
	Language  string `json:"language,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// Fingerprint derives the visitor fingerprint for this client
func (cm *ClientMetadata) Fingerprint() string {
	return utils.VisitorFingerprint(cm.IPAddress, cm.UserAgent)
}

// VisitSink accepts visit records for background persistence. Enqueue must
// never block the redirect path; it reports whether the record was accepted.
type VisitSink interface {
	Enqueue(linkID uint, meta *ClientMetadata) bool
}

// ToCustomerLinkDTO converts a link model to its listing representation
func ToCustomerLinkDTO(link *models.Link, baseURL string) dto.CustomerLinkDTO {
	out := dto.CustomerLinkDTO{
		ShortURL:  ShortURL(baseURL, link.ShortCode),
		ShortCode: link.ShortCode,
		LongURL:   link.LongURL,
		Topic:     string(link.Topic),
		Clicks:    link.Clicks,
		CreatedAt: link.CreatedAt.Format(time.RFC3339),
	}
	if link.LastAccessedAt != nil {
		out.LastAccessedAt = link.LastAccessedAt.Format(time.RFC3339)
	}
	return out
}

// ToAuthCustomerDTO converts a customer model to AuthCustomerDTO for session responses
func ToAuthCustomerDTO(customer *models.Customer) dto.AuthCustomerDTO {
	out := dto.AuthCustomerDTO{
		ID:          customer.ID,
		UUID:        customer.UUID.String(),
		Email:       customer.Email,
		DisplayName: customer.DisplayName,
		AvatarURL:   utils.Deref(customer.AvatarURL),
		CreatedAt:   customer.CreatedAt.Format(time.RFC3339),
	}
	if customer.LastLoginAt != nil {
		out.LastLoginAt = customer.LastLoginAt.Format(time.RFC3339)
	}
	return out
}

// ShortURL builds the public short URL for a code
func ShortURL(baseURL, code string) string {
	return baseURL + "/s/" + code
}
