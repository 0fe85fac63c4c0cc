package dto

// CreateShortLinkRequest defines input for creating a short link
type CreateShortLinkRequest struct {
	LongURL     string  `json:"long_url" validate:"required,max=2048"`
	CustomAlias *string `json:"custom_alias,omitempty" validate:"omitempty,min=3,max=30,alphanum"`
	Topic       string  `json:"topic,omitempty" validate:"omitempty,oneof=acquisition activation retention"`
}

// CreateShortLinkResponse is returned after a short link is created
type CreateShortLinkResponse struct {
	ShortURL  string `json:"short_url"`
	ShortCode string `json:"short_code"`
	LongURL   string `json:"long_url"`
	Topic     string `json:"topic,omitempty"`
	CreatedAt string `json:"created_at"`
}

// CustomerLinkDTO describes one of a customer's links in listings
type CustomerLinkDTO struct {
	ShortURL       string `json:"short_url"`
	ShortCode      string `json:"short_code"`
	LongURL        string `json:"long_url"`
	Topic          string `json:"topic,omitempty"`
	Clicks         int64  `json:"clicks"`
	CreatedAt      string `json:"created_at"`
	LastAccessedAt string `json:"last_accessed_at,omitempty"`
}

// ListCustomerLinksResponse wraps a customer's link listing
type ListCustomerLinksResponse struct {
	Links []CustomerLinkDTO `json:"links"`
	Total int               `json:"total"`
}
