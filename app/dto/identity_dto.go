package dto

// ProviderProfileRequest carries the identity asserted by the auth provider
type ProviderProfileRequest struct {
	ExternalID  string  `json:"external_id" validate:"required,max=255"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	DisplayName string  `json:"display_name" validate:"required,max=255"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=2048"`
}

// AuthCustomerDTO describes the authenticated customer in session responses
type AuthCustomerDTO struct {
	ID          uint   `json:"id"`
	UUID        string `json:"uuid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	CreatedAt   string `json:"created_at"`
	LastLoginAt string `json:"last_login_at,omitempty"`
}

// SessionTokensDTO carries the issued JWT pair
type SessionTokensDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// SessionResponse is returned by the session endpoint
type SessionResponse struct {
	Customer AuthCustomerDTO  `json:"customer"`
	Tokens   SessionTokensDTO `json:"tokens"`
	IsNew    bool             `json:"is_new"`
}

// RefreshSessionRequest exchanges a refresh token for a new pair
type RefreshSessionRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
