package utils

import (
	"time"
)

// Short code generation constants
const (
	// ShortCodeLength is the fixed length of generated short codes
	ShortCodeLength = 6

	// ShortCodeAlphabet is the URL-safe alphabet generated codes are drawn from
	ShortCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// MaxAllocationAttempts bounds the retry loop when a generated code
	// collides with an existing short code or alias
	MaxAllocationAttempts = 5
)

// Analytics constants
const (
	// AnalyticsWindow is the trailing period every summary is scoped to
	AnalyticsWindow = 7 * 24 * time.Hour

	// ClicksByDateLimit caps the per-day series at the window's day count
	ClicksByDateLimit = 7

	// RecentVisitsLimit is the number of most recent visits returned per link
	RecentVisitsLimit = 10
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Request context keys used by handlers when building request-scoped contexts
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)
