package services

import (
	"strings"

	"github.com/amirphl/Kusanagi/models"
	"github.com/mssola/useragent"
)

// ClientInfo is the classification of a raw user-agent string
type ClientInfo struct {
	Browser    string
	OS         string
	DeviceType string
}

// UserAgentService classifies user-agent strings for visit enrichment
type UserAgentService interface {
	Classify(rawUserAgent string) ClientInfo
}

type UserAgentServiceImpl struct{}

func NewUserAgentService() UserAgentService {
	return &UserAgentServiceImpl{}
}

// Classify parses the user agent and maps it onto the device classes used
// by analytics. Unknown agents fall back to desktop.
func (s *UserAgentServiceImpl) Classify(rawUserAgent string) ClientInfo {
	ua := useragent.New(rawUserAgent)

	browser, _ := ua.Browser()

	deviceType := models.DeviceDesktop
	switch {
	case ua.Bot():
		deviceType = models.DeviceBot
	case isTablet(rawUserAgent):
		deviceType = models.DeviceTablet
	case ua.Mobile():
		deviceType = models.DeviceMobile
	}

	return ClientInfo{
		Browser:    browser,
		OS:         ua.OSInfo().Name,
		DeviceType: deviceType,
	}
}

// isTablet covers the device class mssola/useragent has no notion of:
// iPads, agents that self-identify as tablets, and Android builds without
// the "Mobile" token (the Android convention for tablets).
func isTablet(rawUserAgent string) bool {
	lower := strings.ToLower(rawUserAgent)
	if strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet") {
		return true
	}
	return strings.Contains(lower, "android") && !strings.Contains(lower, "mobile")
}
