package dto

// ClicksByDateEntry is one day of click counts, date formatted YYYY-MM-DD (UTC)
type ClicksByDateEntry struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// OSStatDTO counts distinct visitors per operating system
type OSStatDTO struct {
	OSName         string `json:"os_name"`
	UniqueVisitors int64  `json:"unique_visitors"`
}

// DeviceStatDTO counts distinct visitors per device class
type DeviceStatDTO struct {
	DeviceName     string `json:"device_name"`
	UniqueVisitors int64  `json:"unique_visitors"`
}

// RecentVisitDTO is a single entry of the recent-visits feed
type RecentVisitDTO struct {
	Timestamp  string `json:"timestamp"`
	Browser    string `json:"browser,omitempty"`
	OS         string `json:"os,omitempty"`
	DeviceType string `json:"device_type"`
	Country    string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
	Referrer   string `json:"referrer,omitempty"`
}

// LinkAnalyticsResponse summarizes one link over the trailing window
type LinkAnalyticsResponse struct {
	TotalClicks    int64               `json:"total_clicks"`
	UniqueVisitors int64               `json:"unique_visitors"`
	ClicksByDate   []ClicksByDateEntry `json:"clicks_by_date"`
	OSType         []OSStatDTO         `json:"os_type"`
	DeviceType     []DeviceStatDTO     `json:"device_type"`
	RecentVisits   []RecentVisitDTO    `json:"recent_visits"`
}

// TopicLinkStatsDTO is the per-link breakdown inside a topic summary
type TopicLinkStatsDTO struct {
	ShortURL       string `json:"short_url"`
	ShortCode      string `json:"short_code"`
	LongURL        string `json:"long_url"`
	TotalClicks    int64  `json:"total_clicks"`
	UniqueVisitors int64  `json:"unique_visitors"`
	CreatedAt      string `json:"created_at"`
}

// TopicAnalyticsResponse summarizes all of a customer's links under one topic
type TopicAnalyticsResponse struct {
	Topic          string              `json:"topic"`
	TotalClicks    int64               `json:"total_clicks"`
	UniqueVisitors int64               `json:"unique_visitors"`
	ClicksByDate   []ClicksByDateEntry `json:"clicks_by_date"`
	URLs           []TopicLinkStatsDTO `json:"urls"`
}

// OverallAnalyticsResponse summarizes everything a customer owns
type OverallAnalyticsResponse struct {
	TotalLinks     int64               `json:"total_links"`
	TotalClicks    int64               `json:"total_clicks"`
	UniqueVisitors int64               `json:"unique_visitors"`
	ClicksByDate   []ClicksByDateEntry `json:"clicks_by_date"`
	OSType         []OSStatDTO         `json:"os_type"`
	DeviceType     []DeviceStatDTO     `json:"device_type"`
}
