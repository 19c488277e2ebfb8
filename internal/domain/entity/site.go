package entity

import "time"

// Site status values reported by the monitor API.
const (
	SiteStatusUp      = "up"
	SiteStatusDown    = "down"
	SiteStatusUnknown = "unknown"
)

// MonitoredSite mirrors an entry of /api/monitor/sites/.
type MonitoredSite struct {
	ID               int        `json:"id"`
	Name             string     `json:"name"`
	URL              string     `json:"url"`
	Status           string     `json:"status"`
	StatusCode       int        `json:"status_code,omitempty"`
	ResponseTimeMs   float64    `json:"response_time,omitempty"`
	UptimePercentage float64    `json:"uptime_percentage,omitempty"`
	SSLValid         *bool      `json:"ssl_valid,omitempty"`
	SSLExpiresAt     *time.Time `json:"ssl_expires_at,omitempty"`
	LastChecked      *time.Time `json:"last_checked,omitempty"`
	CheckInterval    int        `json:"check_interval,omitempty"`
	IsActive         bool       `json:"is_active"`
}

// NormalizedStatus folds the various spellings the API uses into up, down or unknown.
func (s MonitoredSite) NormalizedStatus() string {
	switch s.Status {
	case "up", "online", "ok", "healthy":
		return SiteStatusUp
	case "down", "offline", "error", "unhealthy":
		return SiteStatusDown
	default:
		return SiteStatusUnknown
	}
}

// SiteRequest is the body used to register a new monitored site.
type SiteRequest struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	CheckInterval int    `json:"check_interval,omitempty"`
}

// SiteSnapshot is one poll result of the status monitor.
type SiteSnapshot struct {
	Sequence  int            `json:"sequence"`
	SiteID    int            `json:"site_id"`
	Site      *MonitoredSite `json:"site,omitempty"`
	Links     *LinkReport    `json:"links,omitempty"`
	LinksErr  string         `json:"links_error,omitempty"`
	Err       string         `json:"error,omitempty"`
	FetchedAt time.Time      `json:"fetched_at"`
}
