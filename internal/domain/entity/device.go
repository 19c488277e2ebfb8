package entity

import (
	"fmt"
	"strings"
)

// DeviceStrategy is the device profile a page is tested with.
type DeviceStrategy string

const (
	DeviceMobile  DeviceStrategy = "mobile"
	DeviceDesktop DeviceStrategy = "desktop"
)

// AllDevices lists the strategies run when none is requested.
var AllDevices = []DeviceStrategy{DeviceMobile, DeviceDesktop}

// ParseDevice parses a device name.
func ParseDevice(s string) (DeviceStrategy, error) {
	switch DeviceStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case DeviceMobile:
		return DeviceMobile, nil
	case DeviceDesktop:
		return DeviceDesktop, nil
	}
	return "", fmt.Errorf("unsupported device %q (use mobile or desktop)", s)
}

// Metric is one lab measurement.
type Metric struct {
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// DeviceAnalysis is the performance result for one device.
type DeviceAnalysis struct {
	Device            DeviceStrategy `json:"device"`
	URL               string         `json:"url"`
	Score             int            `json:"score"`
	FirstContentful   Metric         `json:"first_contentful_paint"`
	LargestContentful Metric         `json:"largest_contentful_paint"`
	TotalBlocking     Metric         `json:"total_blocking_time"`
	LayoutShift       Metric         `json:"cumulative_layout_shift"`
	SpeedIndex        Metric         `json:"speed_index"`
	Error             string         `json:"error,omitempty"`
}

// Rating buckets the score the way Lighthouse does.
func (d DeviceAnalysis) Rating() string {
	switch {
	case d.Error != "":
		return "error"
	case d.Score >= 90:
		return "good"
	case d.Score >= 50:
		return "needs improvement"
	default:
		return "poor"
	}
}
