package repository

import (
	"context"

	"github.com/opticini/opticini-cli/internal/domain/entity"
)

// LinkRepository discovers the links on a web page.
type LinkRepository interface {
	Discover(ctx context.Context, pageURL string) (entity.LinkReport, error)
}

// AnalyzerRepository runs a performance test of a page for one device.
type AnalyzerRepository interface {
	Analyze(ctx context.Context, pageURL string, device entity.DeviceStrategy) (entity.DeviceAnalysis, error)
}
