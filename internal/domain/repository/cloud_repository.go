package repository

import (
	"context"

	"github.com/opticini/opticini-cli/internal/domain/entity"
)

// CloudRepository defines the interface for AWS API interactions.
type CloudRepository interface {
	GetAccountID(ctx context.Context, profile string) (string, error)
	GetAccessibleRegions(ctx context.Context, profile string) ([]string, error)

	DiscoverEndpoints(ctx context.Context, profile string, regions []string) ([]entity.CloudEndpoint, error)
	GetLogGroupSummary(ctx context.Context, profile string, regions []string) ([]entity.LogGroupSummary, error)

	GetSpend(ctx context.Context, profile string) (entity.CloudSpend, error)
}
