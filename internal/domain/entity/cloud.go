package entity

import "strings"

// EndpointKind names the AWS resource an endpoint was discovered on.
type EndpointKind string

const (
	EndpointLoadBalancer EndpointKind = "elb"
	EndpointInstance     EndpointKind = "ec2"
	EndpointFunctionURL  EndpointKind = "lambda"
	EndpointDatabase     EndpointKind = "rds"
)

// CloudEndpoint is a reachable address found in an AWS account.
type CloudEndpoint struct {
	Kind     EndpointKind `json:"kind"`
	Region   string       `json:"region"`
	Name     string       `json:"name"`
	Address  string       `json:"address"`
	Port     int32        `json:"port,omitempty"`
	Public   bool         `json:"public"`
	Resource string       `json:"resource,omitempty"`
}

// MonitorURL returns the URL to register with the status monitor, or "" if
// the endpoint does not speak HTTP.
func (e CloudEndpoint) MonitorURL() string {
	if !e.Public || e.Address == "" || e.Kind == EndpointDatabase {
		return ""
	}
	if strings.Contains(e.Address, "://") {
		return e.Address
	}
	return "https://" + e.Address
}

// LogGroupSummary counts CloudWatch log groups in one region.
type LogGroupSummary struct {
	Region        string   `json:"region"`
	Total         int      `json:"total"`
	NoRetention   int      `json:"no_retention"`
	StoredBytes   int64    `json:"stored_bytes"`
	NoRetentionOf []string `json:"no_retention_groups,omitempty"`
}

// CloudInventory is the result of a discovery run.
type CloudInventory struct {
	AccountID string            `json:"account_id"`
	Profile   string            `json:"profile,omitempty"`
	Regions   []string          `json:"regions"`
	Endpoints []CloudEndpoint   `json:"endpoints"`
	LogGroups []LogGroupSummary `json:"log_groups"`
}
