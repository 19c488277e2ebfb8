package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	APIBaseURL        string   `json:"api_base_url" yaml:"api_base_url" toml:"api_base_url"`
	TokenFile         string   `json:"token_file" yaml:"token_file" toml:"token_file"`
	StateFile         string   `json:"state_file" yaml:"state_file" toml:"state_file"`
	PollInterval      int      `json:"poll_interval" yaml:"poll_interval" toml:"poll_interval"`
	AuditPollInterval int      `json:"audit_poll_interval" yaml:"audit_poll_interval" toml:"audit_poll_interval"`
	RequestTimeout    int      `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	ReportName        string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType        []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir               string   `json:"dir" yaml:"dir" toml:"dir"`
	S3Bucket          string   `json:"s3_bucket" yaml:"s3_bucket" toml:"s3_bucket"`
	S3Prefix          string   `json:"s3_prefix" yaml:"s3_prefix" toml:"s3_prefix"`
	AWSProfile        string   `json:"aws_profile" yaml:"aws_profile" toml:"aws_profile"`
	Regions           []string `json:"regions" yaml:"regions" toml:"regions"`
	PageSpeedURL      string   `json:"pagespeed_url" yaml:"pagespeed_url" toml:"pagespeed_url"`
	PageSpeedKey      string   `json:"pagespeed_key" yaml:"pagespeed_key" toml:"pagespeed_key"`
}

// Defaults used when neither flags, file nor environment set a value.
const (
	DefaultAPIBaseURL        = "http://localhost:8000"
	DefaultPollInterval      = 60
	DefaultAuditPollInterval = 5
	DefaultRequestTimeout    = 30
	DefaultPageSpeedURL      = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"
)
