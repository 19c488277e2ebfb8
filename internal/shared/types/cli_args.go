package types

// CLIArgs represents the persistent command-line arguments.
type CLIArgs struct {
	ConfigFile string
	APIBaseURL string
	TokenFile  string
	ReportName string
	ReportType []string
	Dir        string
	S3Bucket   string
	Verbose    bool
}
