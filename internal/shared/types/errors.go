package types

import "errors"

var (
	ErrNoAWSProfile      = errors.New("no AWS profile configured. Set aws_profile in the config file")
	ErrUnsupportedExport = errors.New("unsupported report type")
)
