package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/types"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted for the API base URL, in order.
const (
	EnvAPIBaseURL       = "OPTICINI_API_BASE_URL"
	EnvPublicAPIBaseURL = "NEXT_PUBLIC_API_BASE_URL"
)

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct{}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{}
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := filepath.Ext(filePath)
	fileExtension = strings.ToLower(fileExtension)

	// Verifica se o arquivo existe
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config types.Config

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	if config.PollInterval < 0 || config.AuditPollInterval < 0 || config.RequestTimeout < 0 {
		return nil, fmt.Errorf("intervals and timeouts in %s must not be negative", filePath)
	}

	return &config, nil
}

// Resolve merges command-line arguments over the file config and fills every
// remaining gap from the environment and defaults. cfg may be nil.
func Resolve(cfg *types.Config, args types.CLIArgs, getenv func(string) string) types.Config {
	var out types.Config
	if cfg != nil {
		out = *cfg
	}
	if getenv == nil {
		getenv = os.Getenv
	}

	if args.APIBaseURL != "" {
		out.APIBaseURL = args.APIBaseURL
	}
	if out.APIBaseURL == "" {
		out.APIBaseURL = getenv(EnvAPIBaseURL)
	}
	if out.APIBaseURL == "" {
		out.APIBaseURL = getenv(EnvPublicAPIBaseURL)
	}
	if out.APIBaseURL == "" {
		out.APIBaseURL = types.DefaultAPIBaseURL
	}
	out.APIBaseURL = strings.TrimRight(strings.TrimSpace(out.APIBaseURL), "/")

	if args.TokenFile != "" {
		out.TokenFile = args.TokenFile
	}
	if out.TokenFile == "" {
		out.TokenFile = defaultStatePath("tokens.json")
	}
	if out.StateFile == "" {
		out.StateFile = defaultStatePath("audit.json")
	}

	if args.ReportName != "" {
		out.ReportName = args.ReportName
	}
	if len(args.ReportType) > 0 {
		out.ReportType = args.ReportType
	}
	if args.Dir != "" {
		out.Dir = args.Dir
	}
	if args.S3Bucket != "" {
		out.S3Bucket = args.S3Bucket
	}

	if out.PollInterval == 0 {
		out.PollInterval = types.DefaultPollInterval
	}
	if out.AuditPollInterval == 0 {
		out.AuditPollInterval = types.DefaultAuditPollInterval
	}
	if out.RequestTimeout == 0 {
		out.RequestTimeout = types.DefaultRequestTimeout
	}
	if out.PageSpeedURL == "" {
		out.PageSpeedURL = types.DefaultPageSpeedURL
	}
	return out
}

func defaultStatePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".opticini", name)
	}
	return filepath.Join(home, ".opticini", name)
}
