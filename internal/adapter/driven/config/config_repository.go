package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/repository"
	"github.com/gbatdev/gcp-billing-report-go/internal/shared/types"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Environment variables the tool reads. The billing table coordinates and
// Slack channel usually come from the deployment environment; everything
// else is tuning.
const (
	envProjectID         = "PROJECT_ID"
	envDataset           = "DATA_SET"
	envTableName         = "TABLE_NAME"
	envSlackChannel      = "SLACK_CHANNEL"
	envMinimumWarnCost   = "MINIMUM_COST_FOR_WARNING"
	envPrecision         = "ROUNDING_PRECISION"
	envWarningMultiplier = "WARNING_THRESHOLD_MULTIPLIER"
	envTopServices       = "NUMBER_OF_TOP_SERVICES_TO_INVESTIGATE"
)

// ConfigRepositoryImpl implements the ConfigRepository.
type ConfigRepositoryImpl struct{}

// NewConfigRepository creates a new ConfigRepository implementation.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{}
}

// LoadConfigFile loads a TOML, YAML or JSON configuration file.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := filepath.Ext(filePath)
	fileExtension = strings.ToLower(fileExtension)

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

	return &config, nil
}

// LoadFromEnv reads the environment settings. Unset variables leave the
// corresponding fields zero; unparsable numbers are a hard error rather
// than a silent default.
func (r *ConfigRepositoryImpl) LoadFromEnv() (*types.Config, error) {
	config := &types.Config{
		BillingProject:    os.Getenv(envProjectID),
		BillingDataset:    os.Getenv(envDataset),
		BillingTable:      os.Getenv(envTableName),
		SlackChannel:      os.Getenv(envSlackChannel),
		MinimumWarnCost:   os.Getenv(envMinimumWarnCost),
		WarningMultiplier: os.Getenv(envWarningMultiplier),
	}

	if value := os.Getenv(envPrecision); value != "" {
		precision, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", envPrecision, value, err)
		}
		config.Precision = &precision
	}
	if value := os.Getenv(envTopServices); value != "" {
		topServices, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", envTopServices, value, err)
		}
		config.TopServices = topServices
	}

	return config, nil
}
