package repository

import (
	"github.com/gbatdev/gcp-billing-report-go/internal/shared/types"
)

// ConfigRepository defines the interface for loading configuration.
type ConfigRepository interface {
	// LoadConfigFile reads a TOML, YAML or JSON configuration file.
	LoadConfigFile(filePath string) (*types.Config, error)

	// LoadFromEnv reads the environment settings. Unset variables leave
	// the corresponding fields zero.
	LoadFromEnv() (*types.Config, error)
}
