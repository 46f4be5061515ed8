package types

// Config represents the application configuration. It can be loaded from a
// file or the environment and overlaid by command-line flags; zero values
// mean "not set" so layers merge cleanly.
type Config struct {
	BillingProject string `json:"billing_project" yaml:"billing_project" toml:"billing_project"`
	BillingDataset string `json:"billing_dataset" yaml:"billing_dataset" toml:"billing_dataset"`
	BillingTable   string `json:"billing_table" yaml:"billing_table" toml:"billing_table"`

	Dimensions   []string `json:"dimensions" yaml:"dimensions" toml:"dimensions"`
	Days         int      `json:"days" yaml:"days" toml:"days"`
	CurrentStart string   `json:"current_start" yaml:"current_start" toml:"current_start"`
	CurrentEnd   string   `json:"current_end" yaml:"current_end" toml:"current_end"`
	PriorStart   string   `json:"prior_start" yaml:"prior_start" toml:"prior_start"`
	PriorEnd     string   `json:"prior_end" yaml:"prior_end" toml:"prior_end"`

	TopN     int    `json:"top_n" yaml:"top_n" toml:"top_n"`
	MinDelta string `json:"min_delta" yaml:"min_delta" toml:"min_delta"`
	// Precision is a pointer because 0 (round to whole units) is a valid
	// setting.
	Precision         *int   `json:"precision" yaml:"precision" toml:"precision"`
	WarningMultiplier string `json:"warning_multiplier" yaml:"warning_multiplier" toml:"warning_multiplier"`
	MinimumWarnCost   string `json:"minimum_warn_cost" yaml:"minimum_warn_cost" toml:"minimum_warn_cost"`
	TopServices       int    `json:"top_services" yaml:"top_services" toml:"top_services"`

	Projection   *bool    `json:"projection" yaml:"projection" toml:"projection"`
	SlackChannel string   `json:"slack_channel" yaml:"slack_channel" toml:"slack_channel"`
	ReportName   string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType   []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir          string   `json:"dir" yaml:"dir" toml:"dir"`
}
