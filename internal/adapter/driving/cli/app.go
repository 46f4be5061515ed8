package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/gbatdev/gcp-billing-report-go/pkg/version"

	"github.com/gbatdev/gcp-billing-report-go/internal/application/usecase"
	"github.com/gbatdev/gcp-billing-report-go/internal/domain/repository"
	"github.com/gbatdev/gcp-billing-report-go/internal/shared/types"
	"github.com/spf13/cobra"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd       *cobra.Command
	reportUseCase *usecase.ReportUseCase
	configRepo    repository.ConfigRepository
	version       string
}

// NewCLIApp creates a new CLI application.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "gbat",
		Short:   "GCP Billing Report CLI",
		Version: formattedVersion,
		RunE:    app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "GCP Billing Report version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().String("billing-project", "", "GCP project holding the billing export dataset")
	rootCmd.PersistentFlags().String("dataset", "", "BigQuery dataset of the billing export")
	rootCmd.PersistentFlags().String("table", "", "BigQuery table of the billing export")
	rootCmd.PersistentFlags().StringSliceP("dimensions", "g", nil, "Dimensions to group costs by: project_id, service_name, sku_description, label:<key> (comma-separated)")
	rootCmd.PersistentFlags().IntP("days", "t", 0, "Compare the last N days against the N days before (default: 1)")
	rootCmd.PersistentFlags().String("current-start", "", "Current window start date YYYY-MM-DD (inclusive)")
	rootCmd.PersistentFlags().String("current-end", "", "Current window end date YYYY-MM-DD (exclusive)")
	rootCmd.PersistentFlags().String("prior-start", "", "Prior window start date YYYY-MM-DD (inclusive)")
	rootCmd.PersistentFlags().String("prior-end", "", "Prior window end date YYYY-MM-DD (exclusive)")
	rootCmd.PersistentFlags().Int("top-n", 0, "Maximum number of groups to report (default: 10)")
	rootCmd.PersistentFlags().String("min-delta", "", "Hide groups whose absolute cost change is below this amount")
	rootCmd.PersistentFlags().Int("top-services", 0, "Services to list under each warning group (default: 5)")
	rootCmd.PersistentFlags().Bool("projection", false, "Project the month-end cost from the current run rate")
	rootCmd.PersistentFlags().StringP("channel", "c", "", "Slack channel to deliver the report to")
	rootCmd.PersistentFlags().Bool("no-notify", false, "Skip Slack delivery even when a channel is configured")
	rootCmd.PersistentFlags().StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", nil, "Specify report types: csv, json, pdf")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	configFile, _ := app.rootCmd.Flags().GetString("config-file")
	billingProject, _ := app.rootCmd.Flags().GetString("billing-project")
	dataset, _ := app.rootCmd.Flags().GetString("dataset")
	table, _ := app.rootCmd.Flags().GetString("table")
	dimensions, _ := app.rootCmd.Flags().GetStringSlice("dimensions")
	days, _ := app.rootCmd.Flags().GetInt("days")
	currentStart, _ := app.rootCmd.Flags().GetString("current-start")
	currentEnd, _ := app.rootCmd.Flags().GetString("current-end")
	priorStart, _ := app.rootCmd.Flags().GetString("prior-start")
	priorEnd, _ := app.rootCmd.Flags().GetString("prior-end")
	topN, _ := app.rootCmd.Flags().GetInt("top-n")
	minDelta, _ := app.rootCmd.Flags().GetString("min-delta")
	topServices, _ := app.rootCmd.Flags().GetInt("top-services")
	projection, _ := app.rootCmd.Flags().GetBool("projection")
	channel, _ := app.rootCmd.Flags().GetString("channel")
	noNotify, _ := app.rootCmd.Flags().GetBool("no-notify")
	reportName, _ := app.rootCmd.Flags().GetString("report-name")
	reportType, _ := app.rootCmd.Flags().GetStringSlice("report-type")
	dir, _ := app.rootCmd.Flags().GetString("dir")

	// Convert to absolute path. An empty dir stays empty so a configured
	// directory from the file or environment is not shadowed.
	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	args := &types.CLIArgs{
		ConfigFile:     configFile,
		BillingProject: billingProject,
		BillingDataset: dataset,
		BillingTable:   table,
		Dimensions:     dimensions,
		Days:           days,
		CurrentStart:   currentStart,
		CurrentEnd:     currentEnd,
		PriorStart:     priorStart,
		PriorEnd:       priorEnd,
		TopN:           topN,
		MinDelta:       minDelta,
		TopServices:    topServices,
		Projection:     projection,
		Channel:        channel,
		NoNotify:       noNotify,
		ReportName:     reportName,
		ReportType:     reportType,
		Dir:            dir,
	}

	return args, nil
}

// resolveConfig layers the configuration sources. Flags beat the file,
// the file beats the environment.
func (app *CLIApp) resolveConfig(args *types.CLIArgs) (*types.Config, error) {
	cfg, err := app.configRepo.LoadFromEnv()
	if err != nil {
		return nil, err
	}

	if args.ConfigFile != "" {
		fileCfg, err := app.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, err
		}
		mergeConfig(cfg, fileCfg)
	}

	mergeConfig(cfg, configFromArgs(args))

	if args.NoNotify {
		cfg.SlackChannel = ""
	}
	if cfg.ReportName != "" && len(cfg.ReportType) == 0 {
		cfg.ReportType = []string{"csv"}
	}

	return cfg, nil
}

// mergeConfig overlays the set fields of src onto dst. Zero values mean
// "not set" and leave dst alone.
func mergeConfig(dst, src *types.Config) {
	if src.BillingProject != "" {
		dst.BillingProject = src.BillingProject
	}
	if src.BillingDataset != "" {
		dst.BillingDataset = src.BillingDataset
	}
	if src.BillingTable != "" {
		dst.BillingTable = src.BillingTable
	}
	if len(src.Dimensions) > 0 {
		dst.Dimensions = src.Dimensions
	}
	if src.Days != 0 {
		dst.Days = src.Days
	}
	if src.CurrentStart != "" {
		dst.CurrentStart = src.CurrentStart
	}
	if src.CurrentEnd != "" {
		dst.CurrentEnd = src.CurrentEnd
	}
	if src.PriorStart != "" {
		dst.PriorStart = src.PriorStart
	}
	if src.PriorEnd != "" {
		dst.PriorEnd = src.PriorEnd
	}
	if src.TopN != 0 {
		dst.TopN = src.TopN
	}
	if src.MinDelta != "" {
		dst.MinDelta = src.MinDelta
	}
	if src.Precision != nil {
		dst.Precision = src.Precision
	}
	if src.WarningMultiplier != "" {
		dst.WarningMultiplier = src.WarningMultiplier
	}
	if src.MinimumWarnCost != "" {
		dst.MinimumWarnCost = src.MinimumWarnCost
	}
	if src.TopServices != 0 {
		dst.TopServices = src.TopServices
	}
	if src.Projection != nil {
		dst.Projection = src.Projection
	}
	if src.SlackChannel != "" {
		dst.SlackChannel = src.SlackChannel
	}
	if src.ReportName != "" {
		dst.ReportName = src.ReportName
	}
	if len(src.ReportType) > 0 {
		dst.ReportType = src.ReportType
	}
	if src.Dir != "" {
		dst.Dir = src.Dir
	}
}

// configFromArgs converts the flag values into a Config overlay.
func configFromArgs(args *types.CLIArgs) *types.Config {
	cfg := &types.Config{
		BillingProject: args.BillingProject,
		BillingDataset: args.BillingDataset,
		BillingTable:   args.BillingTable,
		Dimensions:     args.Dimensions,
		Days:           args.Days,
		CurrentStart:   args.CurrentStart,
		CurrentEnd:     args.CurrentEnd,
		PriorStart:     args.PriorStart,
		PriorEnd:       args.PriorEnd,
		TopN:           args.TopN,
		MinDelta:       args.MinDelta,
		TopServices:    args.TopServices,
		SlackChannel:   args.Channel,
		ReportName:     args.ReportName,
		ReportType:     args.ReportType,
		Dir:            args.Dir,
	}
	if args.Projection {
		projection := true
		cfg.Projection = &projection
	}
	return cfg
}

// runCommand is the main entry point for the CLI command.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	displayWelcomeBanner(app.version)

	go version.CheckLatestVersion(app.version)

	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	cfg, err := app.resolveConfig(cliArgs)
	if err != nil {
		return err
	}

	runCfg, err := usecase.ResolveRunConfig(cfg, time.Now().UTC())
	if err != nil {
		return err
	}

	ctx := context.Background()
	return app.reportUseCase.RunReport(ctx, runCfg)
}

// SetReportUseCase sets the report use case for the CLI app.
func (app *CLIApp) SetReportUseCase(useCase *usecase.ReportUseCase) {
	app.reportUseCase = useCase
}

// SetConfigRepository sets the configuration repository for the CLI app.
func (app *CLIApp) SetConfigRepository(repo repository.ConfigRepository) {
	app.configRepo = repo
}
