package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile     string
	BillingProject string
	BillingDataset string
	BillingTable   string
	Dimensions     []string
	Days           int
	CurrentStart   string
	CurrentEnd     string
	PriorStart     string
	PriorEnd       string
	TopN           int
	MinDelta       string
	TopServices    int
	Projection     bool
	Channel        string
	NoNotify       bool
	ReportName     string
	ReportType     []string
	Dir            string
}
