package slack

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/gbatdev/gcp-billing-report-go/internal/domain/entity"
	"github.com/gbatdev/gcp-billing-report-go/internal/domain/repository"
)

// envSlackToken is read lazily so the token never travels through run
// configuration or appears in exported reports.
const envSlackToken = "SLACK_API_TOKEN"

// consoleDashboardURL links a project name in the message to its console
// dashboard.
const consoleDashboardURL = "https://console.cloud.google.com/home/dashboard?project=%s"

// NotifierRepositoryImpl delivers reports to Slack as block messages.
type NotifierRepositoryImpl struct {
	client      *slack.Client
	clientMutex sync.Mutex
	logger      *logrus.Entry
}

// NewNotifierRepository creates a new Slack-backed notifier.
func NewNotifierRepository(logger *logrus.Logger) repository.NotifierRepository {
	return &NotifierRepositoryImpl{
		logger: logger.WithField("component", "slack"),
	}
}

func (r *NotifierRepositoryImpl) getClient() (*slack.Client, error) {
	r.clientMutex.Lock()
	defer r.clientMutex.Unlock()

	if r.client != nil {
		return r.client, nil
	}
	token := os.Getenv(envSlackToken)
	if token == "" {
		return nil, fmt.Errorf("%s is not set", envSlackToken)
	}
	r.client = slack.New(token)
	return r.client, nil
}

// SendReport renders the report as blocks and posts it to channel. A
// delivery failure is returned to the caller untouched; nothing retries
// here.
func (r *NotifierRepositoryImpl) SendReport(ctx context.Context, channel string, report entity.Report) error {
	client, err := r.getClient()
	if err != nil {
		return err
	}

	fallback := fmt.Sprintf("Billing report for %s", report.CurrentWindow.Label())
	_, _, err = client.PostMessageContext(ctx, channel,
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionBlocks(BuildReportBlocks(report)...),
	)
	if err != nil {
		return fmt.Errorf("slack delivery to %s failed: %w", channel, err)
	}

	r.logger.WithField("channel", channel).Info("report delivered")
	return nil
}

// BuildReportBlocks lays the report out as Slack blocks: a header, one
// section per itemized group with its drill-down, then the summary.
func BuildReportBlocks(report entity.Report) []slack.Block {
	blocks := []slack.Block{
		slack.NewSectionBlock(markdown(fmt.Sprintf("*Billing Report* | %s vs %s",
			report.CurrentWindow.Label(), report.PriorWindow.Label())), nil, nil),
		slack.NewDividerBlock(),
	}

	for _, row := range report.Rows {
		blocks = append(blocks, slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			markdown(rowTitle(row, report.Dimensions)),
			markdown(fmt.Sprintf("%s -> *%s* (%s)",
				money(row.PriorCost, report.Currency),
				money(row.CurrentCost, report.Currency),
				row.PercentChange.String())),
		}, nil))

		if len(row.TopItems) > 0 {
			lines := make([]string, 0, len(row.TopItems)+1)
			lines = append(lines, "*Top services:*")
			for _, item := range row.TopItems {
				lines = append(lines, fmt.Sprintf("• %s: %s", item.Name, money(item.Cost, report.Currency)))
			}
			blocks = append(blocks, slack.NewSectionBlock(markdown(strings.Join(lines, "\n")), nil, nil))
		}
	}

	if len(report.Rows) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(markdown("No cost movement above the reporting threshold."), nil, nil))
	}

	blocks = append(blocks, slack.NewDividerBlock())

	fields := []*slack.TextBlockObject{
		markdown(fmt.Sprintf("*Current Total:*\n%s", money(report.CurrentTotal, report.Currency))),
		markdown(fmt.Sprintf("*Prior Total:*\n%s", money(report.PriorTotal, report.Currency))),
		markdown(fmt.Sprintf("*Delta:*\n%s (%s)", money(report.TotalDelta, report.Currency), report.TotalPercent.String())),
	}
	if report.Projection != nil {
		fields = append(fields, markdown(fmt.Sprintf("*Projected Month End:*\n%s",
			money(report.Projection.Projected, report.Currency))))
	}
	if report.OmittedGroups > 0 {
		fields = append(fields, markdown(fmt.Sprintf("*Groups Not Shown:*\n%s", strconv.Itoa(report.OmittedGroups))))
	}
	if report.SkippedRows > 0 {
		fields = append(fields, markdown(fmt.Sprintf("*Malformed Rows Skipped:*\n%s", strconv.Itoa(report.SkippedRows))))
	}
	blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))

	return blocks
}

// rowTitle renders one group's heading with its status emoji. Groups led
// by a project ID link to the project's console dashboard.
func rowTitle(row entity.ReportRow, dims []string) string {
	values := make([]string, len(row.Dimensions))
	copy(values, row.Dimensions)
	if len(dims) > 0 && dims[0] == string(entity.DimensionProject) && len(values) > 0 && values[0] != "" {
		values[0] = fmt.Sprintf("<"+consoleDashboardURL+"|%s>", values[0], values[0])
	}

	emoji := ":white_check_mark:"
	if row.Status == entity.StatusWarning {
		emoji = ":warning:"
	}
	return fmt.Sprintf("%s *%d. %s*", emoji, row.Rank, strings.Join(values, " / "))
}

func money(d decimal.Decimal, currency string) string {
	if currency == "" {
		return d.String()
	}
	return d.String() + " " + currency
}

func markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}
