package slack

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/utils/errutil"
	"github.com/slack-go/slack"
)

// maxSectionTextBytes stays under the 3000 character limit of a section block
const maxSectionTextBytes = 2900

// Notifier posts refresh outcomes to a fixed channel
type Notifier struct {
	svc       Service
	channelID string
}

// NewNotifier creates a Notifier posting to channelID
func NewNotifier(svc Service, channelID string) *Notifier {
	return &Notifier{svc: svc, channelID: channelID}
}

// NotifyRefresh implements interfaces.Notifier
func (n *Notifier) NotifyRefresh(ctx context.Context, event *model.RefreshEvent) {
	blocks, text := BuildRefreshMessage(event)
	if _, err := n.svc.PostMessage(ctx, n.channelID, blocks, text); err != nil {
		errutil.Handle(ctx, err, "failed to notify refresh result")
	}
}

// BuildRefreshMessage renders a refresh event as Block Kit blocks plus fallback text
func BuildRefreshMessage(event *model.RefreshEvent) ([]slack.Block, string) {
	vendor := event.Vendor.DisplayName()
	client := event.ClientName
	if client == "" {
		client = event.ClientUUID
	}

	var title, status string
	if event.Succeeded() {
		title = fmt.Sprintf(":white_check_mark: %s QBR refreshed", vendor)
		status = "Succeeded"
	} else {
		title = fmt.Sprintf(":x: %s QBR refresh failed", vendor)
		status = "Failed"
	}

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, "*Client*\n"+client, false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Report*\n`"+string(event.ReportID)+"`", false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Status*\n"+status, false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Duration*\n"+event.Duration.Round(time.Millisecond).String(), false, false),
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, true, false)),
		slack.NewSectionBlock(nil, fields, nil),
	}

	if !event.Succeeded() {
		msg := truncateToMaxBytes(event.Err.Error(), maxSectionTextBytes)
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "```"+msg+"```", false, false), nil, nil))
	}

	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType, "Started at "+event.StartedAt.UTC().Format(time.RFC3339), false, false)))

	return blocks, fmt.Sprintf("%s QBR refresh for %s: %s", vendor, client, status)
}

// truncateToMaxBytes cuts s to at most n bytes without splitting a UTF-8 sequence
func truncateToMaxBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
