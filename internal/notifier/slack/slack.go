package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/coverdrive/scorebook/internal/cricket"
	"github.com/coverdrive/scorebook/internal/metrics"
	"github.com/coverdrive/scorebook/internal/notifier"
	"github.com/coverdrive/scorebook/internal/stats"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "", "", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendMatchStarted posts the toss outcome and that play is underway.
func (s *Notifier) SendMatchStarted(match *cricket.Match, toss *cricket.Toss, dryRun bool) error {
	msg := s.formatMatchStarted(match, toss)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// SendInningsSummary posts an innings' closing totals.
func (s *Notifier) SendInningsSummary(innings *cricket.Innings, dryRun bool) error {
	msg := s.formatInningsSummary(innings)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// SendMatchResult posts the final result.
func (s *Notifier) SendMatchResult(match *cricket.Match, dryRun bool) error {
	msg := s.formatMatchResult(match)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) formatMatchStarted(match *cricket.Match, toss *cricket.Toss) slack.Message {
	header := slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, ":cricket_bat_and_ball: Match underway!", true, false))
	body := fmt.Sprintf("*%s* vs *%s* (%s)", match.HomeTeamID, match.AwayTeamID, match.Format)
	if toss != nil {
		body += fmt.Sprintf("\n%s won the toss and chose to %s.", toss.WinnerTeamID, toss.Decision)
	}
	section := slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, body, false, false), nil, nil)
	return slack.NewBlockMessage(header, section)
}

func (s *Notifier) formatInningsSummary(innings *cricket.Innings) slack.Message {
	header := slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "End of innings", true, false))
	body := fmt.Sprintf("Innings %d: *%s* %d/%d in %s overs (extras %d)",
		innings.Number, innings.BattingTeamID, innings.TotalRuns, innings.TotalWickets,
		stats.FormatOvers(innings.TotalOvers), innings.Extras)
	if innings.IsDeclared {
		body += " (declared)"
	}
	section := slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, body, false, false), nil, nil)
	return slack.NewBlockMessage(header, section)
}

func (s *Notifier) formatMatchResult(match *cricket.Match) slack.Message {
	header := slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, ":trophy: Match complete", true, false))
	var body string
	switch match.ResultType {
	case cricket.ResultWin:
		body = fmt.Sprintf("*%s* won", match.WinnerTeamID)
		if match.WinMargin != nil && match.WinType != "" {
			body += fmt.Sprintf(" by %d %s", *match.WinMargin, match.WinType)
		}
	case cricket.ResultTie:
		body = "The match was tied."
	case cricket.ResultDraw:
		body = "The match was drawn."
	default:
		body = "No result."
	}
	section := slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, body, false, false), nil, nil)
	return slack.NewBlockMessage(header, section)
}
