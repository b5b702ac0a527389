package presenter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"

	"review-response-metrics/internal/models"
)

// отправляет отчеты в канал Slack
type SlackPoster struct {
	client    *slack.Client
	channelID string
	limit     int
}

// создает отправителя
// принимает: токен бота, ID канала и опции клиента slack (например, slack.OptionAPIURL в тестах)
// возвращает: указатель на SlackPoster
func NewSlackPoster(token, channelID string, options ...slack.Option) *SlackPoster {
	return &SlackPoster{
		client:    slack.New(token, options...),
		channelID: channelID,
		limit:     DefaultMessageLimit,
	}
}

// отправляет недельный отчет одним сообщением из блоков;
// таблица делится на несколько секций, если не помещается в лимит текста секции
func (p *SlackPoster) PostWeekly(ctx context.Context, report *models.WeeklyReport) error {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, WeeklyTitle, true, false)),
		markdownSection(WeeklySubtitle(report)),
	}
	blocks = append(blocks, tableSections(FormatWeeklyTable(report.Reviewers), p.limit)...)
	blocks = append(blocks, markdownSection(WeeklyLegend()))
	if repos := RepoSummary(report.RepoPRCounts); repos != "" {
		blocks = append(blocks, slack.NewDividerBlock(), markdownSection(repos))
	}

	_, ts, err := p.client.PostMessageContext(ctx, p.channelID,
		slack.MsgOptionText(WeeklyTitle, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return fmt.Errorf("post weekly report to slack: %w", err)
	}
	slog.Info("weekly report posted", "channel", p.channelID, "ts", ts)
	return nil
}

// отправляет ежедневный отчет, разбивая длинный текст на несколько сообщений
func (p *SlackPoster) PostDaily(ctx context.Context, report *models.DailyReport) error {
	chunks := SplitMessage(FormatDaily(report), p.limit)
	for i, chunk := range chunks {
		if _, _, err := p.client.PostMessageContext(ctx, p.channelID, slack.MsgOptionText(chunk, false)); err != nil {
			return fmt.Errorf("post daily report part %d/%d to slack: %w", i+1, len(chunks), err)
		}
	}
	slog.Info("daily report posted", "channel", p.channelID, "messages", len(chunks))
	return nil
}

func markdownSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}

// делит таблицу на секции с кодовым блоком не длиннее limit байт, повторяя шапку в каждой
func tableSections(table string, limit int) []slack.Block {
	lines := strings.Split(table, "\n")
	headLen := min(2, len(lines))
	header := strings.Join(lines[:headLen], "\n")

	wrap := func(body string) *slack.SectionBlock {
		return markdownSection("```\n" + body + "\n```")
	}
	if len(lines) == headLen {
		return []slack.Block{wrap(header)}
	}

	budget := limit - len("```\n\n```") - len(header) - 1
	var blocks []slack.Block
	for _, chunk := range SplitMessage(strings.Join(lines[headLen:], "\n"), budget) {
		blocks = append(blocks, wrap(header+"\n"+chunk))
	}
	return blocks
}
