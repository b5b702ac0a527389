package presenter

import (
	"fmt"
	"strings"

	"review-response-metrics/internal/models"
)

// лимит длины одного сообщения Slack с запасом
const DefaultMessageLimit = 3000

// собирает текст ежедневного отчета
func FormatDaily(report *models.DailyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Review responses for %s*\n", report.Date)

	if len(report.Groups) == 0 {
		b.WriteString("\nNo review responses.")
		return b.String()
	}

	for _, g := range report.Groups {
		fmt.Fprintf(&b, "\n*%s*\n", g.Reviewer)
		for _, r := range g.Reviews {
			fmt.Fprintf(&b, "%s %s#%d: %.1f hours\n", r.Speed, r.Repository, r.PRNumber, r.ResponseTime)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// делит текст на части не длиннее limit байт по границам строк;
// строка длиннее лимита режется по границе руны
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		for len(line) > limit {
			flush()
			cut := runeBoundary(line, limit)
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}

		extra := len(line)
		if current.Len() > 0 {
			extra++
		}
		if current.Len()+extra > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	flush()

	return chunks
}

func runeBoundary(s string, limit int) int {
	cut := limit
	// байты продолжения UTF-8 имеют вид 10xxxxxx
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	if cut == 0 {
		return limit
	}
	return cut
}
