package services

import (
	"strings"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// Reply protocol line prefixes.
const (
	prefixDownloadOriginal = "DOWNLOAD_ORIGINAL:"
	prefixDownloadSummary  = "DOWNLOAD_SUMMARY:"
	prefixFilename         = "FILENAME:"
	prefixSummaryContent   = "SUMMARY_CONTENT:"
	prefixAnswer           = "ANSWER:"
)

// ParseReply extracts the requested file operations from a model reply.
//
// Lines are trimmed and matched case-sensitively against the protocol
// prefixes, which are honoured anywhere before the first ANSWER: line.
// After SUMMARY_CONTENT every other line is collected into the summary.
// Unknown lines are ignored and absent fields stay false or empty, so the
// result is always safe to act on.
func ParseReply(reply string) domain.FileOperations {
	var ops domain.FileOperations
	var summary []string
	inSummary := false

	for _, raw := range strings.Split(reply, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, prefixAnswer) {
			break
		}

		switch {
		case strings.HasPrefix(line, prefixDownloadOriginal):
			ops.DownloadOriginal = parseFlag(line[len(prefixDownloadOriginal):])
		case strings.HasPrefix(line, prefixDownloadSummary):
			ops.DownloadSummary = parseFlag(line[len(prefixDownloadSummary):])
		case strings.HasPrefix(line, prefixFilename):
			ops.Filename = strings.TrimSpace(line[len(prefixFilename):])
		case strings.HasPrefix(line, prefixSummaryContent):
			inSummary = true
			if first := strings.TrimSpace(line[len(prefixSummaryContent):]); first != "" {
				summary = append(summary, first)
			}
		case inSummary:
			// blank lines are kept as paragraph breaks
			summary = append(summary, line)
		}
	}

	ops.SummaryContent = strings.TrimSpace(strings.Join(summary, "\n"))
	return ops
}

// ExtractAnswer returns the text after the first ANSWER: marker, trimmed.
// Without a marker the whole reply is used. An empty result becomes the
// fixed no-answer message.
func ExtractAnswer(reply string) string {
	answer := reply
	if _, after, found := strings.Cut(reply, prefixAnswer); found {
		answer = after
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return domain.MessageNoAnswer
	}
	return answer
}

func parseFlag(value string) bool {
	return strings.ToLower(strings.TrimSpace(value)) == "true"
}
