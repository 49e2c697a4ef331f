package summarizer

import (
	"strings"

	"docsummarizer/internal/domain"
)

const documentSeparator = "\n\n"

// ConciseSummaryPrompt is used both for the single pass and for every map and
// reduce pass.
func ConciseSummaryPrompt(text string) string {
	b := strings.Builder{}
	b.WriteString("Write a concise summary of the following:\n\n\"")
	b.WriteString(text)
	b.WriteString("\"\n\nCONCISE SUMMARY:")

	return b.String()
}

// JoinContents concatenates document contents in order, separated by a blank
// line.
func JoinContents(docs []domain.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Content)
	}

	return strings.Join(parts, documentSeparator)
}
