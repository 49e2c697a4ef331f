package domain

import (
	"strings"
	"unicode/utf8"
)

const wordsPerMinute = 200

// Analytics are derived from summary text and never stored.
type Analytics struct {
	WordCount      int `json:"wordCount"`
	CharCount      int `json:"charCount"`
	SentenceCount  int `json:"sentenceCount"`
	ParagraphCount int `json:"paragraphCount"`
	ReadingMinutes int `json:"readingMinutes"`
}

func AnalyzeSummary(text string) Analytics {
	words := WordCount(text)

	return Analytics{
		WordCount:      words,
		CharCount:      utf8.RuneCountInString(text),
		SentenceCount:  SentenceCount(text),
		ParagraphCount: ParagraphCount(text),
		ReadingMinutes: ReadingMinutes(words),
	}
}

func WordCount(text string) int {
	return len(strings.Fields(text))
}

// SentenceCount counts terminal punctuation marks, not grammatical sentences.
func SentenceCount(text string) int {
	return strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
}

func ParagraphCount(text string) int {
	count := 0
	for line := range strings.SplitSeq(text, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}

	return count
}

func ReadingMinutes(words int) int {
	return max(1, words/wordsPerMinute)
}
