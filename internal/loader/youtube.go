package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"docsummarizer/internal/domain"
)

const errorSnippetRunes = 100

var ErrNotYouTubeURL = errors.New("not a YouTube video URL")

// Transcript is the caption text of one video.
type Transcript struct {
	Text         string
	Language     string
	LanguageCode string
	IsGenerated  bool
	Title        string
	Author       string
}

type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoID string) (*Transcript, error)
}

// ExtractVideoID supports youtu.be/ID and watch?v=ID links. The id ends at the
// next '&' or '?'.
func ExtractVideoID(rawURL string) (string, error) {
	var rest string

	switch {
	case strings.Contains(rawURL, "youtu.be/"):
		_, rest, _ = strings.Cut(rawURL, "youtu.be/")
	case strings.Contains(rawURL, "watch?v="):
		_, rest, _ = strings.Cut(rawURL, "watch?v=")
	default:
		return "", ErrNotYouTubeURL
	}

	if i := strings.IndexAny(rest, "&?"); i >= 0 {
		rest = rest[:i]
	}

	if rest == "" {
		return "", fmt.Errorf("%w: empty video id", ErrNotYouTubeURL)
	}

	return rest, nil
}

// YouTubeLoader tries the primary transcript fetcher and then the fallback.
type YouTubeLoader struct {
	log      *slog.Logger
	primary  TranscriptFetcher
	fallback TranscriptFetcher
}

func NewYouTubeLoader(
	log *slog.Logger,
	primary TranscriptFetcher,
	fallback TranscriptFetcher,
) *YouTubeLoader {
	return &YouTubeLoader{log: log, primary: primary, fallback: fallback}
}

func (l *YouTubeLoader) Load(
	ctx context.Context,
	src domain.Source,
) ([]domain.Document, error) {
	videoID, err := ExtractVideoID(src.URL)
	if err != nil {
		return nil, domain.NewLoadError(domain.LoadInvalidReference, domain.SourceYouTube, err)
	}

	transcript, primaryErr := fetchNonEmpty(ctx, l.primary, videoID)
	if primaryErr == nil {
		return []domain.Document{transcriptDocument(src.URL, videoID, transcript)}, nil
	}

	l.log.WarnContext(ctx, "Failed to fetch transcript, trying fallback",
		"error", primaryErr,
		"videoID", videoID)

	transcript, fallbackErr := fetchNonEmpty(ctx, l.fallback, videoID)
	if fallbackErr == nil {
		return []domain.Document{transcriptDocument(src.URL, videoID, transcript)}, nil
	}

	return nil, domain.NewLoadError(
		domain.LoadNoCaptions,
		domain.SourceYouTube,
		fmt.Errorf(
			"primary: %s | fallback: %s",
			truncate(primaryErr.Error(), errorSnippetRunes),
			truncate(fallbackErr.Error(), errorSnippetRunes),
		),
	)
}

func fetchNonEmpty(
	ctx context.Context,
	fetcher TranscriptFetcher,
	videoID string,
) (*Transcript, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher is not configured")
	}

	t, err := fetcher.FetchTranscript(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if t == nil || strings.TrimSpace(t.Text) == "" {
		return nil, errors.New("transcript is empty")
	}

	return t, nil
}

func transcriptDocument(source string, videoID string, t *Transcript) domain.Document {
	meta := map[string]any{
		domain.MetaSource:       source,
		domain.MetaVideoID:      videoID,
		domain.MetaLanguage:     t.Language,
		domain.MetaLanguageCode: t.LanguageCode,
		domain.MetaIsGenerated:  t.IsGenerated,
	}

	if t.Title != "" {
		meta[domain.MetaTitle] = t.Title
	}
	if t.Author != "" {
		meta[domain.MetaAuthor] = t.Author
	}

	return domain.NewDocument(t.Text, meta)
}
