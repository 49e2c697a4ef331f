package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"docsummarizer/internal/domain"
)

const acceptFeed = "application/rss+xml, application/atom+xml, application/feed+json, " +
	"application/xml;q=0.9, text/xml;q=0.9, */*;q=0.8"

// FeedLoader turns every RSS, Atom or JSON feed item into a document.
type FeedLoader struct {
	log     *slog.Logger
	fetcher *pageFetcher
	parser  *gofeed.Parser
}

func NewFeedLoader(log *slog.Logger, fetcher *pageFetcher) *FeedLoader {
	return &FeedLoader{log: log, fetcher: fetcher, parser: gofeed.NewParser()}
}

func (l *FeedLoader) Load(
	ctx context.Context,
	src domain.Source,
) ([]domain.Document, error) {
	u, err := parseHTTPURL(src.URL, domain.SourceFeed)
	if err != nil {
		return nil, err
	}

	page, err := l.fetcher.get(ctx, u, domain.SourceFeed, acceptFeed)
	if err != nil {
		return nil, err
	}

	parsed, err := l.parser.Parse(bytes.NewReader(page.Body))
	if err != nil {
		return nil, domain.NewLoadError(domain.LoadUnsupported, domain.SourceFeed, fmt.Errorf("parse feed: %w", err))
	}

	docs := make([]domain.Document, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}

		doc, ok := l.itemDocument(ctx, src.URL, item)
		if !ok {
			continue
		}

		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, domain.NewLoadError(domain.LoadUnsupported, domain.SourceFeed, errors.New("feed has no items"))
	}

	return docs, nil
}

func (l *FeedLoader) itemDocument(
	ctx context.Context,
	source string,
	item *gofeed.Item,
) (domain.Document, bool) {
	title := strings.TrimSpace(item.Title)

	raw := item.Content
	if strings.TrimSpace(raw) == "" {
		raw = item.Description
	}

	text, err := markupText(raw)
	if err != nil {
		l.log.WarnContext(ctx, "Failed to strip feed item markup",
			"error", err,
			"link", item.Link)

		text = normalizeLines(raw)
	}

	if title == "" && text == "" {
		return domain.Document{}, false
	}

	content := title
	if text != "" {
		if content != "" {
			content += "\n\n"
		}
		content += text
	}

	meta := map[string]any{domain.MetaSource: source}
	if title != "" {
		meta[domain.MetaTitle] = title
	}
	if link := strings.TrimSpace(item.Link); link != "" {
		meta[domain.MetaLink] = link
	}
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		meta[domain.MetaAuthor] = strings.TrimSpace(item.Author.Name)
	}

	switch {
	case item.PublishedParsed != nil:
		meta[domain.MetaPublished] = item.PublishedParsed.UTC().Format(time.RFC3339)
	case strings.TrimSpace(item.Published) != "":
		meta[domain.MetaPublished] = strings.TrimSpace(item.Published)
	}

	return domain.NewDocument(content, meta), true
}

// markupText returns the visible text of an HTML fragment, one block per line.
func markupText(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}

	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, blockquote, pre").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return normalizeLines(doc.Text()), nil
}
