package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"docsummarizer/internal/domain"
)

//nolint:gochecknoglobals // Read-only selector list.
var noiseSelectors = []string{
	"script", "style", "noscript", "iframe", "svg", "template",
	"header", "footer", "nav", "aside", "form",
	".advertisement", ".ad", ".sidebar", ".comments", ".cookie-banner",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]",
}

const blockSelectors = "h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td, th, dt, dd, figcaption"

type WebsiteLoader struct {
	log      *slog.Logger
	fetcher  *pageFetcher
	detector LanguageDetector
}

func NewWebsiteLoader(
	log *slog.Logger,
	fetcher *pageFetcher,
	detector LanguageDetector,
) *WebsiteLoader {
	return &WebsiteLoader{log: log, fetcher: fetcher, detector: detector}
}

type extractedPage struct {
	title       string
	description string
	language    string
	text        string
}

func (l *WebsiteLoader) Load(
	ctx context.Context,
	src domain.Source,
) ([]domain.Document, error) {
	u, err := parseHTTPURL(src.URL, domain.SourceWebsite)
	if err != nil {
		return nil, err
	}

	page, err := l.fetcher.get(ctx, u, domain.SourceWebsite, acceptHTML)
	if err != nil {
		return nil, err
	}

	var extracted extractedPage

	switch page.ContentType {
	case "text/html", "application/xhtml+xml":
		extracted = l.extractHTML(ctx, page)
	case "text/plain":
		extracted = extractedPage{text: normalizeLines(string(page.Body))}
	default:
		return nil, domain.NewLoadError(
			domain.LoadUnsupported,
			domain.SourceWebsite,
			fmt.Errorf("unsupported content type %q", page.ContentType),
		)
	}

	if extracted.text == "" {
		return nil, domain.NewLoadError(
			domain.LoadUnsupported,
			domain.SourceWebsite,
			errors.New("page has no extractable text"),
		)
	}

	meta := map[string]any{domain.MetaSource: src.URL}
	if extracted.title != "" {
		meta[domain.MetaTitle] = extracted.title
	}
	if extracted.description != "" {
		meta[domain.MetaDescription] = extracted.description
	}

	language := extracted.language
	if language == "" && l.detector != nil {
		if detected, ok := l.detector.DetectLanguage(extracted.text); ok {
			language = detected
		}
	}
	if language != "" {
		meta[domain.MetaLanguage] = language
	}

	return []domain.Document{domain.NewDocument(extracted.text, meta)}, nil
}

// extractHTML prefers the readability article and falls back to the page body
// with navigation and other noise removed.
func (l *WebsiteLoader) extractHTML(ctx context.Context, page *fetchedPage) extractedPage {
	var out extractedPage

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		l.log.WarnContext(ctx, "Failed to parse HTML document",
			"error", err,
			"url", page.URL.String())
	} else {
		out.title = strings.TrimSpace(doc.Find("title").First().Text())
		if out.title == "" {
			out.title = strings.TrimSpace(doc.Find("meta[property='og:title']").AttrOr("content", ""))
		}

		out.description = strings.TrimSpace(doc.Find("meta[name='description']").AttrOr("content", ""))
		if out.description == "" {
			out.description = strings.TrimSpace(doc.Find("meta[property='og:description']").AttrOr("content", ""))
		}

		out.language = normalizeLanguageTag(doc.Find("html").AttrOr("lang", ""))
	}

	article, err := readability.FromReader(bytes.NewReader(page.Body), page.URL)
	if err == nil {
		out.text = normalizeLines(article.TextContent)
		if out.title == "" {
			out.title = strings.TrimSpace(article.Title)
		}
		if out.description == "" {
			out.description = strings.TrimSpace(article.Excerpt)
		}
	} else {
		l.log.WarnContext(ctx, "Failed to extract article",
			"error", err,
			"url", page.URL.String())
	}

	if out.text == "" && doc != nil {
		out.text = bodyText(doc)
	}

	return out
}

func bodyText(doc *goquery.Document) string {
	doc.Find(strings.Join(noiseSelectors, ", ")).Remove()

	root := doc.Find("article, main, [role=main], #content, .content").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var lines []string
	root.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are collected at the innermost level.
		if s.Find(blockSelectors).Length() > 0 {
			return
		}

		if line := strings.Join(strings.Fields(s.Text()), " "); line != "" {
			lines = append(lines, line)
		}
	})

	if len(lines) == 0 {
		return normalizeLines(root.Text())
	}

	return strings.Join(lines, "\n")
}

// normalizeLanguageTag reduces "en-US" style tags to the primary subtag.
func normalizeLanguageTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}

	return tag
}
