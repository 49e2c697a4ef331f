package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"docsummarizer/internal/domain"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

type fetchedPage struct {
	URL         *url.URL
	ContentType string
	Body        []byte
}

type pageFetcher struct {
	client   *http.Client
	maxBytes int64
}

func newPageFetcher(client *http.Client, maxBytes int64) *pageFetcher {
	return &pageFetcher{client: client, maxBytes: maxBytes}
}

// parseHTTPURL accepts only absolute http(s) URLs with a host.
func parseHTTPURL(raw string, kind domain.SourceKind) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domain.NewLoadError(domain.LoadInvalidReference, kind, errors.New("URL is empty"))
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, domain.NewLoadError(domain.LoadInvalidReference, kind, fmt.Errorf("parse URL: %w", err))
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, domain.NewLoadError(
			domain.LoadInvalidReference,
			kind,
			fmt.Errorf("unsupported URL scheme %q", u.Scheme),
		)
	}

	if u.Host == "" {
		return nil, domain.NewLoadError(domain.LoadInvalidReference, kind, errors.New("URL has no host"))
	}

	return u, nil
}

func (f *pageFetcher) get(
	ctx context.Context,
	u *url.URL,
	kind domain.SourceKind,
	accept string,
) (*fetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, domain.NewLoadError(domain.LoadInvalidReference, kind, fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req) //nolint:gosec // User supplied URL is the point.
	if err != nil {
		return nil, domain.NewLoadError(domain.LoadUnreachable, kind, fmt.Errorf("do request: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, domain.NewLoadError(
			domain.LoadUnreachable,
			kind,
			fmt.Errorf("do request: unexpected status: %d", resp.StatusCode),
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, domain.NewLoadError(domain.LoadUnreachable, kind, fmt.Errorf("read body: %w", err))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}

	final := u
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}

	return &fetchedPage{URL: final, ContentType: mediaType, Body: body}, nil
}

// normalizeLines trims every line and drops blank ones.
func normalizeLines(text string) string {
	lines := strings.Split(text, "\n")
	clean := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			clean = append(clean, line)
		}
	}

	return strings.Join(clean, "\n")
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}
