package loader

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docsummarizer/internal/domain"
)

type stubDetector struct {
	code  string
	calls int
}

func (d *stubDetector) DetectLanguage(string) (string, bool) {
	d.calls++
	return d.code, d.code != ""
}

const articleHTML = `<!doctype html>
<html lang="en-US">
<head>
<title>Go Concurrency Patterns</title>
<meta name="description" content="A tour of pipelines and cancellation.">
</head>
<body>
<nav><a href="/">Home</a> <a href="/blog">Blog</a></nav>
<article>
<h1>Go Concurrency Patterns</h1>
<p>Go's concurrency primitives make it easy to construct streaming data pipelines
that make efficient use of I/O and multiple CPUs.</p>
<p>This article presents examples of such pipelines, highlights subtleties that
arise when operations fail, and introduces techniques for dealing with failures cleanly.</p>
<p>A pipeline is a series of stages connected by channels, where each stage is a group
of goroutines running the same function.</p>
<p>In each stage, the goroutines receive values from upstream via inbound channels,
perform some function on that data, usually producing new values, and send values
downstream via outbound channels.</p>
<p>Each stage has any number of inbound and outbound channels, except the first and
last stages, which have only outbound or inbound channels, respectively.</p>
</article>
<footer>Copyright notice</footer>
</body>
</html>`

func newTestWebsiteLoader(detector LanguageDetector) *WebsiteLoader {
	log := slog.New(slog.DiscardHandler)
	return NewWebsiteLoader(log, newPageFetcher(http.DefaultClient, DefaultMaxBodyBytes), detector)
}

func TestWebsiteLoaderExtractsArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("User-Agent"), "Mozilla") {
			t.Errorf("expected browser user agent, got %q", r.Header.Get("User-Agent"))
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	detector := &stubDetector{code: "de"}
	l := newTestWebsiteLoader(detector)

	docs, err := l.Load(context.Background(), domain.NewWebsiteSource(srv.URL+"/post"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("expected one document, got %d", len(docs))
	}

	d := docs[0]
	if !strings.Contains(d.Content, "streaming data pipelines") {
		t.Fatalf("expected article text, got %q", d.Content)
	}
	if strings.Contains(d.Content, "Copyright notice") {
		t.Fatalf("expected footer to be dropped, got %q", d.Content)
	}

	if d.MetaString(domain.MetaTitle) != "Go Concurrency Patterns" {
		t.Fatalf("unexpected title: %q", d.MetaString(domain.MetaTitle))
	}
	if d.MetaString(domain.MetaDescription) != "A tour of pipelines and cancellation." {
		t.Fatalf("unexpected description: %q", d.MetaString(domain.MetaDescription))
	}
	if d.MetaString(domain.MetaLanguage) != "en" {
		t.Fatalf("expected language from html lang attribute, got %q", d.MetaString(domain.MetaLanguage))
	}
	if detector.calls != 0 {
		t.Fatalf("expected detector to be skipped when the page declares its language")
	}
	if d.MetaString(domain.MetaSource) != srv.URL+"/post" {
		t.Fatalf("unexpected source: %q", d.MetaString(domain.MetaSource))
	}
}

func TestWebsiteLoaderPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("  first line  \n\n\nsecond   line\n"))
	}))
	defer srv.Close()

	detector := &stubDetector{code: "fr"}
	l := newTestWebsiteLoader(detector)

	docs, err := l.Load(context.Background(), domain.NewWebsiteSource(srv.URL))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if docs[0].Content != "first line\nsecond line" {
		t.Fatalf("unexpected content: %q", docs[0].Content)
	}
	if docs[0].MetaString(domain.MetaLanguage) != "fr" {
		t.Fatalf("expected detected language, got %q", docs[0].MetaString(domain.MetaLanguage))
	}
}

func TestWebsiteLoaderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/image":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
		case "/empty":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body><script>var x = 1;</script></body></html>"))
		}
	}))
	defer srv.Close()

	l := newTestWebsiteLoader(&stubDetector{})

	tests := []struct {
		url  string
		want error
	}{
		{srv.URL + "/missing", domain.ErrUnreachable},
		{srv.URL + "/image", domain.ErrUnsupported},
		{srv.URL + "/empty", domain.ErrUnsupported},
		{"http://127.0.0.1:1/unreachable", domain.ErrUnreachable},
		{"mailto:someone@example.com", domain.ErrInvalidReference},
		{"/relative/path", domain.ErrInvalidReference},
		{"", domain.ErrInvalidReference},
	}

	for _, tt := range tests {
		_, err := l.Load(context.Background(), domain.NewWebsiteSource(tt.url))
		if !errors.Is(err, tt.want) {
			t.Fatalf("%q: expected %v, got %v", tt.url, tt.want, err)
		}
	}
}

func TestNormalizeLanguageTag(t *testing.T) {
	tests := map[string]string{
		"en-US": "en",
		" DE ":  "de",
		"pt_BR": "pt",
		"":      "",
	}

	for in, want := range tests {
		if got := normalizeLanguageTag(in); got != want {
			t.Fatalf("%q: expected %q, got %q", in, want, got)
		}
	}
}
