package domain

import (
	"fmt"
	"strings"
)

type SourceKind string

const (
	SourcePDF     SourceKind = "pdf"
	SourceWebsite SourceKind = "website"
	SourceYouTube SourceKind = "youtube"
	SourceFeed    SourceKind = "feed"
)

// Source describes where the text to summarize comes from. Exactly one of
// PDFBytes or URL is meaningful, depending on Kind.
type Source struct {
	Kind     SourceKind
	PDFBytes []byte
	FileName string
	URL      string
}

func NewPDFSource(fileName string, data []byte) Source {
	return Source{Kind: SourcePDF, FileName: strings.TrimSpace(fileName), PDFBytes: data}
}

func NewWebsiteSource(rawURL string) Source {
	return Source{Kind: SourceWebsite, URL: strings.TrimSpace(rawURL)}
}

func NewYouTubeSource(rawURL string) Source {
	return Source{Kind: SourceYouTube, URL: strings.TrimSpace(rawURL)}
}

func NewFeedSource(rawURL string) Source {
	return Source{Kind: SourceFeed, URL: strings.TrimSpace(rawURL)}
}

func ParseSourceKind(raw string) (SourceKind, error) {
	switch kind := SourceKind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case SourcePDF, SourceWebsite, SourceYouTube, SourceFeed:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown source kind %q", raw)
	}
}

// InputType is the lowercase label used in artifact file names.
func (s Source) InputType() string {
	return string(s.Kind)
}

// Reference is a human readable pointer to the source for logs and history.
func (s Source) Reference() string {
	if s.Kind == SourcePDF {
		if s.FileName == "" {
			return "upload.pdf"
		}

		return s.FileName
	}

	return s.URL
}
