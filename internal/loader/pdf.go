package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"docsummarizer/internal/domain"
)

type PDFLoader struct {
	log *slog.Logger
}

func NewPDFLoader(log *slog.Logger) *PDFLoader {
	return &PDFLoader{log: log}
}

// Load returns one document per page in ascending page order. The upload is
// staged in a temporary file that is removed on every exit path.
func (l *PDFLoader) Load(
	ctx context.Context,
	src domain.Source,
) (docs []domain.Document, err error) {
	if len(src.PDFBytes) == 0 {
		return nil, domain.NewLoadError(domain.LoadMalformed, domain.SourcePDF, errors.New("file is empty"))
	}

	path, err := l.stage(ctx, src.PDFBytes)
	if err != nil {
		return nil, err
	}
	defer func() {
		if removeErr := os.Remove(path); removeErr != nil {
			l.log.ErrorContext(ctx, "Failed to remove temporary file",
				"error", removeErr,
				"path", path)
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = domain.NewLoadError(domain.LoadMalformed, domain.SourcePDF, fmt.Errorf("parse pdf: %v", r))
		}
	}()

	return l.parse(ctx, path, src.Reference())
}

func (l *PDFLoader) stage(ctx context.Context, data []byte) (string, error) {
	f, err := os.CreateTemp("", "docsummarizer-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		if removeErr := os.Remove(f.Name()); removeErr != nil {
			l.log.ErrorContext(ctx, "Failed to remove temporary file",
				"error", removeErr,
				"path", f.Name())
		}

		return "", fmt.Errorf("write temp file: %w", err)
	}

	if err = f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", errors.Join(err, os.Remove(f.Name())))
	}

	return f.Name(), nil
}

func (l *PDFLoader) parse(
	ctx context.Context,
	path string,
	source string,
) ([]domain.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, domain.NewLoadError(domain.LoadMalformed, domain.SourcePDF, fmt.Errorf("open pdf: %w", err))
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			l.log.ErrorContext(ctx, "Failed to close pdf file",
				"error", closeErr,
				"path", path)
		}
	}()

	total := r.NumPage()
	if total == 0 {
		return nil, domain.NewLoadError(domain.LoadMalformed, domain.SourcePDF, errors.New("document has no pages"))
	}

	docs := make([]domain.Document, 0, total)
	extracted := 0

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := ""

		page := r.Page(i)
		if !page.V.IsNull() {
			text, err = page.GetPlainText(nil)
			if err != nil {
				return nil, domain.NewLoadError(
					domain.LoadMalformed,
					domain.SourcePDF,
					fmt.Errorf("extract page %d: %w", i, err),
				)
			}
		}

		if strings.TrimSpace(text) != "" {
			extracted++
		}

		docs = append(docs, domain.NewDocument(text, map[string]any{
			domain.MetaSource:     source,
			domain.MetaPage:       strconv.Itoa(i),
			domain.MetaTotalPages: strconv.Itoa(total),
		}))
	}

	if extracted == 0 {
		return nil, domain.NewLoadError(domain.LoadUnsupported, domain.SourcePDF, errors.New("document has no extractable text"))
	}

	return docs, nil
}
