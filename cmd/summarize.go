package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/service"
)

func summarizeOnce(c *cli.Context, log *slog.Logger) error {
	src, err := sourceFromFlags(c)
	if err != nil {
		return err
	}

	stack, err := newCore(c.Context, log)
	if err != nil {
		return err
	}

	res, err := stack.service(log, nil).Summarize(c.Context, service.Request{
		Source: src,
		Model:  domain.ModelID(strings.TrimSpace(c.String("model"))),
	})
	if err != nil {
		return err
	}

	a := res.Analytics()

	w := c.App.Writer
	fmt.Fprintln(w, res.Text)
	fmt.Fprintf(w, "\n%d words · %d characters · %d sentences · %d paragraphs · ~%d min read · %d chunk(s)\n",
		a.WordCount, a.CharCount, a.SentenceCount, a.ParagraphCount, a.ReadingMinutes, res.ChunkCount)

	if dir := c.String("out"); dir != "" {
		path := filepath.Join(dir, res.FileName())

		if err := os.WriteFile(path, []byte(res.Text), 0o600); err != nil {
			return fmt.Errorf("write artifact: %w", err)
		}

		fmt.Fprintf(w, "Saved to %s\n", path)
	}

	return nil
}

func sourceFromFlags(c *cli.Context) (domain.Source, error) {
	var sources []domain.Source

	if path := c.String("pdf"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Source{}, fmt.Errorf("read pdf: %w", err)
		}

		sources = append(sources, domain.NewPDFSource(filepath.Base(path), data))
	}
	if u := c.String("url"); u != "" {
		sources = append(sources, domain.NewWebsiteSource(u))
	}
	if u := c.String("youtube"); u != "" {
		sources = append(sources, domain.NewYouTubeSource(u))
	}
	if u := c.String("feed"); u != "" {
		sources = append(sources, domain.NewFeedSource(u))
	}

	if len(sources) != 1 {
		return domain.Source{}, errNoSource
	}

	return sources[0], nil
}

func listModels(c *cli.Context) error {
	catalog, err := domain.LoadCatalog()
	if err != nil {
		return fmt.Errorf("load model catalog: %w", err)
	}

	w := c.App.Writer
	for _, m := range catalog.Models() {
		fmt.Fprintf(w, "%-48s %-10s %-8s %s\n", m.ID, m.Category, m.ContextSize, m.Name)
	}

	return nil
}
