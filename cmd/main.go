package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"docsummarizer/internal/chunker"
	"docsummarizer/internal/config"
	"docsummarizer/internal/domain"
	"docsummarizer/internal/loader"
	"docsummarizer/internal/service"
	"docsummarizer/internal/summarizer"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(log)

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.ErrorContext(ctx, "Failed to run",
			"error", err)

		stop()
		os.Exit(1)
	}
}

func newApp(log *slog.Logger) *cli.App {
	return &cli.App{
		Name:           "docsummarizer",
		Usage:          "summarize PDFs, web pages, YouTube videos and feeds with Groq-hosted models",
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the web UI, the JSON API and, when TELEGRAM_TOKEN is set, the Telegram bot",
				Action: func(c *cli.Context) error {
					return serve(c.Context, log)
				},
			},
			{
				Name:  "summarize",
				Usage: "summarize one source and print the result",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "pdf", Usage: "path to a PDF file"},
					&cli.StringFlag{Name: "url", Usage: "web page URL"},
					&cli.StringFlag{Name: "youtube", Usage: "YouTube video URL"},
					&cli.StringFlag{Name: "feed", Usage: "RSS, Atom or JSON feed URL"},
					&cli.StringFlag{Name: "model", Usage: "model id, defaults to DEFAULT_MODEL"},
					&cli.StringFlag{Name: "out", Usage: "directory to write the .txt artifact to"},
				},
				Action: func(c *cli.Context) error {
					return summarizeOnce(c, log)
				},
			},
			{
				Name:  "models",
				Usage: "list the available models",
				Action: func(c *cli.Context) error {
					return listModels(c)
				},
			},
		},
	}
}

type core struct {
	cfg     config.Config
	catalog *domain.Catalog
	loader  *loader.Loader
	summary summarizer.Summarizer
}

// newCore builds the loading and summarization stack shared by every command.
func newCore(ctx context.Context, log *slog.Logger) (*core, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	catalog, err := domain.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load model catalog: %w", err)
	}

	completer, err := summarizer.NewGroqCompleter(cfg.APIKey(), cfg.GroqBaseURL)
	if err != nil {
		return nil, fmt.Errorf("create completer: %w", err)
	}

	splitter, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("create splitter: %w", err)
	}

	pipeline := summarizer.NewPipeline(log, completer,
		summarizer.WithSplitter(splitter),
		summarizer.WithCombineThreshold(cfg.ChunkCombined))

	log.InfoContext(ctx, "Summarizer is initialized",
		"baseURL", cfg.GroqBaseURL,
		"chunkSize", cfg.ChunkSize,
		"chunkOverlap", cfg.ChunkOverlap,
		"cacheSize", cfg.CacheSize)

	return &core{
		cfg:     cfg,
		catalog: catalog,
		loader: loader.New(log, loader.Config{
			FetchTimeout: cfg.FetchTimeout,
			MaxBodyBytes: cfg.MaxUploadBytes,
		}),
		summary: summarizer.NewCachedSummarizer(log, pipeline, cfg.CacheSize, cfg.CacheTTL),
	}, nil
}

func (c *core) service(log *slog.Logger, history service.HistoryStore) *service.Service {
	return service.New(log, c.catalog, c.loader, c.summary, history,
		service.WithDefaultModel(domain.ModelID(c.cfg.DefaultModel)))
}

var errNoSource = errors.New("exactly one of --pdf, --url, --youtube or --feed is required")
