package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"mvdan.cc/xurls/v2"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/loader"
	"docsummarizer/internal/markdown"
	"docsummarizer/internal/service"
)

const (
	feedPrefix   = "feed:"
	pdfMediaType = "application/pdf"
)

var errUploadTooLarge = errors.New("upload is too large")

const helpText = "✖️ Send me a PDF, a web page URL, a YouTube link or `feed: <url>`\\."

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	chatID := message.Chat.ID

	var userID int64
	if message.From != nil {
		userID = message.From.ID
	}

	if message.Document != nil {
		return b.handleDocument(ctx, message.Document, chatID, userID)
	}

	text := strings.TrimSpace(message.Text)

	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		return b.handleStartCommand(ctx, chatID)
	case strings.HasPrefix(text, "/models"):
		return b.handleModelsCommand(ctx, chatID, userID)
	case strings.HasPrefix(text, "/history"):
		return b.handleHistoryCommand(ctx, chatID)
	default:
		return b.handleRandomText(ctx, text, chatID, userID)
	}
}

func (b *Bot) handleRandomText(ctx context.Context, text string, chatID int64, userID int64) error {
	src, err := sourceFromText(text)
	if err != nil {
		return b.sendMessage(ctx, chatID, helpText, nil)
	}

	return b.summarizeAndReply(ctx, src, chatID, userID)
}

func (b *Bot) handleDocument(
	ctx context.Context,
	doc *models.Document,
	chatID int64,
	userID int64,
) error {
	if !isPDF(doc) {
		return b.sendMessage(ctx, chatID, "✖️ Only PDF files are supported\\.", nil)
	}

	if doc.FileSize > b.maxUploadBytes {
		return b.sendMessage(ctx, chatID, tooLargeText(b.maxUploadBytes), nil)
	}

	data, err := b.downloadFile(ctx, doc.FileID)
	if err != nil {
		errs := []error{fmt.Errorf("download file: %w", err)}

		text := "❌ Failed to download the file\\."
		if errors.Is(err, errUploadTooLarge) {
			text = tooLargeText(b.maxUploadBytes)
		}

		if sendErr := b.sendMessage(ctx, chatID, text, nil); sendErr != nil {
			errs = append(errs, sendErr)
		}

		return errors.Join(errs...)
	}

	return b.summarizeAndReply(ctx, domain.NewPDFSource(doc.FileName, data), chatID, userID)
}

func (b *Bot) summarizeAndReply(
	ctx context.Context,
	src domain.Source,
	chatID int64,
	userID int64,
) error {
	return b.withSpinner(ctx, chatID, func() error {
		res, err := b.svc.Summarize(ctx, service.Request{
			Source: src,
			Model:  b.currentModel(ctx, userID),
		})
		if err != nil {
			errs := []error{fmt.Errorf("summarize: %w", err)}

			if sendErr := b.sendMessage(ctx, chatID, "❌ "+markdown.EscapeV2(describeError(err)), nil); sendErr != nil {
				errs = append(errs, sendErr)
			}

			return errors.Join(errs...)
		}

		return b.sendSummary(ctx, chatID, res)
	})
}

// currentModel falls back to the service default when settings are unreadable.
func (b *Bot) currentModel(ctx context.Context, userID int64) domain.ModelID {
	settings, err := b.settings.GetUserSettingsWithDefault(ctx, userID, b.svc.DefaultModel())
	if err != nil {
		b.log.WarnContext(ctx, "Failed to get user settings",
			"error", err,
			"userID", userID)

		return b.svc.DefaultModel()
	}

	return settings.ModelID
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(ctx, &tgbot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.api.FileDownloadLink(file), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			b.log.ErrorContext(ctx, "Failed to close response body",
				"error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, b.maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > b.maxUploadBytes {
		return nil, errUploadTooLarge
	}

	return data, nil
}

//nolint:gochecknoglobals // Compiled once, read-only.
var urlRe = xurls.Strict()

var errNoURL = errors.New("no URL in text")

// sourceFromText picks the first URL in text. YouTube links become YouTube
// sources, text starting with "feed:" becomes a feed source, anything else a
// website.
func sourceFromText(text string) (domain.Source, error) {
	text = strings.TrimSpace(text)

	rest, isFeed := strings.CutPrefix(text, feedPrefix)

	u := urlRe.FindString(rest)
	if u == "" {
		return domain.Source{}, errNoURL
	}

	switch {
	case isFeed:
		return domain.NewFeedSource(u), nil
	case isYouTubeLink(u):
		return domain.NewYouTubeSource(u), nil
	default:
		return domain.NewWebsiteSource(u), nil
	}
}

func isYouTubeLink(u string) bool {
	lower := strings.ToLower(u)
	if !strings.Contains(lower, "youtube.com/") && !strings.Contains(lower, "youtu.be/") {
		return false
	}

	_, err := loader.ExtractVideoID(u)

	return err == nil
}

func isPDF(doc *models.Document) bool {
	return doc.MimeType == pdfMediaType || strings.EqualFold(path.Ext(doc.FileName), ".pdf")
}

func tooLargeText(limit int64) string {
	return markdown.EscapeV2(fmt.Sprintf("✖️ The file is larger than %d MB.", limit>>20))
}

func describeError(err error) string {
	if kind, ok := domain.LoadErrorKindOf(err); ok {
		switch kind {
		case domain.LoadInvalidReference:
			return "This link does not look valid."
		case domain.LoadUnreachable:
			return "Could not reach the source. Check the link and try again."
		case domain.LoadUnsupported:
			return "This content has no text I can summarize."
		case domain.LoadMalformed:
			return "The file could not be read. Is it a valid PDF?"
		case domain.LoadNoCaptions:
			return "This video has no usable captions."
		}
	}

	switch {
	case errors.Is(err, domain.ErrServiceFailure):
		return "The summarization service failed. Please try again later."
	case errors.Is(err, domain.ErrUnknownModel):
		return "The selected model is not available. Pick another one with /models."
	case errors.Is(err, context.DeadlineExceeded):
		return "Summarization took too long."
	}

	return "Something went wrong."
}
