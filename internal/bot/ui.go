package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/markdown"
)

const sendSpinnerInterval = 4 * time.Second

func (b *Bot) sendTyping(ctx context.Context, chatID int64) {
	err := b.rateLimiter.Do(ctx, chatID, func(ctx context.Context) error {
		_, err := b.api.SendChatAction(ctx, &tgbot.SendChatActionParams{
			ChatID: chatID,
			Action: models.ChatActionTyping,
		})

		return err
	})
	if err != nil && ctx.Err() == nil {
		b.log.ErrorContext(ctx, "Failed to send chat action",
			"error", err)
	}
}

func (b *Bot) withSpinner(ctx context.Context, chatID int64, fn func() error) error {
	spinCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		b.sendTyping(spinCtx, chatID)

		t := time.NewTicker(sendSpinnerInterval)
		defer t.Stop()

		for {
			select {
			case <-spinCtx.Done():
				return
			case <-t.C:
				b.sendTyping(spinCtx, chatID)
			}
		}
	}()

	return fn()
}

// sendMessage sends text that is already MarkdownV2-escaped.
func (b *Bot) sendMessage(
	ctx context.Context,
	chatID int64,
	text string,
	markup models.ReplyMarkup,
) error {
	return b.rateLimiter.Do(ctx, chatID, func(ctx context.Context) error {
		params := &tgbot.SendMessageParams{
			ChatID:    chatID,
			Text:      text,
			ParseMode: models.ParseModeMarkdown,
			LinkPreviewOptions: &models.LinkPreviewOptions{
				IsDisabled: tgbot.True(),
			},
		}
		if markup != nil {
			params.ReplyMarkup = markup
		}

		if _, err := b.api.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("send message: %w", err)
		}

		return nil
	})
}

func (b *Bot) sendSummary(ctx context.Context, chatID int64, res *domain.SummaryResult) error {
	var errs []error

	parts := markdown.SplitV2(res.Text, messageLimit)
	for _, part := range parts {
		if err := b.sendMessage(ctx, chatID, part, nil); err != nil {
			errs = append(errs, err)
		}
	}

	if err := b.sendMessage(ctx, chatID, analyticsText(res), nil); err != nil {
		errs = append(errs, err)
	}

	err := b.rateLimiter.Do(ctx, chatID, func(ctx context.Context) error {
		_, err := b.api.SendDocument(ctx, &tgbot.SendDocumentParams{
			ChatID: chatID,
			Document: &models.InputFileUpload{
				Filename: res.FileName(),
				Data:     strings.NewReader(res.Text),
			},
		})

		return err
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("send document: %w", err))
	}

	return errors.Join(errs...)
}

func analyticsText(res *domain.SummaryResult) string {
	a := res.Analytics()

	line := fmt.Sprintf("📊 %d words · %d characters · %d sentences · %d paragraphs · ~%d min read",
		a.WordCount, a.CharCount, a.SentenceCount, a.ParagraphCount, a.ReadingMinutes)

	details := fmt.Sprintf("%s · %s · %d document(s), %d chunk(s)",
		res.InputType, res.ModelID, res.DocumentCount, res.ChunkCount)

	return markdown.EscapeV2(line) + "\n" + "_" + markdown.EscapeV2(details) + "_"
}
