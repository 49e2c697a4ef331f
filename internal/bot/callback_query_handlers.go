package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/markdown"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *models.CallbackQuery) error {
	data := strings.TrimSpace(callback.Data)

	if modelID, ok := strings.CutPrefix(data, modelCallbackPrefix); ok {
		return b.handleModelQuery(ctx, domain.ModelID(modelID), callback)
	}

	return b.answerCallback(ctx, callback, "")
}

func (b *Bot) handleModelQuery(
	ctx context.Context,
	modelID domain.ModelID,
	callback *models.CallbackQuery,
) error {
	model, err := b.svc.Model(modelID)
	if err != nil {
		return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("resolve model: %w", err))
	}

	if err = b.settings.UpsertUserSettings(ctx, &domain.UserSettings{
		UserID:  callback.From.ID,
		ModelID: model.ID,
	}); err != nil {
		return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("upsert user settings: %w", err))
	}

	var errs []error

	if err = b.answerCallback(ctx, callback, "✅ Model is updated."); err != nil {
		errs = append(errs, err)
	}

	text := "✅ Summaries will now use *" + markdown.EscapeV2(model.Label()) + "*\\."
	if err = b.sendMessage(ctx, callbackChatID(callback), text, nil); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (b *Bot) answerCallback(ctx context.Context, callback *models.CallbackQuery, text string) error {
	err := b.rateLimiter.Do(ctx, callbackChatID(callback), func(ctx context.Context) error {
		_, err := b.api.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
			CallbackQueryID: callback.ID,
			Text:            text,
		})

		return err
	})
	if err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}

	return nil
}

func (b *Bot) errorCallbackAnswer(ctx context.Context, callback *models.CallbackQuery, err error) error {
	if sendErr := b.answerCallback(ctx, callback, "❌ Failed."); sendErr != nil {
		return errors.Join(err, sendErr)
	}

	return err
}
