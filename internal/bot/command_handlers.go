package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docsummarizer/internal/markdown"
	"docsummarizer/internal/service"
)

const welcomeText = `🤖 *Welcome to Document Summarizer\!*

Send me one of:

– a PDF file
– a web page URL
– a YouTube video link
– ` + "`feed: <url>`" + ` for an RSS / Atom / JSON feed

and I will reply with a concise summary and a \.txt copy of it\.

Choose the model with /models and see recent summaries with /history\.`

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64) error {
	return b.sendMessage(ctx, chatID, welcomeText, nil)
}

func (b *Bot) handleModelsCommand(ctx context.Context, chatID int64, userID int64) error {
	current := b.currentModel(ctx, userID)

	model, err := b.svc.Model(current)
	if err != nil {
		model, err = b.svc.Model("")
		if err != nil {
			return fmt.Errorf("resolve default model: %w", err)
		}
	}

	text := fmt.Sprintf("🧠 *Current model:* %s\n\n%s\n\nChoose a model below:",
		markdown.EscapeV2(model.Label()),
		markdown.EscapeV2(model.Description))

	return b.sendMessage(ctx, chatID, text, modelsKeyboard(b.svc.Models(), model.ID))
}

func (b *Bot) handleHistoryCommand(ctx context.Context, chatID int64) error {
	summaries, err := b.svc.History(ctx, historyLimit)
	if errors.Is(err, service.ErrHistoryDisabled) {
		return b.sendMessage(ctx, chatID, "✖️ History is disabled\\.", nil)
	}
	if err != nil {
		errs := []error{fmt.Errorf("get history: %w", err)}

		if sendErr := b.sendMessage(ctx, chatID, "❌ Failed\\.", nil); sendErr != nil {
			errs = append(errs, sendErr)
		}

		return errors.Join(errs...)
	}

	if len(summaries) == 0 {
		return b.sendMessage(ctx, chatID, "✖️ History is empty\\.", nil)
	}

	var message strings.Builder
	fmt.Fprintf(&message, "🗂 *Last %d summaries:*\n\n", len(summaries))

	for i, s := range summaries {
		line := fmt.Sprintf("%d. %s · %s · %s\n%s",
			i+1,
			s.CreatedAt.Format("2006-01-02 15:04"),
			s.InputType,
			s.ModelID,
			s.Source)

		message.WriteString(markdown.EscapeV2(line))
		message.WriteString("\n\n")
	}

	return b.sendMessage(ctx, chatID, strings.TrimSpace(message.String()), nil)
}
