package bot

import (
	"github.com/go-telegram/bot/models"

	"docsummarizer/internal/domain"
)

const modelCallbackPrefix = "model:"

func modelsKeyboard(catalog []domain.ModelConfig, current domain.ModelID) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(catalog))

	for _, m := range catalog {
		label := m.Label()
		if m.ID == current {
			label = "✅ " + label
		}

		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         label,
			CallbackData: modelCallbackPrefix + string(m.ID),
		}})
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
