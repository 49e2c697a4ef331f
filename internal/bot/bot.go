// Package bot is the Telegram front end: it turns uploaded PDFs and links into
// summaries and answers with the text and a .txt artifact.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/service"
)

const (
	updateProcessingTimeout = 5 * time.Minute
	pollTimeout             = time.Minute
	historyLimit            = 10
	messageLimit            = 4096
	defaultMaxUploadBytes   = 20 << 20
)

// telegramAPI is the subset of *tgbot.Bot used by the handlers.
type telegramAPI interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *tgbot.SendDocumentParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *tgbot.SendChatActionParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *tgbot.AnswerCallbackQueryParams) (bool, error)
	GetFile(ctx context.Context, params *tgbot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

type Summarizer interface {
	Summarize(ctx context.Context, req service.Request) (*domain.SummaryResult, error)
	Models() []domain.ModelConfig
	Model(id domain.ModelID) (domain.ModelConfig, error)
	DefaultModel() domain.ModelID
	History(ctx context.Context, limit int) ([]domain.SummaryResult, error)
}

type SettingsStore interface {
	GetUserSettingsWithDefault(
		ctx context.Context,
		userID int64,
		defaultModel domain.ModelID,
	) (*domain.UserSettings, error)
	UpsertUserSettings(ctx context.Context, us *domain.UserSettings) error
}

type Limiter interface {
	Do(ctx context.Context, chatID int64, fn func(ctx context.Context) error) error
}

type Config struct {
	Token          string
	AllowedUsers   []int64
	MaxUploadBytes int64
}

type Bot struct {
	client         *tgbot.Bot
	api            telegramAPI
	svc            Summarizer
	settings       SettingsStore
	rateLimiter    Limiter
	httpClient     *http.Client
	allowedUsers   []int64
	maxUploadBytes int64
	log            *slog.Logger
}

func New(
	cfg Config,
	svc Summarizer,
	settings SettingsStore,
	rateLimiter Limiter,
	log *slog.Logger,
) (*Bot, error) {
	b := newBot(nil, svc, settings, rateLimiter, cfg, log)

	client, err := tgbot.New(strings.TrimSpace(cfg.Token),
		tgbot.WithDefaultHandler(b.handleUpdate),
		tgbot.WithMiddlewares(b.allowUsers),
		tgbot.WithHTTPClient(pollTimeout, &http.Client{Timeout: pollTimeout + 10*time.Second}),
		tgbot.WithErrorsHandler(func(err error) {
			log.Error("Failed to poll updates",
				"error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	b.client = client
	b.api = client

	return b, nil
}

func newBot(
	api telegramAPI,
	svc Summarizer,
	settings SettingsStore,
	rateLimiter Limiter,
	cfg Config,
	log *slog.Logger,
) *Bot {
	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}

	return &Bot{
		api:            api,
		svc:            svc,
		settings:       settings,
		rateLimiter:    rateLimiter,
		httpClient:     &http.Client{Timeout: time.Minute},
		allowedUsers:   cfg.AllowedUsers,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.log.InfoContext(ctx, "Bot is started")

	b.client.Start(ctx)

	b.log.InfoContext(ctx, "Bot context is done",
		"error", ctx.Err())
}

func (b *Bot) handleUpdate(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	switch {
	case update.Message != nil:
		if err := b.handleMessage(updateCtx, update.Message); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle message",
				"error", err,
				"chatID", update.Message.Chat.ID,
				"chatType", update.Message.Chat.Type,
				"messageID", update.Message.ID)
		}

	case update.CallbackQuery != nil:
		if err := b.handleCallbackQuery(updateCtx, update.CallbackQuery); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle callback query",
				"error", err,
				"chatID", callbackChatID(update.CallbackQuery),
				"userID", update.CallbackQuery.From.ID,
				"data", update.CallbackQuery.Data)
		}
	}
}

func (b *Bot) allowUsers(next tgbot.HandlerFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, api *tgbot.Bot, update *models.Update) {
		userID, username := updateSender(update)
		if !b.userAllowed(userID) {
			b.log.DebugContext(ctx, "User is not allowed",
				"userID", userID,
				"username", username)

			return
		}

		next(ctx, api, update)
	}
}

// userAllowed accepts everyone when no allow-list is configured.
func (b *Bot) userAllowed(userID int64) bool {
	if len(b.allowedUsers) == 0 {
		return true
	}

	return slices.Contains(b.allowedUsers, userID)
}

func updateSender(update *models.Update) (int64, string) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, update.Message.From.Username
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID, update.CallbackQuery.From.Username
	}

	return 0, ""
}

func callbackChatID(cb *models.CallbackQuery) int64 {
	switch {
	case cb.Message.Message != nil:
		return cb.Message.Message.Chat.ID
	case cb.Message.InaccessibleMessage != nil:
		return cb.Message.InaccessibleMessage.Chat.ID
	}

	return cb.From.ID
}
