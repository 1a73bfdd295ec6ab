// Package bot is the telegram front end: a guided dialog collecting the
// applicant's booking preferences plus direct commands for slot checks,
// booking and account registration. Long runs execute on their own
// goroutines so the update loop never blocks on a browser.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Solarpaletten/dashkavisa/internal/config"
	"github.com/Solarpaletten/dashkavisa/internal/runner"
)

var (
	visaTypes   = []string{"Туристическая виза", "Рабочая виза", "Национальная виза", "Шенген виза"}
	cities      = []string{"Минск", "Брест", "Гродно", "Могилев", "Витебск", "Гомель"}
	invitations = []string{
		"Туристическое приглашение", "Рабочее приглашение",
		"Учебное приглашение", "Частное приглашение",
	}
)

// Bot wraps the telegram API, the per-user dialog store and the runner
// executing portal operations.
type Bot struct {
	api    *tgbotapi.BotAPI
	log    *zap.Logger
	cfg    *config.Config
	runner *runner.Runner
	store  *Store
	sem    *semaphore.Weighted
}

// New connects to the telegram API and builds the Bot.
func New(logger *zap.Logger, cfg *config.Config, r *runner.Runner) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	maxRuns := cfg.Bot.MaxRuns
	if maxRuns < 1 {
		maxRuns = 1
	}
	return &Bot{
		api:    api,
		log:    logger.Named("bot"),
		cfg:    cfg,
		runner: r,
		store:  NewStore(),
		sem:    semaphore.NewWeighted(maxRuns),
	}, nil
}

// Run consumes telegram updates until ctx ends.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("Bot started", zap.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			b.handleCallback(ctx, update.CallbackQuery)
		case update.Message != nil && update.Message.IsCommand():
			b.handleCommand(ctx, update.Message)
		case update.Message != nil:
			b.handleText(update.Message)
		}
	}

	b.log.Info("Bot stopped")
	return nil
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("Failed to send keyboard", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("Failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func optionsKeyboard(options []string, prefix string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options))
	for _, opt := range options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt, prefix+opt),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
