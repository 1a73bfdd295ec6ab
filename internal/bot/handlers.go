package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	cbConfirmYes = "confirm_yes"
	cbConfirmNo  = "confirm_no"
	cbDatePrefix = "date_"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	b.log.Info("Command received",
		zap.String("command", msg.Command()),
		zap.Int64("user_id", userID))

	switch msg.Command() {
	case "start":
		b.store.Begin(userID)
		b.send(chatID, fmt.Sprintf(
			"👋 Здравствуйте, %s!\n\n"+
				"Я бот для проверки и бронирования слотов в визовом центре VFS Global.\n\n"+
				"Я помогу вам:\n"+
				"- Проверить наличие свободных слотов\n"+
				"- Заполнить форму записи на подачу документов\n"+
				"- Забронировать подходящую дату", msg.From.FirstName))
		b.sendKeyboard(chatID, "Выберите тип визы:", optionsKeyboard(visaTypes, ""))
	case "cancel":
		b.store.Drop(userID)
		b.send(chatID, "Диалог сброшен. Отправьте /start, чтобы начать заново.")
	case "check":
		b.launchCheck(ctx, chatID)
	case "book":
		b.launchBook(ctx, chatID, "")
	case "register_now":
		b.launchRegister(ctx, chatID, userID)
	default:
		b.send(chatID, "Неизвестная команда. Доступно: /start, /check, /book, /register_now, /cancel.")
	}
}

func (b *Bot) handleText(msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	req, ok := b.store.Get(userID)
	if !ok {
		b.send(chatID, "Отправьте /start, чтобы начать.")
		return
	}

	switch req.State {
	case StateFullName:
		b.store.Update(userID, func(r *Request) {
			r.FullName = msg.Text
			r.State = StateBirthDate
		})
		b.send(chatID, "Пожалуйста, введите вашу дату рождения в формате ДД.ММ.ГГГГ:")
	case StateBirthDate:
		if _, err := time.Parse("02.01.2006", msg.Text); err != nil {
			b.send(chatID, "Неверный формат даты. Введите дату в формате ДД.ММ.ГГГГ, например 06.09.1957:")
			return
		}
		b.store.Update(userID, func(r *Request) {
			r.BirthDate = msg.Text
			r.State = StateConfirm
		})
		req, _ = b.store.Get(userID)
		b.sendConfirmation(chatID, req)
	default:
		b.send(chatID, "Сейчас я ожидаю нажатия кнопки. Отправьте /cancel, чтобы сбросить диалог.")
	}
}

func (b *Bot) sendConfirmation(chatID int64, req Request) {
	text := fmt.Sprintf(
		"📝 *Проверьте введенные данные:*\n\n"+
			"👤 *ФИО:* %s\n"+
			"🎂 *Дата рождения:* %s\n"+
			"🛂 *Тип визы:* %s\n"+
			"🏙 *Город:* %s\n"+
			"📋 *Тип приглашения:* %s\n\n"+
			"Данные указаны верно? Если да, я начну поиск доступных слотов.",
		req.FullName, req.BirthDate, req.VisaType, req.City, req.Invitation)
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Да, всё верно", cbConfirmYes),
		tgbotapi.NewInlineKeyboardButtonData("❌ Нет, начать заново", cbConfirmNo),
	))
	b.sendKeyboard(chatID, text, kb)
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.log.Warn("Failed to answer callback", zap.Error(err))
	}
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID
	data := cq.Data

	switch {
	case data == cbConfirmYes:
		b.store.Update(userID, func(r *Request) { r.State = StateReady })
		b.edit(chatID, cq.Message.MessageID,
			"🔍 *Начинаю поиск доступных слотов...*\n\nЭто может занять некоторое время.")
		b.launchCheck(ctx, chatID)
	case data == cbConfirmNo:
		b.store.Begin(userID)
		b.sendKeyboard(chatID, "🔄 Начинаем заново.\n\nВыберите тип визы:", optionsKeyboard(visaTypes, ""))
	case strings.HasPrefix(data, cbDatePrefix):
		date := strings.TrimPrefix(data, cbDatePrefix)
		b.edit(chatID, cq.Message.MessageID, fmt.Sprintf("📅 Бронирую дату *%s*...", date))
		b.launchBook(ctx, chatID, date)
	default:
		b.handleDialogOption(chatID, userID, data)
	}
}

// handleDialogOption advances the guided flow; the raw option text is the
// callback payload, so the current state decides what it means.
func (b *Bot) handleDialogOption(chatID, userID int64, option string) {
	req, ok := b.store.Get(userID)
	if !ok {
		b.send(chatID, "Отправьте /start, чтобы начать.")
		return
	}

	switch req.State {
	case StateVisaType:
		b.store.Update(userID, func(r *Request) {
			r.VisaType = option
			r.State = StateCity
		})
		b.sendKeyboard(chatID,
			fmt.Sprintf("Выбран тип визы: *%s*\n\nТеперь выберите город для подачи документов:", option),
			optionsKeyboard(cities, ""))
	case StateCity:
		b.store.Update(userID, func(r *Request) {
			r.City = option
			r.State = StateInvitation
		})
		b.sendKeyboard(chatID,
			fmt.Sprintf("Выбран город: *%s*\n\nВыберите тип приглашения/документа:", option),
			optionsKeyboard(invitations, ""))
	case StateInvitation:
		b.store.Update(userID, func(r *Request) {
			r.Invitation = option
			r.State = StateFullName
		})
		b.send(chatID, fmt.Sprintf(
			"Выбран тип приглашения: *%s*\n\nПожалуйста, введите ваши ФИО (как в паспорте):", option))
	default:
		b.send(chatID, "Отправьте /start, чтобы начать заново.")
	}
}

// launch runs fn on its own goroutine under the run semaphore. A full
// semaphore means another run is already holding a browser.
func (b *Bot) launch(ctx context.Context, chatID int64, fn func(ctx context.Context)) {
	if !b.sem.TryAcquire(1) {
		b.send(chatID, "⏳ Сейчас выполняется другая проверка. Попробуйте через минуту.")
		return
	}
	go func() {
		defer b.sem.Release(1)
		fn(ctx)
	}()
}

func (b *Bot) launchCheck(ctx context.Context, chatID int64) {
	b.launch(ctx, chatID, func(ctx context.Context) {
		progress, err := b.api.Send(tgbotapi.NewMessage(chatID, "⏳ Проверяю доступность слотов..."))
		if err != nil {
			b.log.Warn("Failed to send progress message", zap.Error(err))
		}

		res, err := b.runner.CheckSlots(ctx)
		switch {
		case err != nil:
			b.edit(chatID, progress.MessageID, fmt.Sprintf("⚠️ *Ошибка проверки:* %v", err))
		case res.Failed():
			b.edit(chatID, progress.MessageID, fmt.Sprintf("⚠️ *Проверка не удалась:* %s", res.Reason))
		case res.None():
			b.edit(chatID, progress.MessageID,
				"😔 *К сожалению, доступных слотов не найдено.*\n\nПопробуйте повторить попытку позже.")
		default:
			dates := res.Dates
			if limit := b.cfg.Check.MaxDates; limit > 0 && len(dates) > limit {
				dates = dates[:limit]
			}
			b.edit(chatID, progress.MessageID, "✅ *Найдены доступные слоты!*")
			b.sendKeyboard(chatID, "Выберите предпочтительную дату:", optionsKeyboard(dates, cbDatePrefix))
		}
	})
}

func (b *Bot) launchBook(ctx context.Context, chatID int64, preferred string) {
	b.launch(ctx, chatID, func(ctx context.Context) {
		progress, err := b.api.Send(tgbotapi.NewMessage(chatID, "⏳ Выполняю бронирование..."))
		if err != nil {
			b.log.Warn("Failed to send progress message", zap.Error(err))
		}

		msg, err := b.runner.Book(ctx, preferred)
		if err != nil {
			b.edit(chatID, progress.MessageID, fmt.Sprintf("⚠️ *Бронирование не удалось:* %v", err))
			return
		}
		b.edit(chatID, progress.MessageID, fmt.Sprintf("✅ %s", msg))
	})
}

func (b *Bot) launchRegister(ctx context.Context, chatID, userID int64) {
	b.launch(ctx, chatID, func(ctx context.Context) {
		progress, err := b.api.Send(tgbotapi.NewMessage(chatID, "⏳ Регистрация аккаунта..."))
		if err != nil {
			b.log.Warn("Failed to send progress message", zap.Error(err))
		}

		res := b.runner.Register(ctx, userID)
		if !res.Success {
			b.edit(chatID, progress.MessageID, fmt.Sprintf("⚠️ *Регистрация не удалась:* %s", res.Message))
			return
		}
		b.edit(chatID, progress.MessageID, fmt.Sprintf(
			"✅ *Аккаунт готов.*\n\n📧 Email: `%s`\n🔑 Пароль: `%s`\n\n%s",
			res.Email, res.Password, res.Message))
	})
}
