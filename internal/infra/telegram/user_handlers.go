// internal/infra/telegram/user_handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"random_coffee_bot/internal/app"
	idb "random_coffee_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func (h *Handlers) registerUserHandlers(ctx context.Context, b *telebot.Bot) {
	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := h.logger.WithFields(logrus.Fields{"handler": "/start", "sender_id": senderID})
		logCtx.Info("Command received")

		if h.adminService.IsAdmin(senderID) {
			return c.Send(fmt.Sprintf("Привет, Администратор %s! Используйте /admin для панели управления.", c.Sender().FirstName))
		}

		existing, err := h.participantRepo.GetByID(ctx, senderID)
		if err == nil {
			if existing.IsActive {
				return c.Send(fmt.Sprintf("😊 Привет, %s! Ты уже участвуешь в Random Coffee.\nТы будешь получать партнёра каждую неделю.", c.Sender().FirstName))
			}
			// A returning user who left earlier can re-join below.
		} else if err != idb.ErrParticipantNotFound {
			logCtx.WithError(err).Error("Failed to look up participant")
			return c.Send("Произошла ошибка при проверке вашего статуса. Пожалуйста, попробуйте позже.")
		}

		markup := &telebot.ReplyMarkup{}
		markup.Inline(markup.Row(markup.Data(btnJoin.Text, btnJoin.Unique)))
		return c.Send(
			"👋 Добро пожаловать! Этот бот подбирает собеседников для еженедельной встречи за случайным кофе.\nНажми кнопку ниже, чтобы присоединиться:",
			markup,
		)
	})

	b.Handle(&btnJoin, func(c telebot.Context) error {
		senderID := c.Sender().ID
		h.logger.WithFields(logrus.Fields{"handler": "join", "sender_id": senderID}).Info("Join button pressed")

		h.regSessions.Begin(senderID)
		if c.Message() != nil {
			// Remove the keyboard to prevent duplicate joins.
			_ = c.Edit(c.Message().Text)
		}
		if err := c.Respond(&telebot.CallbackResponse{Text: "Начинаем регистрацию!"}); err != nil {
			return err
		}
		return c.Send("Кем ты работаешь? Напиши свою роль или должность.\n\nИли отправь /cancel, чтобы отменить.")
	})

	b.Handle("/frequency", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := h.logger.WithFields(logrus.Fields{"handler": "/frequency", "sender_id": senderID})

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Используй: /frequency <число недель>. Например, /frequency 2 — участвовать раз в две недели.")
		}
		weeks, err := strconv.Atoi(args[0])
		if err != nil {
			return c.Send("Ошибка: число недель должно быть целым числом.")
		}

		if err := h.registrationService.SetFrequency(ctx, senderID, weeks); err != nil {
			switch {
			case errors.Is(err, app.ErrInvalidFrequency):
				return c.Send("Ошибка: частота должна быть не меньше 1 недели.")
			case errors.Is(err, idb.ErrParticipantNotFound):
				return c.Send("Ты ещё не участвуешь. Отправь /start, чтобы присоединиться.")
			default:
				logCtx.WithError(err).Error("Failed to set frequency")
				return c.Send("Произошла ошибка. Пожалуйста, попробуй позже.")
			}
		}
		return c.Send(fmt.Sprintf("✅ Готово! Теперь ты будешь участвовать раз в %d нед.", weeks))
	})

	b.Handle("/leave", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := h.logger.WithFields(logrus.Fields{"handler": "/leave", "sender_id": senderID})

		if err := h.registrationService.Leave(ctx, senderID); err != nil {
			logCtx.WithError(err).Error("Failed to deactivate participant")
			return c.Send("Произошла ошибка. Пожалуйста, попробуй позже.")
		}
		return c.Send("Ты больше не участвуешь в Random Coffee. Отправь /start, если захочешь вернуться.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		if h.adminService.IsAdmin(senderID) {
			var helpText strings.Builder
			helpText.WriteString("Доступные команды Администратора:\n\n")
			helpText.WriteString("`/admin`\n - Панель администратора: жеребьевка, рассылка, список участников.\n\n")
			helpText.WriteString("`/frequency <недели>`\n - Настроить свою частоту участия.\n\n")
			helpText.WriteString("`/leave`\n - Выйти из пула участников.\n\n")
			helpText.WriteString("`/help`\n - Показать это справочное сообщение.")
			return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		}
		return c.Send("Я подбираю пары для случайного кофе раз в неделю.\n\n" +
			"/start — присоединиться\n" +
			"/frequency <недели> — как часто участвовать (по умолчанию каждую неделю)\n" +
			"/leave — выйти из пула\n" +
			"/help — это сообщение")
	})
}

// handleRegistrationText advances the linear join form: role, then
// department, then the actual registration.
func (h *Handlers) handleRegistrationText(ctx context.Context, c telebot.Context) error {
	senderID := c.Sender().ID
	text := strings.TrimSpace(c.Text())
	logCtx := h.logger.WithFields(logrus.Fields{"handler": "registration_form", "sender_id": senderID})

	if text == "" {
		return c.Send("Пожалуйста, отправь текстовый ответ или /cancel.")
	}

	switch h.regSessions.Step(senderID) {
	case RegistrationAwaitingRole:
		h.regSessions.SetRole(senderID, text)
		return c.Send("Отлично! В какой команде или отделе ты работаешь?")

	case RegistrationAwaitingDepartment:
		role := h.regSessions.Complete(senderID)
		fullName := strings.TrimSpace(c.Sender().FirstName + " " + c.Sender().LastName)
		created, err := h.registrationService.Register(ctx, senderID, c.Sender().Username, fullName, role, text)
		if err != nil {
			logCtx.WithError(err).Error("Failed to register participant")
			return c.Send("Произошла ошибка при регистрации. Пожалуйста, попробуй позже.")
		}
		if created {
			return c.Send("✅ Ты участвуешь в Random Coffee! Ожидай партнёра каждую неделю ☕.")
		}
		return c.Send("✅ Данные обновлены. Ты снова участвуешь в Random Coffee ☕.")
	}
	return nil
}
