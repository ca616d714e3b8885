// internal/infra/telegram/admin_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	"random_coffee_bot/internal/app"
	"random_coffee_bot/internal/domain/pairing"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const rosterChunkSize = 50

func (h *Handlers) registerAdminHandlers(ctx context.Context, b *telebot.Bot) {
	b.Handle("/admin", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := h.logger.WithFields(logrus.Fields{"handler": "/admin", "sender_id": senderID})
		logCtx.Info("Command received")

		if !h.adminService.IsAdmin(senderID) {
			logCtx.Warn("Unauthorized access attempt")
			return c.Send("Ошибка: У вас нет прав для выполнения этой команды.")
		}

		markup := &telebot.ReplyMarkup{}
		markup.Inline(
			markup.Row(markup.Data(btnPairRound.Text, btnPairRound.Unique)),
			markup.Row(markup.Data(btnPairForce.Text, btnPairForce.Unique)),
			markup.Row(markup.Data(btnBroadcast.Text, btnBroadcast.Unique)),
			markup.Row(markup.Data(btnTestBroadcast.Text, btnTestBroadcast.Unique)),
			markup.Row(markup.Data(btnRoster.Text, btnRoster.Unique)),
		)
		return c.Send("🔧 Панель администратора:\nВыберите действие:", markup)
	})

	b.Handle(&btnPairRound, func(c telebot.Context) error {
		return h.handlePairCallback(ctx, c, false)
	})

	b.Handle(&btnPairForce, func(c telebot.Context) error {
		return h.handlePairCallback(ctx, c, true)
	})

	b.Handle(&btnBroadcast, func(c telebot.Context) error {
		senderID := c.Sender().ID
		if !h.adminService.IsAdmin(senderID) {
			return c.Respond(&telebot.CallbackResponse{Text: "Нет доступа", ShowAlert: true})
		}
		h.adminSessions.Set(senderID, AdminAwaitingBroadcastText)
		if err := c.Respond(); err != nil {
			return err
		}
		return c.Send("✉️ Отправь мне текст для рассылки всем пользователям.\n\nИли отправь /cancel, чтобы отменить.")
	})

	b.Handle(&btnTestBroadcast, func(c telebot.Context) error {
		senderID := c.Sender().ID
		if !h.adminService.IsAdmin(senderID) {
			return c.Respond(&telebot.CallbackResponse{Text: "Нет доступа", ShowAlert: true})
		}
		h.adminSessions.Set(senderID, AdminAwaitingTestBroadcastText)
		if err := c.Respond(); err != nil {
			return err
		}
		return c.Send("✉️ Отправь мне текст тестовой рассылки. Он уйдёт только администраторам.\n\nИли отправь /cancel, чтобы отменить.")
	})

	b.Handle(&btnRoster, func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := h.logger.WithFields(logrus.Fields{"handler": "admin_list", "sender_id": senderID})

		entries, err := h.adminService.Roster(ctx, senderID)
		if err != nil {
			if err == app.ErrAdminNotAuthorized {
				return c.Respond(&telebot.CallbackResponse{Text: "Нет доступа", ShowAlert: true})
			}
			logCtx.WithError(err).Error("Failed to build roster")
			return c.Respond(&telebot.CallbackResponse{Text: "Произошла ошибка."})
		}
		if err := c.Respond(); err != nil {
			return err
		}
		if len(entries) == 0 {
			return c.Send("Пока нет зарегистрированных участников.")
		}
		return c.Send(formatRoster(entries))
	})
}

func (h *Handlers) handlePairCallback(ctx context.Context, c telebot.Context, forced bool) error {
	senderID := c.Sender().ID
	logCtx := h.logger.WithFields(logrus.Fields{
		"handler":   "admin_pair",
		"sender_id": senderID,
		"forced":    forced,
	})
	logCtx.Info("Pairing requested")

	var report pairing.DeliveryReport
	var err error
	if forced {
		report, err = h.adminService.ForceRound(ctx, senderID)
	} else {
		report, err = h.adminService.RunRound(ctx, senderID)
	}
	if err != nil {
		if err == app.ErrAdminNotAuthorized {
			logCtx.Warn("Unauthorized access attempt")
			return c.Respond(&telebot.CallbackResponse{Text: "Нет доступа", ShowAlert: true})
		}
		logCtx.WithError(err).Error("Pairing round failed")
		if rerr := c.Respond(&telebot.CallbackResponse{Text: "Произошла ошибка."}); rerr != nil {
			return rerr
		}
		return c.Send("⚠️ Не удалось провести жеребьевку. Подробности в журнале.")
	}

	alert, msg := pairingReply(report)
	if rerr := c.Respond(&telebot.CallbackResponse{Text: alert, ShowAlert: report.PairsCount == 0}); rerr != nil {
		return rerr
	}
	return c.Send(msg)
}

// pairingReply builds the callback alert and the chat message for a finished
// round. An empty pool and a round where every pair failed delivery both end
// with zero delivered pairs but need different explanations.
func pairingReply(report pairing.DeliveryReport) (alert, msg string) {
	if report.PairsCount == 0 {
		if len(report.FailedIDs) == 0 {
			return "⚠️ Недостаточно участников.", "⚠️ Пока недостаточно участников для формирования пар."
		}
		return "⚠️ Доставка не удалась.",
			fmt.Sprintf("⚠️ Пары были сформированы, но уведомить %d участника(ов) не удалось. Их участие не засчитано.", len(report.FailedIDs))
	}

	msg = fmt.Sprintf("👥 Случайные пары составлены для %d участников (%d пар).", report.PairsCount*2, report.PairsCount)
	if len(report.FailedIDs) > 0 {
		msg += fmt.Sprintf("\n⚠️ Не удалось уведомить %d участника(ов); их участие не засчитано.", len(report.FailedIDs))
	}
	return "✅ Пары сформированы!", msg
}

// handleAdminText consumes the text an admin supplies while a broadcast
// flow is active.
func (h *Handlers) handleAdminText(ctx context.Context, c telebot.Context) error {
	senderID := c.Sender().ID
	state := h.adminSessions.State(senderID)
	h.adminSessions.Set(senderID, AdminIdle)

	logCtx := h.logger.WithFields(logrus.Fields{"handler": "admin_broadcast_text", "sender_id": senderID})

	var res app.BroadcastResult
	var err error
	switch state {
	case AdminAwaitingBroadcastText:
		res, err = h.adminService.Broadcast(ctx, senderID, c.Text())
	case AdminAwaitingTestBroadcastText:
		res, err = h.adminService.TestBroadcast(ctx, senderID, c.Text())
	default:
		return nil
	}
	if err != nil {
		logCtx.WithError(err).Error("Broadcast failed")
		return c.Send("⚠️ Не удалось выполнить рассылку. Подробности в журнале.")
	}

	reply := fmt.Sprintf("✅ Рассылка отправлена %d пользователям.", res.Sent)
	if res.Failed > 0 {
		reply += fmt.Sprintf(" Не доставлено: %d.", res.Failed)
	}
	return c.Send(reply)
}

func formatRoster(entries []app.RosterEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		p := e.Participant
		status := "⏳ Ждёт"
		if e.Eligible {
			status = "✅ Готов"
		}
		if !p.IsActive {
			status = "🚫 Не участвует"
		}
		lp := "ещё не участвовал"
		if p.LastParticipation.Valid {
			lp = fmt.Sprintf("последнее участие %s (%d дн. назад)",
				p.LastParticipation.Time.Format("2006-01-02"), e.DaysSince)
		}
		lines = append(lines, fmt.Sprintf("• %s %s — %s, %s", p.FullName, p.DisplayHandle(), status, lp))
	}

	chunk := strings.Join(lines, "\n")
	footer := ""
	if len(lines) > rosterChunkSize {
		chunk = strings.Join(lines[:rosterChunkSize], "\n")
		footer = fmt.Sprintf("\n...и ещё %d участника(ов)", len(lines)-rosterChunkSize)
	}
	return fmt.Sprintf("👥 Участники:\n%s%s", chunk, footer)
}
