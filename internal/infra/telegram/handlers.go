// internal/infra/telegram/handlers.go
package telegram

import (
	"context"

	"random_coffee_bot/internal/app"
	"random_coffee_bot/internal/domain/participant"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Handlers wires every bot endpoint. Free-form text is shared between the
// admin broadcast flow and the user registration form, so both session
// tables live here and a single OnText router consults them in turn.
type Handlers struct {
	adminService        *app.AdminService
	registrationService *app.RegistrationService
	participantRepo     participant.Repository
	adminSessions       *AdminSessions
	regSessions         *RegistrationSessions
	logger              *logrus.Entry
}

func NewHandlers(
	adminService *app.AdminService,
	registrationService *app.RegistrationService,
	participantRepo participant.Repository,
	baseLogger *logrus.Entry,
) *Handlers {
	return &Handlers{
		adminService:        adminService,
		registrationService: registrationService,
		participantRepo:     participantRepo,
		adminSessions:       NewAdminSessions(),
		regSessions:         NewRegistrationSessions(),
		logger:              baseLogger,
	}
}

// Menu buttons. Shared between the /admin menu markup and handler
// registration so callback uniques stay in one place.
var (
	btnJoin          = telebot.Btn{Unique: "join", Text: "☕ Участвовать"}
	btnPairRound     = telebot.Btn{Unique: "admin_pair", Text: "📌 Провести жеребьевку"}
	btnPairForce     = telebot.Btn{Unique: "admin_pair_force", Text: "⚡ Принудительная жеребьевка"}
	btnBroadcast     = telebot.Btn{Unique: "admin_broadcast", Text: "📢 Рассылка всем"}
	btnTestBroadcast = telebot.Btn{Unique: "admin_broadcast_test", Text: "🧪 Тестовая рассылка"}
	btnRoster        = telebot.Btn{Unique: "admin_list", Text: "👥 Участники"}
)

// Register attaches all command, callback, and text handlers to the bot.
func (h *Handlers) Register(ctx context.Context, b *telebot.Bot) {
	h.registerUserHandlers(ctx, b)
	h.registerAdminHandlers(ctx, b)

	b.Handle("/cancel", func(c telebot.Context) error {
		senderID := c.Sender().ID
		if h.adminSessions.Reset(senderID) {
			return c.Send("Рассылка отменена.")
		}
		if h.regSessions.Cancel(senderID) {
			return c.Send("Регистрация отменена.")
		}
		return c.Send("Нечего отменять.")
	})

	b.Handle(telebot.OnText, func(c telebot.Context) error {
		senderID := c.Sender().ID
		if h.adminSessions.State(senderID) != AdminIdle {
			return h.handleAdminText(ctx, c)
		}
		if h.regSessions.Step(senderID) != RegistrationIdle {
			return h.handleRegistrationText(ctx, c)
		}
		return nil // Unsolicited text outside any flow is ignored
	})
}
