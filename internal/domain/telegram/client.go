package telegram

import "gopkg.in/telebot.v3"

// Client is the notification transport seen by the application layer. It
// decouples round delivery and broadcasts from the concrete bot library.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
