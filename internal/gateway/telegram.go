package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"langsense-bot/internal/metrics"
)

// TelegramConfig carries the adapter settings.
type TelegramConfig struct {
	Token         string
	UpdateTimeout time.Duration
	SendTimeout   time.Duration
}

// Telegram polls the Bot API for updates and sends outbound messages.
type Telegram struct {
	api     *tgbotapi.BotAPI
	logger  *slog.Logger
	metrics *metrics.Metrics
	handler Handler

	updateTimeout time.Duration
}

// NewTelegram authenticates against the Bot API. Sends share one HTTP
// client with a bounded timeout so a stuck delivery cannot wedge a
// handler.
func NewTelegram(cfg TelegramConfig, logger *slog.Logger, m *metrics.Metrics) (*Telegram, error) {
	sendTimeout := cfg.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	client := &http.Client{Timeout: cfg.UpdateTimeout + sendTimeout}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	updateTimeout := cfg.UpdateTimeout
	if updateTimeout <= 0 {
		updateTimeout = 30 * time.Second
	}
	return &Telegram{
		api:           api,
		logger:        logger.With("component", "telegram"),
		metrics:       m,
		updateTimeout: updateTimeout,
	}, nil
}

// SetHandler installs the event handler. Must be called before Start.
func (t *Telegram) SetHandler(h Handler) {
	t.handler = h
}

// Start runs the long-poll loop until ctx is cancelled. Events are
// processed one at a time, matching the router's sequencing contract; a
// panicking handler is logged and the loop continues.
func (t *Telegram) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(t.updateTimeout.Seconds())
	updates := t.api.GetUpdatesChan(u)

	t.logger.Info("telegram long-poll started", "bot", t.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			msg := upd.Message
			if msg == nil || msg.From == nil {
				continue
			}
			in := Inbound{
				ChatID:   msg.Chat.ID,
				SenderID: msg.From.ID,
				Text:     msg.Text,
			}
			if msg.Contact != nil {
				in.Contact = &Contact{
					PhoneNumber: msg.Contact.PhoneNumber,
					FirstName:   msg.Contact.FirstName,
				}
				t.metrics.IncomingEvents.WithLabelValues("contact").Inc()
			} else {
				t.metrics.IncomingEvents.WithLabelValues("text").Inc()
			}
			t.dispatch(ctx, in)
		}
	}
}

func (t *Telegram) dispatch(ctx context.Context, in Inbound) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("handler panic", "sender", in.SenderID, "panic", r)
			t.metrics.Errors.WithLabelValues("telegram").Inc()
		}
	}()
	t.handler(ctx, in)
}

// Send delivers one message, optionally with a reply keyboard.
func (t *Telegram) Send(ctx context.Context, chatID int64, text string, kb *Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = toReplyMarkup(kb)
	}
	if _, err := t.api.Send(msg); err != nil {
		t.metrics.OutgoingMessages.WithLabelValues("failed").Inc()
		return fmt.Errorf("telegram send to %d: %w: %v", chatID, ErrDelivery, err)
	}
	t.metrics.OutgoingMessages.WithLabelValues("sent").Inc()
	return nil
}

func toReplyMarkup(kb *Keyboard) interface{} {
	if kb.Remove {
		return tgbotapi.NewRemoveKeyboard(false)
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		btns := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, b := range row {
			btn := tgbotapi.NewKeyboardButton(b.Label)
			btn.RequestContact = b.RequestContact
			btns = append(btns, btn)
		}
		rows = append(rows, btns)
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}
