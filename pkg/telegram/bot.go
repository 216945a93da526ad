// Package telegram relays private text messages between Telegram and an assistant.
package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	logx "github.com/tanpawarit/spark/pkg/logger"
)

// ApologyReply is sent when the assistant fails to answer.
const ApologyReply = "Sorry, something went wrong while answering. Please try again."

type Config struct {
	Token          string `envconfig:"TG_BOT_ID" required:"true"`
	PollingTimeout int    `split_words:"true" default:"30"`
	Debug          bool   `default:"false"`
}

// Handler answers text from the user identified by userID.
type Handler func(ctx context.Context, userID string, text string) (string, error)

type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api     botAPI
	handle  Handler
	timeout int
	log     zerolog.Logger
}

func New(cfg Config, handle Handler) (*Bot, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("telegram bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = cfg.Debug

	bot, err := newBot(api, handle, cfg.PollingTimeout)
	if err != nil {
		return nil, err
	}
	bot.log.Info().Str("bot", api.Self.UserName).Msg("telegram bot authorized")
	return bot, nil
}

func newBot(api botAPI, handle Handler, timeout int) (*Bot, error) {
	if handle == nil {
		return nil, errors.New("message handler is required")
	}
	if timeout <= 0 {
		timeout = 30
	}
	return &Bot{
		api:     api,
		handle:  handle,
		timeout: timeout,
		log:     logx.Component("telegram"),
	}, nil
}

// Run long-polls for updates until ctx is cancelled. Messages are answered one at a time.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.timeout
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.IsCommand() {
		return
	}
	if strings.TrimSpace(msg.Text) == "" {
		return
	}

	userID := strconv.FormatInt(msg.From.ID, 10)
	reply, err := b.handle(ctx, userID, msg.Text)
	if err != nil {
		b.log.Error().Err(err).Str("user_id", userID).Msg("handle message failed")
		reply = ApologyReply
	}
	if strings.TrimSpace(reply) == "" {
		reply = ApologyReply
	}

	for _, chunk := range SplitMessage(reply, MaxMessageLength) {
		out := tgbotapi.NewMessage(msg.Chat.ID, chunk)
		out.ReplyToMessageID = msg.MessageID
		if _, err := b.api.Send(out); err != nil {
			b.log.Error().Err(err).Str("user_id", userID).Msg("send reply failed")
			return
		}
	}
}
