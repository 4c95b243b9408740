// Package adapter delivers chat messages through the Telegram Bot API (telebot).
package adapter

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	kit "github.com/tooMike/homework-bot/internal/transport"
	logx "github.com/tooMike/homework-bot/pkg/logx"
)

type Config struct {
	Token string
	// URL overrides the Bot API base URL (tests, local bot-api servers).
	URL string
	// Timeout bounds one Bot API call. 0 means 10s.
	Timeout time.Duration
}

// Adapter is a send-only Telegram client: the bot never polls for updates.
type Adapter struct {
	cfg Config
	log logx.Logger
	bot *tele.Bot
}

var _ kit.Sender = (*Adapter)(nil)

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	// Offline skips getMe at construction, so a Telegram outage at startup
	// does not keep the poller from running.
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		URL:     cfg.URL,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Adapter{cfg: cfg, log: log, bot: b}, nil
}

// SendText sends text, split into several messages when it exceeds Telegram's limit.
// The returned ref points at the first message.
func (a *Adapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if opt == nil {
		opt = &kit.SendOptions{}
	}

	chunks := splitTelegramText(text, telegramTextLimit, opt.ParseMode)
	if len(chunks) == 0 {
		chunks = []string{""}
	}

	chat, err := recipient(to.ChatID)
	if err != nil {
		return kit.MessageRef{}, err
	}

	var first kit.MessageRef
	for i, chunk := range chunks {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return first, ctx.Err()
			default:
			}
		}

		msg, err := a.bot.Send(chat, chunk, &tele.SendOptions{
			ParseMode:             opt.ParseMode,
			DisableWebPagePreview: opt.DisablePreview,
			ThreadID:              to.ThreadID,
		})
		if err != nil {
			return first, err
		}
		if i == 0 {
			first = kit.MessageRef{ThreadID: to.ThreadID, MessageID: msg.ID}
			if msg.Chat != nil {
				first.ChatID = msg.Chat.ID
			}
		}
	}
	a.log.Debug("telegram message sent", logx.String("chat_id", to.ChatID), logx.Int("parts", len(chunks)))
	return first, nil
}

// channelName addresses a public channel or supergroup by its @username.
type channelName string

func (c channelName) Recipient() string { return string(c) }

// recipient maps a configured chat id onto a telebot recipient.
func recipient(id string) (tele.Recipient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("chat id is empty")
	}
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return tele.ChatID(n), nil
	}
	return channelName(id), nil
}
