package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/suderio/dicebot/internal/session"
)

// Executor defines the interface for running chat commands.
type Executor interface {
	Execute(ctx context.Context, from session.Sender, input string) (string, error)
}

// Bot answers dice commands sent to a Telegram chat. Each chat is a separate
// server, so characters do not leak between groups.
type Bot struct {
	client       *Client
	executor     Executor
	chatID       int64          // 0 answers every chat
	users        map[int64]bool // empty allows everyone
	logger       *slog.Logger
	lastUpdateID int
}

// NewBot initializes a new bot
func NewBot(client *Client, chatID int64, users []int64, exec Executor, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	allowed := make(map[int64]bool, len(users))
	for _, id := range users {
		allowed[id] = true
	}
	return &Bot{
		client:       client,
		executor:     exec,
		chatID:       chatID,
		users:        allowed,
		logger:       logger,
		lastUpdateID: viper.GetInt("tg_last_update_id"),
	}
}

// Start runs the long-polling loop until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("telegram bot started", "chat", b.chatID, "offset", b.lastUpdateID+1)
	for {
		updates, err := b.client.GetUpdates(ctx, b.lastUpdateID+1, 25)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Warn("failed to fetch updates", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID > b.lastUpdateID {
				b.lastUpdateID = update.UpdateID
				viper.Set("tg_last_update_id", b.lastUpdateID)
				_ = viper.WriteConfig() // Ignore error if config file doesn't exist yet
			}

			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	if b.chatID != 0 && msg.Chat.ID != b.chatID {
		return
	}
	if !strings.HasPrefix(msg.Text, "/") {
		return
	}
	if len(b.users) > 0 && !b.users[msg.From.ID] {
		b.send(ctx, OutgoingMessage{
			ChatID:  msg.Chat.ID,
			ReplyTo: msg.MessageID,
			Text:    fmt.Sprintf("User %s (%d) is not allowed to roll here.", msg.From.FirstName, msg.From.ID),
		})
		return
	}

	from := session.Sender{
		Server: strconv.FormatInt(msg.Chat.ID, 10),
		User:   strconv.FormatInt(msg.From.ID, 10),
	}
	reply, err := b.executor.Execute(ctx, from, msg.Text)
	if err != nil {
		// Plain text: expressions like 2*3 would break Markdown.
		b.send(ctx, OutgoingMessage{ChatID: msg.Chat.ID, ReplyTo: msg.MessageID, Text: fmt.Sprintf("Error: %v", err)})
		return
	}
	if reply == "" {
		return
	}
	b.send(ctx, OutgoingMessage{ChatID: msg.Chat.ID, ReplyTo: msg.MessageID, Text: escapeMarkdown(reply), ParseMode: "Markdown"})
}

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "[", `\[`)

// escapeMarkdown keeps code spans as they are and escapes the legacy Markdown
// entity characters everywhere else, so names like sir_lancelot and expressions
// like 2d6*2 reach the chat unchanged. An unmatched backtick is escaped too.
func escapeMarkdown(text string) string {
	parts := strings.Split(text, "`")
	var sb strings.Builder
	for i, part := range parts {
		closed := i < len(parts)-1
		if i > 0 {
			if i%2 == 1 && !closed {
				sb.WriteString("\\`")
			} else {
				sb.WriteString("`")
			}
		}
		if i%2 == 1 && closed {
			sb.WriteString(part)
		} else {
			sb.WriteString(markdownEscaper.Replace(part))
		}
	}
	return sb.String()
}

func (b *Bot) send(ctx context.Context, msg OutgoingMessage) {
	if err := b.client.SendMessage(ctx, msg); err != nil {
		b.logger.Warn("failed to send message", "chat", msg.ChatID, "error", err)
	}
}
