// Package telegram binds Telegram chats to user handles and delivers verification codes.
package telegram

import (
	"context"
	"fmt"
	"log"
	"time"

	"gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

const (
	greetingMessage   = "Здравствуйте, @%s! Теперь коды подтверждения будут приходить в этот чат."
	noUsernameMessage = "Чтобы получать коды подтверждения, задайте username в настройках Telegram и отправьте /start ещё раз."
	bindFailedMessage = "Не удалось привязать чат, попробуйте позже."
	codeMessage       = "Ваш код подтверждения: %s"
)

// ChatBinder records which chat belongs to a Telegram username.
type ChatBinder interface {
	BindChat(ctx context.Context, identity string, chatID int64) error
}

// Bot is a long-polling Telegram bot.
type Bot struct {
	bot     *telebot.Bot
	codeTTL time.Duration
}

// New creates the bot. codeTTL is quoted in code messages; zero omits it.
func New(token string, pollTimeout, codeTTL time.Duration) (*Bot, error) {
	if pollTimeout <= 0 {
		pollTimeout = 10 * time.Second
	}
	b, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: pollTimeout},
		OnError: func(err error, c telebot.Context) {
			log.Printf("telegram: handler error: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Bot{bot: b, codeTTL: codeTTL}, nil
}

// Register installs the /start handler.
func (b *Bot) Register(binder ChatBinder) {
	b.bot.Use(middleware.Recover())
	b.bot.Handle("/start", StartHandler(binder))
}

// Start polls for updates until Stop is called.
func (b *Bot) Start() {
	log.Printf("telegram: bot @%s polling", b.bot.Me.Username)
	b.bot.Start()
}

func (b *Bot) Stop() {
	b.bot.Stop()
}

// SendCode delivers a verification code. telebot has no per-call context, so ctx only gates the start.
func (b *Bot) SendCode(ctx context.Context, chatID int64, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.bot.Send(telebot.ChatID(chatID), codeText(code, b.codeTTL)); err != nil {
		return fmt.Errorf("send code to chat %d: %w", chatID, err)
	}
	return nil
}

func codeText(code string, ttl time.Duration) string {
	text := fmt.Sprintf(codeMessage, code)
	switch {
	case ttl <= 0:
		return text
	case ttl%time.Minute == 0:
		return fmt.Sprintf("%s\nКод действует %d мин.", text, int(ttl/time.Minute))
	default:
		return fmt.Sprintf("%s\nКод действует %d сек.", text, int((ttl+time.Second-1)/time.Second))
	}
}

// StartHandler binds the sender's username to the chat the command came from.
func StartHandler(binder ChatBinder) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		sender, chat := c.Sender(), c.Chat()
		if sender == nil || chat == nil || sender.Username == "" {
			return c.Send(noUsernameMessage)
		}
		if err := binder.BindChat(context.Background(), sender.Username, chat.ID); err != nil {
			log.Printf("telegram: bind @%s: %v", sender.Username, err)
			return c.Send(bindFailedMessage)
		}
		return c.Send(fmt.Sprintf(greetingMessage, sender.Username))
	}
}
