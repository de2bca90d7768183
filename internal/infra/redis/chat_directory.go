package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"quiz-platform/internal/domain"
)

// ChatDirectory stores Telegram identity -> chat id bindings in one Redis hash,
// so the bot process and API instances share them:
//
//	HSET telegram:chats {identity} {chatID}
type ChatDirectory struct {
	client *redis.Client
}

func NewChatDirectory(client *redis.Client) *ChatDirectory {
	return &ChatDirectory{client: client}
}

func (d *ChatDirectory) Bind(ctx context.Context, identity string, chatID int64) error {
	if err := d.client.HSet(ctx, d.key(), domain.NormalizeTelegram(identity), chatID).Err(); err != nil {
		return fmt.Errorf("bind chat: %w", err)
	}
	return nil
}

func (d *ChatDirectory) ChatID(ctx context.Context, identity string) (int64, bool, error) {
	raw, err := d.client.HGet(ctx, d.key(), domain.NormalizeTelegram(identity)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup chat: %w", err)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse chat id %q: %w", raw, err)
	}
	return id, true, nil
}

func (d *ChatDirectory) key() string {
	return "telegram:chats"
}
