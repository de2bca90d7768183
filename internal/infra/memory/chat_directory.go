package memory

import (
	"context"
	"sync"

	"quiz-platform/internal/domain"
)

// ChatDirectory maps Telegram identities to chat ids in process memory.
type ChatDirectory struct {
	mu    sync.RWMutex
	chats map[string]int64
}

func NewChatDirectory() *ChatDirectory {
	return &ChatDirectory{chats: make(map[string]int64)}
}

func (d *ChatDirectory) Bind(_ context.Context, identity string, chatID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chats[domain.NormalizeTelegram(identity)] = chatID
	return nil
}

func (d *ChatDirectory) ChatID(_ context.Context, identity string) (int64, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.chats[domain.NormalizeTelegram(identity)]
	return id, ok, nil
}
