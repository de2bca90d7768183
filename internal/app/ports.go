package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"quiz-platform/internal/store"
)

// Locker serializes work on one key (in-process or across instances).
type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string) (func(), error)
}

// ChatDirectory maps a Telegram identity to the chat the bot can write to.
type ChatDirectory interface {
	Bind(ctx context.Context, identity string, chatID int64) error
	ChatID(ctx context.Context, identity string) (int64, bool, error)
}

// Notifier delivers a verification code to a chat.
type Notifier interface {
	SendCode(ctx context.Context, chatID int64, code string) error
}

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool
}

// TokenIssuer signs bearer tokens after a successful login.
type TokenIssuer interface {
	Issue(accountID string, isAdmin bool) (string, error)
}

// Option tweaks a service; used mostly by tests.
type Option func(*base)

// WithClock replaces time.Now for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// WithIDs replaces the record id generator.
func WithIDs(next func() string) Option {
	return func(b *base) { b.newID = next }
}

// WithDispatcher replaces how background work (code delivery) is started.
// Tests pass a synchronous dispatcher.
func WithDispatcher(run func(func())) Option {
	return func(b *base) { b.dispatch = run }
}

type base struct {
	store    store.Backend
	now      func() time.Time
	newID    func() string
	dispatch func(func())
}

func newBase(b store.Backend, opts []Option) base {
	out := base{
		store:    b,
		now:      time.Now,
		newID:    uuid.NewString,
		dispatch: func(f func()) { go f() },
	}
	for _, opt := range opts {
		opt(&out)
	}
	return out
}
