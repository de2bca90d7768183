package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"quiz-platform/internal/domain"
	"quiz-platform/internal/store"
)

const (
	// DefaultCodeTTL is how long a verification code stays usable.
	DefaultCodeTTL = 5 * time.Minute

	deliveryTimeout = 10 * time.Second
)

// IssuedCode is the outcome of IssueCode. When ChannelBound is true the code went
// to the user's Telegram chat and must not be echoed back to the caller.
type IssuedCode struct {
	Code         string
	ChannelBound bool
}

// VerificationService issues and checks one-time codes tied to a Telegram identity.
type VerificationService struct {
	base
	chats    ChatDirectory
	notifier Notifier
	ttl      time.Duration
}

// NewVerificationService wires the service. notifier may be nil when no bot is configured.
func NewVerificationService(b store.Backend, chats ChatDirectory, notifier Notifier, ttl time.Duration, opts ...Option) *VerificationService {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &VerificationService{
		base:     newBase(b, opts),
		chats:    chats,
		notifier: notifier,
		ttl:      ttl,
	}
}

// IssueCode replaces any previous code for identity and tries to deliver the new one.
func (s *VerificationService) IssueCode(ctx context.Context, identity string) (IssuedCode, error) {
	identity = domain.NormalizeTelegram(identity)
	if identity == "" {
		return IssuedCode{}, fmt.Errorf("%w: telegram is required", domain.ErrValidation)
	}

	code, err := newCode()
	if err != nil {
		return IssuedCode{}, err
	}
	now := s.now()
	entry := domain.VerificationEntry{
		Telegram:  identity,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	err = store.Update(ctx, s.store, store.Verifications, func(entries []domain.VerificationEntry) ([]domain.VerificationEntry, error) {
		kept := entries[:0]
		for _, e := range entries {
			if e.Telegram == identity || !now.Before(e.ExpiresAt) {
				continue
			}
			kept = append(kept, e)
		}
		return append(kept, entry), nil
	})
	if err != nil {
		return IssuedCode{}, err
	}

	chatID, ok := s.lookupChat(ctx, identity)
	if !ok {
		return IssuedCode{Code: code}, nil
	}
	s.dispatch(func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		if err := s.notifier.SendCode(sendCtx, chatID, code); err != nil {
			log.Printf("verification: deliver code to %s: %v", identity, err)
		}
	})
	return IssuedCode{Code: code, ChannelBound: true}, nil
}

// VerifyCode consumes a matching, unexpired code.
func (s *VerificationService) VerifyCode(ctx context.Context, identity, code string) error {
	identity = domain.NormalizeTelegram(identity)
	if identity == "" || code == "" {
		return fmt.Errorf("%w: telegram and code are required", domain.ErrValidation)
	}
	now := s.now()
	return store.Update(ctx, s.store, store.Verifications, func(entries []domain.VerificationEntry) ([]domain.VerificationEntry, error) {
		match := -1
		for i, e := range entries {
			if e.Telegram == identity && e.Code == code && now.Before(e.ExpiresAt) {
				match = i
				break
			}
		}
		if match < 0 {
			return nil, domain.ErrInvalidOrExpiredCode
		}
		kept := make([]domain.VerificationEntry, 0, len(entries)-1)
		for i, e := range entries {
			if i == match || !now.Before(e.ExpiresAt) {
				continue
			}
			kept = append(kept, e)
		}
		return kept, nil
	})
}

// BindChat records the chat a Telegram user opened with the bot.
func (s *VerificationService) BindChat(ctx context.Context, identity string, chatID int64) error {
	identity = domain.NormalizeTelegram(identity)
	if identity == "" {
		return fmt.Errorf("%w: telegram username is required", domain.ErrValidation)
	}
	return s.chats.Bind(ctx, identity, chatID)
}

func (s *VerificationService) lookupChat(ctx context.Context, identity string) (int64, bool) {
	if s.notifier == nil || s.chats == nil {
		return 0, false
	}
	chatID, ok, err := s.chats.ChatID(ctx, identity)
	if err != nil {
		log.Printf("verification: chat lookup for %s: %v", identity, err)
		return 0, false
	}
	return chatID, ok
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
