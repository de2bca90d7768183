package app

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"quiz-platform/internal/domain"
	"quiz-platform/internal/store"
)

const (
	minPasswordLength = 6
	// bcrypt rejects passwords longer than 72 bytes.
	maxPasswordBytes = 72
)

// RegisterInput is a self-registration request.
type RegisterInput struct {
	FirstName   string
	LastName    string
	DirectionID string
	Phone       string
	Telegram    string
	Login       string
	Password    string
}

// AccountPatch carries the admin-editable fields; nil means unchanged.
type AccountPatch struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	DirectionID *string
	IsAdmin     *bool
}

// AccountService owns registration, login and admin account management.
type AccountService struct {
	base
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewAccountService(b store.Backend, hasher PasswordHasher, tokens TokenIssuer, opts ...Option) *AccountService {
	return &AccountService{base: newBase(b, opts), hasher: hasher, tokens: tokens}
}

// Register creates a learner account. New accounts are never admins.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (domain.Account, error) {
	in = trimRegister(in)
	if in.FirstName == "" || in.LastName == "" || in.DirectionID == "" || in.Phone == "" ||
		domain.NormalizeTelegram(in.Telegram) == "" || in.Login == "" || in.Password == "" {
		return domain.Account{}, fmt.Errorf("%w: all fields are required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return domain.Account{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	if len(in.Password) > maxPasswordBytes {
		return domain.Account{}, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}
	if _, err := s.direction(ctx, in.DirectionID); err != nil {
		return domain.Account{}, err
	}

	hash, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return domain.Account{}, err
	}
	account := domain.Account{
		ID:           s.newID(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		DirectionID:  in.DirectionID,
		Phone:        in.Phone,
		Telegram:     domain.NormalizeTelegram(in.Telegram),
		Login:        in.Login,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	err = store.Update(ctx, s.store, store.Accounts, func(accounts []domain.Account) ([]domain.Account, error) {
		for _, a := range accounts {
			if a.Login == account.Login {
				return nil, domain.ErrLoginTaken
			}
			if domain.NormalizeTelegram(a.Telegram) == account.Telegram {
				return nil, domain.ErrTelegramTaken
			}
		}
		return append(accounts, account), nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

// Login checks credentials and returns a signed token.
func (s *AccountService) Login(ctx context.Context, login, password string) (string, domain.AccountView, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return "", domain.AccountView{}, fmt.Errorf("%w: login and password are required", domain.ErrValidation)
	}
	accounts, err := store.Load[domain.Account](ctx, s.store, store.Accounts)
	if err != nil {
		return "", domain.AccountView{}, err
	}
	for _, a := range accounts {
		if a.Login != login {
			continue
		}
		if !s.hasher.CheckPassword(a.PasswordHash, password) {
			break
		}
		token, err := s.tokens.Issue(a.ID, a.IsAdmin)
		if err != nil {
			return "", domain.AccountView{}, err
		}
		return token, s.view(ctx, a), nil
	}
	return "", domain.AccountView{}, domain.ErrInvalidCredentials
}

func (s *AccountService) Profile(ctx context.Context, id string) (domain.AccountView, error) {
	account, err := s.account(ctx, id)
	if err != nil {
		return domain.AccountView{}, err
	}
	return s.view(ctx, account), nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.AccountView, error) {
	accounts, err := store.Load[domain.Account](ctx, s.store, store.Accounts)
	if err != nil {
		return nil, err
	}
	names, err := directionNames(ctx, s.store)
	if err != nil {
		return nil, err
	}
	views := make([]domain.AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, a.View(names[a.DirectionID]))
	}
	return views, nil
}

func (s *AccountService) UpdateAccount(ctx context.Context, id string, patch AccountPatch) (domain.AccountView, error) {
	if patch.DirectionID != nil {
		if _, err := s.direction(ctx, strings.TrimSpace(*patch.DirectionID)); err != nil {
			return domain.AccountView{}, err
		}
	}
	var updated domain.Account
	err := store.Update(ctx, s.store, store.Accounts, func(accounts []domain.Account) ([]domain.Account, error) {
		for i := range accounts {
			if accounts[i].ID != id {
				continue
			}
			if err := applyPatch(&accounts[i], patch); err != nil {
				return nil, err
			}
			updated = accounts[i]
			return accounts, nil
		}
		return nil, domain.ErrAccountNotFound
	})
	if err != nil {
		return domain.AccountView{}, err
	}
	return s.view(ctx, updated), nil
}

// DeleteAccount removes the account. Its results stay for reporting.
func (s *AccountService) DeleteAccount(ctx context.Context, id string) error {
	return store.Update(ctx, s.store, store.Accounts, func(accounts []domain.Account) ([]domain.Account, error) {
		for i := range accounts {
			if accounts[i].ID == id {
				return append(accounts[:i], accounts[i+1:]...), nil
			}
		}
		return nil, domain.ErrAccountNotFound
	})
}

// GrantAdmin sets or clears the admin flag by login.
func (s *AccountService) GrantAdmin(ctx context.Context, login string, admin bool) error {
	login = strings.TrimSpace(login)
	return store.Update(ctx, s.store, store.Accounts, func(accounts []domain.Account) ([]domain.Account, error) {
		for i := range accounts {
			if accounts[i].Login == login {
				accounts[i].IsAdmin = admin
				return accounts, nil
			}
		}
		return nil, domain.ErrAccountNotFound
	})
}

func (s *AccountService) account(ctx context.Context, id string) (domain.Account, error) {
	accounts, err := store.Load[domain.Account](ctx, s.store, store.Accounts)
	if err != nil {
		return domain.Account{}, err
	}
	for _, a := range accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Account{}, domain.ErrAccountNotFound
}

func (s *AccountService) direction(ctx context.Context, id string) (domain.Direction, error) {
	if id == "" {
		return domain.Direction{}, fmt.Errorf("%w: direction is required", domain.ErrValidation)
	}
	directions, err := store.Load[domain.Direction](ctx, s.store, store.Directions)
	if err != nil {
		return domain.Direction{}, err
	}
	for _, d := range directions {
		if d.ID == id {
			return d, nil
		}
	}
	return domain.Direction{}, domain.ErrUnknownDirection
}

// view resolves the direction label; a lookup failure only costs the label.
func (s *AccountService) view(ctx context.Context, a domain.Account) domain.AccountView {
	names, err := directionNames(ctx, s.store)
	if err != nil {
		return a.View("")
	}
	return a.View(names[a.DirectionID])
}

func applyPatch(a *domain.Account, p AccountPatch) error {
	if p.FirstName != nil {
		if strings.TrimSpace(*p.FirstName) == "" {
			return fmt.Errorf("%w: first name must not be empty", domain.ErrValidation)
		}
		a.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		if strings.TrimSpace(*p.LastName) == "" {
			return fmt.Errorf("%w: last name must not be empty", domain.ErrValidation)
		}
		a.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Phone != nil {
		a.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.DirectionID != nil {
		a.DirectionID = strings.TrimSpace(*p.DirectionID)
	}
	if p.IsAdmin != nil {
		a.IsAdmin = *p.IsAdmin
	}
	return nil
}

func trimRegister(in RegisterInput) RegisterInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.DirectionID = strings.TrimSpace(in.DirectionID)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Telegram = strings.TrimSpace(in.Telegram)
	in.Login = strings.TrimSpace(in.Login)
	return in
}

func directionNames(ctx context.Context, b store.Backend) (map[string]string, error) {
	directions, err := store.Load[domain.Direction](ctx, b, store.Directions)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(directions))
	for _, d := range directions {
		names[d.ID] = d.Name
	}
	return names, nil
}
