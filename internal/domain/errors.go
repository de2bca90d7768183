package domain

import "errors"

var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrStorage wraps failures of the record store.
	ErrStorage = errors.New("storage failure")

	// ErrTestNotFound is returned when a test id does not resolve.
	ErrTestNotFound = errors.New("test not found")
	// ErrAlreadySubmitted is returned on a second submission for the same account and test.
	ErrAlreadySubmitted = errors.New("test already submitted")
	// ErrResultNotFound is returned when a result id does not resolve.
	ErrResultNotFound = errors.New("result not found")

	// ErrDirectionNotFound is returned when a direction id does not resolve on direction operations.
	ErrDirectionNotFound = errors.New("direction not found")
	// ErrUnknownDirection is returned when a test or account references a missing direction.
	ErrUnknownDirection = errors.New("unknown direction")
	// ErrDirectionInUse is returned when deleting a direction still referenced by accounts or tests.
	ErrDirectionInUse = errors.New("direction in use")
	// ErrDirectionExists is returned when a direction name is already taken.
	ErrDirectionExists = errors.New("direction already exists")

	// ErrAccountNotFound is returned when an account id or login does not resolve.
	ErrAccountNotFound = errors.New("account not found")
	// ErrLoginTaken is returned when registering a login that already exists.
	ErrLoginTaken = errors.New("login already taken")
	// ErrTelegramTaken is returned when registering a Telegram handle that already exists.
	ErrTelegramTaken = errors.New("telegram already taken")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid login or password")

	// ErrInvalidOrExpiredCode is returned when a verification code does not match or has expired.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
)
