// Package auth implements reader login, registration and session checks.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid user name or password")
	ErrConflict           = errors.New("user name or email already exists")
	ErrForbidden          = errors.New("wrong answer to the verification question")
	ErrUserNotFound       = errors.New("user not found")
)

// User is a registered reader account.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Nickname     string
	Email        string
}

// UserStore is the storage the gate reads and writes accounts through.
type UserStore interface {
	// FindUserByLogin returns ErrUserNotFound when no account matches.
	FindUserByLogin(ctx context.Context, login string) (User, error)
	UserExists(ctx context.Context, login, email string) (bool, error)
	RecoveryAnswer(ctx context.Context) (string, error)
	// CreateUser returns ErrConflict when login or email is taken.
	CreateUser(ctx context.Context, u User) (User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// Gate performs login and registration against a UserStore.
type Gate struct {
	users     UserStore
	dummyHash string
}

// NewGate returns a Gate backed by users.
func NewGate(users UserStore) *Gate {
	// verified against for unknown logins
	dummy, _ := HashPassword("not-a-real-password")
	return &Gate{users: users, dummyHash: dummy}
}

// Login returns the account matching login and password. Any mismatch
// yields ErrInvalidCredentials without saying which field was wrong.
// Accounts still on an older hash are rehashed on success.
func (g *Gate) Login(ctx context.Context, login, password string) (User, error) {
	u, err := g.users.FindUserByLogin(ctx, login)
	if errors.Is(err, ErrUserNotFound) {
		VerifyPassword(g.dummyHash, password)
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("find user: %w", err)
	}
	ok, upgrade := VerifyPassword(u.PasswordHash, password)
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if upgrade {
		// The old hash matched, so the login stands even if the upgrade
		// fails; it is retried on the next login.
		if hash, err := HashPassword(password); err == nil {
			if err := g.users.UpdatePasswordHash(ctx, u.ID, hash); err == nil {
				u.PasswordHash = hash
			}
		}
	}
	return u, nil
}

// Registration is the input of Register.
type Registration struct {
	Login    string
	Email    string
	Answer   string
	Password string
}

// Register creates an account. It fails with ErrConflict when the login or
// email is taken and ErrForbidden when the verification answer is wrong.
func (g *Gate) Register(ctx context.Context, r Registration) (User, error) {
	exists, err := g.users.UserExists(ctx, r.Login, r.Email)
	if err != nil {
		return User{}, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return User{}, ErrConflict
	}
	answer, err := g.users.RecoveryAnswer(ctx)
	if err != nil {
		return User{}, fmt.Errorf("load answer: %w", err)
	}
	if answer == "" || !strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(r.Answer)) {
		return User{}, ErrForbidden
	}
	hash, err := HashPassword(r.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := g.users.CreateUser(ctx, User{
		Login:        r.Login,
		PasswordHash: hash,
		Nickname:     r.Login,
		Email:        r.Email,
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return User{}, ErrConflict
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}
