package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	users     []User
	answer    string
	failNext  error
	updateErr error
	updates   int
}

func (m *memUsers) FindUserByLogin(_ context.Context, login string) (User, error) {
	if m.failNext != nil {
		return User{}, m.failNext
	}
	for _, u := range m.users {
		if u.Login == login {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *memUsers) UserExists(_ context.Context, login, email string) (bool, error) {
	for _, u := range m.users {
		if u.Login == login || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) RecoveryAnswer(context.Context) (string, error) {
	return m.answer, nil
}

func (m *memUsers) CreateUser(_ context.Context, u User) (User, error) {
	u.ID = int64(len(m.users) + 1)
	m.users = append(m.users, u)
	return u, nil
}

func (m *memUsers) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].PasswordHash = hash
			m.updates++
			return nil
		}
	}
	return ErrUserNotFound
}

func newStoreWith(t *testing.T, login, password string) *memUsers {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &memUsers{
		users:  []User{{ID: 1, Login: login, PasswordHash: hash, Nickname: login, Email: login + "@example.com"}},
		answer: "purecpp",
	}
}

func TestLoginSuccess(t *testing.T) {
	g := NewGate(newStoreWith(t, "alice", "s3cret"))
	u, err := g.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Login)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	g := NewGate(newStoreWith(t, "alice", "s3cret"))

	_, wrongPass := g.Login(context.Background(), "alice", "nope")
	_, wrongUser := g.Login(context.Background(), "mallory", "s3cret")

	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), wrongUser.Error())
}

func TestLoginStorageFailure(t *testing.T) {
	users := newStoreWith(t, "alice", "s3cret")
	users.failNext = errors.New("disk on fire")
	_, err := NewGate(users).Login(context.Background(), "alice", "s3cret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUpgradesLegacyHash(t *testing.T) {
	users := &memUsers{users: []User{{ID: 1, Login: "old", PasswordHash: LegacyMD5("pw")}}}
	g := NewGate(users)

	_, err := g.Login(context.Background(), "old", "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, users.updates)
	assert.True(t, strings.HasPrefix(users.users[0].PasswordHash, prehashPrefix), "hash should be bcrypt after upgrade")

	_, err = g.Login(context.Background(), "old", "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, users.updates, "upgraded hash should not be rehashed again")
}

func TestLoginUpgradesLongLegacyPassword(t *testing.T) {
	long := strings.Repeat("a", 73)
	users := &memUsers{users: []User{{ID: 1, Login: "old", PasswordHash: LegacyMD5(long)}}}
	g := NewGate(users)

	_, err := g.Login(context.Background(), "old", long)
	require.NoError(t, err)
	assert.Equal(t, 1, users.updates)

	_, err = g.Login(context.Background(), "old", long)
	require.NoError(t, err)
	_, err = g.Login(context.Background(), "old", strings.Repeat("a", 72))
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginSucceedsWhenUpgradeFails(t *testing.T) {
	users := &memUsers{users: []User{{ID: 1, Login: "old", PasswordHash: LegacyMD5("pw")}}}
	users.updateErr = errors.New("read-only database")

	u, err := NewGate(users).Login(context.Background(), "old", "pw")
	require.NoError(t, err)
	assert.Equal(t, "old", u.Login)
	assert.Equal(t, LegacyMD5("pw"), users.users[0].PasswordHash)
}

func TestPlainBcryptHashIsUpgraded(t *testing.T) {
	raw, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, upgrade := VerifyPassword(string(raw), "pw")
	assert.True(t, ok)
	assert.True(t, upgrade)
	ok, _ = VerifyPassword(string(raw), "nope")
	assert.False(t, ok)
}

func TestHashPasswordLongInputs(t *testing.T) {
	long := strings.Repeat("x", 200)
	hash, err := HashPassword(long)
	require.NoError(t, err)

	ok, upgrade := VerifyPassword(hash, long)
	assert.True(t, ok)
	assert.False(t, upgrade)
	ok, _ = VerifyPassword(hash, long[:199]+"y")
	assert.False(t, ok, "bytes past 72 must still count")
}

func TestLegacyMD5(t *testing.T) {
	assert.Equal(t, "5f4dcc3b5aa765d61d8327deb882cf99", LegacyMD5("password"))
	ok, upgrade := VerifyPassword("5f4dcc3b5aa765d61d8327deb882cf99", "password")
	assert.True(t, ok)
	assert.True(t, upgrade)
	ok, upgrade = VerifyPassword("5f4dcc3b5aa765d61d8327deb882cf99", "Password")
	assert.False(t, ok)
	assert.False(t, upgrade)
}

func TestRegisterCreatesExactlyOneUser(t *testing.T) {
	users := newStoreWith(t, "alice", "s3cret")
	g := NewGate(users)

	u, err := g.Register(context.Background(), Registration{
		Login: "bob", Email: "bob@example.com", Answer: "purecpp", Password: "hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Login)
	assert.Equal(t, "bob", u.Nickname)
	assert.Len(t, users.users, 2)
	assert.NotEqual(t, "hunter2", u.PasswordHash)

	ok, _ := VerifyPassword(u.PasswordHash, "hunter2")
	assert.True(t, ok)
}

func TestRegisterConflict(t *testing.T) {
	users := newStoreWith(t, "alice", "s3cret")
	g := NewGate(users)

	_, err := g.Register(context.Background(), Registration{
		Login: "alice", Email: "new@example.com", Answer: "purecpp", Password: "x",
	})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = g.Register(context.Background(), Registration{
		Login: "carol", Email: "alice@example.com", Answer: "purecpp", Password: "x",
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, users.users, 1)
}

func TestRegisterWrongAnswer(t *testing.T) {
	users := newStoreWith(t, "alice", "s3cret")
	_, err := NewGate(users).Register(context.Background(), Registration{
		Login: "bob", Email: "bob@example.com", Answer: "rust", Password: "x",
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Len(t, users.users, 1)
}

func TestRegisterWithoutConfiguredAnswer(t *testing.T) {
	users := &memUsers{}
	_, err := NewGate(users).Register(context.Background(), Registration{
		Login: "bob", Email: "bob@example.com", Answer: "", Password: "x",
	})
	assert.ErrorIs(t, err, ErrForbidden)
}
