package sessionstore

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := New(ttl, testKey)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func saveValue(t *testing.T, s *Store, key, value string) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	sess, err := s.Get(req, "sid")
	require.NoError(t, err)
	assert.True(t, sess.IsNew)
	sess.Values[key] = value
	require.NoError(t, sess.Save(req, rec))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t, time.Hour)
	cookie := saveValue(t, s, "userid", "alice")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sess, err := s.Get(req, "sid")
	require.NoError(t, err)
	assert.False(t, sess.IsNew)
	assert.Equal(t, "alice", sess.Values["userid"])

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCookieHoldsOnlyOpaqueID(t *testing.T) {
	s := newTestStore(t, time.Hour)
	cookie := saveValue(t, s, "userid", "alice")
	assert.NotContains(t, cookie.Value, "alice")
	assert.Zero(t, cookie.MaxAge, "reader sessions are browser-session cookies")
}

func TestForgedCookieYieldsNewSession(t *testing.T) {
	s := newTestStore(t, time.Hour)
	saveValue(t, s, "userid", "alice")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "not-a-signed-id"})
	sess, err := s.Get(req, "sid")
	require.NoError(t, err)
	assert.True(t, sess.IsNew)
	assert.Empty(t, sess.Values)
}

func TestUnknownIDYieldsNewSession(t *testing.T) {
	s := newTestStore(t, time.Hour)
	cookie := saveValue(t, s, "userid", "alice")

	other := newTestStore(t, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sess, err := other.Get(req, "sid")
	require.NoError(t, err)
	assert.True(t, sess.IsNew, "sessions do not carry over to a fresh store")
}

func TestNegativeMaxAgeDeletes(t *testing.T) {
	s := newTestStore(t, time.Hour)
	cookie := saveValue(t, s, "userid", "alice")

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	sess, err := s.Get(req, "sid")
	require.NoError(t, err)
	sess.Options.MaxAge = -1
	require.NoError(t, sess.Save(req, rec))

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sess, err = s.Get(req, "sid")
	require.NoError(t, err)
	assert.True(t, sess.IsNew)
}

func TestIdleSessionsExpire(t *testing.T) {
	s := newTestStore(t, time.Second)
	cookie := saveValue(t, s, "userid", "alice")

	time.Sleep(1500 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sess, err := s.Get(req, "sid")
	require.NoError(t, err)
	assert.True(t, sess.IsNew)
}

func TestReadingSessionExtendsTTL(t *testing.T) {
	// badger expiry has whole-second resolution, so a 3s TTL lives more than 2s
	s := newTestStore(t, 3*time.Second)
	cookie := saveValue(t, s, "userid", "alice")

	for i := 0; i < 3; i++ {
		time.Sleep(1500 * time.Millisecond)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		sess, err := s.Get(req, "sid")
		require.NoError(t, err)
		require.False(t, sess.IsNew, "read %d should find the session", i+1)
		assert.Equal(t, "alice", sess.Values["userid"])
	}
}

func TestRenewIssuesNewID(t *testing.T) {
	s := newTestStore(t, time.Hour)
	cookie := saveValue(t, s, "userid", "alice")

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	sess, err := s.Get(req, "sid")
	require.NoError(t, err)
	oldID := sess.ID

	require.NoError(t, s.Renew(sess))
	sess.Values["userid"] = "bob"
	require.NoError(t, sess.Save(req, rec))
	assert.NotEqual(t, oldID, sess.ID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	old, err := s.Get(req, "sid")
	require.NoError(t, err)
	assert.True(t, old.IsNew, "the previous id no longer resolves")

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
