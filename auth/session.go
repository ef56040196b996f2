package auth

import "github.com/gorilla/sessions"

// SessionName is the cookie name of the reader session.
const SessionName = "blog_session"

// SessionUserKey is the session value holding the logged-in login name.
const SessionUserKey = "userid"

// IsAuthenticated reports whether identity is non-empty and matches the
// login stored in sess. The request-supplied identity only selects what to
// compare; the session is the source of truth.
func IsAuthenticated(identity string, sess *sessions.Session) bool {
	if identity == "" || sess == nil || sess.IsNew {
		return false
	}
	uid, ok := sess.Values[SessionUserKey].(string)
	return ok && uid == identity
}

// StartSession records login in sess as a browser-session cookie. The
// caller saves the session.
func StartSession(sess *sessions.Session, login string) {
	sess.Values[SessionUserKey] = login
	sess.Options.MaxAge = 0
}

// EndSession marks sess for deletion. The caller saves the session.
func EndSession(sess *sessions.Session) {
	delete(sess.Values, SessionUserKey)
	sess.Options.MaxAge = -1
}
