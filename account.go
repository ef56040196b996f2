package blogcore

import (
	"errors"
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/feather/blogcore/auth"
	"github.com/feather/blogcore/input"
)

const (
	msgBadCredentials   = "incorrect user name or password"
	msgTooManyAttempts  = "Too many login attempts. Try again later."
	msgAccountExists    = "user name or email already registered"
	msgWrongAnswer      = "wrong answer to the verification question"
	msgRegistered       = "registration succeeded"
	msgLoggedIn         = "logged in"
	msgNotLoggedIn      = "not logged in"
	msgLoginBeforePosts = "please log in first"
)

func (a *App) handleLoginPage(c echo.Context) error {
	return Render(c, a.Views.Login(a.site(), CsrfToken(c)))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		a.Metrics.login("limited")
		return c.String(http.StatusTooManyRequests, msgTooManyAttempts)
	}

	login, password := c.FormValue("user_name"), c.FormValue("password")
	if err := input.ValidateAll(input.Text("user_name", login), input.Text("password", password)); err != nil {
		return badRequest(c)
	}

	u, err := a.Gate.Login(c.Request().Context(), login, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		a.loginLimiter.Record(ip)
		a.Metrics.login("rejected")
		return message(c, msgBadCredentials)
	}
	if err != nil {
		return err
	}

	sess, err := session.Get(auth.SessionName, c)
	if err != nil {
		return err
	}
	if err := a.Sessions.Renew(sess); err != nil {
		return err
	}
	auth.StartSession(sess, u.Login)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	a.loginLimiter.Reset(ip)
	a.Metrics.login("ok")

	pg, _ := input.ParsePage("", "")
	return a.renderHome(c, pg, u.Login)
}

func (a *App) handleRegisterPage(c echo.Context) error {
	return Render(c, a.Views.Register(a.site(), CsrfToken(c)))
}

func (a *App) handleRegister(c echo.Context) error {
	r := auth.Registration{
		Login:    c.FormValue("user_name"),
		Email:    c.FormValue("email"),
		Answer:   c.FormValue("answer"),
		Password: c.FormValue("user_pwd"),
	}
	if err := input.ValidateAll(
		input.Text("user_name", r.Login),
		input.Text("answer", r.Answer),
		input.Text("user_pwd", r.Password),
		input.Strict("email", r.Email),
	); err != nil {
		return badRequest(c)
	}

	_, err := a.Gate.Register(c.Request().Context(), r)
	switch {
	case errors.Is(err, auth.ErrConflict):
		a.Metrics.registration("conflict")
		return message(c, msgAccountExists)
	case errors.Is(err, auth.ErrForbidden):
		a.Metrics.registration("forbidden")
		return message(c, msgWrongAnswer)
	case err != nil:
		return err
	}
	a.Metrics.registration("ok")
	return message(c, msgRegistered)
}

func (a *App) handleLoginStatus(c echo.Context) error {
	if a.isLoggedIn(c) {
		return message(c, msgLoggedIn)
	}
	return message(c, msgNotLoggedIn)
}

func (a *App) handleCompose(c echo.Context) error {
	if !a.isLoggedIn(c) {
		return message(c, msgLoginBeforePosts)
	}
	return c.NoContent(http.StatusOK)
}

func (a *App) handleLogout(c echo.Context) error {
	sess, err := session.Get(auth.SessionName, c)
	if err != nil {
		return err
	}
	auth.EndSession(sess)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// isLoggedIn checks the user_name parameter against the request's session.
func (a *App) isLoggedIn(c echo.Context) bool {
	sess, err := session.Get(auth.SessionName, c)
	if err != nil {
		return false
	}
	return auth.IsAuthenticated(c.QueryParam("user_name"), sess)
}
