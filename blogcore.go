// Package blogcore is the request-handling core of a blog backend built with
// Go, Echo, and templ. It turns requests into paginated post listings,
// article pages, keyword search results and reader login/registration flows.
//
// Users may provide their own templ templates via the ViewFuncs struct;
// blogcore handles validation, query construction, sessions and storage.
package blogcore

import (
	"context"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/feather/blogcore/auth"
	"github.com/feather/blogcore/sessionstore"
	"github.com/feather/blogcore/views"
)

// ViewFuncs holds the templ components the handlers render. Nil fields fall
// back to the components in package views.
type ViewFuncs struct {
	Home        func(cfg views.SiteConfig, r views.ListingResult) templ.Component
	Category    func(cfg views.SiteConfig, r views.ListingResult) templ.Component
	Search      func(cfg views.SiteConfig, r views.ListingResult) templ.Component
	Detail      func(cfg views.SiteConfig, d views.ArticleDetail) templ.Component
	Login       func(cfg views.SiteConfig, csrfToken string) templ.Component
	Register    func(cfg views.SiteConfig, csrfToken string) templ.Component
	NotFound    func(cfg views.SiteConfig) templ.Component
	ServerError func(cfg views.SiteConfig) templ.Component
}

func (v *ViewFuncs) setDefaults() {
	if v.Home == nil {
		v.Home = views.Home
	}
	if v.Category == nil {
		v.Category = views.Category
	}
	if v.Search == nil {
		v.Search = views.Search
	}
	if v.Detail == nil {
		v.Detail = views.Detail
	}
	if v.Login == nil {
		v.Login = views.Login
	}
	if v.Register == nil {
		v.Register = views.Register
	}
	if v.NotFound == nil {
		v.NotFound = views.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = views.ServerError
	}
}

// App is the central blogcore application. It wires together the store,
// sessions, auth gate, caches, handlers, middleware, and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Sessions *sessionstore.Store
	Gate     *auth.Gate
	Total    *TotalCache
	Metrics  *Metrics
	Views    ViewFuncs

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	ownsStore    bool
}

// New creates a blogcore App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	views.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the store and session store, then installs middleware and
// routes. It is called by Start; tests call it directly.
func (a *App) Setup() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("blogcore: SessionSecret is required")
	}

	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("blogcore: init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}
	if a.Config.RegistrationAnswer != "" {
		if err := a.Store.SetRecoveryAnswer(context.Background(), a.Config.RegistrationAnswer); err != nil {
			return fmt.Errorf("blogcore: store registration answer: %w", err)
		}
	}

	sessions, err := sessionstore.New(a.Config.SessionTTL, []byte(a.Config.SessionSecret))
	if err != nil {
		return fmt.Errorf("blogcore: init sessions: %w", err)
	}
	sessions.Options.HttpOnly = true
	sessions.Options.Secure = a.Config.CookieSecure
	sessions.Options.SameSite = http.SameSiteLaxMode
	a.Sessions = sessions

	a.Metrics = NewMetrics()
	a.Gate = auth.NewGate(a.Store)
	a.Total = NewTotalCache(a.Metrics)
	a.loginLimiter = NewLoginLimiter(a.Config.LoginMaxAttempts, a.Config.LoginWindow)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start sets the app up and serves until the server stops.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/", a.handleHome)
	e.GET("/category", a.handleCategory)
	e.GET("/search", a.handleSearch)
	e.GET("/detail", a.handleDetail)
	e.POST("/comment", a.handleComment)

	e.GET("/login", a.handleLoginPage)
	e.POST("/login", a.handleLogin)
	e.GET("/register", a.handleRegisterPage)
	e.POST("/register", a.handleRegister)
	e.GET("/is_login", a.handleLoginStatus)
	e.GET("/new_post", a.handleCompose)
	e.POST("/logout", a.handleLogout)

	e.GET("/feed.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)

	if a.Config.metricsEnabled() {
		e.GET("/metrics", a.Metrics.Handler())
	}
}

// site returns the settings templates print.
func (a *App) site() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Close()
	}
	if a.Sessions != nil {
		a.Sessions.Close()
	}
	if a.Store != nil && a.ownsStore {
		a.Store.Close()
	}
	return nil
}
