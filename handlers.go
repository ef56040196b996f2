package blogcore

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/feather/blogcore/auth"
	"github.com/feather/blogcore/input"
	"github.com/feather/blogcore/query"
	"github.com/feather/blogcore/views"
)

const categoryAll = "all"

func (a *App) handleHome(c echo.Context) error {
	pg, err := input.ParsePage(c.QueryParam("start"), c.QueryParam("len"))
	if err != nil {
		return badRequest(c)
	}
	return a.renderHome(c, pg, a.viewer(c))
}

// renderHome runs the unfiltered listing. Its total comes from the soft cache.
func (a *App) renderHome(c echo.Context, pg input.Page, viewer string) error {
	ctx := c.Request().Context()
	total, err := a.Total.Get(ctx, func(ctx context.Context) (int64, error) {
		return a.Store.CountPosts(ctx, query.BuildCount(query.Filter{}))
	})
	if err != nil {
		return err
	}
	return a.renderListing(c, query.Filter{}, pg, total, categoryAll, viewer, a.Views.Home)
}

func (a *App) handleCategory(c echo.Context) error {
	pg, err := input.ParsePage(c.QueryParam("start"), c.QueryParam("len"))
	if err != nil {
		return badRequest(c)
	}
	raw := c.QueryParam("category")
	id, err := input.ParseID("category", raw)
	if err != nil {
		return badRequest(c)
	}

	f := query.ByCategory(id)
	total, err := a.Store.CountPosts(c.Request().Context(), query.BuildCount(f))
	if err != nil {
		return err
	}
	return a.renderListing(c, f, pg, total, raw, a.viewer(c), a.Views.Category)
}

func (a *App) handleSearch(c echo.Context) error {
	pg, err := input.ParsePage(c.QueryParam("start"), c.QueryParam("len"))
	if err != nil {
		return badRequest(c)
	}
	keyword := c.QueryParam("category")
	if err := input.ValidateAll(input.Text("category", keyword)); err != nil {
		return badRequest(c)
	}

	f := query.ByKeyword(keyword)
	total, err := a.Store.CountPosts(c.Request().Context(), query.BuildCount(f))
	if err != nil {
		return err
	}
	return a.renderListing(c, f, pg, total, keyword, a.viewer(c), a.Views.Search)
}

type listingView func(views.SiteConfig, views.ListingResult) templ.Component

// renderListing runs the page query sharing f with the count already taken.
// An empty page is answered with an empty 200.
func (a *App) renderListing(c echo.Context, f query.Filter, pg input.Page, total int64, category, viewer string, view listingView) error {
	rows, err := a.Store.ListPosts(c.Request().Context(), query.BuildListing(f, pg.Offset, pg.Limit))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return c.NoContent(http.StatusOK)
	}
	return Render(c, view(a.site(), views.AssembleListing(rows, total, pg.Number, category, viewer)))
}

func (a *App) handleDetail(c echo.Context) error {
	id, err := input.ParseID("id", c.QueryParam("id"))
	if err != nil {
		return badRequest(c)
	}
	rows, err := a.Store.ListPosts(c.Request().Context(), query.BuildDetail(id))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return badRequest(c)
	}
	return Render(c, a.Views.Detail(a.site(), views.AssembleDetail(rows[0])))
}

// handleComment only checks the submitted comment; storing it is left to
// whatever sits behind the blog's comment system.
func (a *App) handleComment(c echo.Context) error {
	if err := input.ValidateAll(
		input.Text("editorContent", c.FormValue("editorContent")),
		input.Text("user_login", c.FormValue("user_login")),
	); err != nil {
		return badRequest(c)
	}
	return c.NoContent(http.StatusOK)
}

func (a *App) handleSitemap(c echo.Context) error {
	rows, err := a.latestPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, rows)
}

func (a *App) handleFeed(c echo.Context) error {
	rows, err := a.latestPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, rows)
}

const feedSize = 20

func (a *App) latestPosts(ctx context.Context) ([]views.PostRow, error) {
	return a.Store.ListPosts(ctx, query.BuildListing(query.Filter{}, 0, feedSize))
}

// viewer returns the login stored in the request's session, or "".
func (a *App) viewer(c echo.Context) string {
	sess, err := session.Get(auth.SessionName, c)
	if err != nil || sess.IsNew {
		return ""
	}
	login, _ := sess.Values[auth.SessionUserKey].(string)
	return login
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.site()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
