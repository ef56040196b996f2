package blogcore

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// badRequest answers a rejected parameter with an empty 400.
func badRequest(c echo.Context) error {
	return c.NoContent(http.StatusBadRequest)
}

// message answers an account operation with a 200 and a short text.
func message(c echo.Context, msg string) error {
	return c.String(http.StatusOK, msg)
}
