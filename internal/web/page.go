package web

import (
	"github.com/labstack/echo/v4"

	"github.com/codepilot/coursehub/internal/session"
)

// RenderPage renders a full page with the pending one-shot notices injected.
func RenderPage(c echo.Context, sess *session.Manager, code int, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	if sess != nil {
		data["Notices"] = sess.Notices(c)
	}
	return c.Render(code, name, data)
}

// IsAJAX reports whether the request came from the frontend's fetch helper,
// which sets the header jQuery made conventional.
func IsAJAX(c echo.Context) bool {
	return c.Request().Header.Get("X-Requested-With") == "XMLHttpRequest"
}
