package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/codepilot/coursehub/internal/models"
	"github.com/codepilot/coursehub/internal/session"
	"github.com/codepilot/coursehub/internal/web"
)

// SiteHandler covers the static pages, the contact form and the newsletter.
type SiteHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
}

func (h *SiteHandler) About(c echo.Context) error {
	return web.RenderPage(c, h.Sessions, http.StatusOK, "about_us.html", nil)
}

func (h *SiteHandler) ContactPage(c echo.Context) error {
	return web.RenderPage(c, h.Sessions, http.StatusOK, "contact_us.html", nil)
}

func (h *SiteHandler) Contact(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	email := strings.TrimSpace(c.FormValue("email"))
	subject := strings.TrimSpace(c.FormValue("subject"))
	message := strings.TrimSpace(c.FormValue("message"))

	if name == "" || email == "" || message == "" {
		h.Sessions.AddNotice(c, "error", "Please fill all required fields.")
		return c.Redirect(http.StatusSeeOther, "/contact")
	}

	msg := models.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: message,
	}
	if err := h.DB.Create(&msg).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.Sessions.AddNotice(c, "success", "Thank you! We will connect with you shortly.")
	return c.Redirect(http.StatusSeeOther, "/contact")
}

// Subscribe adds an email to the newsletter list; subscribing twice is
// reported, not duplicated.
func (h *SiteHandler) Subscribe(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	if email == "" {
		h.Sessions.AddNotice(c, "error", "Please enter a valid email.")
		return h.redirectBack(c)
	}

	var count int64
	if err := h.DB.Model(&models.Subscriber{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if count > 0 {
		h.Sessions.AddNotice(c, "info", "You are already subscribed.")
		return h.redirectBack(c)
	}

	if err := h.DB.Create(&models.Subscriber{Email: email}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.Sessions.AddNotice(c, "success", "Subscribed successfully!")
	return h.redirectBack(c)
}

func (h *SiteHandler) redirectBack(c echo.Context) error {
	if ref := c.Request().Referer(); ref != "" {
		return c.Redirect(http.StatusSeeOther, ref)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// NotFoundHandler renders the dedicated 404 page for browser requests and
// keeps JSON for AJAX callers. Wired as echo's HTTPErrorHandler.
func NotFoundHandler(sessions *session.Manager) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			message = http.StatusText(code)
			if s, ok := he.Message.(string); ok {
				message = s
			}
		}

		if code == http.StatusNotFound && !web.IsAJAX(c) {
			if rerr := web.RenderPage(c, sessions, http.StatusNotFound, "404.html", nil); rerr != nil {
				c.Logger().Errorf("404 render error: %v", rerr)
			}
			return
		}

		if jerr := c.JSON(code, echo.Map{"status": "error", "message": message}); jerr != nil {
			c.Logger().Errorf("error response error: %v", jerr)
		}
	}
}
