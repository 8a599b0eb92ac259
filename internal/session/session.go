package session

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const cookieName = "coursehub_session"

// Notice is a one-shot message rendered on the next page load.
type Notice struct {
	Level string
	Text  string
}

// State is the full session payload. AdminVerified stays false after a
// superuser login until the secondary key check passes.
type State struct {
	UserID        uint
	IsSuperuser   bool
	AdminVerified bool
	OpenModal     string
}

func init() {
	gob.Register(Notice{})
}

type Manager struct {
	store *sessions.CookieStore
}

func NewManager(secret []byte) *Manager {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}
}

func (m *Manager) session(c echo.Context) *sessions.Session {
	// CookieStore.Get only errors on a tampered cookie; a fresh session is
	// still returned, so the broken cookie just gets replaced.
	s, _ := m.store.Get(c.Request(), cookieName)
	return s
}

func (m *Manager) Get(c echo.Context) State {
	s := m.session(c)
	st := State{}
	if v, ok := s.Values["user_id"].(uint); ok {
		st.UserID = v
	}
	if v, ok := s.Values["is_superuser"].(bool); ok {
		st.IsSuperuser = v
	}
	if v, ok := s.Values["admin_verified"].(bool); ok {
		st.AdminVerified = v
	}
	if v, ok := s.Values["open_modal"].(string); ok {
		st.OpenModal = v
	}
	return st
}

func (m *Manager) Save(c echo.Context, st State) error {
	s := m.session(c)
	s.Values["user_id"] = st.UserID
	s.Values["is_superuser"] = st.IsSuperuser
	s.Values["admin_verified"] = st.AdminVerified
	s.Values["open_modal"] = st.OpenModal
	return s.Save(c.Request(), c.Response())
}

// Clear drops the whole session, notices included.
func (m *Manager) Clear(c echo.Context) error {
	s := m.session(c)
	s.Values = map[interface{}]interface{}{}
	s.Options.MaxAge = -1
	return s.Save(c.Request(), c.Response())
}

func (m *Manager) AddNotice(c echo.Context, level, text string) {
	s := m.session(c)
	s.AddFlash(Notice{Level: level, Text: text})
	if err := s.Save(c.Request(), c.Response()); err != nil {
		c.Logger().Errorf("session save error: %v", err)
	}
}

// Notices pops all pending flashes.
func (m *Manager) Notices(c echo.Context) []Notice {
	s := m.session(c)
	flashes := s.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := s.Save(c.Request(), c.Response()); err != nil {
		c.Logger().Errorf("session save error: %v", err)
	}
	notices := make([]Notice, 0, len(flashes))
	for _, f := range flashes {
		if n, ok := f.(Notice); ok {
			notices = append(notices, n)
		}
	}
	return notices
}

// PopOpenModal consumes the modal hint stored by a failed register/login.
func (m *Manager) PopOpenModal(c echo.Context) string {
	st := m.Get(c)
	if st.OpenModal == "" {
		return ""
	}
	modal := st.OpenModal
	st.OpenModal = ""
	if err := m.Save(c, st); err != nil {
		c.Logger().Errorf("session save error: %v", err)
	}
	return modal
}

// RequireLogin redirects anonymous requests to the home page with a warning,
// mirroring the behaviour of every account-scoped page.
func (m *Manager) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.Get(c).UserID == 0 {
			m.AddNotice(c, "warning", "Please login or register to access this page.")
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return next(c)
	}
}

// RequireVerifiedAdmin gates the admin CRUD surface. A superuser that has not
// passed the key check yet is sent back to the verification page.
func (m *Manager) RequireVerifiedAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		st := m.Get(c)
		if st.UserID == 0 {
			m.AddNotice(c, "warning", "Please login or register to access this page.")
			return c.Redirect(http.StatusSeeOther, "/")
		}
		if !st.IsSuperuser {
			return echo.NewHTTPError(http.StatusForbidden, "admin only")
		}
		if !st.AdminVerified {
			m.AddNotice(c, "info", "Please verify your admin key.")
			return c.Redirect(http.StatusSeeOther, "/verify-admin")
		}
		return next(c)
	}
}
