package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/codepilot/coursehub/internal/hash"
	"github.com/codepilot/coursehub/internal/models"
	"github.com/codepilot/coursehub/internal/mykafka"
	"github.com/codepilot/coursehub/internal/session"
	"github.com/codepilot/coursehub/internal/web"
)

type AuthHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
	Producer *mykafka.Producer
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// redirectWithModal stores which auth modal the home page should reopen.
func (h *AuthHandler) redirectWithModal(c echo.Context, modal string) error {
	st := h.Sessions.Get(c)
	st.OpenModal = modal
	if err := h.Sessions.Save(c, st); err != nil {
		c.Logger().Errorf("session save error: %v", err)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) Register(c echo.Context) error {
	if h.Sessions.Get(c).UserID != 0 {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	username := strings.TrimSpace(c.FormValue("username"))
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	confirm := c.FormValue("confirm_password")

	if username == "" || email == "" || password == "" || confirm == "" {
		h.Sessions.AddNotice(c, "error", "All fields are required.")
		return c.Redirect(http.StatusSeeOther, "/")
	}
	if password != confirm {
		h.Sessions.AddNotice(c, "error", "Passwords do not match.")
		return h.redirectWithModal(c, "register")
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if count > 0 {
		h.Sessions.AddNotice(c, "error", "Username already exists.")
		return h.redirectWithModal(c, "register")
	}
	if err := h.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if count > 0 {
		h.Sessions.AddNotice(c, "error", "Email already registered.")
		return h.redirectWithModal(c, "register")
	}

	passwordHash, err := hash.HashPassword(password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	h.Sessions.AddNotice(c, "success", "Registration successful. Please log in.")
	return h.redirectWithModal(c, "login")
}

func (h *AuthHandler) Login(c echo.Context) error {
	if h.Sessions.Get(c).UserID != 0 {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	identifier := strings.TrimSpace(c.FormValue("identifier"))
	password := c.FormValue("password")

	// The identifier is resolved against usernames first, then emails.
	var user models.User
	err := h.DB.Where("username = ?", identifier).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = h.DB.Where("email = ?", identifier).First(&user).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.Sessions.AddNotice(c, "error", "User not found.")
		return h.redirectWithModal(c, "login")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		h.Sessions.AddNotice(c, "error", "Incorrect password.")
		return h.redirectWithModal(c, "login")
	}

	st := session.State{
		UserID:      user.ID,
		IsSuperuser: user.IsSuperuser,
		// Superusers must pass the key check before the session counts as
		// fully verified.
		AdminVerified: !user.IsSuperuser,
	}
	if err := h.Sessions.Save(c, st); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	h.Sessions.AddNotice(c, "success", fmt.Sprintf("Welcome, %s!", user.Username))
	if user.IsSuperuser {
		h.Sessions.AddNotice(c, "info", "Please verify your admin key.")
		return c.Redirect(http.StatusSeeOther, "/verify-admin")
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) VerifyAdminPage(c echo.Context) error {
	return web.RenderPage(c, h.Sessions, http.StatusOK, "verify_admin.html", nil)
}

// VerifyAdminKey checks the submitted key against the hash stored on the
// admin's own account. A wrong key re-prompts, there is no lockout.
func (h *AuthHandler) VerifyAdminKey(c echo.Context) error {
	st := h.Sessions.Get(c)

	var user models.User
	if err := h.DB.First(&user, st.UserID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	key := strings.TrimSpace(c.FormValue("key"))
	if user.AdminKeyHash == "" || !hash.CheckPassword(user.AdminKeyHash, key) {
		h.Sessions.AddNotice(c, "error", "Invalid admin key.")
		return c.Redirect(http.StatusSeeOther, "/verify-admin")
	}

	st.AdminVerified = true
	if err := h.Sessions.Save(c, st); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.Sessions.AddNotice(c, "success", "Admin verified successfully.")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	st := h.Sessions.Get(c)
	if err := h.Sessions.Clear(c); err != nil {
		c.Logger().Errorf("session clear error: %v", err)
	}

	if st.UserID != 0 {
		h.publish(c, map[string]any{
			"type":   "user_logged_out",
			"userID": st.UserID,
		})
	}

	h.Sessions.AddNotice(c, "success", "You have been logged out.")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) ProfilePage(c echo.Context) error {
	st := h.Sessions.Get(c)
	if st.IsSuperuser {
		h.Sessions.AddNotice(c, "error", "Admins are not allowed to update their profile.")
		return c.Redirect(http.StatusSeeOther, "/")
	}

	var user models.User
	if err := h.DB.First(&user, st.UserID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return web.RenderPage(c, h.Sessions, http.StatusOK, "profile.html", map[string]any{"User": user})
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	st := h.Sessions.Get(c)
	if st.IsSuperuser {
		h.Sessions.AddNotice(c, "error", "Admins are not allowed to update their profile.")
		return c.Redirect(http.StatusSeeOther, "/")
	}

	var user models.User
	if err := h.DB.First(&user, st.UserID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	newUsername := strings.TrimSpace(c.FormValue("username"))
	newEmail := strings.TrimSpace(c.FormValue("email"))
	oldPassword := strings.TrimSpace(c.FormValue("old_password"))
	newPassword := strings.TrimSpace(c.FormValue("new_password"))
	confirm := strings.TrimSpace(c.FormValue("confirm_password"))

	if newUsername == "" || newEmail == "" {
		h.Sessions.AddNotice(c, "error", "Username and Email are required.")
		return c.Redirect(http.StatusSeeOther, "/profile")
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("id <> ? AND username = ?", user.ID, newUsername).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if count > 0 {
		h.Sessions.AddNotice(c, "error", "Username is already taken.")
		return c.Redirect(http.StatusSeeOther, "/profile")
	}
	if err := h.DB.Model(&models.User{}).Where("id <> ? AND email = ?", user.ID, newEmail).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if count > 0 {
		h.Sessions.AddNotice(c, "error", "Email is already used.")
		return c.Redirect(http.StatusSeeOther, "/profile")
	}

	user.Username = newUsername
	user.Email = newEmail

	if newPassword != "" {
		if oldPassword == "" {
			h.Sessions.AddNotice(c, "error", "Please enter your old password to set a new one.")
			return c.Redirect(http.StatusSeeOther, "/profile")
		}
		if !hash.CheckPassword(user.PasswordHash, oldPassword) {
			h.Sessions.AddNotice(c, "error", "Old password is incorrect.")
			return c.Redirect(http.StatusSeeOther, "/profile")
		}
		if newPassword != confirm {
			h.Sessions.AddNotice(c, "error", "New passwords do not match.")
			return c.Redirect(http.StatusSeeOther, "/profile")
		}
		passwordHash, err := hash.HashPassword(newPassword)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		// The session is a server-signed cookie keyed by user id, so a
		// password change does not invalidate it.
		user.PasswordHash = passwordHash
	}

	if err := h.DB.Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "profile_updated",
		"userID": user.ID,
	})

	h.Sessions.AddNotice(c, "success", "Profile updated successfully.")
	return c.Redirect(http.StatusSeeOther, "/profile")
}
