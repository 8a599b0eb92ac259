package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codepilot/coursehub/internal/hash"
	"github.com/codepilot/coursehub/internal/models"
)

func registerForm(username, email, password string) url.Values {
	return url.Values{
		"username":         {username},
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doForm(http.MethodPost, "/register", registerForm("alice", "alice@example.com", "password"))
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var user models.User
	require.NoError(t, env.DB.Where("username = ?", "alice").First(&user).Error)
	require.Equal(t, "alice@example.com", user.Email)
	require.False(t, user.IsSuperuser)
	require.NotEqual(t, "password", user.PasswordHash)
	require.True(t, hash.CheckPassword(user.PasswordHash, "password"))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "password")

	rec, c := env.doForm(http.MethodPost, "/register", registerForm("alice", "other@example.com", "password"))
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "password")

	rec, c := env.doForm(http.MethodPost, "/register", registerForm("bob", "alice@example.com", "password"))
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	env := newTestEnv(t)

	form := registerForm("alice", "alice@example.com", "password")
	form.Set("confirm_password", "different")
	rec, c := env.doForm(http.MethodPost, "/register", form)
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", "password")

	for _, identifier := range []string{"alice", "alice@example.com"} {
		cookies := env.login(t, identifier, "password")
		require.NotEmpty(t, cookies)

		_, c := env.doForm(http.MethodGet, "/", nil, cookies...)
		st := env.Sessions.Get(c)
		require.Equal(t, user.ID, st.UserID)
		require.True(t, st.AdminVerified)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "password")

	form := url.Values{"identifier": {"alice"}, "password": {"wrong"}}
	rec, c := env.doForm(http.MethodPost, "/login", form)
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	_, c2 := env.doForm(http.MethodGet, "/", nil, sessionCookies(rec)...)
	require.Zero(t, env.Sessions.Get(c2).UserID)
}

func TestLoginUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"identifier": {"ghost"}, "password": {"password"}}
	rec, c := env.doForm(http.MethodPost, "/login", form)
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAdminVerification(t *testing.T) {
	env := newTestEnv(t)
	env.createAdmin(t, "root", "password", "correct-key")

	// Login routes the superuser to the verification step, unverified.
	form := url.Values{"identifier": {"root"}, "password": {"password"}}
	rec, c := env.doForm(http.MethodPost, "/login", form)
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/verify-admin", rec.Header().Get("Location"))
	cookies := sessionCookies(rec)

	_, cState := env.doForm(http.MethodGet, "/", nil, cookies...)
	st := env.Sessions.Get(cState)
	require.True(t, st.IsSuperuser)
	require.False(t, st.AdminVerified)

	// A wrong key re-prompts and leaves the session unverified.
	rec, c = env.doForm(http.MethodPost, "/verify-admin", url.Values{"key": {"wrong-key"}}, cookies...)
	require.NoError(t, env.Auth.VerifyAdminKey(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/verify-admin", rec.Header().Get("Location"))

	_, cState = env.doForm(http.MethodGet, "/", nil, cookies...)
	require.False(t, env.Sessions.Get(cState).AdminVerified)

	// Retry with the right key succeeds.
	rec, c = env.doForm(http.MethodPost, "/verify-admin", url.Values{"key": {"correct-key"}}, cookies...)
	require.NoError(t, env.Auth.VerifyAdminKey(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	_, cState = env.doForm(http.MethodGet, "/", nil, sessionCookies(rec)...)
	require.True(t, env.Sessions.Get(cState).AdminVerified)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "password")
	cookies := env.login(t, "alice", "password")

	rec, c := env.doForm(http.MethodGet, "/logout", nil, cookies...)
	require.NoError(t, env.Auth.Logout(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	_, c2 := env.doForm(http.MethodGet, "/", nil, sessionCookies(rec)...)
	require.Zero(t, env.Sessions.Get(c2).UserID)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", "password")
	cookies := env.login(t, "alice", "password")

	form := url.Values{
		"username":         {"alice2"},
		"email":            {"alice2@example.com"},
		"old_password":     {"password"},
		"new_password":     {"newpassword"},
		"confirm_password": {"newpassword"},
	}
	rec, c := env.doForm(http.MethodPost, "/profile", form, cookies...)
	require.NoError(t, env.Auth.UpdateProfile(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/profile", rec.Header().Get("Location"))

	var updated models.User
	require.NoError(t, env.DB.First(&updated, user.ID).Error)
	require.Equal(t, "alice2", updated.Username)
	require.Equal(t, "alice2@example.com", updated.Email)
	require.True(t, hash.CheckPassword(updated.PasswordHash, "newpassword"))

	// Changing the password must not invalidate the current session.
	rec, c = env.doForm(http.MethodGet, "/profile", nil, cookies...)
	require.NoError(t, env.Auth.ProfilePage(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateProfileTakenUsername(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "bob", "bob@example.com", "password")
	user := env.createUser(t, "alice", "alice@example.com", "password")
	cookies := env.login(t, "alice", "password")

	form := url.Values{"username": {"bob"}, "email": {"alice@example.com"}}
	rec, c := env.doForm(http.MethodPost, "/profile", form, cookies...)
	require.NoError(t, env.Auth.UpdateProfile(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var unchanged models.User
	require.NoError(t, env.DB.First(&unchanged, user.ID).Error)
	require.Equal(t, "alice", unchanged.Username)
}

func TestUpdateProfileBlockedForAdmins(t *testing.T) {
	env := newTestEnv(t)
	env.createAdmin(t, "root", "password", "key")
	cookies := env.login(t, "root", "password")

	form := url.Values{"username": {"root2"}, "email": {"root@example.com"}}
	rec, c := env.doForm(http.MethodPost, "/profile", form, cookies...)
	require.NoError(t, env.Auth.UpdateProfile(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	var unchanged models.User
	require.NoError(t, env.DB.Where("username = ?", "root").First(&unchanged).Error)
	require.True(t, unchanged.IsSuperuser)
}
