package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codepilot/coursehub/internal/config"
	"github.com/codepilot/coursehub/internal/hash"
	"github.com/codepilot/coursehub/internal/models"
	"github.com/codepilot/coursehub/internal/mykafka"
	"github.com/codepilot/coursehub/internal/service/search"
	"github.com/codepilot/coursehub/internal/session"
	"github.com/codepilot/coursehub/internal/web"
)

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Sessions *session.Manager
	Auth     *AuthHandler
	Catalog  *CatalogHandler
	Checkout *CheckoutHandler
	Favorite *FavoriteHandler
	Admin    *AdminHandler
	Site     *SiteHandler
}

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := initTestDB(t)
	sessions := session.NewManager([]byte("test-secret"))
	prod := &mykafka.Producer{}
	searchService := &search.Service{Index: "courses"}

	e := echo.New()
	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	e.Renderer = renderer

	return &testEnv{
		T:        t,
		E:        e,
		DB:       db,
		Sessions: sessions,
		Auth:     &AuthHandler{DB: db, Sessions: sessions, Producer: prod},
		Catalog:  &CatalogHandler{DB: db, Sessions: sessions, Search: searchService},
		Checkout: &CheckoutHandler{DB: db, Sessions: sessions, Producer: prod},
		Favorite: &FavoriteHandler{DB: db, Sessions: sessions, Producer: prod},
		Admin:    &AdminHandler{DB: db, Producer: prod, Search: searchService},
		Site:     &SiteHandler{DB: db, Sessions: sessions},
	}
}

// doForm builds a form POST context; GET when form is nil.
func (env *testEnv) doForm(method, path string, form url.Values, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var body string
	if form != nil {
		body = form.Encode()
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) doJSON(method, path, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// sessionCookies extracts the session cookie set by a handler; later writes
// within one response supersede earlier ones.
func sessionCookies(rec *httptest.ResponseRecorder) []*http.Cookie {
	latest := map[string]*http.Cookie{}
	order := []string{}
	for _, ck := range rec.Result().Cookies() {
		if _, seen := latest[ck.Name]; !seen {
			order = append(order, ck.Name)
		}
		latest[ck.Name] = ck
	}
	cookies := make([]*http.Cookie, 0, len(latest))
	for _, name := range order {
		cookies = append(cookies, latest[name])
	}
	return cookies
}

func (env *testEnv) createUser(t *testing.T, username, email, password string) models.User {
	t.Helper()
	passwordHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	user := models.User{Username: username, Email: email, PasswordHash: passwordHash}
	require.NoError(t, env.DB.Create(&user).Error)
	return user
}

func (env *testEnv) createAdmin(t *testing.T, username, password, key string) models.User {
	t.Helper()
	passwordHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	keyHash, err := hash.HashPassword(key)
	require.NoError(t, err)
	admin := models.User{
		Username:     username,
		Email:        username + "@coursehub.test",
		PasswordHash: passwordHash,
		IsSuperuser:  true,
		AdminKeyHash: keyHash,
	}
	require.NoError(t, env.DB.Create(&admin).Error)
	return admin
}

// login runs the login handler and returns the session cookies for follow-up
// requests.
func (env *testEnv) login(t *testing.T, identifier, password string) []*http.Cookie {
	t.Helper()
	form := url.Values{"identifier": {identifier}, "password": {password}}
	rec, c := env.doForm(http.MethodPost, "/login", form)
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	return sessionCookies(rec)
}

func (env *testEnv) createCourse(t *testing.T, name string, price float64) models.Course {
	t.Helper()
	course := models.Course{Name: name, Category: "full_stack", Price: price}
	require.NoError(t, env.DB.Create(&course).Error)
	return course
}
