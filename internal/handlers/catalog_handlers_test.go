package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestCourseDetailNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doForm(http.MethodGet, "/courses/99", nil)
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := env.Catalog.CourseDetail(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestCourseDetail(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, "Go from scratch", 49)

	rec, c := env.doForm(http.MethodGet, "/courses/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Catalog.CourseDetail(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), course.Name)
}

func TestSearchSuggestionsEmptyQuery(t *testing.T) {
	env := newTestEnv(t)
	env.createCourse(t, "Go from scratch", 49)

	rec, c := env.doForm(http.MethodGet, "/search/suggestions", nil)
	require.NoError(t, env.Catalog.SearchSuggestions(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []suggestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp)
}

func TestSearchSuggestionsNoMatch(t *testing.T) {
	env := newTestEnv(t)
	env.createCourse(t, "Go from scratch", 49)

	rec, c := env.doForm(http.MethodGet, "/search/suggestions?q=rust", nil)
	require.NoError(t, env.Catalog.SearchSuggestions(c))

	var resp []suggestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp)
}

func TestSearchSuggestionsSubstringMatch(t *testing.T) {
	env := newTestEnv(t)
	env.createCourse(t, "Go from scratch", 49)
	env.createCourse(t, "Advanced Go", 99)
	env.createCourse(t, "Python basics", 39)

	rec, c := env.doForm(http.MethodGet, "/search/suggestions?q=GO", nil)
	require.NoError(t, env.Catalog.SearchSuggestions(c))

	var resp []suggestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	require.Equal(t, "Go from scratch", resp[0].Name)
	require.Equal(t, "Advanced Go", resp[1].Name)
	require.NotZero(t, resp[0].ID)
}

func TestSearchRedirectLowestID(t *testing.T) {
	env := newTestEnv(t)
	first := env.createCourse(t, "Go from scratch", 49)
	env.createCourse(t, "Advanced Go", 99)

	rec, c := env.doForm(http.MethodGet, "/search/go?q=go", nil)
	require.NoError(t, env.Catalog.SearchRedirect(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/courses/1", rec.Header().Get("Location"))
	require.Equal(t, uint(1), first.ID)
}

func TestSearchRedirectNoMatchGoesHome(t *testing.T) {
	env := newTestEnv(t)
	env.createCourse(t, "Go from scratch", 49)

	rec, c := env.doForm(http.MethodGet, "/search/go?q=rust", nil)
	require.NoError(t, env.Catalog.SearchRedirect(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestHomeShowsFirstFourCourses(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"One", "Two", "Three", "Four", "Five"} {
		env.createCourse(t, name, 10)
	}

	rec, c := env.doForm(http.MethodGet, "/", nil)
	require.NoError(t, env.Catalog.Home(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Four")
	require.NotContains(t, rec.Body.String(), "Five")
}
