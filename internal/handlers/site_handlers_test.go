package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codepilot/coursehub/internal/models"
)

func TestContactStoresMessage(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{
		"name":    {"Alice"},
		"email":   {"alice@example.com"},
		"subject": {"Question"},
		"message": {"When does the Go course start?"},
	}
	rec, c := env.doForm(http.MethodPost, "/contact", form)
	require.NoError(t, env.Site.Contact(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var msg models.ContactMessage
	require.NoError(t, env.DB.First(&msg).Error)
	require.Equal(t, "Alice", msg.Name)
	require.Equal(t, "Question", msg.Subject)
}

func TestContactRequiresFields(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"name": {"Alice"}, "email": {"alice@example.com"}}
	rec, c := env.doForm(http.MethodPost, "/contact", form)
	require.NoError(t, env.Site.Contact(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.ContactMessage{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSubscribeDeduplicates(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"email": {"alice@example.com"}}
	rec, c := env.doForm(http.MethodPost, "/subscribe", form)
	require.NoError(t, env.Site.Subscribe(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec, c = env.doForm(http.MethodPost, "/subscribe", form)
	require.NoError(t, env.Site.Subscribe(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Subscriber{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestAdminCreateCourseValidatesCategory(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSON(http.MethodPost, "/admin/courses", `{"name":"Go","category":"basket_weaving","price":10}`)
	err := env.Admin.CreateCourse(c)
	require.Error(t, err)

	var count int64
	require.NoError(t, env.DB.Model(&models.Course{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestAdminCreateCourse(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSON(http.MethodPost, "/admin/courses", `{"name":"Go from scratch","category":"full_stack","subcategory":"python_stack","price":49}`)
	require.NoError(t, env.Admin.CreateCourse(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var course models.Course
	require.NoError(t, env.DB.First(&course).Error)
	require.Equal(t, "Go from scratch", course.Name)
	require.Equal(t, "full_stack", course.Category)
}

func TestAdminRejectsNegativePrice(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSON(http.MethodPost, "/admin/courses", `{"name":"Go","category":"full_stack","price":-1}`)
	err := env.Admin.CreateCourse(c)
	require.Error(t, err)
}

func TestAdminDeleteInstructorCascades(t *testing.T) {
	env := newTestEnv(t)

	instructor := models.Instructor{Name: "Jane", Email: "jane@example.com"}
	require.NoError(t, env.DB.Create(&instructor).Error)
	course := models.Course{Name: "Go", Category: "full_stack", Price: 10, InstructorID: &instructor.ID}
	require.NoError(t, env.DB.Create(&course).Error)

	rec, c := env.doForm(http.MethodDelete, "/admin/instructors/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Admin.DeleteInstructor(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Course{}).Count(&count).Error)
	require.Zero(t, count)
}
