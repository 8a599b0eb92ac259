package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/codepilot/coursehub/internal/models"
	"github.com/codepilot/coursehub/internal/service/search"
	"github.com/codepilot/coursehub/internal/session"
	"github.com/codepilot/coursehub/internal/util"
	"github.com/codepilot/coursehub/internal/web"
)

type CatalogHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
	Search   *search.Service
}

func (h *CatalogHandler) Home(c echo.Context) error {
	var courses []models.Course
	if err := h.DB.Order("id ASC").Limit(4).Find(&courses).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	var instructors []models.Instructor
	if err := h.DB.Order("id ASC").Limit(4).Find(&instructors).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return web.RenderPage(c, h.Sessions, http.StatusOK, "index.html", map[string]any{
		"Courses":     courses,
		"Instructors": instructors,
		"OpenModal":   h.Sessions.PopOpenModal(c),
	})
}

func (h *CatalogHandler) Courses(c echo.Context) error {
	var courses []models.Course
	if err := h.DB.Order("id ASC").Find(&courses).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return web.RenderPage(c, h.Sessions, http.StatusOK, "courses.html", map[string]any{"Courses": courses})
}

func (h *CatalogHandler) CourseDetail(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusNotFound, "course not found")
	}

	var course models.Course
	if err := h.DB.Preload("Instructor").First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "course not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return web.RenderPage(c, h.Sessions, http.StatusOK, "course_detail.html", map[string]any{"Course": course})
}

func (h *CatalogHandler) Instructors(c echo.Context) error {
	var instructors []models.Instructor
	if err := h.DB.Order("id ASC").Find(&instructors).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return web.RenderPage(c, h.Sessions, http.StatusOK, "instructors.html", map[string]any{"Instructors": instructors})
}

func (h *CatalogHandler) InstructorDetail(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusNotFound, "instructor not found")
	}

	var instructor models.Instructor
	if err := h.DB.First(&instructor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "instructor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return web.RenderPage(c, h.Sessions, http.StatusOK, "instructor_detail.html", map[string]any{"Instructor": instructor})
}

type suggestion struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// SearchSuggestions feeds the search bar autocomplete with case-insensitive
// substring matches on course names.
func (h *CatalogHandler) SearchSuggestions(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusOK, []suggestion{})
	}

	var courses []models.Course
	if err := h.DB.
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%").
		Order("id ASC").
		Find(&courses).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	data := make([]suggestion, len(courses))
	for i, course := range courses {
		data[i] = suggestion{ID: course.ID, Name: course.Name}
	}
	return c.JSON(http.StatusOK, data)
}

// SearchRedirect jumps to the first matching course, lowest id winning the
// tie, or back home when nothing matches.
func (h *CatalogHandler) SearchRedirect(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q != "" {
		var course models.Course
		err := h.DB.
			Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%").
			Order("id ASC").
			First(&course).Error
		if err == nil {
			return c.Redirect(http.StatusSeeOther, "/courses/"+strconv.FormatUint(uint64(course.ID), 10))
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// FullTextSearch is the Elasticsearch-backed search endpoint, available when
// an ES cluster is configured.
func (h *CatalogHandler) FullTextSearch(c echo.Context) error {
	if !h.Search.Enabled() {
		return echo.NewHTTPError(http.StatusNotImplemented, "search backend not configured")
	}

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query error")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, courses, err := h.Search.Search(c.Request().Context(), q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "courses": courses})
}
