package cart

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/codepilot/coursehub/internal/models"
	"github.com/codepilot/coursehub/internal/mykafka"
	"github.com/codepilot/coursehub/internal/session"
	"github.com/codepilot/coursehub/internal/web"
)

type CartHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
	Producer *mykafka.Producer
	Renderer *web.Renderer
}

// AddToCart is idempotent: a course already in the cart is not duplicated,
// the response just reports added=false.
func (h *CartHandler) AddToCart(c echo.Context) error {
	userID := h.Sessions.Get(c).UserID

	courseID, err := strconv.Atoi(c.Param("course_id"))
	if err != nil || courseID <= 0 {
		return echo.NewHTTPError(http.StatusNotFound, "course not found")
	}

	var course models.Course
	if err := h.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "course not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	added := false
	var line models.CartItem
	err = h.DB.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		line = models.CartItem{UserID: userID, CourseID: course.ID}
		if err := h.DB.Create(&line).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		added = true
	} else if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if added {
		h.publish(c, map[string]any{
			"type":     "cart_item_added",
			"userID":   userID,
			"courseID": course.ID,
		})
	}

	if web.IsAJAX(c) {
		n, err := count(h.DB, userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "success", "added": added, "count": n})
	}
	return c.Redirect(http.StatusSeeOther, "/courses/"+strconv.FormatUint(uint64(course.ID), 10))
}

func (h *CartHandler) ViewCart(c echo.Context) error {
	userID := h.Sessions.Get(c).UserID

	lines, err := items(h.DB, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return web.RenderPage(c, h.Sessions, http.StatusOK, "cart.html", map[string]any{
		"CartItems": lines,
		"Total":     total(lines),
	})
}

// RemoveFromCart deletes a single cart line. The owner check lives in the
// query itself: another user's line is simply not found.
func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	userID := h.Sessions.Get(c).UserID

	if !web.IsAJAX(c) {
		return c.Redirect(http.StatusSeeOther, "/cart")
	}

	itemID, err := strconv.Atoi(c.Param("item_id"))
	if err != nil || itemID <= 0 {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}

	var line models.CartItem
	if err := h.DB.Where("id = ? AND user_id = ?", itemID, userID).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.DB.Delete(&line).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":     "cart_item_removed",
		"userID":   userID,
		"courseID": line.CourseID,
	})

	lines, err := items(h.DB, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"count":  len(lines),
		"total":  total(lines),
	})
}

// Snippet returns the rendered header cart widget wrapped in JSON, refreshed
// by the frontend after cart mutations.
func (h *CartHandler) Snippet(c echo.Context) error {
	userID := h.Sessions.Get(c).UserID

	lines, err := items(h.DB, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	html, err := h.Renderer.RenderToString("partials/cart_snippet.html", map[string]any{
		"CartItems": lines,
		"CartTotal": total(lines),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"html": html})
}
