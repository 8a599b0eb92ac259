package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/codepilot/coursehub/internal/models"
	"github.com/codepilot/coursehub/internal/mykafka"
	"github.com/codepilot/coursehub/internal/session"
	"github.com/codepilot/coursehub/internal/web"
)

type FavoriteHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
	Producer *mykafka.Producer
}

func (h *FavoriteHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// Toggle adds the favorite when absent and removes it when present, one
// endpoint for both directions.
func (h *FavoriteHandler) Toggle(c echo.Context) error {
	userID := h.Sessions.Get(c).UserID

	if !web.IsAJAX(c) {
		return c.Redirect(http.StatusSeeOther, "/favorites")
	}

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

	var fav models.Favorite
	err = h.DB.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&fav).Error
	if err == nil {
		if err := h.DB.Delete(&fav).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		h.publish(c, map[string]any{
			"type":     "favorite_removed",
			"userID":   userID,
			"courseID": course.ID,
		})
		return c.JSON(http.StatusOK, echo.Map{"status": "removed"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	fav = models.Favorite{UserID: userID, CourseID: course.ID}
	if err := h.DB.Create(&fav).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.publish(c, map[string]any{
		"type":     "favorite_added",
		"userID":   userID,
		"courseID": course.ID,
	})
	return c.JSON(http.StatusOK, echo.Map{"status": "added"})
}

func (h *FavoriteHandler) List(c echo.Context) error {
	userID := h.Sessions.Get(c).UserID

	var favorites []models.Favorite
	if err := h.DB.Preload("Course").Where("user_id = ?", userID).Order("id ASC").Find(&favorites).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return web.RenderPage(c, h.Sessions, http.StatusOK, "favorites.html", map[string]any{
		"Favorites": favorites,
	})
}

// Remove is the explicit removal endpoint; a missing favorite is reported,
// not treated as a failure.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	userID := h.Sessions.Get(c).UserID

	if !web.IsAJAX(c) {
		return c.Redirect(http.StatusSeeOther, "/favorites")
	}

	courseID, err := strconv.Atoi(c.Param("course_id"))
	if err != nil || courseID <= 0 {
		return c.JSON(http.StatusOK, echo.Map{"status": "not_found"})
	}

	var fav models.Favorite
	err = h.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&fav).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusOK, echo.Map{"status": "not_found"})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Delete(&fav).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.publish(c, map[string]any{
		"type":     "favorite_removed",
		"userID":   userID,
		"courseID": courseID,
	})
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}
