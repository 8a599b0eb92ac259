package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/codepilot/coursehub/internal/models"
)

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// items returns the user's cart lines with courses preloaded, oldest first.
func items(db *gorm.DB, userID uint) ([]models.CartItem, error) {
	var lines []models.CartItem
	err := db.Preload("Course").Where("user_id = ?", userID).Order("id ASC").Find(&lines).Error
	return lines, err
}

// total is computed at read time from current course prices, never stored.
func total(lines []models.CartItem) float64 {
	var sum float64
	for _, line := range lines {
		sum += line.Course.Price
	}
	return sum
}

func count(db *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
