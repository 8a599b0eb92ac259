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

	"github.com/codepilot/coursehub/internal/logging"
	"github.com/codepilot/coursehub/internal/models"
	"github.com/codepilot/coursehub/internal/mykafka"
	"github.com/codepilot/coursehub/internal/session"
	"github.com/codepilot/coursehub/internal/web"
)

type CheckoutHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
	Producer *mykafka.Producer
}

func (h *CheckoutHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "checkout_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// singleCourse resolves direct-buy mode: only consulted when the cart is
// empty and ?course_id= is present.
func (h *CheckoutHandler) singleCourse(c echo.Context) (*models.Course, error) {
	courseID := c.QueryParam("course_id")
	if courseID == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(courseID)
	if err != nil || id <= 0 {
		return nil, echo.NewHTTPError(http.StatusNotFound, "course not found")
	}

	var course models.Course
	if err := h.DB.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "course not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return &course, nil
}

func (h *CheckoutHandler) CheckoutPage(c echo.Context) error {
	userID := h.Sessions.Get(c).UserID

	var lines []models.CartItem
	if err := h.DB.Preload("Course").Where("user_id = ?", userID).Order("id ASC").Find(&lines).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var single *models.Course
	if len(lines) == 0 {
		var err error
		if single, err = h.singleCourse(c); err != nil {
			return err
		}
	}

	var total float64
	for _, line := range lines {
		total += line.Course.Price
	}
	if single != nil {
		total = single.Price
	}

	return web.RenderPage(c, h.Sessions, http.StatusOK, "checkout.html", map[string]any{
		"CartItems":      lines,
		"SingleCourse":   single,
		"Total":          total,
		"PaymentMethods": models.PaymentMethods,
	})
}

// Checkout converts the cart (or the direct-buy course) into immutable
// purchase records. Prices are re-read and snapshotted inside the same
// transaction that clears the cart, so a failure rolls everything back.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	userID := h.Sessions.Get(c).UserID

	paymentMethod := c.FormValue("payment_method")
	if paymentMethod == "" {
		h.Sessions.AddNotice(c, "error", "Please select a payment method.")
		return c.Redirect(http.StatusSeeOther, "/checkout")
	}
	if !models.ValidPaymentMethod(paymentMethod) {
		h.Sessions.AddNotice(c, "error", "Unknown payment method.")
		return c.Redirect(http.StatusSeeOther, "/checkout")
	}

	var created []models.Checkout
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var lines []models.CartItem
		if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&lines).Error; err != nil {
			return err
		}

		if len(lines) > 0 {
			for _, line := range lines {
				var course models.Course
				if err := tx.First(&course, line.CourseID).Error; err != nil {
					return err
				}
				record := models.Checkout{
					UserID:        userID,
					CourseID:      course.ID,
					Price:         course.Price,
					PaymentMethod: paymentMethod,
				}
				if err := tx.Create(&record).Error; err != nil {
					return err
				}
				created = append(created, record)
			}
			return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
		}

		// Empty cart: direct-buy if a course was selected, otherwise a no-op.
		courseID := c.QueryParam("course_id")
		if courseID == "" {
			return nil
		}
		id, err := strconv.Atoi(courseID)
		if err != nil || id <= 0 {
			return gorm.ErrRecordNotFound
		}
		var course models.Course
		if err := tx.First(&course, id).Error; err != nil {
			return err
		}
		record := models.Checkout{
			UserID:        userID,
			CourseID:      course.ID,
			Price:         course.Price,
			PaymentMethod: paymentMethod,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		created = append(created, record)
		return nil
	})

	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "course not found")
		}
		h.Sessions.AddNotice(c, "error", "Checkout failed. Please try again.")
		logging.FromContext(c.Request().Context()).Error("checkout transaction failed", "error", txErr, "user_id", userID)
		return c.Redirect(http.StatusSeeOther, "/payment-failed")
	}

	if len(created) > 0 {
		h.publish(c, map[string]any{
			"type":           "checkout_completed",
			"userID":         userID,
			"records":        len(created),
			"payment_method": paymentMethod,
		})
	}

	h.Sessions.AddNotice(c, "success", "Checkout successful!")
	return c.Redirect(http.StatusSeeOther, "/checkout/history")
}

func (h *CheckoutHandler) History(c echo.Context) error {
	userID := h.Sessions.Get(c).UserID

	var records []models.Checkout
	if err := h.DB.Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return web.RenderPage(c, h.Sessions, http.StatusOK, "checkout_history.html", map[string]any{
		"CheckoutItems": records,
	})
}

func (h *CheckoutHandler) PaymentSuccess(c echo.Context) error {
	return web.RenderPage(c, h.Sessions, http.StatusOK, "payment_success.html", nil)
}

func (h *CheckoutHandler) PaymentFailed(c echo.Context) error {
	return web.RenderPage(c, h.Sessions, http.StatusOK, "payment_failed.html", nil)
}
