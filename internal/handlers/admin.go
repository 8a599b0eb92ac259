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
	"github.com/codepilot/coursehub/internal/service/search"
)

// AdminHandler is the catalog management API, reachable only through a fully
// verified admin session.
type AdminHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Search   *search.Service
}

func (h *AdminHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "course_events", fmt.Sprint(event["courseID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AdminHandler) index(c echo.Context, course models.Course) {
	if err := h.Search.IndexCourse(c.Request().Context(), course); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

type courseRequest struct {
	Name                string  `json:"name"`
	ShortDescription    string  `json:"short_description"`
	LongDescription     string  `json:"long_description"`
	Category            string  `json:"category"`
	Subcategory         string  `json:"subcategory"`
	LearningOutcomes    string  `json:"learning_outcomes"`
	Price               float64 `json:"price"`
	OldPrice            float64 `json:"old_price"`
	DiscountPercent     uint    `json:"discount_percent"`
	InstructorID        *uint   `json:"instructor_id"`
	Duration            string  `json:"duration"`
	StudentsEnrolled    uint    `json:"students_enrolled"`
	Language            string  `json:"language"`
	Certification       string  `json:"certification"`
	Rating              float64 `json:"rating"`
	PromoVideo          string  `json:"promo_video"`
	TechnologiesCovered string  `json:"technologies_covered"`
	Badge               string  `json:"badge"`
	Level               string  `json:"level"`
	LessonsCount        uint    `json:"lessons_count"`
}

func (r *courseRequest) validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if !models.ValidCategory(r.Category) {
		return fmt.Errorf("unknown category %q", r.Category)
	}
	if !models.ValidSubcategory(r.Subcategory) {
		return fmt.Errorf("unknown subcategory %q", r.Subcategory)
	}
	if r.Price < 0 || r.OldPrice < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}

func (r *courseRequest) apply(course *models.Course) {
	course.Name = r.Name
	course.ShortDescription = r.ShortDescription
	course.LongDescription = r.LongDescription
	course.Category = r.Category
	course.Subcategory = r.Subcategory
	course.LearningOutcomes = r.LearningOutcomes
	course.Price = r.Price
	course.OldPrice = r.OldPrice
	course.DiscountPercent = r.DiscountPercent
	course.InstructorID = r.InstructorID
	course.Duration = r.Duration
	course.StudentsEnrolled = r.StudentsEnrolled
	course.Language = r.Language
	course.Certification = r.Certification
	course.Rating = r.Rating
	course.PromoVideo = r.PromoVideo
	course.TechnologiesCovered = r.TechnologiesCovered
	course.Badge = r.Badge
	course.Level = r.Level
	course.LessonsCount = r.LessonsCount
}

func (h *AdminHandler) CreateCourse(c echo.Context) error {
	var req courseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var course models.Course
	req.apply(&course)
	if err := h.DB.Create(&course).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.index(c, course)
	h.publish(c, map[string]any{
		"type":     "course_created",
		"courseID": course.ID,
		"name":     course.Name,
	})
	return c.JSON(http.StatusCreated, course)
}

func (h *AdminHandler) PatchCourse(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req courseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var course models.Course
	if err := h.DB.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "course not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	req.apply(&course)
	if err := h.DB.Save(&course).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.index(c, course)
	h.publish(c, map[string]any{
		"type":     "course_updated",
		"courseID": course.ID,
		"name":     course.Name,
	})
	return c.JSON(http.StatusOK, course)
}

func (h *AdminHandler) DeleteCourse(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	// Cart lines, favorites and purchase records referencing the course go
	// with it.
	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.CartItem{}, &models.Favorite{}, &models.Checkout{}} {
			if err := tx.Where("course_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Course{}, id).Error
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.Search.DeleteCourse(c.Request().Context(), uint(id)); err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
	}
	h.publish(c, map[string]any{
		"type":     "course_deleted",
		"courseID": id,
	})
	return c.NoContent(http.StatusNoContent)
}

type instructorRequest struct {
	Name         string  `json:"name"`
	Profession   string  `json:"profession"`
	About        string  `json:"about"`
	Email        string  `json:"email"`
	PhoneNo      string  `json:"phone_no"`
	Rating       float64 `json:"rating"`
	ProfileImage string  `json:"profile_image"`
}

func (h *AdminHandler) CreateInstructor(c echo.Context) error {
	var req instructorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and email are required")
	}

	instructor := models.Instructor{
		Name:         req.Name,
		Profession:   req.Profession,
		About:        req.About,
		Email:        req.Email,
		PhoneNo:      req.PhoneNo,
		Rating:       req.Rating,
		ProfileImage: req.ProfileImage,
	}
	if err := h.DB.Create(&instructor).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, instructor)
}

func (h *AdminHandler) PatchInstructor(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req instructorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var instructor models.Instructor
	if err := h.DB.First(&instructor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "instructor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	instructor.Name = req.Name
	instructor.Profession = req.Profession
	instructor.About = req.About
	instructor.Email = req.Email
	instructor.PhoneNo = req.PhoneNo
	instructor.Rating = req.Rating
	instructor.ProfileImage = req.ProfileImage
	if err := h.DB.Save(&instructor).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, instructor)
}

// DeleteInstructor removes the instructor and, matching the store's cascade
// rule, every course assigned to them.
func (h *AdminHandler) DeleteInstructor(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var courseIDs []uint
	if err := h.DB.Model(&models.Course{}).Where("instructor_id = ?", id).Pluck("id", &courseIDs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		if len(courseIDs) > 0 {
			for _, m := range []any{&models.CartItem{}, &models.Favorite{}, &models.Checkout{}} {
				if err := tx.Where("course_id IN ?", courseIDs).Delete(m).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("instructor_id = ?", id).Delete(&models.Course{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Instructor{}, id).Error
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	for _, courseID := range courseIDs {
		if err := h.Search.DeleteCourse(c.Request().Context(), courseID); err != nil {
			c.Logger().Errorf("ES delete error: %v", err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}
