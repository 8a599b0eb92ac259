package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/codepilot/coursehub/internal/handlers"
	"github.com/codepilot/coursehub/internal/handlers/cart"
	"github.com/codepilot/coursehub/internal/session"
)

type Deps struct {
	DB              *gorm.DB
	Sessions        *session.Manager
	AuthHandler     *handlers.AuthHandler
	CatalogHandler  *handlers.CatalogHandler
	CartHandler     *cart.CartHandler
	CheckoutHandler *handlers.CheckoutHandler
	FavoriteHandler *handlers.FavoriteHandler
	AdminHandler    *handlers.AdminHandler
	SiteHandler     *handlers.SiteHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.HTTPErrorHandler = handlers.NotFoundHandler(d.Sessions)

	e.GET("/", d.CatalogHandler.Home)
	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.GET("/logout", d.AuthHandler.Logout)

	e.GET("/courses", d.CatalogHandler.Courses)
	e.GET("/courses/:id", d.CatalogHandler.CourseDetail)
	e.GET("/instructors", d.CatalogHandler.Instructors)
	e.GET("/instructors/:id", d.CatalogHandler.InstructorDetail)
	e.GET("/search/suggestions", d.CatalogHandler.SearchSuggestions)
	e.GET("/search/go", d.CatalogHandler.SearchRedirect)
	e.GET("/search", d.CatalogHandler.FullTextSearch)

	e.GET("/about", d.SiteHandler.About)
	e.GET("/contact", d.SiteHandler.ContactPage)
	e.POST("/contact", d.SiteHandler.Contact)
	e.POST("/subscribe", d.SiteHandler.Subscribe)

	auth := e.Group("", d.Sessions.RequireLogin)

	auth.GET("/verify-admin", d.AuthHandler.VerifyAdminPage)
	auth.POST("/verify-admin", d.AuthHandler.VerifyAdminKey)
	auth.GET("/profile", d.AuthHandler.ProfilePage)
	auth.POST("/profile", d.AuthHandler.UpdateProfile)

	auth.GET("/cart", d.CartHandler.ViewCart)
	auth.POST("/cart/add/:course_id", d.CartHandler.AddToCart)
	auth.POST("/cart/remove/:item_id", d.CartHandler.RemoveFromCart)
	auth.GET("/cart/snippet", d.CartHandler.Snippet)

	auth.GET("/checkout", d.CheckoutHandler.CheckoutPage)
	auth.POST("/checkout", d.CheckoutHandler.Checkout)
	auth.GET("/checkout/history", d.CheckoutHandler.History)
	auth.GET("/payment-success", d.CheckoutHandler.PaymentSuccess)
	auth.GET("/payment-failed", d.CheckoutHandler.PaymentFailed)

	auth.GET("/favorites", d.FavoriteHandler.List)
	auth.POST("/favorites/toggle/:course_id", d.FavoriteHandler.Toggle)
	auth.GET("/favorites/toggle/:course_id", d.FavoriteHandler.Toggle)
	auth.POST("/favorites/remove/:course_id", d.FavoriteHandler.Remove)

	admin := e.Group("/admin", d.Sessions.RequireVerifiedAdmin)

	admin.POST("/courses", d.AdminHandler.CreateCourse)
	admin.PATCH("/courses/:id", d.AdminHandler.PatchCourse)
	admin.DELETE("/courses/:id", d.AdminHandler.DeleteCourse)
	admin.POST("/instructors", d.AdminHandler.CreateInstructor)
	admin.PATCH("/instructors/:id", d.AdminHandler.PatchInstructor)
	admin.DELETE("/instructors/:id", d.AdminHandler.DeleteInstructor)
}
