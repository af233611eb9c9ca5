package echoServer

import (
	"net/http"

	"rentaladmin/app/echoServer/controller/activity"
	"rentaladmin/app/echoServer/controller/auth"
	"rentaladmin/app/echoServer/controller/booking"
	"rentaladmin/app/echoServer/controller/dashboard"
	"rentaladmin/app/echoServer/controller/equipment"
	"rentaladmin/app/echoServer/controller/payment"
	"rentaladmin/app/echoServer/controller/user"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type C struct {
	Auth      *auth.Controller
	User      *user.Controller
	Equipment *equipment.Controller
	Booking   *booking.Controller
	Payment   *payment.Controller
	Dashboard *dashboard.Controller
	Activity  *activity.Controller
	JWTSecret string
	Blacklist Blacklist
}

func Register(e *echo.Echo, c C) {
	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/login", c.Auth.Login)

	// Authenticated (staff and admin)
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(c.JWTSecret),
		TokenLookup: "header:Authorization:Bearer ",
	}))
	authed.Use(BuildPrincipal(c.Blacklist))

	authed.POST("/auth/logout", c.Auth.Logout)
	authed.PUT("/profile/password", c.User.ChangeOwnPassword)

	authed.GET("/equipment", c.Equipment.List)
	authed.GET("/equipment/:id", c.Equipment.Detail)

	authed.GET("/bookings", c.Booking.List)
	authed.GET("/bookings/:id", c.Booking.Detail)
	authed.POST("/bookings", c.Booking.Create)
	authed.PUT("/bookings/:id", c.Booking.Update)
	authed.DELETE("/bookings/:id", c.Booking.Delete)

	authed.GET("/payments", c.Payment.List)
	authed.GET("/payments/:id", c.Payment.Detail)
	authed.POST("/payments", c.Payment.Create)
	authed.PUT("/payments/:id", c.Payment.Update)
	authed.DELETE("/payments/:id", c.Payment.Delete)

	// Admin only
	admin := authed.Group("", RequireAdmin())
	admin.POST("/equipment", c.Equipment.Create)
	admin.PUT("/equipment/:id", c.Equipment.Update)
	admin.DELETE("/equipment/:id", c.Equipment.Delete)
	admin.POST("/equipment/:id/image", c.Equipment.UploadImage)

	admin.GET("/users", c.User.List)
	admin.GET("/users/:id", c.User.Detail)
	admin.POST("/users", c.User.Create)
	admin.PUT("/users/:id", c.User.Update)
	admin.DELETE("/users/:id", c.User.Delete)

	admin.GET("/dashboard", c.Dashboard.Stats)
	admin.GET("/activity/logs", c.Activity.List)
}
