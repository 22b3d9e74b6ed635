package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/todo_service/internal/middleware"
)

type Deps struct {
	Auth  *AuthHTTP
	Todos *TodoHTTP
	Guard *middleware.SessionGuard
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "Welcome to the To-Do List API!"})
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.POST("/register", d.Auth.Register)
	e.POST("/login", d.Auth.Login)
	e.POST("/refresh-token", d.Auth.Refresh)
	e.POST("/logout", d.Auth.LogOut)

	todos := e.Group("/todos", d.Guard.RequireAuth)

	todos.POST("", d.Todos.Create)
	todos.GET("", d.Todos.List)
	todos.GET("/search", d.Todos.Search)
	todos.GET("/:id", d.Todos.Get)
	todos.PATCH("/:id", d.Todos.Patch)
	todos.DELETE("/:id", d.Todos.Delete)
}
