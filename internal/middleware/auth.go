package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/todo_service/internal/models"
	"github.com/Skotchmaster/todo_service/internal/repo"
	"github.com/Skotchmaster/todo_service/internal/tokens"
)

const userContextKey = "user"

// SessionGuard verifies the bearer access token on every protected request
// and resolves it to an account. Nothing is cached between requests.
type SessionGuard struct {
	Tokens *tokens.Manager
	Repo   repo.GormRepo
}

func NewSessionGuard(tm *tokens.Manager, r repo.GormRepo) *SessionGuard {
	return &SessionGuard{Tokens: tm, Repo: r}
}

func (g *SessionGuard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		subject, err := g.Tokens.ParseAccess(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		user, err := g.Repo.UserByUsername(c.Request().Context(), subject)
		if err != nil {
			// Covers a token whose account was deleted after issuance.
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

// CurrentUser returns the account resolved by RequireAuth, or nil outside a
// guarded route.
func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(userContextKey).(*models.User); ok {
		return u
	}
	return nil
}
