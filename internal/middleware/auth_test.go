package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/todo_service/internal/models"
	"github.com/Skotchmaster/todo_service/internal/repo"
	"github.com/Skotchmaster/todo_service/internal/tokens"
)

func newTestGuard(t *testing.T, accessTTL time.Duration) (*SessionGuard, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}))

	tm, err := tokens.NewManager(
		[]byte("test-jwt-secret"),
		[]byte("test-refresh-secret"),
		"HS256",
		accessTTL,
		7*24*time.Hour,
	)
	require.NoError(t, err)

	return NewSessionGuard(tm, repo.GormRepo{DB: db}), db
}

func callGuarded(t *testing.T, guard *SessionGuard, authHeader string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := guard.RequireAuth(func(c echo.Context) error {
		user := CurrentUser(c)
		require.NotNil(t, user)
		return c.JSON(http.StatusOK, echo.Map{"username": user.Username})
	})
	return rec, handler(c)
}

func TestRequireAuth_MissingOrMalformedHeader(t *testing.T) {
	guard, _ := newTestGuard(t, 15*time.Minute)

	for _, header := range []string{"", "Bearer ", "Basic abc", "token-without-scheme"} {
		_, err := callGuarded(t, guard, header)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "expected HTTPError for header %q", header)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	}
}

func TestRequireAuth_ResolvesAccount(t *testing.T) {
	guard, db := newTestGuard(t, 15*time.Minute)
	require.NoError(t, db.Create(&models.User{Username: "alice", Email: "a@x.com", PasswordHash: "x"}).Error)

	token, err := guard.Tokens.IssueAccess("alice")
	require.NoError(t, err)

	rec, err := callGuarded(t, guard, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	guard, db := newTestGuard(t, -time.Minute)
	require.NoError(t, db.Create(&models.User{Username: "alice", Email: "a@x.com", PasswordHash: "x"}).Error)

	token, err := guard.Tokens.IssueAccess("alice")
	require.NoError(t, err)

	_, err = callGuarded(t, guard, "Bearer "+token)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAuth_DeletedAccount(t *testing.T) {
	guard, db := newTestGuard(t, 15*time.Minute)
	require.NoError(t, db.Create(&models.User{Username: "alice", Email: "a@x.com", PasswordHash: "x"}).Error)

	token, err := guard.Tokens.IssueAccess("alice")
	require.NoError(t, err)

	rec, err := callGuarded(t, guard, "Bearer "+token)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	// the still-valid token dies with the account
	require.NoError(t, db.Where("username = ?", "alice").Delete(&models.User{}).Error)

	_, err = callGuarded(t, guard, "Bearer "+token)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}
