package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/todo_service/internal/logging"
	"github.com/Skotchmaster/todo_service/internal/middleware"
	"github.com/Skotchmaster/todo_service/internal/models"
	"github.com/Skotchmaster/todo_service/internal/mykafka"
	"github.com/Skotchmaster/todo_service/internal/service"
	"github.com/Skotchmaster/todo_service/internal/service/search"
	"github.com/Skotchmaster/todo_service/internal/util"
)

type TodoHTTP struct {
	Svc      *service.TodoService
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *TodoHTTP) publish(c echo.Context, todo *models.Todo, eventType string) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	event := map[string]any{
		"type":     eventType,
		"todo_id":  todo.ID,
		"owner_id": todo.OwnerID,
	}
	if err := h.Producer.PublishEvent(ctx, "todo_events", strconv.FormatUint(uint64(todo.OwnerID), 10), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *TodoHTTP) indexTodo(c echo.Context, todo *models.Todo) {
	if h.ES == nil {
		return
	}
	if err := search.IndexTodo(c.Request().Context(), h.ES, h.Index, todo); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index error", "todo_id", todo.ID, "error", err)
	}
}

func (h *TodoHTTP) Create(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req TodoCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	todo, err := h.Svc.Create(c.Request().Context(), user, req.Title, req.Description, req.Status)
	if err != nil {
		return httpError(err)
	}

	h.indexTodo(c, todo)
	h.publish(c, todo, "todo_created")

	return c.JSON(http.StatusOK, todo)
}

func (h *TodoHTTP) List(c echo.Context) error {
	user := middleware.CurrentUser(c)

	params := service.TodoListParams{
		Status: c.QueryParam("status"),
		SortBy: c.QueryParam("sort_by"),
		Order:  c.QueryParam("order"),
		Page:   parseIntDefault(c.QueryParam("page"), 1),
		Size:   parseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	}

	page, err := h.Svc.List(c.Request().Context(), user, params)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": page.Items,
		"meta": map[string]any{
			"page":        page.Page,
			"size":        page.Size,
			"total":       page.Total,
			"total_pages": (page.Total + int64(page.Size) - 1) / int64(page.Size),
			"has_prev":    page.Page > 1,
			"has_next":    int64(page.Page*page.Size) < page.Total,
		},
	})
}

func (h *TodoHTTP) Get(c echo.Context) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	todo, err := h.Svc.Get(c.Request().Context(), user, uint(id))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, todo)
}

func (h *TodoHTTP) Patch(c echo.Context) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req TodoUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	todo, err := h.Svc.Update(c.Request().Context(), user, uint(id), service.TodoPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return httpError(err)
	}

	h.indexTodo(c, todo)
	h.publish(c, todo, "todo_updated")

	return c.JSON(http.StatusOK, todo)
}

func (h *TodoHTTP) Delete(c echo.Context) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Svc.Delete(c.Request().Context(), user, uint(id)); err != nil {
		return httpError(err)
	}

	if h.ES != nil {
		if err := search.DeleteTodo(c.Request().Context(), h.ES, h.Index, uint(id)); err != nil {
			logging.FromContext(c.Request().Context()).Error("es delete error", "todo_id", id, "error", err)
		}
	}
	h.publish(c, &models.Todo{ID: uint(id), OwnerID: user.ID}, "todo_deleted")

	return c.NoContent(http.StatusNoContent)
}

func (h *TodoHTTP) Search(c echo.Context) error {
	user := middleware.CurrentUser(c)

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, todos, err := search.Search(c.Request().Context(), h.ES, h.Index, q, user.ID, from, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "todos": todos})
}
