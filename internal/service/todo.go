package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/todo_service/internal/models"
	"github.com/Skotchmaster/todo_service/internal/repo"
	"github.com/Skotchmaster/todo_service/internal/util"
)

const DefaultTodoStatus = "not_done"

// todoSortColumns is the closed set of sort keys. Anything outside it is
// rejected; request input never reaches the ORDER BY clause directly.
var todoSortColumns = map[string]string{
	"id":     "id",
	"title":  "title",
	"status": "status",
}

type TodoService struct {
	Repo repo.GormRepo
}

type TodoListParams struct {
	Status string
	SortBy string
	Order  string
	Page   int
	Size   int
}

type TodoPage struct {
	Items []models.Todo
	Page  int
	Size  int
	Total int64
}

type TodoPatch struct {
	Title       *string
	Description *string
	Status      *string
}

func (s *TodoService) Create(ctx context.Context, owner *models.User, title, description, status string) (*models.Todo, error) {
	if status == "" {
		status = DefaultTodoStatus
	}
	todo := models.Todo{
		Title:       title,
		Description: description,
		Status:      status,
		OwnerID:     owner.ID,
	}
	if err := s.Repo.CreateTodo(ctx, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (s *TodoService) List(ctx context.Context, owner *models.User, p TodoListParams) (*TodoPage, error) {
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = "id"
	}
	column, ok := todoSortColumns[sortBy]
	if !ok {
		return nil, ErrInvalidSortKey
	}

	descending := false
	switch strings.ToLower(p.Order) {
	case "", "asc":
	case "desc":
		descending = true
	default:
		return nil, ErrInvalidOrder
	}

	offset, limit := util.Calculate(p.Page, p.Size)
	page := p.Page
	if page < 1 {
		page = 1
	}

	items, total, err := s.Repo.ListTodos(ctx, repo.TodoQuery{
		OwnerID:    owner.ID,
		Status:     p.Status,
		SortColumn: column,
		Descending: descending,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	return &TodoPage{Items: items, Page: page, Size: limit, Total: total}, nil
}

func (s *TodoService) Get(ctx context.Context, owner *models.User, id uint) (*models.Todo, error) {
	todo, err := s.Repo.TodoByID(ctx, owner.ID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	return todo, nil
}

func (s *TodoService) Update(ctx context.Context, owner *models.User, id uint, patch TodoPatch) (*models.Todo, error) {
	todo, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		todo.Title = *patch.Title
	}
	if patch.Description != nil {
		todo.Description = *patch.Description
	}
	if patch.Status != nil {
		todo.Status = *patch.Status
	}

	if err := s.Repo.SaveTodo(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, owner *models.User, id uint) error {
	ok, err := s.Repo.DeleteTodo(ctx, owner.ID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTodoNotFound
	}
	return nil
}
