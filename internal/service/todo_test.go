package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/todo_service/internal/models"
	"github.com/Skotchmaster/todo_service/internal/repo"
)

func newTestTodoService(t *testing.T) (*TodoService, *models.User, *models.User) {
	t.Helper()

	db := initTestDB(t)

	alice := &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "x"}
	bob := &models.User{Username: "bob", Email: "b@x.com", PasswordHash: "x"}
	require.NoError(t, db.Create(alice).Error)
	require.NoError(t, db.Create(bob).Error)

	return &TodoService{Repo: repo.GormRepo{DB: db}}, alice, bob
}

func TestTodoCreate_DefaultsStatus(t *testing.T) {
	svc, alice, _ := newTestTodoService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, alice, "Buy groceries", "Milk, Bread, Eggs", "")
	require.NoError(t, err)
	assert.Equal(t, "not_done", todo.Status)
	assert.Equal(t, alice.ID, todo.OwnerID)
	assert.NotEmpty(t, todo.ID)

	done, err := svc.Create(ctx, alice, "Call mom", "", "done")
	require.NoError(t, err)
	assert.Equal(t, "done", done.Status)
}

func TestTodoList_FilterSortPaginate(t *testing.T) {
	svc, alice, bob := newTestTodoService(t)
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		status := "not_done"
		if i%3 == 0 {
			status = "done"
		}
		_, err := svc.Create(ctx, alice, fmt.Sprintf("task %02d", i), "", status)
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, bob, "bob task", "", "not_done")
	require.NoError(t, err)

	page, err := svc.List(ctx, alice, TodoListParams{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.EqualValues(t, 15, page.Total)

	page2, err := svc.List(ctx, alice, TodoListParams{Page: 2, Size: 10})
	require.NoError(t, err)
	assert.Len(t, page2.Items, 5)

	done, err := svc.List(ctx, alice, TodoListParams{Status: "done", Page: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 5, done.Total)
	for _, item := range done.Items {
		assert.Equal(t, "done", item.Status)
	}

	desc, err := svc.List(ctx, alice, TodoListParams{SortBy: "title", Order: "desc", Page: 1, Size: 5})
	require.NoError(t, err)
	require.NotEmpty(t, desc.Items)
	assert.Equal(t, "task 15", desc.Items[0].Title)

	// bob's items never leak into alice's list
	all, err := svc.List(ctx, alice, TodoListParams{Page: 1, Size: 100})
	require.NoError(t, err)
	for _, item := range all.Items {
		assert.Equal(t, alice.ID, item.OwnerID)
	}
}

func TestTodoList_RejectsUnknownSortKey(t *testing.T) {
	svc, alice, _ := newTestTodoService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, alice, TodoListParams{SortBy: "owner_id; DROP TABLE todos"})
	require.ErrorIs(t, err, ErrInvalidSortKey)

	_, err = svc.List(ctx, alice, TodoListParams{SortBy: "description"})
	require.ErrorIs(t, err, ErrInvalidSortKey)

	_, err = svc.List(ctx, alice, TodoListParams{SortBy: "title", Order: "sideways"})
	require.ErrorIs(t, err, ErrInvalidOrder)
}

func TestTodoGet_ScopedToOwner(t *testing.T) {
	svc, alice, bob := newTestTodoService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, alice, "private", "", "")
	require.NoError(t, err)

	got, err := svc.Get(ctx, alice, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, todo.ID, got.ID)

	_, err = svc.Get(ctx, bob, todo.ID)
	require.ErrorIs(t, err, ErrTodoNotFound)

	_, err = svc.Get(ctx, alice, 9999)
	require.ErrorIs(t, err, ErrTodoNotFound)
}

func TestTodoUpdate_PartialPatch(t *testing.T) {
	svc, alice, bob := newTestTodoService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, alice, "original", "desc", "")
	require.NoError(t, err)

	newStatus := "done"
	updated, err := svc.Update(ctx, alice, todo.ID, TodoPatch{Status: &newStatus})
	require.NoError(t, err)
	assert.Equal(t, "original", updated.Title)
	assert.Equal(t, "desc", updated.Description)
	assert.Equal(t, "done", updated.Status)

	_, err = svc.Update(ctx, bob, todo.ID, TodoPatch{Status: &newStatus})
	require.ErrorIs(t, err, ErrTodoNotFound)
}

func TestTodoDelete(t *testing.T) {
	svc, alice, bob := newTestTodoService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, alice, "to delete", "", "")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, bob, todo.ID), ErrTodoNotFound)

	require.NoError(t, svc.Delete(ctx, alice, todo.ID))
	_, err = svc.Get(ctx, alice, todo.ID)
	require.ErrorIs(t, err, ErrTodoNotFound)

	require.ErrorIs(t, svc.Delete(ctx, alice, todo.ID), ErrTodoNotFound)
}
