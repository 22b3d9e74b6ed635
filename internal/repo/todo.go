package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/todo_service/internal/models"
)

// TodoQuery carries storage-level list parameters. SortColumn must already be
// a vetted column name; the service layer owns the allowed set.
type TodoQuery struct {
	OwnerID    uint
	Status     string
	SortColumn string
	Descending bool
	Offset     int
	Limit      int
}

func (r *GormRepo) CreateTodo(ctx context.Context, t *models.Todo) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) TodoByID(ctx context.Context, ownerID, id uint) (*models.Todo, error) {
	var todo models.Todo
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&todo).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *GormRepo) ListTodos(ctx context.Context, q TodoQuery) ([]models.Todo, int64, error) {
	base := r.DB.WithContext(ctx).Model(&models.Todo{}).Where("owner_id = ?", q.OwnerID)
	if q.Status != "" {
		base = base.Where("status = ?", q.Status)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}

	items := make([]models.Todo, 0, q.Limit)
	if err := base.Order(fmt.Sprintf("%s %s", q.SortColumn, dir)).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *GormRepo) SaveTodo(ctx context.Context, t *models.Todo) error {
	return r.DB.WithContext(ctx).Save(t).Error
}

func (r *GormRepo) DeleteTodo(ctx context.Context, ownerID, id uint) (bool, error) {
	result := r.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Todo{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
