package repo

import (
	"context"

	"github.com/Skotchmaster/todo_service/internal/models"
)

// CreateRefreshToken appends a new ledger row. Earlier rows for the same user
// are left untouched; each issuance stands on its own.
func (r *GormRepo) CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) RefreshTokenByString(ctx context.Context, token string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// RevokeRefreshToken is a compare-and-set: the WHERE clause only matches an
// un-revoked row, so of two concurrent revocations exactly one reports true.
func (r *GormRepo) RevokeRefreshToken(ctx context.Context, token string) (bool, error) {
	result := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND revoked = ?", token, false).
		Update("revoked", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
