package repository

import (
	"context"
	"strings"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"gorm.io/gorm"
)

type UserRepository struct {
	*BaseRepository[domain.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		BaseRepository: NewBaseRepository[domain.User](db, []string{"role", "email"}),
	}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).
		Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
