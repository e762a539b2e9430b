package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/farellandr/eventbook/internal/models"
	"gorm.io/gorm"
)

// CreateUser inserts a user. The UNIQUE constraint on email decides
// duplicates; a violation is reported as ErrEmailTaken.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string, isPromoter bool) (*models.User, error) {
	user := &models.User{
		Email:      email,
		Password:   passwordHash,
		IsPromoter: isPromoter,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Warn("registration rejected, email exists", "email", email)
			return nil, ErrEmailTaken
		}
		s.log.Error("create user failed", "email", email, "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", "user_id", user.ID, "is_promoter", user.IsPromoter)
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}
