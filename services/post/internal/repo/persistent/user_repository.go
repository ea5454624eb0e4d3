package persistent

import (
	"context"
	"errors"
	"fmt"

	"snappoint/pkg/database"
	"snappoint/pkg/models"
	"snappoint/services/post/internal/entity"

	"gorm.io/gorm"
)

// UserRepository is the read side of the user directory. Users are owned by the
// auth service; Create exists for seeding.
type UserRepository interface {
	FindUserByID(ctx context.Context, id string) (*entity.User, error)
	FindUsersByIDs(ctx context.Context, ids []string) ([]entity.User, error)
	Create(ctx context.Context, user *entity.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindUserByID(ctx context.Context, id string) (*entity.User, error) {
	var row models.User
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &entity.NotFoundError{Resource: "user", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	user := ToUserEntity(&row)
	return &user, nil
}

func (r *userRepository) FindUsersByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	if len(ids) == 0 {
		return []entity.User{}, nil
	}
	var rows []models.User
	if err := database.Conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	users := make([]entity.User, len(rows))
	for i := range rows {
		users[i] = ToUserEntity(&rows[i])
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	row := ToUserModel(user)
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	*user = ToUserEntity(row)
	return nil
}
