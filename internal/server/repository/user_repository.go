package repository

import (
	"context"

	"papertrade/internal/entity"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	FindByNetID(ctx context.Context, netID string) (*entity.User, error)
	SearchByNetID(ctx context.Context, term string, excludeID uint) ([]entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}

// NewUserRepository creates a new GORM-based user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByNetID(ctx context.Context, netID string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("net_id = ?", netID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchByNetID finds users whose net id contains the term, excluding the
// caller.
func (r *userRepository) SearchByNetID(ctx context.Context, term string, excludeID uint) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("net_id LIKE ?", "%"+term+"%").
		Where("id <> ?", excludeID).
		Order("net_id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}
