package repository

import (
	"context"
	"errors"
	"time"

	"bookhub/internal/domain"

	"gorm.io/gorm"
)

type userModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Email     string    `gorm:"column:email;uniqueIndex"`
	Role      string    `gorm:"column:role"`
	Name      string    `gorm:"column:name"`
	Phone     *string   `gorm:"column:phone"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}

	var phone string
	if m.Phone != nil {
		phone = *m.Phone
	}
	return &domain.User{
		ID:        m.ID,
		Email:     m.Email,
		Role:      domain.UserRole(m.Role),
		Name:      m.Name,
		Phone:     phone,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}
