package repository

import (
	"context"
	"errors"
	"time"

	"bookhub/internal/domain"

	"gorm.io/gorm"
)

type serviceModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	ProviderID  int64     `gorm:"column:provider_id;index"`
	Name        string    `gorm:"column:name"`
	Description *string   `gorm:"column:description"`
	BasePrice   float64   `gorm:"column:base_price"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (serviceModel) TableName() string { return "services" }

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var m serviceModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}

	var desc string
	if m.Description != nil {
		desc = *m.Description
	}
	return &domain.Service{
		ID:          m.ID,
		ProviderID:  m.ProviderID,
		Name:        m.Name,
		Description: desc,
		BasePrice:   m.BasePrice,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}
