package repository

import (
	"context"
	"errors"
	"usdc-storefront/internal/model"

	"gorm.io/gorm"
)

type OrderAuditRepository interface {
	Record(ctx context.Context, order *model.FinalizedOrder) error
	Recent(ctx context.Context, limit int) ([]*model.FinalizedOrder, error)
	FindByTransactionHash(ctx context.Context, txHash string) (*model.FinalizedOrder, error)
}

type orderAuditRepoImpl struct {
	db *gorm.DB
}

func NewOrderAuditRepository(db *gorm.DB) OrderAuditRepository {
	return &orderAuditRepoImpl{
		db: db,
	}
}

func (r *orderAuditRepoImpl) Record(ctx context.Context, order *model.FinalizedOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderAuditRepoImpl) Recent(ctx context.Context, limit int) ([]*model.FinalizedOrder, error) {
	var orders []*model.FinalizedOrder
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error

	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderAuditRepoImpl) FindByTransactionHash(ctx context.Context, txHash string) (*model.FinalizedOrder, error) {
	var order model.FinalizedOrder
	err := r.db.WithContext(ctx).
		Where("transaction_hash = ?", txHash).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
