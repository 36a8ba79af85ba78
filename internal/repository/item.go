package repository

import (
	"context"
	"errors"

	"tradepost/internal/cache"
	"tradepost/internal/models"

	"gorm.io/gorm"
)

// ItemRepository defines persistence operations for listings.
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uint) (*models.Item, error)
	List(ctx context.Context, limit, offset int) ([]models.Item, error)
	ListBySeller(ctx context.Context, sellerID uint) ([]models.Item, error)
	Latest(ctx context.Context, n int) ([]models.Item, error)
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository returns a new ItemRepository implementation.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	if item.Status == "" {
		item.Status = models.ItemStatusAvailable
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	err := cache.Aside(ctx, cache.ItemKey(id), &item, cache.ItemTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("Seller").First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Item", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context, limit, offset int) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *itemRepository) ListBySeller(ctx context.Context, sellerID uint) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *itemRepository) Latest(ctx context.Context, n int) ([]models.Item, error) {
	return r.List(ctx, n, 0)
}

// transitionItem moves an item between statuses only if it is still in from.
// Zero affected rows means another request got there first.
func transitionItem(tx *gorm.DB, id uint, from, to models.ItemStatus) error {
	if !from.CanTransitionTo(to) {
		return models.NewConflictError("Item cannot move from " + string(from) + " to " + string(to))
	}
	res := tx.Model(&models.Item{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewConflictError("Item is no longer " + string(from))
	}
	return nil
}
