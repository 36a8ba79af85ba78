package repository

import (
	"context"
	"errors"

	"tradepost/internal/cache"
	"tradepost/internal/models"

	"gorm.io/gorm"
)

// PurchaseRepository defines persistence operations for purchases.
type PurchaseRepository interface {
	// Open inserts the purchase and moves its item from available to
	// negotiating in one transaction.
	Open(ctx context.Context, purchase *models.Purchase) error
	GetByID(ctx context.Context, id uint) (*models.Purchase, error)
	GetByItemAndBuyer(ctx context.Context, itemID, buyerID uint) (*models.Purchase, error)
	Latest(ctx context.Context, n int) ([]models.Purchase, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Purchase, error)
	// Complete marks the purchase completed and its item sold in one
	// transaction.
	Complete(ctx context.Context, purchase *models.Purchase) error
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository returns a new PurchaseRepository implementation.
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Open(ctx context.Context, purchase *models.Purchase) error {
	if purchase.Status == "" {
		purchase.Status = models.PurchaseStatusChatting
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := transitionItem(tx, purchase.ItemID, models.ItemStatusAvailable, models.ItemStatusNegotiating); err != nil {
			return err
		}
		if err := tx.Omit("Item", "Buyer", "Messages").Create(purchase).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError("Purchase already exists")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidateItem(ctx, purchase.ItemID)
	return nil
}

func (r *purchaseRepository) GetByID(ctx context.Context, id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Item.Seller").
		Preload("Buyer").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Messages.Sender").
		First(&purchase, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Purchase", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &purchase, nil
}

// GetByItemAndBuyer returns (nil, nil) when the buyer has no purchase for the item.
func (r *purchaseRepository) GetByItemAndBuyer(ctx context.Context, itemID, buyerID uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND buyer_id = ?", itemID, buyerID).
		First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &purchase, nil
}

func (r *purchaseRepository) Latest(ctx context.Context, n int) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Item.Seller").
		Preload("Buyer").
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&purchases).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return purchases, nil
}

func (r *purchaseRepository) ListForUser(ctx context.Context, userID uint) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Joins("JOIN items ON items.id = purchases.item_id").
		Where("purchases.buyer_id = ? OR items.seller_id = ?", userID, userID).
		Preload("Item.Seller").
		Preload("Buyer").
		Order("purchases.created_at DESC, purchases.id DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return purchases, nil
}

func (r *purchaseRepository) Complete(ctx context.Context, purchase *models.Purchase) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Purchase{}).
			Where("id = ? AND status = ?", purchase.ID, models.PurchaseStatusChatting).
			Update("status", models.PurchaseStatusCompleted)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("Purchase is already completed")
		}
		return transitionItem(tx, purchase.ItemID, models.ItemStatusNegotiating, models.ItemStatusSold)
	})
	if err != nil {
		return err
	}
	purchase.Status = models.PurchaseStatusCompleted
	if purchase.Item != nil {
		purchase.Item.Status = models.ItemStatusSold
	}
	cache.InvalidateItem(ctx, purchase.ItemID)
	return nil
}
