package service

import (
	"context"
	"strings"

	"tradepost/internal/models"
	"tradepost/internal/repository"
	"tradepost/internal/validation"
)

type ItemService struct {
	itemRepo repository.ItemRepository
	userRepo repository.UserRepository
}

type CreateItemInput struct {
	SellerID    uint
	Title       string
	Description string
	Price       string
}

func NewItemService(itemRepo repository.ItemRepository, userRepo repository.UserRepository) *ItemService {
	return &ItemService{itemRepo: itemRepo, userRepo: userRepo}
}

// CreateItem lists a new item for sale. New listings start available.
func (s *ItemService) CreateItem(ctx context.Context, in CreateItemInput) (*models.Item, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)

	if title == "" || description == "" || strings.TrimSpace(in.Price) == "" {
		return nil, models.NewValidationError("Title, description and price are required")
	}
	if err := validation.ValidateTitle(title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	price, err := validation.ParsePrice(in.Price)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	seller, err := s.userRepo.GetByID(ctx, in.SellerID)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		Title:       title,
		Description: description,
		Price:       price,
		SellerID:    seller.ID,
		Status:      models.ItemStatusAvailable,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	item.Seller = seller
	return item, nil
}

func (s *ItemService) GetItem(ctx context.Context, id uint) (*models.Item, error) {
	return s.itemRepo.GetByID(ctx, id)
}

func (s *ItemService) ListItems(ctx context.Context, limit, offset int) ([]models.Item, error) {
	return s.itemRepo.List(ctx, limit, offset)
}

func (s *ItemService) ListBySeller(ctx context.Context, sellerID uint) ([]models.Item, error) {
	return s.itemRepo.ListBySeller(ctx, sellerID)
}
