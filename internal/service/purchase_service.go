package service

import (
	"context"
	"log/slog"
	"strings"

	"tradepost/internal/middleware"
	"tradepost/internal/models"
	"tradepost/internal/notifications"
	"tradepost/internal/repository"
	"tradepost/internal/translation"
	"tradepost/internal/validation"
)

// HomeFeedSize is how many recent items and purchases the home feed shows.
const HomeFeedSize = 5

// Translator renders message text into another language.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) translation.Result
}

type PurchaseService struct {
	purchaseRepo repository.PurchaseRepository
	itemRepo     repository.ItemRepository
	userRepo     repository.UserRepository
	messageRepo  repository.MessageRepository
	translator   Translator
	events       notifications.Publisher
}

// ThreadEntry pairs a stored message with its rendering for the viewer.
type ThreadEntry struct {
	Message     models.Message     `json:"message"`
	Translation translation.Result `json:"translation"`
}

// Thread is a purchase as seen by one participant.
type Thread struct {
	Purchase       *models.Purchase `json:"purchase"`
	ViewerLanguage string           `json:"viewer_language"`
	Entries        []ThreadEntry    `json:"entries"`
}

// HomeFeed lists the most recent marketplace activity.
type HomeFeed struct {
	Items     []models.Item     `json:"items"`
	Purchases []models.Purchase `json:"purchases"`
}

func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	translator Translator,
	events notifications.Publisher,
) *PurchaseService {
	if events == nil {
		events = notifications.NoopPublisher{}
	}
	return &PurchaseService{
		purchaseRepo: purchaseRepo,
		itemRepo:     itemRepo,
		userRepo:     userRepo,
		messageRepo:  messageRepo,
		translator:   translator,
		events:       events,
	}
}

// StartPurchase opens a negotiation between buyerID and the item's seller.
// An existing purchase by the same buyer is returned with created=false.
func (s *PurchaseService) StartPurchase(ctx context.Context, buyerID, itemID uint) (*models.Purchase, bool, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, false, err
	}
	if item.SellerID == buyerID {
		return nil, false, models.NewValidationError("You cannot buy your own item")
	}

	existing, err := s.purchaseRepo.GetByItemAndBuyer(ctx, itemID, buyerID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	if !item.IsAvailable() {
		return nil, false, models.NewConflictError("Item is no longer available")
	}

	buyer, err := s.userRepo.GetByID(ctx, buyerID)
	if err != nil {
		return nil, false, err
	}

	purchase := &models.Purchase{
		ItemID:  item.ID,
		BuyerID: buyer.ID,
		Status:  models.PurchaseStatusChatting,
	}
	if err := s.purchaseRepo.Open(ctx, purchase); err != nil {
		if models.HasCode(err, models.CodeConflict) {
			// A concurrent request from the same buyer may have won the race.
			if again, lookupErr := s.purchaseRepo.GetByItemAndBuyer(ctx, itemID, buyerID); lookupErr == nil && again != nil {
				return again, false, nil
			}
			return nil, false, models.NewConflictError("Item is no longer available")
		}
		return nil, false, err
	}

	item.Status = models.ItemStatusNegotiating
	purchase.Item = item
	purchase.Buyer = buyer

	middleware.Logger.InfoContext(ctx, "purchase started",
		slog.Uint64("purchase_id", uint64(purchase.ID)),
		slog.Uint64("item_id", uint64(item.ID)),
	)
	notifications.Dispatch(ctx, s.events, notifications.NewEvent(notifications.EventPurchaseStarted, purchase.ID, item.ID, buyerID))
	return purchase, true, nil
}

// FindForBuyer returns the buyer's purchase for an item, or nil.
func (s *PurchaseService) FindForBuyer(ctx context.Context, itemID, buyerID uint) (*models.Purchase, error) {
	if buyerID == 0 {
		return nil, nil
	}
	return s.purchaseRepo.GetByItemAndBuyer(ctx, itemID, buyerID)
}

// GetForParticipant returns the purchase when userID is its buyer or seller.
func (s *PurchaseService) GetForParticipant(ctx context.Context, userID, purchaseID uint) (*models.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if !purchase.IsParticipant(userID) {
		return nil, models.NewForbiddenError("You are not part of this purchase")
	}
	return purchase, nil
}

// GetThread returns the purchase with every message rendered in the
// viewer's language.
func (s *PurchaseService) GetThread(ctx context.Context, viewerID, purchaseID uint) (*Thread, error) {
	purchase, err := s.GetForParticipant(ctx, viewerID, purchaseID)
	if err != nil {
		return nil, err
	}
	viewer, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	// Messages are delivered once, through Entries.
	header := *purchase
	header.Messages = nil
	thread := &Thread{
		Purchase:       &header,
		ViewerLanguage: translation.NormalizeLanguage(viewer.Language),
		Entries:        make([]ThreadEntry, 0, len(purchase.Messages)),
	}
	for _, msg := range purchase.Messages {
		source := models.DefaultLanguage
		if msg.Sender != nil {
			source = msg.Sender.Language
		}
		thread.Entries = append(thread.Entries, ThreadEntry{
			Message:     msg,
			Translation: s.translator.Translate(ctx, msg.Body, source, thread.ViewerLanguage),
		})
	}
	return thread, nil
}

// SendMessage appends a message from a participant.
func (s *PurchaseService) SendMessage(ctx context.Context, senderID, purchaseID uint, body string) (*models.Message, error) {
	purchase, err := s.GetForParticipant(ctx, senderID, purchaseID)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if err := validation.ValidateMessage(body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	msg := &models.Message{PurchaseID: purchase.ID, SenderID: senderID, Body: body}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	evt := notifications.NewEvent(notifications.EventMessageCreated, purchase.ID, purchase.ItemID, senderID)
	evt.MessageID = msg.ID
	notifications.Dispatch(ctx, s.events, evt)
	return msg, nil
}

// CompletePurchase lets the seller close the sale. Completing twice is a no-op.
func (s *PurchaseService) CompletePurchase(ctx context.Context, userID, purchaseID uint) (*models.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.SellerID() != userID {
		return nil, models.NewForbiddenError("Only the seller can complete the purchase")
	}
	if purchase.Status == models.PurchaseStatusCompleted {
		return purchase, nil
	}

	if err := s.purchaseRepo.Complete(ctx, purchase); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "purchase completed",
		slog.Uint64("purchase_id", uint64(purchase.ID)),
		slog.Uint64("item_id", uint64(purchase.ItemID)),
	)
	notifications.Dispatch(ctx, s.events, notifications.NewEvent(notifications.EventPurchaseCompleted, purchase.ID, purchase.ItemID, userID))
	return purchase, nil
}

// ListForUser returns purchases where userID is the buyer or the seller.
func (s *PurchaseService) ListForUser(ctx context.Context, userID uint) ([]models.Purchase, error) {
	return s.purchaseRepo.ListForUser(ctx, userID)
}

// Home returns the latest items and purchases.
func (s *PurchaseService) Home(ctx context.Context) (*HomeFeed, error) {
	items, err := s.itemRepo.Latest(ctx, HomeFeedSize)
	if err != nil {
		return nil, err
	}
	purchases, err := s.purchaseRepo.Latest(ctx, HomeFeedSize)
	if err != nil {
		return nil, err
	}
	return &HomeFeed{Items: items, Purchases: purchases}, nil
}
