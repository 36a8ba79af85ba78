package service

import (
	"context"
	"sync"
	"testing"

	"tradepost/internal/models"
	"tradepost/internal/notifications"
	"tradepost/internal/translation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRepoStub struct {
	getByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	createFn        func(ctx context.Context, user *models.User) error
	updateFn        func(ctx context.Context, user *models.User) error
	listFn          func(ctx context.Context, limit, offset int) ([]models.User, error)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Language: "en"}, nil
		},
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 1
			return nil
		},
		updateFn: func(context.Context, *models.User) error { return nil },
		listFn:   func(context.Context, int, int) ([]models.User, error) { return nil, nil },
	}
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

type itemRepoStub struct {
	createFn       func(ctx context.Context, item *models.Item) error
	getByIDFn      func(ctx context.Context, id uint) (*models.Item, error)
	listFn         func(ctx context.Context, limit, offset int) ([]models.Item, error)
	latestFn       func(ctx context.Context, n int) ([]models.Item, error)
}

func (s *itemRepoStub) Create(ctx context.Context, item *models.Item) error {
	return s.createFn(ctx, item)
}

func (s *itemRepoStub) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	return s.getByIDFn(ctx, id)
}

func (s *itemRepoStub) List(ctx context.Context, limit, offset int) ([]models.Item, error) {
	return s.listFn(ctx, limit, offset)
}

func (s *itemRepoStub) ListBySeller(context.Context, uint) ([]models.Item, error) {
	return nil, nil
}

func (s *itemRepoStub) Latest(ctx context.Context, n int) ([]models.Item, error) {
	return s.latestFn(ctx, n)
}

type purchaseRepoStub struct {
	openFn              func(ctx context.Context, p *models.Purchase) error
	getByIDFn           func(ctx context.Context, id uint) (*models.Purchase, error)
	getByItemAndBuyerFn func(ctx context.Context, itemID, buyerID uint) (*models.Purchase, error)
	latestFn            func(ctx context.Context, n int) ([]models.Purchase, error)
	listForUserFn       func(ctx context.Context, userID uint) ([]models.Purchase, error)
	completeFn          func(ctx context.Context, p *models.Purchase) error
}

func (s *purchaseRepoStub) Open(ctx context.Context, p *models.Purchase) error {
	return s.openFn(ctx, p)
}

func (s *purchaseRepoStub) GetByID(ctx context.Context, id uint) (*models.Purchase, error) {
	return s.getByIDFn(ctx, id)
}

func (s *purchaseRepoStub) GetByItemAndBuyer(ctx context.Context, itemID, buyerID uint) (*models.Purchase, error) {
	return s.getByItemAndBuyerFn(ctx, itemID, buyerID)
}

func (s *purchaseRepoStub) Latest(ctx context.Context, n int) ([]models.Purchase, error) {
	return s.latestFn(ctx, n)
}

func (s *purchaseRepoStub) ListForUser(ctx context.Context, userID uint) ([]models.Purchase, error) {
	return s.listForUserFn(ctx, userID)
}

func (s *purchaseRepoStub) Complete(ctx context.Context, p *models.Purchase) error {
	return s.completeFn(ctx, p)
}

type messageRepoStub struct {
	created []*models.Message
}

func (s *messageRepoStub) Create(_ context.Context, msg *models.Message) error {
	msg.ID = uint(len(s.created) + 1)
	s.created = append(s.created, msg)
	return nil
}

func (s *messageRepoStub) ListByPurchase(context.Context, uint) ([]models.Message, error) {
	return nil, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func dictionaryTranslator() Translator {
	return translation.New(translation.NoopProvider{}, translation.NewDictionary())
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}
