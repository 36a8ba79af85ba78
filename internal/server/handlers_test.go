package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tradepost/internal/config"
	"tradepost/internal/models"
	"tradepost/internal/notifications"
	"tradepost/internal/service"
	"tradepost/internal/translation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepos struct {
	users     *MockUserRepository
	items     *MockItemRepository
	purchases *MockPurchaseRepository
	messages  *MockMessageRepository
}

func newMockServer() (*Server, mockRepos) {
	r := mockRepos{
		users:     new(MockUserRepository),
		items:     new(MockItemRepository),
		purchases: new(MockPurchaseRepository),
		messages:  new(MockMessageRepository),
	}
	tr := translation.New(translation.NoopProvider{}, translation.NewDictionary())
	s := &Server{
		config:          &config.Config{JWTSecret: "test-secret", Env: "test"},
		userService:     service.NewUserService(r.users),
		itemService:     service.NewItemService(r.items, r.users),
		purchaseService: service.NewPurchaseService(r.purchases, r.items, r.users, r.messages, tr, notifications.NoopPublisher{}),
	}
	return s, r
}

// asUser injects an authenticated user without going through JWT.
func asUser(id uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", id)
		return c.Next()
	}
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, v), string(body))
}

func TestGetUserProfile(t *testing.T) {
	s, r := newMockServer()
	app := fiber.New()
	app.Get("/users/:id", s.GetUserProfile)

	r.users.On("GetByID", mock.Anything, uint(1)).Return(&models.User{ID: 1, Username: "alice", Language: "en"}, nil)
	r.items.On("ListBySeller", mock.Anything, uint(1)).Return([]models.Item{{ID: 3, Title: "Space Cruiser 924"}}, nil)
	r.users.On("GetByID", mock.Anything, uint(99)).Return(nil, models.NewNotFoundError("User", 99))

	tests := []struct {
		name           string
		userIDParam    string
		expectedStatus int
	}{
		{"Success", "1", http.StatusOK},
		{"Invalid ID", "abc", http.StatusBadRequest},
		{"Zero ID", "0", http.StatusBadRequest},
		{"Not Found", "99", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/"+tt.userIDParam, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestCreateItem_PriceFormats(t *testing.T) {
	s, r := newMockServer()
	app := fiber.New()
	app.Post("/items", asUser(1), s.CreateItem)

	r.users.On("GetByID", mock.Anything, uint(1)).Return(&models.User{ID: 1, Username: "alice"}, nil)
	r.items.On("Create", mock.Anything, mock.AnythingOfType("*models.Item")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Item).ID = 5 }).
		Return(nil)

	tests := []struct {
		name   string
		body   string
		status int
		price  string
	}{
		{"number", `{"title":"Hideout","description":"Used","price":180}`, http.StatusCreated, "180"},
		{"string", `{"title":"Hideout","description":"Used","price":"180.50"}`, http.StatusCreated, "180.5"},
		{"bad price", `{"title":"Hideout","description":"Used","price":"cheap"}`, http.StatusBadRequest, ""},
		{"negative", `{"title":"Hideout","description":"Used","price":-1}`, http.StatusBadRequest, ""},
		{"missing title", `{"description":"Used","price":1}`, http.StatusBadRequest, ""},
		{"not json", `{`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status != http.StatusCreated {
				_ = resp.Body.Close()
				return
			}
			assert.Equal(t, "/api/items/5", resp.Header.Get("Location"))
			var item models.Item
			decodeBody(t, resp, &item)
			assert.True(t, item.Price.Equal(decimal.RequireFromString(tt.price)))
		})
	}
}

func TestStartPurchase_Statuses(t *testing.T) {
	tests := []struct {
		name     string
		buyer    uint
		item     *models.Item
		existing *models.Purchase
		status   int
	}{
		{"new purchase", 2, &models.Item{ID: 7, SellerID: 1, Status: models.ItemStatusAvailable}, nil, http.StatusCreated},
		{"existing purchase", 2, &models.Item{ID: 7, SellerID: 1, Status: models.ItemStatusNegotiating}, &models.Purchase{ID: 40, ItemID: 7, BuyerID: 2}, http.StatusOK},
		{"own item", 1, &models.Item{ID: 7, SellerID: 1, Status: models.ItemStatusAvailable}, nil, http.StatusBadRequest},
		{"sold item", 3, &models.Item{ID: 7, SellerID: 1, Status: models.ItemStatusSold}, nil, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, r := newMockServer()
			app := fiber.New()
			app.Post("/items/:id/purchase", asUser(tt.buyer), s.StartPurchase)

			r.items.On("GetByID", mock.Anything, uint(7)).Return(tt.item, nil)
			if tt.existing != nil {
				r.purchases.On("GetByItemAndBuyer", mock.Anything, uint(7), tt.buyer).Return(tt.existing, nil)
			} else {
				r.purchases.On("GetByItemAndBuyer", mock.Anything, uint(7), tt.buyer).Return(nil, nil)
			}
			r.users.On("GetByID", mock.Anything, tt.buyer).Return(&models.User{ID: tt.buyer}, nil)
			r.purchases.On("Open", mock.Anything, mock.AnythingOfType("*models.Purchase")).
				Run(func(args mock.Arguments) { args.Get(1).(*models.Purchase).ID = 41 }).
				Return(nil)

			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/items/7/purchase", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)

			switch tt.status {
			case http.StatusCreated:
				assert.Equal(t, "/api/purchases/41", resp.Header.Get("Location"))
			case http.StatusOK:
				assert.Equal(t, "/api/purchases/40", resp.Header.Get("Location"))
				r.purchases.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestGetPurchase_TranslatesForViewer(t *testing.T) {
	s, r := newMockServer()
	app := fiber.New()
	app.Get("/purchases/:id", asUser(1), s.GetPurchase)

	bob := &models.User{ID: 2, Username: "bob", Language: "ko"}
	r.purchases.On("GetByID", mock.Anything, uint(10)).Return(&models.Purchase{
		ID:       10,
		ItemID:   7,
		Item:     &models.Item{ID: 7, SellerID: 1},
		BuyerID:  2,
		Buyer:    bob,
		Messages: []models.Message{{ID: 1, SenderID: 2, Sender: bob, Body: "감사합니다"}},
	}, nil)
	r.users.On("GetByID", mock.Anything, uint(1)).Return(&models.User{ID: 1, Language: "es"}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/purchases/10", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var thread service.Thread
	decodeBody(t, resp, &thread)
	assert.Equal(t, "es", thread.ViewerLanguage)
	require.Len(t, thread.Entries, 1)
	assert.Equal(t, "gracias", thread.Entries[0].Translation.Translated)
	assert.Equal(t, "감사합니다", thread.Entries[0].Message.Body)
}

func TestCompletePurchase_NonSellerForbidden(t *testing.T) {
	s, r := newMockServer()
	app := fiber.New()
	app.Post("/purchases/:id/complete", asUser(2), s.CompletePurchase)

	r.purchases.On("GetByID", mock.Anything, uint(10)).Return(&models.Purchase{
		ID: 10, ItemID: 7, Item: &models.Item{ID: 7, SellerID: 1}, BuyerID: 2, Status: models.PurchaseStatusChatting,
	}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/purchases/10/complete", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "Only the seller can complete the purchase", body.Error)
	assert.Equal(t, models.CodeForbidden, body.Code)
	r.purchases.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestGetLanguages(t *testing.T) {
	s, _ := newMockServer()
	app := fiber.New()
	app.Get("/languages", s.GetLanguages)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/languages", nil))
	require.NoError(t, err)
	var langs []language
	decodeBody(t, resp, &langs)
	require.Len(t, langs, len(models.SupportedLanguages))
	assert.Equal(t, "en", langs[0].Code)
	assert.Equal(t, "English", langs[0].Name)
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = parsePagination(c, 20)
		return nil
	})

	cases := map[string]Pagination{
		"/":                      {Limit: 20, Offset: 0},
		"/?limit=5&offset=10":    {Limit: 5, Offset: 10},
		"/?limit=-1&offset=-3":   {Limit: 20, Offset: 0},
		"/?limit=1000":           {Limit: maxPaginationLimit, Offset: 0},
		"/?limit=abc&offset=xyz": {Limit: 20, Offset: 0},
	}
	for target, want := range cases {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		assert.Equal(t, want, got, target)
	}
}
