// Package seed provides demo data for development and manual testing.
package seed

import (
	"fmt"
	"log"
	"time"

	"tradepost/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var demoUsers = []models.User{
	{Username: "alice", Language: "en", Bio: "Vintage collector"},
	{Username: "bob", Language: "ko", Bio: "레고 애호가"},
	{Username: "carla", Language: "es", Bio: "Me encantan los sets raros"},
}

type demoItem struct {
	seller      string
	title       string
	description string
	price       string
}

var demoItems = []demoItem{
	{"alice", "Space Cruiser 924", "Complete set with box", "250.00"},
	{"bob", "Forestmen's Hideout", "Used but complete", "180.00"},
}

// Demo creates the three demo users and their listings. It does nothing
// when any user already exists and reports whether it wrote anything.
func Demo(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		log.Printf("seed: %d users already present, skipping demo data", count)
		return false, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		byName := make(map[string]uint, len(demoUsers))
		for _, u := range demoUsers {
			user := u
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create user %s: %w", user.Username, err)
			}
			byName[user.Username] = user.ID
		}
		for _, it := range demoItems {
			item := models.Item{
				Title:       it.title,
				Description: it.description,
				Price:       decimal.RequireFromString(it.price),
				SellerID:    byName[it.seller],
				Status:      models.ItemStatusAvailable,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("create item %q: %w", item.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	log.Printf("seed: created %d users and %d items", len(demoUsers), len(demoItems))
	return true, nil
}

// Factory generates random listings for existing users.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
}

// NewFactory returns a Factory. A zero seed picks a time-based one.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, faker: gofakeit.New(seed)}
}

// BuildItem returns an unsaved available item owned by sellerID.
func (f *Factory) BuildItem(sellerID uint) *models.Item {
	title := fmt.Sprintf("%s %s %d", f.faker.AdjectiveDescriptive(), f.faker.NounConcrete(), f.faker.Number(100, 9999))
	if len(title) > 120 {
		title = title[:120]
	}
	cents := f.faker.Number(100, 500000)
	return &models.Item{
		Title:       title,
		Description: f.faker.Sentence(12),
		Price:       decimal.New(int64(cents), -2),
		SellerID:    sellerID,
		Status:      models.ItemStatusAvailable,
	}
}

// Items creates n listings spread round-robin over the existing users.
func (f *Factory) Items(n int) ([]*models.Item, error) {
	if n <= 0 {
		return nil, nil
	}
	var sellers []models.User
	if err := f.db.Order("id").Find(&sellers).Error; err != nil {
		return nil, fmt.Errorf("load sellers: %w", err)
	}
	if len(sellers) == 0 {
		return nil, fmt.Errorf("no users to own generated items; run the demo seed first")
	}

	items := make([]*models.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, f.BuildItem(sellers[i%len(sellers)].ID))
	}
	if err := f.db.CreateInBatches(items, 100).Error; err != nil {
		return nil, fmt.Errorf("create items: %w", err)
	}
	log.Printf("seed: created %d generated items", len(items))
	return items, nil
}
