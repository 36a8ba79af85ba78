package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus represents where a listing is in its sale lifecycle.
type ItemStatus string

const (
	// ItemStatusAvailable indicates the item can be bought.
	ItemStatusAvailable ItemStatus = "available"
	// ItemStatusNegotiating indicates a buyer has opened a purchase.
	ItemStatusNegotiating ItemStatus = "negotiating"
	// ItemStatusSold indicates the seller completed a purchase.
	ItemStatusSold ItemStatus = "sold"
)

var itemStatusRank = map[ItemStatus]int{
	ItemStatusAvailable:   0,
	ItemStatusNegotiating: 1,
	ItemStatusSold:        2,
}

// CanTransitionTo reports whether moving from s to next is a single forward step.
// Only available→negotiating and negotiating→sold are allowed.
func (s ItemStatus) CanTransitionTo(next ItemStatus) bool {
	from, ok := itemStatusRank[s]
	if !ok {
		return false
	}
	to, ok := itemStatusRank[next]
	if !ok {
		return false
	}
	return to == from+1
}

// Item is a listing owned by a seller.
type Item struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"size:120;not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	SellerID    uint            `gorm:"not null;index" json:"seller_id"`
	Seller      *User           `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Status      ItemStatus      `gorm:"type:varchar(20);default:'available';index" json:"status"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsAvailable reports whether the item can still be bought.
func (i *Item) IsAvailable() bool {
	return i.Status == ItemStatusAvailable
}
