package models

import "time"

// PurchaseStatus represents the state of a buyer/seller negotiation.
type PurchaseStatus string

const (
	// PurchaseStatusChatting indicates the buyer and seller are negotiating.
	PurchaseStatusChatting PurchaseStatus = "chatting"
	// PurchaseStatusCompleted indicates the seller closed the sale.
	PurchaseStatusCompleted PurchaseStatus = "completed"
)

// Purchase is a negotiation thread between a buyer and the seller of one item.
type Purchase struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ItemID    uint           `gorm:"not null;uniqueIndex:idx_purchase_item_buyer" json:"item_id"`
	Item      *Item          `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	BuyerID   uint           `gorm:"not null;uniqueIndex:idx_purchase_item_buyer;index" json:"buyer_id"`
	Buyer     *User          `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Status    PurchaseStatus `gorm:"type:varchar(20);default:'chatting'" json:"status"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Messages  []Message      `gorm:"foreignKey:PurchaseID" json:"messages,omitempty"`
}

// SellerID returns the seller of the purchased item. Item must be loaded.
func (p *Purchase) SellerID() uint {
	if p.Item == nil {
		return 0
	}
	return p.Item.SellerID
}

// IsParticipant reports whether userID is the buyer or the item's seller.
func (p *Purchase) IsParticipant(userID uint) bool {
	return userID != 0 && (p.BuyerID == userID || p.SellerID() == userID)
}

// Message is an immutable chat line inside a purchase.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PurchaseID uint      `gorm:"not null;index" json:"purchase_id"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	Sender     *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
