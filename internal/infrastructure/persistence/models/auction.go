package models

import (
	"encoding/json"
	"time"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionModel is the persistence model for sale events
type AuctionModel struct {
	BaseModel
	Name     string                `gorm:"type:varchar(255);not null"`
	Status   auction.AuctionStatus `gorm:"type:varchar(20);not null;default:SCHEDULED"`
	ClosesAt *time.Time
}

// TableName returns the table name for GORM
func (AuctionModel) TableName() string {
	return "auctions"
}

// ToDomain converts the persistence model to a domain Auction
func (m *AuctionModel) ToDomain() *auction.Auction {
	return &auction.Auction{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Status:     m.Status,
		ClosesAt:   m.ClosesAt,
	}
}

// AuctionItemModel is the persistence model for lots offered in an auction.
// ReservePricePence is nullable: a null reserve means any winning bid sells.
type AuctionItemModel struct {
	BaseModel
	AuctionID         uuid.UUID `gorm:"type:uuid;not null;index:idx_items_auction_lot,priority:1"`
	SellerID          uuid.UUID `gorm:"type:uuid;not null;index"`
	LotNumber         int       `gorm:"not null;index:idx_items_auction_lot,priority:2"`
	Title             string    `gorm:"type:varchar(255);not null"`
	Description       string    `gorm:"type:text"`
	ReservePricePence *int64
	Withdrawn         bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (AuctionItemModel) TableName() string {
	return "auction_items"
}

// ToDomain converts the persistence model to a domain Item
func (m *AuctionItemModel) ToDomain() *auction.Item {
	item := &auction.Item{
		BaseEntity:  m.BaseModel.ToDomain(),
		AuctionID:   m.AuctionID,
		SellerID:    m.SellerID,
		LotNumber:   m.LotNumber,
		Title:       m.Title,
		Description: m.Description,
		Withdrawn:   m.Withdrawn,
	}
	if m.ReservePricePence != nil {
		reserve := valueobject.NewMoneyGBP(*m.ReservePricePence)
		item.ReservePrice = &reserve
	}
	return item
}

// WinningBidModel is the persistence model for accepted winning bids.
// Rows are written by the bidding subsystem; billing only reads them.
type WinningBidModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	AuctionItemID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	BuyerID       uuid.UUID `gorm:"type:uuid;not null;index"`
	AmountPence   int64     `gorm:"not null"`
	PlacedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WinningBidModel) TableName() string {
	return "winning_bids"
}

// ToDomain converts the persistence model to a domain WinningBid
func (m *WinningBidModel) ToDomain() *auction.WinningBid {
	return &auction.WinningBid{
		ID:            m.ID,
		AuctionItemID: m.AuctionItemID,
		BuyerID:       m.BuyerID,
		Amount:        valueobject.NewMoneyGBP(m.AmountPence),
		PlacedAt:      m.PlacedAt,
	}
}

// BuyerModel is the persistence model for bidders. Stored payment methods are
// gateway tokens only and live in a JSONB column.
type BuyerModel struct {
	BaseModel
	Name               string `gorm:"type:varchar(255);not null"`
	Email              string `gorm:"type:varchar(255);not null"`
	GatewayCustomerRef string `gorm:"type:varchar(255)"`
	PaymentMethods     []byte `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (BuyerModel) TableName() string {
	return "buyers"
}

// ToDomain converts the persistence model to a domain Buyer
func (m *BuyerModel) ToDomain() *auction.Buyer {
	buyer := &auction.Buyer{
		BaseEntity:         m.BaseModel.ToDomain(),
		Name:               m.Name,
		Email:              m.Email,
		GatewayCustomerRef: m.GatewayCustomerRef,
	}
	if len(m.PaymentMethods) > 0 {
		_ = json.Unmarshal(m.PaymentMethods, &buyer.PaymentMethods)
	}
	return buyer
}

// BuyerModelFromDomain creates a new persistence model from a domain Buyer
func BuyerModelFromDomain(b *auction.Buyer) (*BuyerModel, error) {
	methods, err := json.Marshal(b.PaymentMethods)
	if err != nil {
		return nil, err
	}
	m := &BuyerModel{
		Name:               b.Name,
		Email:              b.Email,
		GatewayCustomerRef: b.GatewayCustomerRef,
		PaymentMethods:     methods,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m, nil
}

// SellerTermsModel is the persistence model for per-seller commercial terms
type SellerTermsModel struct {
	SellerID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CommissionRate    decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	BuyersPremiumRate decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	TaxRate           decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SellerTermsModel) TableName() string {
	return "seller_terms"
}

// ToDomain converts the persistence model to domain SellerTerms
func (m *SellerTermsModel) ToDomain() *auction.SellerTerms {
	return &auction.SellerTerms{
		SellerID:          m.SellerID,
		CommissionRate:    m.CommissionRate,
		BuyersPremiumRate: m.BuyersPremiumRate,
		TaxRate:           m.TaxRate,
	}
}
