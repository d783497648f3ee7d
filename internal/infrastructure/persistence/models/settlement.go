package models

import (
	"time"

	"github.com/auctionhouse/backend/internal/domain/settlement"
	"github.com/google/uuid"
)

// StatementModel is the persistence model for seller settlement statements
type StatementModel struct {
	AggregateModel
	StatementNumber string                     `gorm:"type:varchar(40);not null;uniqueIndex"`
	SellerID        uuid.UUID                  `gorm:"type:uuid;not null;index:idx_statements_seller_auction,priority:1"`
	AuctionID       uuid.UUID                  `gorm:"type:uuid;not null;index:idx_statements_seller_auction,priority:2;index"`
	Status          settlement.StatementStatus `gorm:"type:varchar(20);not null;default:DRAFT"`
	SoldItems       settlement.StatementItems  `gorm:"type:jsonb;not null"`
	UnsoldItems     settlement.StatementItems  `gorm:"type:jsonb;not null"`
	TotalSales      int64                      `gorm:"not null"`
	Commission      int64                      `gorm:"not null"`
	Adjustments     settlement.Adjustments     `gorm:"type:jsonb;not null"`
	NetPayout       int64                      `gorm:"not null"`
	SentAt          *time.Time
	PaidAt          *time.Time
}

// TableName returns the table name for GORM
func (StatementModel) TableName() string {
	return "settlement_statements"
}

// ToDomain converts the persistence model to a domain Statement
func (m *StatementModel) ToDomain() *settlement.Statement {
	st := &settlement.Statement{
		StatementNumber: m.StatementNumber,
		SellerID:        m.SellerID,
		AuctionID:       m.AuctionID,
		Status:          m.Status,
		SoldItems:       m.SoldItems,
		UnsoldItems:     m.UnsoldItems,
		TotalSales:      m.TotalSales,
		Commission:      m.Commission,
		Adjustments:     m.Adjustments,
		NetPayout:       m.NetPayout,
		SentAt:          m.SentAt,
		PaidAt:          m.PaidAt,
	}
	m.PopulateAggregateRoot(&st.BaseAggregateRoot)
	return st
}

// FromDomain populates the persistence model from a domain Statement
func (m *StatementModel) FromDomain(st *settlement.Statement) {
	m.FromDomainAggregateRoot(st.BaseAggregateRoot)
	m.StatementNumber = st.StatementNumber
	m.SellerID = st.SellerID
	m.AuctionID = st.AuctionID
	m.Status = st.Status
	m.SoldItems = st.SoldItems
	m.UnsoldItems = st.UnsoldItems
	m.TotalSales = st.TotalSales
	m.Commission = st.Commission
	m.Adjustments = st.Adjustments
	m.NetPayout = st.NetPayout
	m.SentAt = st.SentAt
	m.PaidAt = st.PaidAt
}

// StatementModelFromDomain creates a new persistence model from a domain Statement
func StatementModelFromDomain(st *settlement.Statement) *StatementModel {
	m := &StatementModel{}
	m.FromDomain(st)
	return m
}
