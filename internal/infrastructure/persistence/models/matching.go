package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/matching"
)

// ComparisonModel is the persistence model for compare_po_invoice_table
type ComparisonModel struct {
	OwnedModel
	PurchaseOrderID uuid.UUID              `gorm:"type:uuid;not null;index"`
	InvoiceID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	PONumber        string                 `gorm:"column:po_number;type:varchar(100)"`
	InvoiceNumber   string                 `gorm:"type:varchar(100)"`
	VendorScore     int                    `gorm:"not null;default:0"`
	PONumberMatch   bool                   `gorm:"column:po_number_match;not null;default:false"`
	AmountScore     int                    `gorm:"not null;default:0"`
	DateScore       int                    `gorm:"not null;default:0"`
	LineItemsScore  int                    `gorm:"not null;default:0"`
	ConfidenceScore int                    `gorm:"not null;default:0;index"`
	Status          matching.Status        `gorm:"type:varchar(20);not null;index"`
	Discrepancies   []matching.Discrepancy `gorm:"type:jsonb;serializer:json"`
	ReviewedBy      string                 `gorm:"type:varchar(255)"`
	ReviewComment   string                 `gorm:"type:text"`
	ReviewedAt      *time.Time
}

// TableName returns the table name for GORM
func (ComparisonModel) TableName() string {
	return "compare_po_invoice_table"
}

// ToDomain converts the model to a domain comparison Result
func (m *ComparisonModel) ToDomain() *matching.Result {
	discrepancies := m.Discrepancies
	if discrepancies == nil {
		discrepancies = make([]matching.Discrepancy, 0)
	}
	return &matching.Result{
		OwnedAggregate:  m.ToDomainOwned(),
		PurchaseOrderID: m.PurchaseOrderID,
		InvoiceID:       m.InvoiceID,
		PONumber:        m.PONumber,
		InvoiceNumber:   m.InvoiceNumber,
		Scores: matching.FieldScores{
			Vendor:        m.VendorScore,
			PONumberMatch: m.PONumberMatch,
			Amount:        m.AmountScore,
			Date:          m.DateScore,
			LineItems:     m.LineItemsScore,
		},
		Score:         m.ConfidenceScore,
		Status:        m.Status,
		Discrepancies: discrepancies,
		ReviewedBy:    m.ReviewedBy,
		ReviewComment: m.ReviewComment,
		ReviewedAt:    m.ReviewedAt,
	}
}

// ComparisonModelFromDomain creates a model from a domain comparison Result
func ComparisonModelFromDomain(r *matching.Result) *ComparisonModel {
	m := &ComparisonModel{
		PurchaseOrderID: r.PurchaseOrderID,
		InvoiceID:       r.InvoiceID,
		PONumber:        r.PONumber,
		InvoiceNumber:   r.InvoiceNumber,
		VendorScore:     r.Scores.Vendor,
		PONumberMatch:   r.Scores.PONumberMatch,
		AmountScore:     r.Scores.Amount,
		DateScore:       r.Scores.Date,
		LineItemsScore:  r.Scores.LineItems,
		ConfidenceScore: r.Score,
		Status:          r.Status,
		Discrepancies:   r.Discrepancies,
		ReviewedBy:      r.ReviewedBy,
		ReviewComment:   r.ReviewComment,
		ReviewedAt:      r.ReviewedAt,
	}
	m.FromDomainOwned(r.OwnedAggregate)
	return m
}
