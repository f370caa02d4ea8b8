package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/procurement"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for po_table
type PurchaseOrderModel struct {
	OwnedModel
	PONumber         string                          `gorm:"column:po_number;type:varchar(100);not null;index"`
	VendorName       string                          `gorm:"type:varchar(255);index"`
	PODate           *time.Time                      `gorm:"column:po_date;type:date"`
	Currency         string                          `gorm:"type:varchar(3);not null;default:'USD'"`
	TotalAmount      decimal.Decimal                 `gorm:"type:decimal(18,4);not null;default:0"`
	Status           procurement.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'OPEN'"`
	SourceDocumentID *uuid.UUID                      `gorm:"type:uuid;index"`
	RawData          []byte                          `gorm:"type:jsonb"`
	LineItems        []POLineItemModel               `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "po_table"
}

// ToDomain converts the model to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *procurement.PurchaseOrder {
	po := &procurement.PurchaseOrder{
		OwnedAggregate:   m.ToDomainOwned(),
		PONumber:         m.PONumber,
		VendorName:       m.VendorName,
		PODate:           m.PODate,
		Currency:         m.Currency,
		TotalAmount:      m.TotalAmount,
		Status:           m.Status,
		SourceDocumentID: m.SourceDocumentID,
		RawData:          m.RawData,
		LineItems:        make([]procurement.LineItem, len(m.LineItems)),
	}
	for i := range m.LineItems {
		po.LineItems[i] = m.LineItems[i].LineItemModel.ToDomain()
	}
	return po
}

// PurchaseOrderModelFromDomain creates a model from a domain PurchaseOrder
func PurchaseOrderModelFromDomain(po *procurement.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		PONumber:         po.PONumber,
		VendorName:       po.VendorName,
		PODate:           po.PODate,
		Currency:         po.Currency,
		TotalAmount:      po.TotalAmount,
		Status:           po.Status,
		SourceDocumentID: po.SourceDocumentID,
		RawData:          jsonColumn(po.RawData),
		LineItems:        make([]POLineItemModel, len(po.LineItems)),
	}
	m.FromDomainOwned(po.OwnedAggregate)
	for i := range po.LineItems {
		m.LineItems[i] = POLineItemModel{
			LineItemModel:   lineItemModelFromDomain(&po.LineItems[i]),
			PurchaseOrderID: po.ID,
		}
	}
	return m
}

// LineItemModel holds the columns shared by PO and invoice lines
type LineItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LineNumber  int             `gorm:"not null;default:0"`
	Description string          `gorm:"type:text;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// ToDomain converts the line to a domain LineItem
func (m *LineItemModel) ToDomain() procurement.LineItem {
	return procurement.LineItem{
		ID:          m.ID,
		LineNumber:  m.LineNumber,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Amount:      m.Amount,
	}
}

func lineItemModelFromDomain(l *procurement.LineItem) LineItemModel {
	id := l.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return LineItemModel{
		ID:          id,
		LineNumber:  l.LineNumber,
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		Amount:      l.Amount,
	}
}

// POLineItemModel is the persistence model for po_line_items
type POLineItemModel struct {
	LineItemModel
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (POLineItemModel) TableName() string {
	return "po_line_items"
}

// InvoiceModel is the persistence model for invoice_table
type InvoiceModel struct {
	OwnedModel
	InvoiceNumber    string                 `gorm:"type:varchar(100);not null;index"`
	PONumber         string                 `gorm:"column:po_number;type:varchar(100);index"`
	VendorName       string                 `gorm:"type:varchar(255);index"`
	InvoiceDate      *time.Time             `gorm:"type:date"`
	DueDate          *time.Time             `gorm:"type:date"`
	Currency         string                 `gorm:"type:varchar(3);not null;default:'USD'"`
	Subtotal         decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount        decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount      decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	SourceDocumentID *uuid.UUID             `gorm:"type:uuid;index"`
	RawData          []byte                 `gorm:"type:jsonb"`
	LineItems        []InvoiceLineItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoice_table"
}

// ToDomain converts the model to a domain Invoice
func (m *InvoiceModel) ToDomain() *procurement.Invoice {
	inv := &procurement.Invoice{
		OwnedAggregate:   m.ToDomainOwned(),
		InvoiceNumber:    m.InvoiceNumber,
		PONumber:         m.PONumber,
		VendorName:       m.VendorName,
		InvoiceDate:      m.InvoiceDate,
		DueDate:          m.DueDate,
		Currency:         m.Currency,
		Subtotal:         m.Subtotal,
		TaxAmount:        m.TaxAmount,
		TotalAmount:      m.TotalAmount,
		SourceDocumentID: m.SourceDocumentID,
		RawData:          m.RawData,
		LineItems:        make([]procurement.LineItem, len(m.LineItems)),
	}
	for i := range m.LineItems {
		inv.LineItems[i] = m.LineItems[i].LineItemModel.ToDomain()
	}
	return inv
}

// InvoiceModelFromDomain creates a model from a domain Invoice
func InvoiceModelFromDomain(inv *procurement.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		InvoiceNumber:    inv.InvoiceNumber,
		PONumber:         inv.PONumber,
		VendorName:       inv.VendorName,
		InvoiceDate:      inv.InvoiceDate,
		DueDate:          inv.DueDate,
		Currency:         inv.Currency,
		Subtotal:         inv.Subtotal,
		TaxAmount:        inv.TaxAmount,
		TotalAmount:      inv.TotalAmount,
		SourceDocumentID: inv.SourceDocumentID,
		RawData:          jsonColumn(inv.RawData),
		LineItems:        make([]InvoiceLineItemModel, len(inv.LineItems)),
	}
	m.FromDomainOwned(inv.OwnedAggregate)
	for i := range inv.LineItems {
		m.LineItems[i] = InvoiceLineItemModel{
			LineItemModel: lineItemModelFromDomain(&inv.LineItems[i]),
			InvoiceID:     inv.ID,
		}
	}
	return m
}

// InvoiceLineItemModel is the persistence model for invoice_line_items
type InvoiceLineItemModel struct {
	LineItemModel
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (InvoiceLineItemModel) TableName() string {
	return "invoice_line_items"
}
