// Package models contains GORM persistence models that map to database tables.
// Domain entities carry no ORM tags; each model converts to and from its
// domain type with ToDomain/FromDomain, and repositories only ever read or
// write models.
//
//   - base.go: shared columns (BaseModel, OwnedModel)
//   - procurement.go: po_table, invoice_table and their line items
//   - matching.go: compare_po_invoice_table
//   - document.go: compare_source_document, compare_target_docs, extracted_tables
//   - connector.go: source_connections
package models
