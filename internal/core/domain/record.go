package domain

import "time"

// Record is a normalised store record ready for reconciliation into the
// local cache. The concrete types (Product, Customer, Order, Invoice) are
// produced by a connector's transform step and keyed by the stable
// identifier assigned upstream.
type Record interface {
	// Resource returns the resource type this record belongs to.
	Resource() ResourceType

	// ExternalID returns the stable identifier from the source system.
	ExternalID() int64

	// SourceModified returns the last-modified timestamp reported by the
	// source. Zero when the source omitted it.
	SourceModified() time.Time
}

// Product is a cached catalogue item.
type Product struct {
	ID           int64
	Code         string
	Name         string
	CategoryName string
	BasePrice    float64
	OnHand       float64
	Unit         string
	IsActive     bool
	ModifiedAt   time.Time
	SyncedAt     time.Time
}

// Resource implements Record.
func (p Product) Resource() ResourceType { return ResourceProducts }

// ExternalID implements Record.
func (p Product) ExternalID() int64 { return p.ID }

// SourceModified implements Record.
func (p Product) SourceModified() time.Time { return p.ModifiedAt }

// Customer is a cached customer contact.
type Customer struct {
	ID            int64
	Code          string
	Name          string
	ContactNumber string
	Email         string
	Address       string
	LocationName  string
	ModifiedAt    time.Time
	SyncedAt      time.Time
}

// Resource implements Record.
func (c Customer) Resource() ResourceType { return ResourceCustomers }

// ExternalID implements Record.
func (c Customer) ExternalID() int64 { return c.ID }

// SourceModified implements Record.
func (c Customer) SourceModified() time.Time { return c.ModifiedAt }

// Order is a cached sales order.
type Order struct {
	ID           int64
	Code         string
	Status       string
	Total        float64
	CustomerName string
	PurchaseDate time.Time
	ModifiedAt   time.Time
	SyncedAt     time.Time
}

// Resource implements Record.
func (o Order) Resource() ResourceType { return ResourceOrders }

// ExternalID implements Record.
func (o Order) ExternalID() int64 { return o.ID }

// SourceModified implements Record.
func (o Order) SourceModified() time.Time { return o.ModifiedAt }

// Invoice is a cached issued invoice.
type Invoice struct {
	ID           int64
	Code         string
	Status       string
	Total        float64
	CustomerName string
	PurchaseDate time.Time
	ModifiedAt   time.Time
	SyncedAt     time.Time
}

// Resource implements Record.
func (i Invoice) Resource() ResourceType { return ResourceInvoices }

// ExternalID implements Record.
func (i Invoice) ExternalID() int64 { return i.ID }

// SourceModified implements Record.
func (i Invoice) SourceModified() time.Time { return i.ModifiedAt }
