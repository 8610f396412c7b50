package kiotviet

import "encoding/json"

// listPage is the envelope every KiotViet list endpoint returns.
// Total is not always consistent with the data actually available, so
// callers treat it as a hint, never as an authoritative bound.
type listPage struct {
	Total       int               `json:"total"`
	PageSize    int               `json:"pageSize"`
	CurrentItem int               `json:"currentItem"`
	Data        []json.RawMessage `json:"data"`
}

// rawProduct mirrors the fields kvsync keeps from /products items.
type rawProduct struct {
	ID           int64          `json:"id"`
	Code         string         `json:"code"`
	Name         string         `json:"name"`
	FullName     string         `json:"fullName"`
	CategoryName string         `json:"categoryName"`
	BasePrice    *float64       `json:"basePrice"`
	Unit         string         `json:"unit"`
	IsActive     *bool          `json:"isActive"`
	ModifiedDate string         `json:"modifiedDate"`
	CreatedDate  string         `json:"createdDate"`
	Inventories  []rawInventory `json:"inventories"`
}

// rawInventory is a per-branch stock level attached to a product.
type rawInventory struct {
	BranchID int64   `json:"branchId"`
	OnHand   float64 `json:"onHand"`
}

// rawCustomer mirrors the fields kvsync keeps from /customers items.
type rawCustomer struct {
	ID            int64  `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	LocationName  string `json:"locationName"`
	ModifiedDate  string `json:"modifiedDate"`
	CreatedDate   string `json:"createdDate"`
}

// rawOrder mirrors the fields kvsync keeps from /orders items.
type rawOrder struct {
	ID           int64    `json:"id"`
	Code         string   `json:"code"`
	StatusValue  string   `json:"statusValue"`
	Total        *float64 `json:"total"`
	CustomerName string   `json:"customerName"`
	PurchaseDate string   `json:"purchaseDate"`
	ModifiedDate string   `json:"modifiedDate"`
	CreatedDate  string   `json:"createdDate"`
}

// rawInvoice mirrors the fields kvsync keeps from /invoices items.
type rawInvoice struct {
	ID           int64    `json:"id"`
	Code         string   `json:"code"`
	StatusValue  string   `json:"statusValue"`
	Total        *float64 `json:"total"`
	CustomerName string   `json:"customerName"`
	PurchaseDate string   `json:"purchaseDate"`
	ModifiedDate string   `json:"modifiedDate"`
	CreatedDate  string   `json:"createdDate"`
}
