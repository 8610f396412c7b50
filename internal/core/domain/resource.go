package domain

import "fmt"

// ResourceType identifies one of the synchronised business entities.
type ResourceType string

const (
	// ResourceProducts is the product catalogue.
	ResourceProducts ResourceType = "products"
	// ResourceCustomers is the customer list.
	ResourceCustomers ResourceType = "customers"
	// ResourceOrders is the order book.
	ResourceOrders ResourceType = "orders"
	// ResourceInvoices is the issued invoice list.
	ResourceInvoices ResourceType = "invoices"
)

// AllResourceTypes returns the four resource types in sync order.
// The order is fixed: products first so orders/invoices can be joined
// against an up-to-date catalogue by readers of the cache.
func AllResourceTypes() []ResourceType {
	return []ResourceType{
		ResourceProducts,
		ResourceCustomers,
		ResourceOrders,
		ResourceInvoices,
	}
}

// ParseResourceType validates a resource type string.
func ParseResourceType(s string) (ResourceType, error) {
	switch ResourceType(s) {
	case ResourceProducts, ResourceCustomers, ResourceOrders, ResourceInvoices:
		return ResourceType(s), nil
	default:
		return "", fmt.Errorf("%w: resource type %q", ErrUnsupportedType, s)
	}
}

// SupportsDateFilter reports whether the upstream endpoint for this
// resource type accepts a modified-date range. Only order-like resources
// support server-side date filtering.
func (r ResourceType) SupportsDateFilter() bool {
	return r == ResourceOrders || r == ResourceInvoices
}

// String returns the resource type identifier.
func (r ResourceType) String() string {
	return string(r)
}
