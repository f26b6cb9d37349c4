package checkout

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// ContactBundle is the shopper's shipping contact. It only ever leaves memory encrypted.
type ContactBundle struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Region     string `json:"state"`
	PostalCode string `json:"zipCode"`
	Country    string `json:"country"`
}

// DisplayName is the customer name stored in clear on each vendor order.
func (c ContactBundle) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c ContactBundle) missingFields() []string {
	fields := []struct {
		name  string
		value string
	}{
		{"firstName", c.FirstName},
		{"lastName", c.LastName},
		{"email", c.Email},
		{"phone", c.Phone},
		{"address", c.Address},
		{"city", c.City},
		{"state", c.Region},
		{"zipCode", c.PostalCode},
		{"country", c.Country},
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// VendorOrder is the slice of one checkout that belongs to a single store.
type VendorOrder struct {
	ID              string          `json:"id"`
	VendorName      string          `json:"vendorName"`
	Customer        string          `json:"customer"`
	CustomerDetails string          `json:"-"`
	Total           decimal.Decimal `json:"total"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	Lines           []OrderLine     `json:"lines"`
}

// OrderLine snapshots the unit price at checkout time.
type OrderLine struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Size      string          `json:"size,omitempty"`
}
