package domain

import (
	"time"

	apperrors "github.com/JossueJativa/websocket/pkg/errors"
)

// Garrison is the list of side/accompaniment product IDs attached to a line
// item. A nil garrison means the line was created without one and serializes
// as JSON null.
type Garrison []int64

// OrderDetail is a single line item on a desk's open order.
type OrderDetail struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	DeskID    int64     `json:"desk_id"`
	Garrison  Garrison  `json:"garrison"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewOrderDetail builds an unsaved line item, enforcing the field invariants.
// The ID and timestamps are assigned by the store.
func NewOrderDetail(productID int64, quantity int, deskID int64, garrison Garrison) (*OrderDetail, error) {
	if deskID <= 0 {
		return nil, apperrors.InvalidInput("Desk ID is required")
	}
	if productID <= 0 {
		return nil, apperrors.InvalidInput("Product ID is required")
	}
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("Quantity must be greater than zero")
	}

	return &OrderDetail{
		ProductID: productID,
		Quantity:  quantity,
		DeskID:    deskID,
		Garrison:  garrison,
	}, nil
}

// HasGarrison reports whether the line carries a non-empty garrison.
func (d *OrderDetail) HasGarrison() bool {
	return len(d.Garrison) > 0
}

// Equals reports whether g and other hold the same elements. The
// comparison requires equal cardinality and every element of g to be present
// in other; duplicates are not counted.
func (g Garrison) Equals(other Garrison) bool {
	if len(g) != len(other) {
		return false
	}
	for _, id := range g {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// Contains reports whether id is present in the garrison.
func (g Garrison) Contains(id int64) bool {
	for _, v := range g {
		if v == id {
			return true
		}
	}
	return false
}
