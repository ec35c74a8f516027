package domain

import "time"

// OrderRecord is one historical order from the standard futures account.
type OrderRecord struct {
	OrderID   string    `json:"order_id"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Price     *float64  `json:"price"`
	Quantity  *float64  `json:"quantity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
