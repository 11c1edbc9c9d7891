package domain

import "time"

type Order struct {
	ID         uint        `json:"id"`
	EventID    uint        `json:"event_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Total      int         `json:"total"`
	Items      []OrderItem `json:"items,omitempty"`
	DrinkSales []DrinkSale `json:"drink_sales,omitempty"`
}

// OrderItem is one tapped cart entry with the price charged at checkout.
type OrderItem struct {
	ID      uint   `json:"id"`
	OrderID uint   `json:"order_id"`
	Name    string `json:"name"`
	Price   int    `json:"price"`
}

// DrinkSale is the per-product quantity of one order.
type DrinkSale struct {
	ID       uint   `json:"id"`
	OrderID  uint   `json:"order_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}
