package domain

import "time"

type OrderLog struct {
	ID        uint           `json:"id"`
	EventID   uint           `json:"event_id"`
	OrderID   *uint          `json:"order_id"`
	Total     int            `json:"total"`
	Items     []OrderLogItem `json:"items"`
	Actor     string         `json:"actor"`
	UserAgent string         `json:"user_agent"`
	CreatedAt time.Time      `json:"created_at"`
}

type OrderLogItem struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Qty   int    `json:"qty"`
	Price int    `json:"price"`
}

type ShotLog struct {
	ID        uint      `json:"id"`
	EventID   uint      `json:"event_id"`
	TeamID    *uint     `json:"team_id"`
	TeamName  string    `json:"team_name"`
	Amount    int       `json:"amount"`
	Actor     string    `json:"actor"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
