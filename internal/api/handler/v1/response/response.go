package response

import (
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// CartResponse is returned by every cart mutation. Success is false when a
// tap was ignored because the product is not sold at the active event.
type CartResponse struct {
	Success bool        `json:"success"`
	Cart    domain.Cart `json:"cart"`
}

type CheckoutResponse struct {
	Success bool          `json:"success"`
	Order   *domain.Order `json:"order"`
	Cart    domain.Cart   `json:"cart"`
}

type CashierResponse struct {
	Event           EventSummary            `json:"event"`
	Sections        []domain.CatalogSection `json:"sections"`
	Cart            domain.Cart             `json:"cart"`
	AutoReloadOnAdd bool                    `json:"auto_reload_on_add"`
}

type PriceListResponse struct {
	Event    EventSummary            `json:"event"`
	Title    string                  `json:"title"`
	Columns  int                     `json:"columns"`
	Sections []domain.CatalogSection `json:"sections"`
}

type LeaderboardResponse struct {
	Event    EventSummary               `json:"event"`
	Settings domain.ShotcounterSettings `json:"settings"`
	Teams    []domain.Team              `json:"teams"`
}

// EventSummary is the public view of the active event.
type EventSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func NewEventSummary(event domain.Event) EventSummary {
	return EventSummary{
		ID:   event.ID,
		Name: event.Name,
	}
}
