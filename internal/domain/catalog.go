package domain

// CatalogItem is a resolved, purchasable product of an event.
type CatalogItem struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Price      int    `json:"price"`
	CSSClass   string `json:"css_class"`
	Color      string `json:"color"`
	Category   string `json:"category"`
	HasDepot   bool   `json:"has_depot"`
	DepotPrice int    `json:"depot_price"`
	Priority   *int   `json:"priority,omitempty"`
}

// EffectivePrice is the amount charged at checkout.
func (i CatalogItem) EffectivePrice() int {
	if i.HasDepot {
		return i.Price + i.DepotPrice
	}
	return i.Price
}

type CatalogSection struct {
	Category string        `json:"category"`
	Items    []CatalogItem `json:"items"`
}

type CartLine struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
	LineTotal int    `json:"line_total"`
}

type Cart struct {
	Items     []CartLine `json:"items"`
	Total     int        `json:"total"`
	ItemCount int        `json:"item_count"`
}
