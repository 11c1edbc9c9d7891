package domain

type ProductSales struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type Stats struct {
	Revenue      int            `json:"revenue"`
	OrderCount   int            `json:"order_count"`
	ShotsTotal   int            `json:"shots_total"`
	TopProducts  []ProductSales `json:"top_products"`
	TopTeams     []Team         `json:"top_teams"`
	ProductSales []ProductSales `json:"product_sales"`
}
