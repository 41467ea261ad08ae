package models

// Read-model snapshots consumed by the prediction aggregator and attached
// to AI invocations as business context. They are read-only from this
// module's perspective; mutation happens in the excluded data layer.

// StockItem is one inventory entry from the read model.
type StockItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	MinStock int    `json:"min_stock"`
}

// Order is one open order from the read model.
type Order struct {
	ID       string  `json:"id"`
	ClientID string  `json:"client_id"`
	Total    float64 `json:"total"`
	Status   string  `json:"status"`
}

// ClientSummary aggregates client activity for context injection.
type ClientSummary struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// PricingSummary aggregates margin posture for context injection.
type PricingSummary struct {
	AverageMargin float64 `json:"average_margin"`
	TargetMargin  float64 `json:"target_margin"`
	ProductCount  int     `json:"product_count"`
}

// BusinessSnapshot is the combined read-model state fed to the prediction
// aggregator and to threshold trigger evaluation.
type BusinessSnapshot struct {
	LowStock   []StockItem        `json:"low_stock"`
	OpenOrders []Order            `json:"open_orders"`
	Clients    ClientSummary      `json:"clients"`
	Pricing    PricingSummary     `json:"pricing"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Events     []string           `json:"events,omitempty"`
}
