package readmodel

import (
	"context"
	"sync"

	"github.com/adviso/adviso/pkg/models"
)

// StaticSource is an in-memory Source seeded with a fixed snapshot. It
// backs development mode and tests; production wraps a real source with
// the redis cache.
type StaticSource struct {
	mu       sync.RWMutex
	snapshot models.BusinessSnapshot
}

func NewStaticSource(snapshot models.BusinessSnapshot) *StaticSource {
	return &StaticSource{snapshot: snapshot}
}

// NewDemoSource seeds a source with plausible demo data so every surface
// of the API has something to show.
func NewDemoSource() *StaticSource {
	return NewStaticSource(models.BusinessSnapshot{
		LowStock: []models.StockItem{
			{ID: "stk-001", Name: "Thermal paper rolls", Quantity: 3, MinStock: 20},
			{ID: "stk-002", Name: "Shipping boxes M", Quantity: 8, MinStock: 50},
		},
		OpenOrders: []models.Order{
			{ID: "ord-101", ClientID: "cli-07", Total: 420.50, Status: "pending"},
			{ID: "ord-102", ClientID: "cli-12", Total: 1280.00, Status: "shipped"},
		},
		Clients: models.ClientSummary{Total: 48, Active: 41, Inactive: 7},
		Pricing: models.PricingSummary{AverageMargin: 24.5, TargetMargin: 30.0, ProductCount: 312},
		Metrics: map[string]float64{
			"low_stock_count":  2,
			"pending_orders":   1,
			"inactive_clients": 7,
			"average_margin":   24.5,
		},
	})
}

// SetSnapshot replaces the seeded snapshot.
func (s *StaticSource) SetSnapshot(snapshot models.BusinessSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snapshot
}

func (s *StaticSource) List(ctx context.Context, domain string) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch domain {
	case "inventory":
		records := make([]map[string]any, 0, len(s.snapshot.LowStock))
		for _, item := range s.snapshot.LowStock {
			records = append(records, map[string]any{
				"id":        item.ID,
				"name":      item.Name,
				"quantity":  item.Quantity,
				"min_stock": item.MinStock,
			})
		}

		return records, nil
	case "orders":
		records := make([]map[string]any, 0, len(s.snapshot.OpenOrders))
		for _, order := range s.snapshot.OpenOrders {
			records = append(records, map[string]any{
				"id":        order.ID,
				"client_id": order.ClientID,
				"total":     order.Total,
				"status":    order.Status,
			})
		}

		return records, nil
	case "clients":
		return []map[string]any{{
			"total":    s.snapshot.Clients.Total,
			"active":   s.snapshot.Clients.Active,
			"inactive": s.snapshot.Clients.Inactive,
		}}, nil
	case "pricing":
		return []map[string]any{{
			"average_margin": s.snapshot.Pricing.AverageMargin,
			"target_margin":  s.snapshot.Pricing.TargetMargin,
			"product_count":  s.snapshot.Pricing.ProductCount,
		}}, nil
	case "suppliers":
		return []map[string]any{}, nil
	default:
		return nil, ErrUnknownDomain
	}
}

func (s *StaticSource) LowStock(ctx context.Context) ([]models.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.StockItem, len(s.snapshot.LowStock))
	copy(items, s.snapshot.LowStock)

	return items, nil
}

func (s *StaticSource) Current(ctx context.Context) (models.BusinessSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot, nil
}

func (s *StaticSource) BusinessContext(ctx context.Context, domain string) (map[string]any, error) {
	records, err := s.List(ctx, domain)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"domain":  domain,
		"records": records,
		"metrics": s.snapshot.Metrics,
	}, nil
}

// Invalidate is a no-op: the static source has no cache layer.
func (s *StaticSource) Invalidate(ctx context.Context, domains ...string) error {
	return nil
}
