// Package readmodel exposes the business read models consumed by the
// orchestration layer: domain listings for AI context injection and the
// combined snapshot driving predictions and threshold triggers.
package readmodel

import (
	"context"
	"errors"

	"github.com/adviso/adviso/pkg/models"
)

var ErrUnknownDomain = errors.New("unknown read-model domain")

// Source serves read-model state. Implementations never mutate business
// data; Invalidate only drops cached state so the next read is fresh.
type Source interface {
	// List returns the raw records of one domain for context injection.
	List(ctx context.Context, domain string) ([]map[string]any, error)

	// LowStock returns inventory items at or below their minimum level.
	LowStock(ctx context.Context) ([]models.StockItem, error)

	// Current returns the combined snapshot for predictions and triggers.
	Current(ctx context.Context) (models.BusinessSnapshot, error)

	// BusinessContext returns the context document attached to AI
	// invocations for a domain.
	BusinessContext(ctx context.Context, domain string) (map[string]any, error)

	// Invalidate drops any cached state for the given domains. No
	// domains means everything.
	Invalidate(ctx context.Context, domains ...string) error
}

// IsUnknownDomain checks whether an error chain contains ErrUnknownDomain.
func IsUnknownDomain(err error) bool {
	return errors.Is(err, ErrUnknownDomain)
}
