// Package catalog holds the static registry of invocable AI-backed
// operations per business domain.
package catalog

import "github.com/adviso/adviso/pkg/models"

// actionsByDomain is the full static catalog. Order within a domain is the
// presentation order; it never changes at runtime.
var actionsByDomain = map[string][]models.ActionDescriptor{
	"inventory": {
		{
			ID:            "restock-report",
			Title:         "Generate restock report",
			Description:   "List items at or below minimum stock with suggested order quantities.",
			Domain:        "inventory",
			OperationType: "analysis",
			Priority:      models.ActionPriorityHigh,
		},
		{
			ID:            "dead-stock-review",
			Title:         "Review slow-moving stock",
			Description:   "Identify items without movement in the last 90 days.",
			Domain:        "inventory",
			OperationType: "analysis",
			Priority:      models.ActionPriorityMedium,
		},
		{
			ID:            "reorder-points",
			Title:         "Recalculate reorder points",
			Description:   "Suggest new minimum stock levels from recent sales velocity.",
			Domain:        "inventory",
			OperationType: "optimization",
			Priority:      models.ActionPriorityMedium,
		},
		{
			ID:            "stock-valuation",
			Title:         "Value current stock",
			Description:   "Estimate the capital tied up in inventory by category.",
			Domain:        "inventory",
			OperationType: "report",
			Priority:      models.ActionPriorityLow,
		},
	},
	"pricing": {
		{
			ID:            "adjust-prices",
			Title:         "Suggest price adjustments",
			Description:   "Propose price changes to reach the target margin per product.",
			Domain:        "pricing",
			OperationType: "optimization",
			Priority:      models.ActionPriorityHigh,
		},
		{
			ID:            "margin-analysis",
			Title:         "Analyze margins",
			Description:   "Break down current margins against targets across the catalog.",
			Domain:        "pricing",
			OperationType: "analysis",
			Priority:      models.ActionPriorityHigh,
		},
		{
			ID:            "competitor-positioning",
			Title:         "Assess price positioning",
			Description:   "Compare price bands against typical market positioning.",
			Domain:        "pricing",
			OperationType: "analysis",
			Priority:      models.ActionPriorityMedium,
		},
		{
			ID:            "discount-impact",
			Title:         "Project discount impact",
			Description:   "Estimate margin impact of a promotional discount scenario.",
			Domain:        "pricing",
			OperationType: "simulation",
			Priority:      models.ActionPriorityLow,
		},
	},
	"clients": {
		{
			ID:            "inactive-clients",
			Title:         "Flag inactive clients",
			Description:   "Find clients without purchases in the last 60 days and draft outreach.",
			Domain:        "clients",
			OperationType: "analysis",
			Priority:      models.ActionPriorityHigh,
		},
		{
			ID:            "top-clients-report",
			Title:         "Report top clients",
			Description:   "Rank clients by revenue contribution this quarter.",
			Domain:        "clients",
			OperationType: "report",
			Priority:      models.ActionPriorityMedium,
		},
		{
			ID:            "payment-behavior",
			Title:         "Review payment behavior",
			Description:   "Summarize late payments and credit exposure per client.",
			Domain:        "clients",
			OperationType: "analysis",
			Priority:      models.ActionPriorityMedium,
		},
	},
	"orders": {
		{
			ID:            "pending-orders-review",
			Title:         "Review pending orders",
			Description:   "Summarize open orders and flag the ones waiting longest.",
			Domain:        "orders",
			OperationType: "analysis",
			Priority:      models.ActionPriorityHigh,
		},
		{
			ID:            "fulfillment-forecast",
			Title:         "Forecast fulfillment load",
			Description:   "Project order volume for the coming weeks from the current pipeline.",
			Domain:        "orders",
			OperationType: "simulation",
			Priority:      models.ActionPriorityMedium,
		},
	},
	"suppliers": {
		{
			ID:            "supplier-terms-review",
			Title:         "Review supplier terms",
			Description:   "Compare lead times and payment terms across suppliers.",
			Domain:        "suppliers",
			OperationType: "analysis",
			Priority:      models.ActionPriorityMedium,
		},
		{
			ID:            "consolidation-opportunities",
			Title:         "Find consolidation opportunities",
			Description:   "Identify purchases that could be consolidated for better conditions.",
			Domain:        "suppliers",
			OperationType: "optimization",
			Priority:      models.ActionPriorityLow,
		},
	},
}

// ActionsFor returns the ordered action descriptors of a domain. Unknown
// domains return an empty slice; there is no failure mode.
func ActionsFor(domain string) []models.ActionDescriptor {
	actions, ok := actionsByDomain[domain]
	if !ok {
		return []models.ActionDescriptor{}
	}

	out := make([]models.ActionDescriptor, len(actions))
	copy(out, actions)

	return out
}

// Find returns the descriptor with the given id within a domain.
func Find(domain, id string) (models.ActionDescriptor, bool) {
	for _, action := range actionsByDomain[domain] {
		if action.ID == id {
			return action, true
		}
	}

	return models.ActionDescriptor{}, false
}

// Domains returns the domains that have catalog entries.
func Domains() []string {
	return []string{"inventory", "pricing", "clients", "orders", "suppliers"}
}
