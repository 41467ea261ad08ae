// Package predict derives advisory alerts and opportunities from current
// business snapshots. The derivation is pure: every refresh recomputes the
// full set from scratch, with no memory of previously issued predictions.
package predict

import (
	"fmt"

	"github.com/adviso/adviso/pkg/models"
)

// Fixed confidence per rule. These are heuristics, not model output.
const (
	lowStockConfidence       = 95
	pendingOrdersConfidence  = 85
	marginConfidence         = 75
	inactiveClientConfidence = 70
)

const inactiveClientFloor = 3

// Derive computes the ordered prediction set for a snapshot. Empty
// snapshots yield an empty slice.
func Derive(snapshot models.BusinessSnapshot) []models.Prediction {
	predictions := []models.Prediction{}

	if len(snapshot.LowStock) > 0 {
		predictions = append(predictions, models.Prediction{
			ID:          "pred-low-stock",
			Kind:        models.PredictionAlert,
			Title:       "Low stock detected",
			Description: fmt.Sprintf("%d items are at or below their minimum stock level.", len(snapshot.LowStock)),
			Confidence:  lowStockConfidence,
			ActionRef:   "restock-report",
		})
	}

	if pending := pendingOrders(snapshot.OpenOrders); pending > 0 {
		predictions = append(predictions, models.Prediction{
			ID:          "pred-pending-orders",
			Kind:        models.PredictionRecommendation,
			Title:       "Orders waiting on fulfillment",
			Description: fmt.Sprintf("%d open orders are pending; reviewing them may unblock revenue.", pending),
			Confidence:  pendingOrdersConfidence,
			ActionRef:   "pending-orders-review",
		})
	}

	if snapshot.Pricing.ProductCount > 0 && snapshot.Pricing.AverageMargin < snapshot.Pricing.TargetMargin {
		gap := snapshot.Pricing.TargetMargin - snapshot.Pricing.AverageMargin

		predictions = append(predictions, models.Prediction{
			ID:          "pred-margin-gap",
			Kind:        models.PredictionOpportunity,
			Title:       "Margin below target",
			Description: fmt.Sprintf("Average margin trails the target by %.1f points; a pricing review could close the gap.", gap),
			Confidence:  marginConfidence,
			ActionRef:   "adjust-prices",
		})
	}

	if snapshot.Clients.Inactive >= inactiveClientFloor {
		predictions = append(predictions, models.Prediction{
			ID:          "pred-inactive-clients",
			Kind:        models.PredictionRecommendation,
			Title:       "Inactive clients piling up",
			Description: fmt.Sprintf("%d clients have gone quiet; an outreach campaign could reactivate them.", snapshot.Clients.Inactive),
			Confidence:  inactiveClientConfidence,
			ActionRef:   "inactive-clients",
		})
	}

	return predictions
}

func pendingOrders(orders []models.Order) int {
	count := 0

	for _, order := range orders {
		if order.Status == "pending" {
			count++
		}
	}

	return count
}
