package workflow

import (
	"slices"
	"time"

	"github.com/adviso/adviso/pkg/models"
)

// ShouldFire is the pure firing decision. The engine owns no clock and no
// event bus; an external poller feeds it the current time and a fresh
// business snapshot and calls RunScheduled when this returns true.
func ShouldFire(workflow *models.Workflow, snapshot models.BusinessSnapshot, now time.Time) bool {
	switch workflow.Trigger.Kind {
	case models.TriggerKindSchedule:
		return workflow.IsDue(now)
	case models.TriggerKindEvent:
		name, _ := workflow.Trigger.Config["event"].(string)
		if name == "" {
			return false
		}

		return slices.Contains(snapshot.Events, name)
	case models.TriggerKindThreshold:
		return thresholdBreached(workflow.Trigger, snapshot)
	default:
		// Unknown trigger kinds never fire; they are data we do not
		// understand yet, not an error.
		return false
	}
}

func thresholdBreached(trigger models.Trigger, snapshot models.BusinessSnapshot) bool {
	field, _ := trigger.Config["field"].(string)
	operator, _ := trigger.Config["operator"].(string)
	threshold, ok := toFloat(trigger.Config["value"])

	if !ok || field == "" {
		return false
	}

	current, exists := snapshot.Metrics[field]
	if !exists {
		return false
	}

	switch operator {
	case "gt":
		return current > threshold
	case "gte":
		return current >= threshold
	case "lt":
		return current < threshold
	case "lte":
		return current <= threshold
	case "eq":
		return current == threshold
	default:
		return false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
