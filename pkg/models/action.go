package models

// ActionPriority is the impact hint attached to a catalog action.
type ActionPriority string

const (
	ActionPriorityHigh   ActionPriority = "high"
	ActionPriorityMedium ActionPriority = "medium"
	ActionPriorityLow    ActionPriority = "low"
)

// ActionDescriptor describes one invocable operation in the action catalog.
// Descriptors are static per domain; identity is ID within a domain.
type ActionDescriptor struct {
	ID            string         `json:"id"             validate:"required"`
	Title         string         `json:"title"          validate:"required"`
	Description   string         `json:"description"`
	Domain        string         `json:"domain"         validate:"required"`
	OperationType string         `json:"operation_type" validate:"required"`
	Priority      ActionPriority `json:"priority"       validate:"required,oneof=high medium low"`
}
