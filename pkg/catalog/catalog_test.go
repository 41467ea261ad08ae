package catalog

import (
	"testing"

	"github.com/adviso/adviso/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionsForKnownDomains(t *testing.T) {
	for _, domain := range Domains() {
		t.Run(domain, func(t *testing.T) {
			actions := ActionsFor(domain)
			require.NotEmpty(t, actions)

			seen := make(map[string]bool)

			for _, action := range actions {
				assert.Equal(t, domain, action.Domain)
				assert.NotEmpty(t, action.ID)
				assert.NotEmpty(t, action.Title)
				assert.Contains(t, []models.ActionPriority{
					models.ActionPriorityHigh,
					models.ActionPriorityMedium,
					models.ActionPriorityLow,
				}, action.Priority)

				assert.False(t, seen[action.ID], "duplicate action id %s", action.ID)
				seen[action.ID] = true
			}
		})
	}
}

func TestActionsForUnknownDomain(t *testing.T) {
	actions := ActionsFor("accounting")
	assert.NotNil(t, actions)
	assert.Empty(t, actions)
}

func TestActionsForReturnsCopy(t *testing.T) {
	first := ActionsFor("pricing")
	first[0].Title = "mutated"

	second := ActionsFor("pricing")
	assert.NotEqual(t, "mutated", second[0].Title)
}

func TestFind(t *testing.T) {
	action, ok := Find("inventory", "restock-report")
	require.True(t, ok)
	assert.Equal(t, models.ActionPriorityHigh, action.Priority)

	_, ok = Find("inventory", "adjust-prices")
	assert.False(t, ok)

	_, ok = Find("unknown", "restock-report")
	assert.False(t, ok)
}
