package readmodel

import (
	"context"
	"testing"

	"github.com/adviso/adviso/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSourceListKnownDomains(t *testing.T) {
	source := NewDemoSource()
	ctx := context.Background()

	for _, domain := range []string{"inventory", "orders", "clients", "pricing", "suppliers"} {
		records, err := source.List(ctx, domain)
		require.NoError(t, err, domain)
		assert.NotNil(t, records, domain)
	}
}

func TestStaticSourceListUnknownDomain(t *testing.T) {
	source := NewDemoSource()

	_, err := source.List(context.Background(), "payroll")
	assert.True(t, IsUnknownDomain(err))
}

func TestStaticSourceBusinessContext(t *testing.T) {
	source := NewDemoSource()

	contextData, err := source.BusinessContext(context.Background(), "inventory")
	require.NoError(t, err)

	assert.Equal(t, "inventory", contextData["domain"])
	assert.NotEmpty(t, contextData["records"])
}

func TestStaticSourceSetSnapshot(t *testing.T) {
	source := NewStaticSource(models.BusinessSnapshot{})
	ctx := context.Background()

	items, err := source.LowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	source.SetSnapshot(models.BusinessSnapshot{
		LowStock: []models.StockItem{{ID: "stk-9", Quantity: 1, MinStock: 4}},
	})

	items, err = source.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "stk-9", items[0].ID)
}

func TestStaticSourceInvalidateIsNoOp(t *testing.T) {
	source := NewDemoSource()

	require.NoError(t, source.Invalidate(context.Background(), "inventory"))

	snapshot, err := source.Current(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot.LowStock)
}
