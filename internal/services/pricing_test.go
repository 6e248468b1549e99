package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casasmart/internal/models"
)

func TestSellingPrice(t *testing.T) {
	assert.Equal(t, 147.0, SellingPrice(100)) // 100 * 1.05 * 1.40
	assert.Equal(t, 735.0, SellingPrice(500))
	assert.Equal(t, 0.0, SellingPrice(0))
	assert.Equal(t, 0.0, SellingPrice(-10))
}

func TestSoftwareFee(t *testing.T) {
	assert.Equal(t, 2500.0, SoftwareFee("villa"))
	assert.Equal(t, 5000.0, SoftwareFee("Mansion"))
	assert.Equal(t, 1500.0, SoftwareFee(" apartment "))
	assert.Equal(t, 3000.0, SoftwareFee("commercial"))
	assert.Equal(t, 3000.0, SoftwareFee(""))
}

func TestApplySoftwareFee(t *testing.T) {
	items := ApplySoftwareFee(models.QuoteItems{{Name: "Switch", Quantity: 2, UnitPrice: 100, Total: 200}}, "villa")
	require.Len(t, items, 2)
	assert.Equal(t, "Software Configuration (VILLA)", items[1].Name)
	assert.Equal(t, models.ItemService, items[1].Type)
	assert.Equal(t, 2500.0, items[1].Total)

	// существующая строка обновляется, а не дублируется
	items = ApplySoftwareFee(items, "mansion")
	require.Len(t, items, 2)
	assert.Equal(t, "Software Configuration (MANSION)", items[1].Name)
	assert.Equal(t, 5000.0, items[1].UnitPrice)
}

func TestPriceItems(t *testing.T) {
	items, err := PriceItems(models.QuoteItems{
		{Name: "Smart Switch", Type: models.ItemHardware, CostPrice: 100, Quantity: 3},
		{Name: "Cabling", CostPrice: 50, UnitPrice: 80, Quantity: 2},
		{Name: "Hub", Type: models.ItemHardware, CostPrice: 100, UnitPrice: 200, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 147.0, items[0].UnitPrice)
	assert.Equal(t, 441.0, items[0].Total)
	assert.Equal(t, models.ItemService, items[1].Type)
	assert.Equal(t, 160.0, items[1].Total)
	// ручная цена не перезаписывается
	assert.Equal(t, 200.0, items[2].UnitPrice)
}

func TestPriceItems_Validation(t *testing.T) {
	cases := map[string]models.QuoteItem{
		"no name":       {Quantity: 1},
		"bad type":      {Name: "X", Type: "gadget", Quantity: 1},
		"zero quantity": {Name: "X"},
		"negative cost": {Name: "X", Quantity: 1, CostPrice: -1},
	}
	for name, it := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := PriceItems(models.QuoteItems{it})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestComputeTotals(t *testing.T) {
	tot := ComputeTotals(models.QuoteItems{
		{Name: "Switch", CostPrice: 100, UnitPrice: 147, Quantity: 2, Total: 294},
		{Name: "Software Configuration (VILLA)", UnitPrice: 2500, Quantity: 1, Total: 2500},
	})
	assert.Equal(t, 2794.0, tot.Subtotal)
	assert.Equal(t, 200.0, tot.TotalCost)
	assert.Equal(t, 2594.0, tot.TotalProfit)
	assert.InDelta(t, 419.1, tot.VATAmount, 1e-9)
	assert.InDelta(t, 3213.1, tot.GrandTotal, 1e-9)
}

func TestBreakdown_VATRoundTrip(t *testing.T) {
	for _, grand := range []float64{11500, 10000, 3213.1, 1, 987654.32} {
		subtotal, vat := Breakdown(grand)
		assert.InDelta(t, 1.15, grand/subtotal, 1e-9)
		assert.InDelta(t, grand, subtotal+vat, 1e-9)
	}
	subtotal, vat := Breakdown(11500)
	assert.InDelta(t, 10000, subtotal, 1e-9)
	assert.InDelta(t, 1500, vat, 1e-9)
}
