package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foamworks/internal/models"
)

func mustDoc(t *testing.T, raw string) models.Document {
	t.Helper()
	doc, err := models.ParseDocument([]byte(raw))
	require.NoError(t, err)
	return doc
}

func testCosts() models.CostSettings {
	return models.CostSettings{OpenCell: 1800, ClosedCell: 2200, LaborRate: 50}
}

func TestComputeFinancials_FullBreakdown(t *testing.T) {
	doc := mustDoc(t, `{
		"totalValue": 12000,
		"actuals": {
			"openCellSets": 2,
			"closedCellSets": 1,
			"laborHours": 10,
			"inventory": [{"id": "i1", "name": "Poly Sheeting", "quantity": 4, "unitCost": 12.5}]
		},
		"expenses": {"manHours": 8, "laborRate": 45, "tripCharge": 150, "fuelSurcharge": 50}
	}`)

	fin := ComputeFinancials(doc, testCosts())

	assert.Equal(t, 12000.0, fin.Revenue)
	assert.Equal(t, 5800.0, fin.ChemicalCost)
	assert.Equal(t, 450.0, fin.LaborCost)
	assert.Equal(t, 50.0, fin.InventoryCost)
	assert.Equal(t, 200.0, fin.MiscCost)
	assert.Equal(t, 6500.0, fin.TotalCOGS)
	assert.Equal(t, 5500.0, fin.NetProfit)
	assert.InDelta(t, 5500.0/12000.0, fin.Margin, 1e-9)
}

func TestComputeFinancials_COGSIsSumOfParts(t *testing.T) {
	doc := mustDoc(t, `{
		"totalValue": 9000,
		"actuals": {"openCellSets": 1, "closedCellSets": 2, "laborHours": 6},
		"expenses": {"tripCharge": 75}
	}`)

	fin := ComputeFinancials(doc, testCosts())
	assert.Equal(t, fin.ChemicalCost+fin.LaborCost+fin.InventoryCost+fin.MiscCost, fin.TotalCOGS)
	assert.Equal(t, fin.Revenue-fin.TotalCOGS, fin.NetProfit)
}

func TestComputeFinancials_LaborFallbacks(t *testing.T) {
	// No actual labor hours: planned manHours apply. No per-estimate rate:
	// the tenant-wide rate applies.
	doc := mustDoc(t, `{
		"totalValue": 5000,
		"actuals": {"openCellSets": 0, "closedCellSets": 0},
		"expenses": {"manHours": 4}
	}`)

	fin := ComputeFinancials(doc, testCosts())
	assert.Equal(t, 4*50.0, fin.LaborCost)
}

func TestComputeFinancials_ZeroRevenueZeroMargin(t *testing.T) {
	doc := mustDoc(t, `{
		"actuals": {"openCellSets": 1},
		"expenses": {}
	}`)

	fin := ComputeFinancials(doc, testCosts())
	assert.Equal(t, 0.0, fin.Revenue)
	assert.Negative(t, fin.NetProfit)
	assert.Equal(t, 0.0, fin.Margin)
}

func TestComputeFinancials_MaterialsFallback(t *testing.T) {
	// Jobs paid before completion have no actuals; the planned materials
	// document stands in.
	doc := mustDoc(t, `{
		"totalValue": 3000,
		"materials": {
			"openCellSets": 1,
			"inventory": [{"id": "i1", "quantity": 2, "unitCost": 10}]
		}
	}`)

	fin := ComputeFinancials(doc, testCosts())
	assert.Equal(t, 1800.0, fin.ChemicalCost)
	assert.Equal(t, 20.0, fin.InventoryCost)
}

func TestComputeFinancials_TolerantNumerics(t *testing.T) {
	doc := mustDoc(t, `{
		"totalValue": "2500",
		"actuals": {"openCellSets": "1", "closedCellSets": null, "laborHours": "junk"},
		"expenses": {"tripCharge": ""}
	}`)

	fin := ComputeFinancials(doc, testCosts())
	assert.Equal(t, 2500.0, fin.Revenue)
	assert.Equal(t, 1800.0, fin.ChemicalCost)
	assert.Equal(t, 0.0, fin.LaborCost)
	assert.Equal(t, 0.0, fin.MiscCost)
}

func TestComputeFinancials_EmptyEstimate(t *testing.T) {
	fin := ComputeFinancials(mustDoc(t, `{}`), models.CostSettings{})
	assert.Equal(t, models.Financials{}, fin)
}
