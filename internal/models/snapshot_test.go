package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotUnmarshal_SpreadsSettings(t *testing.T) {
	payload := `{
		"companyProfile": {"name": "Rapid Foam"},
		"yields": {"openCell": 16000},
		"warehouse": {"openCellSets": 12, "closedCellSets": 3.5, "items": [{"id": "itm-1", "name": "Tape"}]},
		"lifetimeUsage": {"openCell": 100, "closedCell": 40},
		"customers": [{"id": "cus-1", "name": "Smith"}],
		"savedEstimates": [],
		"materialLogs": [{"id": "log-1"}]
	}`

	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	assert.Contains(t, s.Settings, "companyProfile")
	assert.Contains(t, s.Settings, "yields")
	assert.NotContains(t, s.Settings, "warehouse")
	assert.NotContains(t, s.Settings, "customers")

	require.NotNil(t, s.Warehouse)
	assert.Equal(t, 12.0, s.Warehouse.OpenCellSets.Float64())
	assert.Equal(t, 3.5, s.Warehouse.ClosedCellSets.Float64())
	assert.Len(t, s.Warehouse.Items, 1)

	require.NotNil(t, s.LifetimeUsage)
	assert.Equal(t, 100.0, s.LifetimeUsage.OpenCell.Float64())

	assert.Len(t, s.Customers, 1)
	assert.Len(t, s.MaterialLogs, 1)

	// savedEstimates present and empty is a wipe, not an absence
	assert.NotNil(t, s.SavedEstimates)
	assert.Len(t, s.SavedEstimates, 0)

	// equipment was never sent
	assert.Nil(t, s.Equipment)
}

func TestSnapshotUnmarshal_AbsentVersusEmpty(t *testing.T) {
	var absent Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	assert.Nil(t, absent.Customers)

	var empty Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"customers": []}`), &empty))
	assert.NotNil(t, empty.Customers)
	assert.Len(t, empty.Customers, 0)
}

func TestSnapshotMarshal_OmitsAbsentFamilies(t *testing.T) {
	s := Snapshot{
		Settings:  map[string]json.RawMessage{"pricingMode": json.RawMessage(`"sqft"`)},
		Customers: []json.RawMessage{},
	}

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))

	assert.Contains(t, m, "pricingMode")
	assert.Contains(t, m, "customers")
	assert.JSONEq(t, `[]`, string(m["customers"]))
	assert.NotContains(t, m, "equipment")
	assert.NotContains(t, m, "savedEstimates")
	assert.NotContains(t, m, "warehouse")
}

func TestSnapshotRoundTrip_PreservesOpaqueSettings(t *testing.T) {
	payload := `{
		"companyProfile": {"name": "Rapid Foam", "logoUrl": "x.png", "futureField": [1, 2, 3]},
		"sqFtRates": {"wall": 1.85},
		"warehouse": {"openCellSets": 5, "closedCellSets": 0, "items": []}
	}`

	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.JSONEq(t, `{"name": "Rapid Foam", "logoUrl": "x.png", "futureField": [1, 2, 3]}`, string(out["companyProfile"]))
	assert.JSONEq(t, `{"wall": 1.85}`, string(out["sqFtRates"]))
}

func TestEstimateFromDoc_Defaults(t *testing.T) {
	est, err := EstimateFromDoc("acme", json.RawMessage(`{"id": "est-1", "totalValue": "4500.50", "customer": {"id": "cus-9", "name": "Jones"}}`))
	require.NoError(t, err)
	assert.Equal(t, "est-1", est.ID)
	assert.Equal(t, "acme", est.TenantID)
	assert.Equal(t, 4500.50, est.TotalValue)
	assert.Equal(t, "cus-9", est.CustomerID)
	assert.Equal(t, StatusDraft, est.Status)
}

func TestEstimateFromDoc_RejectsNonObject(t *testing.T) {
	_, err := EstimateFromDoc("acme", json.RawMessage(`[1, 2]`))
	assert.Error(t, err)
}

func TestParseActuals_Tolerant(t *testing.T) {
	act := ParseActuals(json.RawMessage(`{"openCellSets": "10", "closedCellSets": null, "laborHours": "junk", "inventory": [{"id": "i1", "quantity": 3, "unitCost": "2.5"}]}`))
	assert.Equal(t, 10.0, act.OpenCellSets.Float64())
	assert.Equal(t, 0.0, act.ClosedCellSets.Float64())
	assert.Equal(t, 0.0, act.LaborHours.Float64())
	require.Len(t, act.Inventory, 1)
	assert.Equal(t, 3.0, act.Inventory[0].Quantity.Float64())
	assert.Equal(t, 2.5, act.Inventory[0].UnitCost.Float64())

	empty := ParseActuals(nil)
	assert.Equal(t, 0.0, empty.OpenCellSets.Float64())
	assert.Nil(t, empty.Inventory)
}
