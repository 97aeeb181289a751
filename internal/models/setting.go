package models

// Setting keys the engine interprets itself. Everything else in the settings
// table is an opaque pass-through value owned by the client.
const (
	SettingWarehouseCounts = "warehouse_counts"
	SettingLifetimeUsage   = "lifetime_usage"
	SettingCosts           = "costs"
)

// SyncedSettingKeys is the allow-list of opaque setting keys a pushed
// snapshot may update. Keys absent from a snapshot are left untouched.
var SyncedSettingKeys = []string{
	"companyProfile",
	"yields",
	"costs",
	"expenses",
	"jobNotes",
	"purchaseOrders",
	"sqFtRates",
	"pricingMode",
}

// WarehouseCounts tracks on-hand foam sets per tenant. Decremented on job
// completion, replaced wholesale by sync.
type WarehouseCounts struct {
	OpenCellSets   FlexFloat `json:"openCellSets"`
	ClosedCellSets FlexFloat `json:"closedCellSets"`
}

// LifetimeUsage accumulates foam sets ever consumed by a tenant. Only ever
// incremented, once per completion.
type LifetimeUsage struct {
	OpenCell   FlexFloat `json:"openCell"`
	ClosedCell FlexFloat `json:"closedCell"`
}

// CostSettings holds the tenant's unit costs used for COGS computation.
type CostSettings struct {
	OpenCell   FlexFloat `json:"openCell"`
	ClosedCell FlexFloat `json:"closedCell"`
	LaborRate  FlexFloat `json:"laborRate"`
}
