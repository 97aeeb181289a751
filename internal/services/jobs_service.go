package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"foamworks/internal/caching"
	"foamworks/internal/common"
	"foamworks/internal/models"
	"foamworks/internal/repositories"
)

// JobsService drives the estimate lifecycle: Draft, In Progress, Completed,
// Paid. Completion is the only operation with stock side effects and is
// guarded so re-delivery of the same request never double-deducts.
type JobsService interface {
	Start(ctx context.Context, tenantID, estimateID string) error
	Complete(ctx context.Context, tenantID, estimateID string, actualsRaw json.RawMessage, username string) error
	MarkPaid(ctx context.Context, tenantID, estimateID string) (json.RawMessage, error)
	Delete(ctx context.Context, tenantID, estimateID string) error
	SetPDFLink(ctx context.Context, tenantID, estimateID, url string) error
}

type jobsService struct {
	pool     repositories.Pool
	cacheSvc caching.CacheService

	// requireCompleted rejects payment on jobs that were never completed.
	// Off by default: many crews invoice directly from In Progress.
	requireCompleted bool
}

func NewJobsService(pool repositories.Pool, cacheSvc caching.CacheService, requireCompleted bool) JobsService {
	return &jobsService{pool: pool, cacheSvc: cacheSvc, requireCompleted: requireCompleted}
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Start moves an estimate to In Progress and stamps the attempt. Restarting
// an already started job is allowed; starting a finished one is not.
func (s *jobsService) Start(ctx context.Context, tenantID, estimateID string) error {
	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		estimates := repositories.NewEstimatesRepo(tx)
		doc, err := estimates.GetDocForUpdate(ctx, tenantID, estimateID)
		if err != nil {
			return err
		}

		switch doc.String("status") {
		case models.StatusCompleted, models.StatusPaid:
			return common.Conflictf("job is already finished")
		}

		actuals := doc.Object("actuals")
		if actuals == nil {
			actuals = models.Document{}
		}
		if err := actuals.Set("lastStartedAt", nowISO()); err != nil {
			return common.Internal("encode actuals", err)
		}
		if err := doc.Set("status", models.StatusInProgress); err != nil {
			return common.Internal("encode estimate", err)
		}
		if err := doc.Set("actuals", actuals); err != nil {
			return common.Internal("encode estimate", err)
		}

		return estimates.UpdateDoc(ctx, tenantID, estimateID, doc)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

// Complete records the reported actuals and applies their stock effects:
// warehouse counts go down, lifetime usage goes up, consumed inventory is
// deducted, and one material log entry is appended per consumed material.
// A job already completed with inventory processed is left untouched.
func (s *jobsService) Complete(ctx context.Context, tenantID, estimateID string, actualsRaw json.RawMessage, username string) error {
	if len(actualsRaw) == 0 {
		actualsRaw = json.RawMessage(`{}`)
	}
	if !json.Valid(actualsRaw) {
		return common.Invalidf("actuals payload is not valid JSON")
	}
	act := models.ParseActuals(actualsRaw)

	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		estimates := repositories.NewEstimatesRepo(tx)
		settings := repositories.NewSettingsRepo(tx)
		inventory := repositories.NewInventoryRepo(tx)
		materialLogs := repositories.NewMaterialLogsRepo(tx)

		doc, err := estimates.GetDocForUpdate(ctx, tenantID, estimateID)
		if err != nil {
			return err
		}

		if doc.String("status") == models.StatusCompleted && doc.Bool("inventoryProcessed") {
			return nil
		}

		ocUsed := act.OpenCellSets.Float64()
		ccUsed := act.ClosedCellSets.Float64()

		counts, err := loadCounts(ctx, settings, tenantID)
		if err != nil {
			return err
		}
		usage, err := loadUsage(ctx, settings, tenantID)
		if err != nil {
			return err
		}
		counts.OpenCellSets -= models.FlexFloat(ocUsed)
		counts.ClosedCellSets -= models.FlexFloat(ccUsed)
		usage.OpenCell += models.FlexFloat(ocUsed)
		usage.ClosedCell += models.FlexFloat(ccUsed)

		if err := upsertSetting(ctx, settings, tenantID, models.SettingWarehouseCounts, counts); err != nil {
			return err
		}
		if err := upsertSetting(ctx, settings, tenantID, models.SettingLifetimeUsage, usage); err != nil {
			return err
		}

		for _, line := range act.Inventory {
			item, err := inventory.Get(ctx, tenantID, line.ID)
			if err != nil {
				// Unknown or unreadable items are skipped, not fatal:
				// clients may report ad-hoc materials never stocked.
				if kind := common.KindOf(err); kind == common.KindNotFound || kind == common.KindInvalid {
					continue
				}
				return err
			}
			idoc, err := models.ParseDocument(item.Raw)
			if err != nil {
				continue
			}
			item.Quantity -= line.Quantity.Float64()
			if err := idoc.Set("quantity", item.Quantity); err != nil {
				return common.Internal("encode inventory item", err)
			}
			raw, err := idoc.Marshal()
			if err != nil {
				return common.Internal("encode inventory item", err)
			}
			item.Raw = raw
			if err := inventory.Put(ctx, item); err != nil {
				return err
			}
		}

		completionDate := act.CompletionDate
		if completionDate == "" {
			completionDate = nowISO()
		}
		custName := "Unknown"
		if customer := doc.Object("customer"); customer != nil {
			if name := customer.String("name"); name != "" {
				custName = name
			}
		}
		tech := act.CompletedBy
		if tech == "" {
			tech = username
		}

		addLog := func(name string, qty float64, unit string) error {
			if qty <= 0 {
				return nil
			}
			return materialLogs.Insert(ctx, &models.MaterialLogEntry{
				ID:           uuid.NewString(),
				TenantID:     tenantID,
				Date:         completionDate,
				JobID:        estimateID,
				CustomerName: custName,
				MaterialName: name,
				Quantity:     qty,
				Unit:         unit,
				LoggedBy:     tech,
			})
		}
		if err := addLog("Open Cell Foam", ocUsed, "Sets"); err != nil {
			return err
		}
		if err := addLog("Closed Cell Foam", ccUsed, "Sets"); err != nil {
			return err
		}
		for _, line := range act.Inventory {
			if err := addLog(line.Name, line.Quantity.Float64(), line.Unit); err != nil {
				return err
			}
		}

		if err := doc.Set("status", models.StatusCompleted); err != nil {
			return common.Internal("encode estimate", err)
		}
		doc["actuals"] = actualsRaw
		if err := doc.Set("inventoryProcessed", true); err != nil {
			return common.Internal("encode estimate", err)
		}
		if err := doc.Set("lastModified", nowISO()); err != nil {
			return common.Internal("encode estimate", err)
		}

		return estimates.UpdateDoc(ctx, tenantID, estimateID, doc)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

// MarkPaid closes out a job financially: it computes the cost-of-goods-sold
// breakdown from the recorded actuals and the tenant's cost settings, stores
// it on the estimate, and advances the status to Paid. The updated estimate
// document is returned.
func (s *jobsService) MarkPaid(ctx context.Context, tenantID, estimateID string) (json.RawMessage, error) {
	var updated json.RawMessage
	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		estimates := repositories.NewEstimatesRepo(tx)
		settings := repositories.NewSettingsRepo(tx)

		doc, err := estimates.GetDocForUpdate(ctx, tenantID, estimateID)
		if err != nil {
			return err
		}

		if s.requireCompleted && doc.String("status") != models.StatusCompleted && doc.String("status") != models.StatusPaid {
			return common.Conflictf("job must be completed before payment")
		}

		var costs models.CostSettings
		raw, err := settings.Get(ctx, tenantID, models.SettingCosts)
		if err != nil {
			if common.KindOf(err) != common.KindNotFound {
				return err
			}
		} else {
			_ = json.Unmarshal(raw, &costs)
		}

		fin := ComputeFinancials(doc, costs)

		if err := doc.Set("status", models.StatusPaid); err != nil {
			return common.Internal("encode estimate", err)
		}
		if err := doc.Set("financials", fin); err != nil {
			return common.Internal("encode estimate", err)
		}

		if err := estimates.UpdateDoc(ctx, tenantID, estimateID, doc); err != nil {
			return err
		}
		updated, err = doc.Marshal()
		if err != nil {
			return common.Internal("encode estimate", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	return updated, nil
}

func (s *jobsService) Delete(ctx context.Context, tenantID, estimateID string) error {
	if err := repositories.NewEstimatesRepo(s.pool).Delete(ctx, tenantID, estimateID); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

// SetPDFLink records the stored PDF location on the estimate. A missing
// estimate is not an error: the file upload already succeeded and the link
// is best effort.
func (s *jobsService) SetPDFLink(ctx context.Context, tenantID, estimateID, url string) error {
	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		estimates := repositories.NewEstimatesRepo(tx)
		doc, err := estimates.GetDocForUpdate(ctx, tenantID, estimateID)
		if err != nil {
			return err
		}
		if err := doc.Set("pdfLink", url); err != nil {
			return common.Internal("encode estimate", err)
		}
		return estimates.UpdateDoc(ctx, tenantID, estimateID, doc)
	})
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return nil
		}
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

// ComputeFinancials derives the cost-of-goods-sold breakdown for one
// estimate. Actuals win over the planned materials document; rates fall back
// from the estimate's own expenses to the tenant-wide cost settings. Margin
// is zero, not NaN, when there is no revenue.
func ComputeFinancials(doc models.Document, costs models.CostSettings) models.Financials {
	actRaw, ok := doc["actuals"]
	if !ok || string(actRaw) == "null" {
		actRaw = doc["materials"]
	}
	act := models.ParseActuals(actRaw)
	expenses := models.ParseExpenses(doc["expenses"])

	oc := act.OpenCellSets.Float64()
	cc := act.ClosedCellSets.Float64()
	chemCost := oc*costs.OpenCell.Float64() + cc*costs.ClosedCell.Float64()

	labHrs := act.LaborHours.Float64()
	if labHrs == 0 {
		labHrs = expenses.ManHours.Float64()
	}
	rate := expenses.LaborRate.Float64()
	if rate == 0 {
		rate = costs.LaborRate.Float64()
	}
	labCost := labHrs * rate

	lines := act.Inventory
	if lines == nil {
		planned := models.ParseActuals(doc["materials"])
		lines = planned.Inventory
	}
	var invCost float64
	for _, line := range lines {
		invCost += line.Quantity.Float64() * line.UnitCost.Float64()
	}

	misc := expenses.TripCharge.Float64() + expenses.FuelSurcharge.Float64()
	revenue := doc.Float("totalValue")
	totalCOGS := chemCost + labCost + invCost + misc

	fin := models.Financials{
		Revenue:       revenue,
		ChemicalCost:  chemCost,
		LaborCost:     labCost,
		InventoryCost: invCost,
		MiscCost:      misc,
		TotalCOGS:     totalCOGS,
		NetProfit:     revenue - totalCOGS,
	}
	if revenue != 0 {
		fin.Margin = fin.NetProfit / revenue
	}
	return fin
}

// loadCounts reads the tenant's warehouse counts. A missing setting is a
// fresh tenant and reads as zero; any other failure must abort the caller's
// transaction, or counts recomputed from zero would overwrite the stored
// values on commit.
func loadCounts(ctx context.Context, settings repositories.SettingsRepository, tenantID string) (models.WarehouseCounts, error) {
	var counts models.WarehouseCounts
	raw, err := settings.Get(ctx, tenantID, models.SettingWarehouseCounts)
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return counts, nil
		}
		return counts, err
	}
	_ = json.Unmarshal(raw, &counts)
	return counts, nil
}

func loadUsage(ctx context.Context, settings repositories.SettingsRepository, tenantID string) (models.LifetimeUsage, error) {
	var usage models.LifetimeUsage
	raw, err := settings.Get(ctx, tenantID, models.SettingLifetimeUsage)
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return usage, nil
		}
		return usage, err
	}
	_ = json.Unmarshal(raw, &usage)
	return usage, nil
}

func upsertSetting(ctx context.Context, settings repositories.SettingsRepository, tenantID, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return common.Internal("encode setting", err)
	}
	return settings.Upsert(ctx, tenantID, key, raw)
}

func (s *jobsService) invalidate(ctx context.Context, tenantID string) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.DeleteSnapshot(ctx, tenantID); err != nil {
		log.Printf("WARN: snapshot cache invalidation failed for %s: %v", tenantID, err)
	}
}
