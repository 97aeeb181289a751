package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"foamworks/internal/caching"
	"foamworks/internal/common"
	"foamworks/internal/models"
	"foamworks/internal/repositories"
)

const snapshotTTL = 5 * time.Minute

// SyncService implements full-state synchronization. Down assembles the
// tenant's complete snapshot; Up replaces the pushed record families
// wholesale. There is no delta or merge logic: the snapshot a client pushes
// is the truth for every family it carries.
type SyncService interface {
	Down(ctx context.Context, tenantID string) (*models.Snapshot, error)
	Up(ctx context.Context, tenantID string, snapshot *models.Snapshot) error
}

type syncService struct {
	pool             repositories.Pool
	settingsRepo     repositories.SettingsRepository
	customersRepo    repositories.CustomersRepository
	inventoryRepo    repositories.InventoryRepository
	equipmentRepo    repositories.EquipmentRepository
	estimatesRepo    repositories.EstimatesRepository
	materialLogsRepo repositories.MaterialLogsRepository
	cacheSvc         caching.CacheService
}

func NewSyncService(
	pool repositories.Pool,
	settingsRepo repositories.SettingsRepository,
	customersRepo repositories.CustomersRepository,
	inventoryRepo repositories.InventoryRepository,
	equipmentRepo repositories.EquipmentRepository,
	estimatesRepo repositories.EstimatesRepository,
	materialLogsRepo repositories.MaterialLogsRepository,
	cacheSvc caching.CacheService,
) SyncService {
	return &syncService{
		pool:             pool,
		settingsRepo:     settingsRepo,
		customersRepo:    customersRepo,
		inventoryRepo:    inventoryRepo,
		equipmentRepo:    equipmentRepo,
		estimatesRepo:    estimatesRepo,
		materialLogsRepo: materialLogsRepo,
		cacheSvc:         cacheSvc,
	}
}

// Down assembles the tenant's full snapshot. Every section is always present
// in the result, empty or not, so clients can treat it as a complete
// replacement for their local state.
func (s *syncService) Down(ctx context.Context, tenantID string) (*models.Snapshot, error) {
	if s.cacheSvc != nil {
		cached, err := s.cacheSvc.GetSnapshot(ctx, tenantID)
		if err != nil {
			log.Printf("WARN: snapshot cache read failed for %s: %v", tenantID, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	settings, err := s.settingsRepo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.Snapshot{
		Settings:       make(map[string]json.RawMessage, len(settings)),
		Warehouse:      &models.Warehouse{Items: []json.RawMessage{}},
		LifetimeUsage:  &models.LifetimeUsage{},
		Equipment:      []json.RawMessage{},
		SavedEstimates: []json.RawMessage{},
		Customers:      []json.RawMessage{},
		MaterialLogs:   []json.RawMessage{},
	}

	for key, raw := range settings {
		switch key {
		case models.SettingWarehouseCounts:
			var counts models.WarehouseCounts
			if err := json.Unmarshal(raw, &counts); err == nil {
				snapshot.Warehouse.OpenCellSets = counts.OpenCellSets
				snapshot.Warehouse.ClosedCellSets = counts.ClosedCellSets
			}
		case models.SettingLifetimeUsage:
			var usage models.LifetimeUsage
			if err := json.Unmarshal(raw, &usage); err == nil {
				snapshot.LifetimeUsage = &usage
			}
		default:
			snapshot.Settings[key] = raw
		}
	}

	items, err := s.inventoryRepo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		snapshot.Warehouse.Items = append(snapshot.Warehouse.Items, item.Raw)
	}

	equipment, err := s.equipmentRepo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, eq := range equipment {
		snapshot.Equipment = append(snapshot.Equipment, eq.Raw)
	}

	estimates, err := s.estimatesRepo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, est := range estimates {
		snapshot.SavedEstimates = append(snapshot.SavedEstimates, est.Raw)
	}

	customers, err := s.customersRepo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, cust := range customers {
		snapshot.Customers = append(snapshot.Customers, cust.Raw)
	}

	logs, err := s.materialLogsRepo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	snapshot.MaterialLogs = append(snapshot.MaterialLogs, logs...)

	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetSnapshot(ctx, tenantID, snapshot, snapshotTTL); err != nil {
			log.Printf("WARN: snapshot cache write failed for %s: %v", tenantID, err)
		}
	}

	return snapshot, nil
}

// Up applies a pushed snapshot. Families absent from the snapshot are left
// untouched; present families replace the stored records entirely, including
// the present-but-empty case which wipes the family. Each family is applied
// in its own transaction, in a fixed order, so a failure never leaves a
// single family half-replaced even though earlier families stay applied.
func (s *syncService) Up(ctx context.Context, tenantID string, snapshot *models.Snapshot) error {
	if snapshot == nil {
		return common.Invalidf("snapshot payload is required")
	}

	for _, key := range models.SyncedSettingKeys {
		raw, ok := snapshot.Settings[key]
		if !ok {
			continue
		}
		if err := s.settingsRepo.Upsert(ctx, tenantID, key, raw); err != nil {
			return err
		}
	}

	if snapshot.Warehouse != nil {
		counts := models.WarehouseCounts{
			OpenCellSets:   snapshot.Warehouse.OpenCellSets,
			ClosedCellSets: snapshot.Warehouse.ClosedCellSets,
		}
		raw, err := json.Marshal(counts)
		if err != nil {
			return common.Internal("encode warehouse counts", err)
		}
		if err := s.settingsRepo.Upsert(ctx, tenantID, models.SettingWarehouseCounts, raw); err != nil {
			return err
		}
		if snapshot.Warehouse.Items != nil {
			err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
				return repositories.NewInventoryRepo(tx).ReplaceAll(ctx, tenantID, snapshot.Warehouse.Items)
			})
			if err != nil {
				return err
			}
		}
	}

	if snapshot.LifetimeUsage != nil {
		raw, err := json.Marshal(snapshot.LifetimeUsage)
		if err != nil {
			return common.Internal("encode lifetime usage", err)
		}
		if err := s.settingsRepo.Upsert(ctx, tenantID, models.SettingLifetimeUsage, raw); err != nil {
			return err
		}
	}

	if snapshot.Equipment != nil {
		err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
			return repositories.NewEquipmentRepo(tx).ReplaceAll(ctx, tenantID, snapshot.Equipment)
		})
		if err != nil {
			return err
		}
	}

	if snapshot.Customers != nil {
		err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
			return repositories.NewCustomersRepo(tx).ReplaceAll(ctx, tenantID, snapshot.Customers)
		})
		if err != nil {
			return err
		}
	}

	if snapshot.SavedEstimates != nil {
		err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
			return repositories.NewEstimatesRepo(tx).ReplaceAll(ctx, tenantID, snapshot.SavedEstimates)
		})
		if err != nil {
			return err
		}
	}

	// Material logs are server-authored on job completion; pushed copies are
	// a client echo of earlier downloads and are ignored.

	s.invalidate(ctx, tenantID)
	return nil
}

func (s *syncService) invalidate(ctx context.Context, tenantID string) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.DeleteSnapshot(ctx, tenantID); err != nil {
		log.Printf("WARN: snapshot cache invalidation failed for %s: %v", tenantID, err)
	}
}
