package services

import (
	"context"
	"encoding/json"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"foamworks/internal/models"
	"foamworks/internal/repositories"
)

type SyncServiceTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	service SyncService
	ctx     context.Context
	tenant  string
}

func (suite *SyncServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.service = NewSyncService(
		mock,
		repositories.NewSettingsRepo(mock),
		repositories.NewCustomersRepo(mock),
		repositories.NewInventoryRepo(mock),
		repositories.NewEquipmentRepo(mock),
		repositories.NewEstimatesRepo(mock),
		repositories.NewMaterialLogsRepo(mock),
		nil,
	)
	suite.ctx = context.Background()
	suite.tenant = "Rapid Foam"
}

func (suite *SyncServiceTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}

func (suite *SyncServiceTestSuite) TestDown_AssemblesSnapshot() {
	suite.mock.ExpectQuery(`SELECT config_key, config_value FROM settings`).
		WithArgs(suite.tenant).
		WillReturnRows(pgxmock.NewRows([]string{"config_key", "config_value"}).
			AddRow("companyProfile", []byte(`{"name": "Rapid Foam"}`)).
			AddRow("yields", []byte(`{not valid json`)).
			AddRow(models.SettingWarehouseCounts, []byte(`{"openCellSets": 12, "closedCellSets": 4}`)).
			AddRow(models.SettingLifetimeUsage, []byte(`{"openCell": 88, "closedCell": 30}`)))

	suite.mock.ExpectQuery(`SELECT json_data FROM inventory`).
		WithArgs(suite.tenant).
		WillReturnRows(pgxmock.NewRows([]string{"json_data"}).
			AddRow([]byte(`{"id": "i1", "name": "Tape", "quantity": 6}`)))

	suite.mock.ExpectQuery(`SELECT json_data FROM equipment`).
		WithArgs(suite.tenant).
		WillReturnRows(pgxmock.NewRows([]string{"json_data"}))

	suite.mock.ExpectQuery(`SELECT json_data FROM estimates`).
		WithArgs(suite.tenant).
		WillReturnRows(pgxmock.NewRows([]string{"json_data"}).
			AddRow([]byte(`{"id": "est-1", "status": "Draft"}`)).
			AddRow([]byte(`{corrupt row`)))

	suite.mock.ExpectQuery(`SELECT json_data FROM customers`).
		WithArgs(suite.tenant).
		WillReturnRows(pgxmock.NewRows([]string{"json_data"}).
			AddRow([]byte(`{"id": "c1", "name": "Smith"}`)))

	suite.mock.ExpectQuery(`SELECT json_data FROM logs`).
		WithArgs(suite.tenant).
		WillReturnRows(pgxmock.NewRows([]string{"json_data"}))

	snapshot, err := suite.service.Down(suite.ctx, suite.tenant)
	require.NoError(suite.T(), err)

	// opaque settings spread, engine-owned keys folded into their sections
	assert.Contains(suite.T(), snapshot.Settings, "companyProfile")
	assert.NotContains(suite.T(), snapshot.Settings, "yields")
	assert.NotContains(suite.T(), snapshot.Settings, models.SettingWarehouseCounts)

	require.NotNil(suite.T(), snapshot.Warehouse)
	assert.Equal(suite.T(), 12.0, snapshot.Warehouse.OpenCellSets.Float64())
	assert.Len(suite.T(), snapshot.Warehouse.Items, 1)

	require.NotNil(suite.T(), snapshot.LifetimeUsage)
	assert.Equal(suite.T(), 88.0, snapshot.LifetimeUsage.OpenCell.Float64())

	// corrupt estimate row dropped, valid one survives
	assert.Len(suite.T(), snapshot.SavedEstimates, 1)
	assert.Len(suite.T(), snapshot.Customers, 1)

	// every section is present on download, empty or not
	assert.NotNil(suite.T(), snapshot.Equipment)
	assert.NotNil(suite.T(), snapshot.MaterialLogs)
}

func (suite *SyncServiceTestSuite) TestUp_EmptyCustomersWipesFamily() {
	snapshot := &models.Snapshot{
		Settings: map[string]json.RawMessage{
			"yields":     json.RawMessage(`{"openCell": 16000}`),
			"notAllowed": json.RawMessage(`{"x": 1}`),
		},
		Customers: []json.RawMessage{},
	}

	// only allow-listed settings are written
	suite.mock.ExpectExec(`INSERT INTO settings`).
		WithArgs(suite.tenant, "yields", []byte(`{"openCell": 16000}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	// present-but-empty family deletes everything and inserts nothing
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM customers`).
		WithArgs(suite.tenant).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	suite.mock.ExpectCommit()

	err := suite.service.Up(suite.ctx, suite.tenant, snapshot)
	assert.NoError(suite.T(), err)
}

func (suite *SyncServiceTestSuite) TestUp_WarehouseReplacesInventory() {
	snapshot := &models.Snapshot{
		Warehouse: &models.Warehouse{
			OpenCellSets:   9,
			ClosedCellSets: 2,
			Items: []json.RawMessage{
				json.RawMessage(`{"id": "i1", "name": "Tape", "quantity": 6, "unit": "rolls", "unitCost": 4}`),
			},
		},
	}

	suite.mock.ExpectExec(`INSERT INTO settings`).
		WithArgs(suite.tenant, models.SettingWarehouseCounts, []byte(`{"openCellSets":9,"closedCellSets":2}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM inventory`).
		WithArgs(suite.tenant).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	suite.mock.ExpectExec(`INSERT INTO inventory`).
		WithArgs("i1", suite.tenant, "Tape", 6.0, "rolls", 4.0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.service.Up(suite.ctx, suite.tenant, snapshot)
	assert.NoError(suite.T(), err)
}

func (suite *SyncServiceTestSuite) TestUp_AbsentFamiliesUntouched() {
	// Nothing pushed means nothing written.
	err := suite.service.Up(suite.ctx, suite.tenant, &models.Snapshot{})
	assert.NoError(suite.T(), err)
}

func (suite *SyncServiceTestSuite) TestUp_MalformedRecordRollsBackFamily() {
	snapshot := &models.Snapshot{
		Customers: []json.RawMessage{
			json.RawMessage(`{"id": "c1", "name": "Smith"}`),
			json.RawMessage(`"not an object"`),
		},
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM customers`).
		WithArgs(suite.tenant).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectExec(`INSERT INTO customers`).
		WithArgs("c1", suite.tenant, "Smith", "", "", "", "", "", "", "Active", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectRollback()

	err := suite.service.Up(suite.ctx, suite.tenant, snapshot)
	assert.Error(suite.T(), err)
}

func (suite *SyncServiceTestSuite) TestUp_NilSnapshotRejected() {
	err := suite.service.Up(suite.ctx, suite.tenant, nil)
	assert.Error(suite.T(), err)
}
