package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pix-checkout-api/models"
)

func newMockStore(t *testing.T) (*ChargeStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewChargeStore(&Connection{db: db}), mock
}

func TestSaveCharge(t *testing.T) {
	store, mock := newMockStore(t)

	charge := &models.PixCharge{
		ID:        "tx_1",
		TxID:      "CASHTIME1700000000ABCDEF12",
		Gateway:   "cashtime",
		PixCode:   "000201",
		Status:    "pending",
		Amount:    4584,
		ExpiresAt: "2025-03-05T13:00:00Z",
	}

	mock.ExpectExec("INSERT INTO pix_charges").
		WithArgs("cashtime", "tx_1", sqlmock.AnyArg(), "Maria Souza", "12345678900", int64(4584), "pending", "000201", "2025-03-05T13:00:00Z").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.SaveCharge(context.Background(), charge, "Maria Souza", "12345678900"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveChargeWithoutGatewayID(t *testing.T) {
	store, mock := newMockStore(t)

	charge := &models.PixCharge{Gateway: "for4payments", PixCode: "000201", Status: "pending", Amount: 4584}

	for i := 0; i < 2; i++ {
		mock.ExpectExec("INSERT INTO pix_charges").
			WithArgs("for4payments", nil, nil, "Maria Souza", "12345678900", int64(4584), "pending", "000201", "").
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
		require.NoError(t, store.SaveCharge(context.Background(), charge, "Maria Souza", "12345678900"))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCharge(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"gateway", "gateway_id", "txid", "amount", "status", "pix_code", "expires_at", "created_at"}).
		AddRow("for4payments", "f4p_1", nil, int64(4584), "paid", "000201", nil, created)
	mock.ExpectQuery("SELECT (.+) FROM pix_charges").
		WithArgs("for4payments", "f4p_1").
		WillReturnRows(rows)

	charge, err := store.GetCharge(context.Background(), "for4payments", "f4p_1")
	require.NoError(t, err)
	assert.Equal(t, "f4p_1", charge.ID)
	assert.Equal(t, "paid", charge.Status)
	assert.Empty(t, charge.TxID)
	assert.Equal(t, "2025-03-05T12:00:00Z", charge.CreatedAt)

	mock.ExpectQuery("SELECT (.+) FROM pix_charges").
		WithArgs("for4payments", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err = store.GetCharge(context.Background(), "for4payments", "missing")
	assert.ErrorIs(t, err, ErrChargeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE pix_charges").
		WithArgs("paid", "cashtime", "tx_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.UpdateStatus(context.Background(), "cashtime", "tx_1", "paid"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseConfig(t *testing.T) {
	cfg := DatabaseConfig{Host: "db:3306", User: "pix", Password: "pw", DBName: "checkout"}
	assert.True(t, cfg.Enabled())
	assert.Equal(t, "pix:pw@tcp(db:3306)/checkout?parseTime=true&charset=utf8mb4", cfg.DSN())
	assert.False(t, DatabaseConfig{}.Enabled())
}
