package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pix-checkout-api/models"
)

var ErrChargeNotFound = errors.New("charge not found")

const createChargesTable = `
    CREATE TABLE IF NOT EXISTS pix_charges (
        id            BIGINT AUTO_INCREMENT PRIMARY KEY,
        gateway       VARCHAR(32)  NOT NULL,
        gateway_id    VARCHAR(128) NULL,
        txid          VARCHAR(64)  NULL,
        customer_name VARCHAR(255) NOT NULL,
        customer_cpf  VARCHAR(11)  NOT NULL,
        amount        BIGINT       NOT NULL,
        status        VARCHAR(32)  NOT NULL,
        pix_code      TEXT         NOT NULL,
        expires_at    VARCHAR(64)  NULL,
        created_at    DATETIME     NOT NULL,
        UNIQUE KEY uq_gateway_id (gateway, gateway_id)
    ) DEFAULT CHARSET=utf8mb4
`

// ChargeStore keeps a record of every charge the gateways accepted.
type ChargeStore struct {
	conn *Connection
}

func NewChargeStore(conn *Connection) *ChargeStore {
	return &ChargeStore{conn: conn}
}

func (s *ChargeStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.conn.db.ExecContext(ctx, createChargesTable); err != nil {
		return fmt.Errorf("failed to create pix_charges table: %w", err)
	}
	return nil
}

// SaveCharge records a charge. cpf must already be digits only.
func (s *ChargeStore) SaveCharge(ctx context.Context, charge *models.PixCharge, customerName, cpf string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Empty ids are stored as NULL so they never collide on uq_gateway_id.
	gatewayID := nullString(charge.ID)
	txid := nullString(charge.TxID)

	if len(cpf) > 11 {
		cpf = cpf[:11]
	}

	_, err := s.conn.db.ExecContext(ctx, `
        INSERT INTO pix_charges (
            gateway, gateway_id, txid, customer_name, customer_cpf,
            amount, status, pix_code, expires_at, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
        ON DUPLICATE KEY UPDATE status = VALUES(status)`,
		charge.Gateway,
		gatewayID,
		txid,
		customerName,
		cpf,
		charge.Amount,
		charge.Status,
		charge.PixCode,
		charge.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save charge: %w", err)
	}

	zap.L().Debug("charge saved", zap.String("gateway", charge.Gateway), zap.String("id", charge.ID))
	return nil
}

func (s *ChargeStore) GetCharge(ctx context.Context, gateway, id string) (*models.PixCharge, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		charge    models.PixCharge
		gatewayID sql.NullString
		txid      sql.NullString
		expiresAt sql.NullString
		createdAt time.Time
	)
	err := s.conn.db.QueryRowContext(ctx, `
        SELECT gateway, gateway_id, txid, amount, status, pix_code, expires_at, created_at
        FROM pix_charges
        WHERE gateway = ? AND gateway_id = ?`,
		gateway, id,
	).Scan(
		&charge.Gateway,
		&gatewayID,
		&txid,
		&charge.Amount,
		&charge.Status,
		&charge.PixCode,
		&expiresAt,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChargeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load charge: %w", err)
	}

	charge.ID = gatewayID.String
	charge.TxID = txid.String
	charge.ExpiresAt = expiresAt.String
	charge.CreatedAt = createdAt.Format(time.RFC3339)
	return &charge, nil
}

func (s *ChargeStore) UpdateStatus(ctx context.Context, gateway, id, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.conn.db.ExecContext(ctx, `
        UPDATE pix_charges
        SET status = ?
        WHERE gateway = ? AND gateway_id = ?`,
		status, gateway, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update charge status: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
