package payment

import (
	"context"

	"pix-checkout-api/models"
)

// ChargeStore persists charges the gateway accepted. Optional.
type ChargeStore interface {
	SaveCharge(ctx context.Context, charge *models.PixCharge, customerName, cpf string) error
	UpdateStatus(ctx context.Context, gateway, id, status string) error
}
