// Package gateway holds what both PIX gateway clients share: the client
// contract, the error taxonomy and the field normalizers.
package gateway

import (
	"context"
	"net/http"
	"time"

	"pix-checkout-api/models"
)

const (
	RequestTimeout    = 30 * time.Second
	DefaultStatus     = "pending"
	DefaultExpiration = 60
)

// Client creates PIX charges. Runtime failures are always *Error.
type Client interface {
	Name() string
	CreatePixCharge(ctx context.Context, req models.PaymentRequest) (*models.PixCharge, error)
}

// StatusChecker is implemented by gateways that expose a charge lookup.
type StatusChecker interface {
	CheckPaymentStatus(ctx context.Context, id string) (*models.PaymentStatus, error)
}

// NewHTTPClient returns the pooled client used for gateway calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// EnsurePaymentData enforces that a charge carries a code or a QR image.
func EnsurePaymentData(charge *models.PixCharge) error {
	if charge.PixCode == "" && charge.PixQrCode == "" {
		return NewError(KindEmptyPaymentData, "Resposta da API não contém dados de pagamento PIX válidos")
	}
	return nil
}
