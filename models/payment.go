package models

import "github.com/shopspring/decimal"

// PaymentRequest is what the checkout hands to a gateway client.
type PaymentRequest struct {
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	CPF               string          `json:"cpf"`
	Phone             string          `json:"phone"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description"`
	ExpirationMinutes int             `json:"expirationMinutes,omitempty"`
}

// PixCharge is the normalized result of a successful charge call.
type PixCharge struct {
	ID        string `json:"id"`
	TxID      string `json:"txid,omitempty"`
	Gateway   string `json:"gateway"`
	PixCode   string `json:"pixCode"`
	PixQrCode string `json:"pixQrCode"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	ExpiresAt string `json:"expiresAt,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// PaymentStatus is a snapshot of a charge as reported by the gateway.
type PaymentStatus struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
}
