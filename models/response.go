package models

// PixResponse is the body returned to the checkout page by /generate-pix.
type PixResponse struct {
	Success   bool   `json:"success"`
	PixCode   string `json:"pixCode,omitempty"`
	PixQrCode string `json:"pixQrCode,omitempty"`
	Error     string `json:"error,omitempty"`
}

// StatusResponse is returned by /payment-status/{id}.
type StatusResponse struct {
	Success bool           `json:"success"`
	Payment *PaymentStatus `json:"payment,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ErrorResponse is the generic failure body for endpoints other than /generate-pix.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
