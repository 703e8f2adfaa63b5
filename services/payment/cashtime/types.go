package cashtime

import "pix-checkout-api/services/payment/gateway"

type transactionRequest struct {
	PaymentMethod  string       `json:"paymentMethod"`
	Customer       customerType `json:"customer"`
	Items          []itemType   `json:"items"`
	IsInfoProducts bool         `json:"isInfoProducts"`
	Installments   int          `json:"installments"`
	InstallmentFee int          `json:"installmentFee"`
	PostbackURL    string       `json:"postbackUrl"`
	IP             string       `json:"ip"`
	Amount         int64        `json:"amount"`
}

type customerType struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone"`
	Document documentType `json:"document"`
}

type documentType struct {
	Number string `json:"number"`
	Type   string `json:"type"`
}

type itemType struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	Tangible    bool   `json:"tangible"`
}

type transactionResponse struct {
	ID     gateway.FlexString `json:"id"`
	Status gateway.FlexString `json:"status"`
	Pix    pixType            `json:"pix"`
}

type pixType struct {
	Payload      gateway.FlexString `json:"payload"`
	EncodedImage gateway.FlexString `json:"encodedImage"`
}

type statusResponse struct {
	Orders orderType `json:"orders"`
}

type orderType struct {
	Status        gateway.FlexString `json:"status"`
	Total         gateway.FlexString `json:"total"`
	PaymentMethod gateway.FlexString `json:"paymentMethod"`
	CreatedAt     gateway.FlexString `json:"createdAt"`
	UpdatedAt     gateway.FlexString `json:"updatedAt"`
}
