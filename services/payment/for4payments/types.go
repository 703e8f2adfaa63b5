package for4payments

import (
	"bytes"
	"encoding/json"
	"strings"

	"pix-checkout-api/services/payment/gateway"
)

type purchaseRequest struct {
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	CPF           string     `json:"cpf"`
	Phone         string     `json:"phone"`
	PaymentMethod string     `json:"paymentMethod"`
	Amount        int64      `json:"amount"`
	Items         []itemType `json:"items"`
}

type itemType struct {
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	Tangible  bool   `json:"tangible"`
}

// pixFields lists every name the gateway has used for the payment code and
// the QR image, across API versions.
type pixFields struct {
	PixCode      gateway.FlexString `json:"pixCode"`
	CopyPaste    gateway.FlexString `json:"copy_paste"`
	Code         gateway.FlexString `json:"code"`
	PixCodeSnake gateway.FlexString `json:"pix_code"`

	PixQrCode      gateway.FlexString `json:"pixQrCode"`
	QrCode         gateway.FlexString `json:"qrCode"`
	QrCodeImage    gateway.FlexString `json:"qr_code_image"`
	QrCodeSnake    gateway.FlexString `json:"qr_code"`
	PixQrCodeSnake gateway.FlexString `json:"pix_qr_code"`
}

type purchaseResponse struct {
	ID            gateway.FlexString `json:"id"`
	TransactionID gateway.FlexString `json:"transactionId"`
	Status        gateway.FlexString `json:"status"`
	ExpiresAt     gateway.FlexString `json:"expiresAt"`
	Expiration    gateway.FlexString `json:"expiration"`
	pixFields
	Pix pixObject `json:"pix"`
}

// pixObject is the nested "pix" block. Anything other than an object is ignored.
type pixObject struct {
	pixFields
}

func (p *pixObject) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	return json.Unmarshal(data, &p.pixFields)
}

type candidate struct {
	path  string
	name  string
	value func(*pixFields) gateway.FlexString
}

func (c candidate) String() string {
	if c.path == "" {
		return c.name
	}
	return c.path + "." + c.name
}

// Precedence is the slice order. New response variants are added here.
var codeCandidates = []candidate{
	{"", "pixCode", func(f *pixFields) gateway.FlexString { return f.PixCode }},
	{"", "copy_paste", func(f *pixFields) gateway.FlexString { return f.CopyPaste }},
	{"", "code", func(f *pixFields) gateway.FlexString { return f.Code }},
	{"", "pix_code", func(f *pixFields) gateway.FlexString { return f.PixCodeSnake }},
	{"pix", "pixCode", func(f *pixFields) gateway.FlexString { return f.PixCode }},
	{"pix", "copy_paste", func(f *pixFields) gateway.FlexString { return f.CopyPaste }},
	{"pix", "code", func(f *pixFields) gateway.FlexString { return f.Code }},
	{"pix", "pix_code", func(f *pixFields) gateway.FlexString { return f.PixCodeSnake }},
}

var qrCodeCandidates = []candidate{
	{"", "pixQrCode", func(f *pixFields) gateway.FlexString { return f.PixQrCode }},
	{"", "qr_code_image", func(f *pixFields) gateway.FlexString { return f.QrCodeImage }},
	{"", "qr_code", func(f *pixFields) gateway.FlexString { return f.QrCodeSnake }},
	{"", "pix_qr_code", func(f *pixFields) gateway.FlexString { return f.PixQrCodeSnake }},
	{"pix", "pixQrCode", func(f *pixFields) gateway.FlexString { return f.PixQrCode }},
	{"pix", "qrCode", func(f *pixFields) gateway.FlexString { return f.QrCode }},
	{"pix", "qr_code_image", func(f *pixFields) gateway.FlexString { return f.QrCodeImage }},
	{"pix", "qr_code", func(f *pixFields) gateway.FlexString { return f.QrCodeSnake }},
	{"pix", "pix_qr_code", func(f *pixFields) gateway.FlexString { return f.PixQrCodeSnake }},
}

func (r *purchaseResponse) fieldsAt(path string) *pixFields {
	if path == "pix" {
		return &r.Pix.pixFields
	}
	return &r.pixFields
}

// lookup returns the first non-empty candidate and where it was found.
func (r *purchaseResponse) lookup(candidates []candidate) (string, string) {
	for _, c := range candidates {
		if v := c.value(r.fieldsAt(c.path)).String(); v != "" {
			return v, c.String()
		}
	}
	return "", ""
}

type errorResponse struct {
	Message gateway.FlexString `json:"message"`
	Error   gateway.FlexString `json:"error"`
	Errors  json.RawMessage    `json:"errors"`
}

// message extracts the gateway's explanation, if it gave one.
func (e *errorResponse) message() string {
	if msg := gateway.FirstNonEmpty(e.Message.String(), e.Error.String()); msg != "" {
		return msg
	}
	if len(e.Errors) == 0 {
		return ""
	}

	var list []gateway.FlexString
	if err := json.Unmarshal(e.Errors, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if s := item.String(); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	}

	var single gateway.FlexString
	if err := json.Unmarshal(e.Errors, &single); err == nil {
		return single.String()
	}
	return ""
}
