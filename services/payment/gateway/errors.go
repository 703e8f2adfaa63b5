package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed charge attempt. Every kind is terminal: nothing in
// this package retries.
type Kind string

const (
	KindMissingField     Kind = "missing_field"
	KindMissingFields    Kind = "missing_fields"
	KindInvalidCPF       Kind = "invalid_cpf"
	KindInvalidAmount    Kind = "invalid_amount"
	KindAuthError        Kind = "auth_error"
	KindForbidden        Kind = "forbidden"
	KindBadRequest       Kind = "bad_request"
	KindGatewayRejected  Kind = "gateway_rejected"
	KindServerError      Kind = "server_error"
	KindConnectionError  Kind = "connection_error"
	KindEmptyPaymentData Kind = "empty_payment_data"
	KindUnknownHTTPError Kind = "unknown_http_error"
	KindNotFound         Kind = "not_found"
)

// Configuration errors. These come out of constructors, never out of a charge call.
var (
	ErrMissingSecretKey  = errors.New("gateway secret key is not configured")
	ErrInvalidSecretKey  = errors.New("gateway secret key is invalid (too short)")
	ErrUnknownProvider   = errors.New("unknown payment provider")
	ErrStatusUnsupported = errors.New("payment provider does not support status checks")
)

// Error is the outcome of a charge call that did not produce a PixCharge.
type Error struct {
	Kind       Kind
	Message    string
	Fields     []string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Fields, ", "))
		b.WriteString("]")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsAuthFailure reports whether the gateway rejected our credentials.
func (e *Error) IsAuthFailure() bool {
	return e.Kind == KindAuthError || e.Kind == KindForbidden
}

// NewError builds an Error with a formatted message.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// MissingFields reports every absent field at once.
func MissingFields(fields ...string) *Error {
	return &Error{
		Kind:    KindMissingFields,
		Message: "Campos obrigatórios ausentes: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

// MissingField reports the first absent field.
func MissingField(field string) *Error {
	return &Error{
		Kind:    KindMissingField,
		Message: "Campo obrigatório ausente: " + field,
		Fields:  []string{field},
	}
}

// ConnectionError wraps a transport failure (DNS, connect, timeout, truncated body).
func ConnectionError(err error) *Error {
	return &Error{
		Kind:    KindConnectionError,
		Message: "Erro de conexão com o serviço de pagamento. Tente novamente em alguns instantes.",
		Err:     err,
	}
}

// KindOf returns the Kind carried by err, or "" when err is not a gateway Error.
func KindOf(err error) Kind {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return ""
}
