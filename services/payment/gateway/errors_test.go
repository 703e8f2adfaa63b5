package gateway

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pix-checkout-api/models"
)

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindGatewayRejected, StatusCode: 422, Message: "cpf inválido"}
	assert.Equal(t, "gateway_rejected (HTTP 422): cpf inválido", err.Error())

	missing := MissingFields("name", "email")
	assert.Equal(t, KindMissingFields, missing.Kind)
	assert.Equal(t, []string{"name", "email"}, missing.Fields)
	assert.Contains(t, missing.Error(), "[name, email]")
}

func TestKindOfUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("charge: %w", ConnectionError(cause))

	assert.Equal(t, KindConnectionError, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, (&Error{Kind: KindAuthError}).IsAuthFailure())
	assert.True(t, (&Error{Kind: KindForbidden}).IsAuthFailure())
	assert.False(t, (&Error{Kind: KindBadRequest}).IsAuthFailure())
}

func TestEnsurePaymentData(t *testing.T) {
	err := EnsurePaymentData(&models.PixCharge{})
	require.Error(t, err)
	assert.Equal(t, KindEmptyPaymentData, KindOf(err))

	assert.NoError(t, EnsurePaymentData(&models.PixCharge{PixCode: "000201"}))
	assert.NoError(t, EnsurePaymentData(&models.PixCharge{PixQrCode: "iVBOR"}))
}
