package for4payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pix-checkout-api/models"
	"pix-checkout-api/services/payment/gateway"
)

const testKey = "f4p_secret_key_123"

func validRequest() models.PaymentRequest {
	return models.PaymentRequest{
		Name:        "Maria Souza",
		Email:       "maria@example.com",
		CPF:         "123.456.789-00",
		Phone:       "+55 (11) 98765-4321",
		Amount:      decimal.RequireFromString("45.84"),
		Description: "Regularização",
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		SecretKey:  testKey,
		BaseURL:    baseURL,
		Referer:    "https://checkout.example.com/pagamento",
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	})
	require.NoError(t, err)
	return c
}

func respondWith(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestNewClientKeyValidation(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, gateway.ErrMissingSecretKey)

	_, err = NewClient(Config{SecretKey: "short"})
	assert.ErrorIs(t, err, gateway.ErrInvalidSecretKey)

	c, err := NewClient(Config{SecretKey: testKey})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}

func TestCreatePixChargeSuccess(t *testing.T) {
	var (
		got     purchaseRequest
		headers http.Header
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction.purchase", r.URL.Path)
		headers = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Write([]byte(`{"id":"f4p_1","status":"PENDING","pixCode":"00020126PIX","pixQrCode":"https://qr.example/1.png","expiresAt":"2025-03-05T13:00:00Z"}`))
	}))
	defer server.Close()

	charge, err := newTestClient(t, server.URL).CreatePixCharge(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "f4p_1", charge.ID)
	assert.Equal(t, Name, charge.Gateway)
	assert.Equal(t, "00020126PIX", charge.PixCode)
	assert.Equal(t, "https://qr.example/1.png", charge.PixQrCode)
	assert.Equal(t, "PENDING", charge.Status)
	assert.Equal(t, "2025-03-05T13:00:00Z", charge.ExpiresAt)
	assert.NotEmpty(t, charge.CreatedAt)

	assert.Equal(t, "12345678900", got.CPF)
	assert.Equal(t, "11987654321", got.Phone)
	assert.Equal(t, "PIX", got.PaymentMethod)
	assert.Equal(t, int64(4584), got.Amount)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Regularização", got.Items[0].Title)
	assert.Equal(t, int64(4584), got.Items[0].UnitPrice)

	assert.Equal(t, testKey, headers.Get("Authorization"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "XMLHttpRequest", headers.Get("X-Requested-With"))
	assert.Equal(t, "https://checkout.example.com/pagamento", headers.Get("Referer"))
	assert.Contains(t, userAgents, headers.Get("User-Agent"))
	assert.Contains(t, acceptLanguages, headers.Get("Accept-Language"))
	assert.NotEmpty(t, headers.Get("X-Cache-Buster"))
}

func TestCreatePixChargeNestedFields(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantID   string
		wantCode string
		wantQR   string
	}{
		{
			name:     "nested copy_paste and qrCode",
			body:     `{"transactionId":"t_9","pix":{"copy_paste":"00020126NESTED","qrCode":"data:image/png;base64,AAA"}}`,
			wantID:   "t_9",
			wantCode: "00020126NESTED",
			wantQR:   "data:image/png;base64,AAA",
		},
		{
			name:     "top level wins over nested",
			body:     `{"id":"1","code":"TOP","pix":{"pixCode":"NESTED","qr_code":"QRN"}}`,
			wantID:   "1",
			wantCode: "TOP",
			wantQR:   "QRN",
		},
		{
			name:     "earlier candidate wins",
			body:     `{"id":"2","pix_code":"LATE","copy_paste":"EARLY","qr_code_image":"IMG","qr_code":"RAW"}`,
			wantID:   "2",
			wantCode: "EARLY",
			wantQR:   "IMG",
		},
		{
			name:     "pix is not an object",
			body:     `{"id":"3","pix":"unexpected","pix_qr_code":"QR"}`,
			wantID:   "3",
			wantCode: "",
			wantQR:   "QR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := respondWith(http.StatusOK, tt.body)
			defer server.Close()

			charge, err := newTestClient(t, server.URL).CreatePixCharge(context.Background(), validRequest())
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, charge.ID)
			assert.Equal(t, tt.wantCode, charge.PixCode)
			assert.Equal(t, tt.wantQR, charge.PixQrCode)
		})
	}
}

func TestCreatePixChargeEmptyPaymentData(t *testing.T) {
	for _, body := range []string{`{}`, `{"id":"x","pix":{}}`, `not json`} {
		server := respondWith(http.StatusOK, body)

		_, err := newTestClient(t, server.URL).CreatePixCharge(context.Background(), validRequest())
		server.Close()

		require.Error(t, err, body)
		assert.Equal(t, gateway.KindEmptyPaymentData, gateway.KindOf(err), body)
	}
}

func TestCreatePixChargeValidation(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()
	client := newTestClient(t, server.URL)

	_, err := client.CreatePixCharge(context.Background(), models.PaymentRequest{})
	var gwErr *gateway.Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, gateway.KindMissingFields, gwErr.Kind)
	assert.Equal(t, []string{"name", "email", "cpf", "amount"}, gwErr.Fields)

	req := validRequest()
	req.CPF = "123.456"
	_, err = client.CreatePixCharge(context.Background(), req)
	assert.Equal(t, gateway.KindInvalidCPF, gateway.KindOf(err))

	req = validRequest()
	req.Amount = decimal.NewFromInt(-5)
	_, err = client.CreatePixCharge(context.Background(), req)
	assert.Equal(t, gateway.KindInvalidAmount, gateway.KindOf(err))

	assert.Equal(t, int32(0), calls.Load())
}

func TestCreatePixChargeDefaultTitle(t *testing.T) {
	var got purchaseRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"1","pixCode":"X"}`))
	}))
	defer server.Close()

	req := validRequest()
	req.Description = ""
	req.Phone = "123"
	_, err := newTestClient(t, server.URL).CreatePixCharge(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, got.Items, 1)
	assert.Equal(t, defaultItemTitle, got.Items[0].Title)
	assert.Len(t, got.Phone, 11)
}

func TestCreatePixChargeHTTPErrors(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		kind    gateway.Kind
		message string
	}{
		{http.StatusUnauthorized, `{}`, gateway.KindAuthError, ""},
		{http.StatusForbidden, `{}`, gateway.KindForbidden, ""},
		{http.StatusUnprocessableEntity, `{"message":"CPF bloqueado"}`, gateway.KindGatewayRejected, "CPF bloqueado"},
		{http.StatusBadRequest, `{"errors":["nome inválido","email inválido"]}`, gateway.KindGatewayRejected, "nome inválido; email inválido"},
		{http.StatusInternalServerError, `oops`, gateway.KindGatewayRejected, "Erro ao processar pagamento (Status: 500)"},
		{http.StatusCreated, `{"id":"1","pixCode":"X"}`, gateway.KindGatewayRejected, "Erro ao processar pagamento (Status: 201)"},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			server := respondWith(tt.status, tt.body)
			defer server.Close()

			_, err := newTestClient(t, server.URL).CreatePixCharge(context.Background(), validRequest())

			var gwErr *gateway.Error
			require.ErrorAs(t, err, &gwErr)
			assert.Equal(t, tt.kind, gwErr.Kind)
			assert.Equal(t, tt.status, gwErr.StatusCode)
			if tt.message != "" {
				assert.Equal(t, tt.message, gwErr.Message)
			}
		})
	}
}

func TestCreatePixChargeAuthFailures(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := respondWith(status, `{}`)
		_, err := newTestClient(t, server.URL).CreatePixCharge(context.Background(), validRequest())
		server.Close()

		var gwErr *gateway.Error
		require.ErrorAs(t, err, &gwErr)
		assert.True(t, gwErr.IsAuthFailure(), status)
	}
}

func TestCreatePixChargeConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url).CreatePixCharge(context.Background(), validRequest())
	assert.Equal(t, gateway.KindConnectionError, gateway.KindOf(err))
}

func TestNextCacheBusterIsMonotonic(t *testing.T) {
	now := time.Now()
	first := nextCacheBuster(now)
	second := nextCacheBuster(now)
	third := nextCacheBuster(now.Add(-time.Hour))

	assert.Greater(t, second, first)
	assert.Greater(t, third, second)
}

func TestBrowserHeadersWithoutReferer(t *testing.T) {
	h := browserHeaders("", time.Now())
	assert.Empty(t, h.Get("Referer"))
	assert.Contains(t, cacheControls, h.Get("Cache-Control"))
	assert.Equal(t, "cors", h.Get("Sec-Fetch-Mode"))
}
