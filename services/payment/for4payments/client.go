// Package for4payments is the client for the For4Payments PIX gateway.
package for4payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"pix-checkout-api/models"
	"pix-checkout-api/services/payment/gateway"
)

const (
	Name           = "for4payments"
	DefaultBaseURL = "https://app.for4payments.com.br/api/v1"

	defaultItemTitle = "Regularizar Débitos"
	minSecretKeyLen  = 10
)

type Config struct {
	SecretKey  string
	BaseURL    string
	Referer    string
	HTTPClient *http.Client
}

type Client struct {
	secretKey string
	baseURL   string
	referer   string
	client    *http.Client
	now       func() time.Time
}

func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.SecretKey)
	if key == "" {
		return nil, fmt.Errorf("for4payments: %w", gateway.ErrMissingSecretKey)
	}
	if len(key) < minSecretKeyLen {
		return nil, fmt.Errorf("for4payments: %w", gateway.ErrInvalidSecretKey)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = gateway.NewHTTPClient(gateway.RequestTimeout)
	}

	zap.L().Info("for4payments client configured", zap.String("key", gateway.MaskSecret(key)))

	return &Client{
		secretKey: key,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		referer:   cfg.Referer,
		client:    cfg.HTTPClient,
		now:       time.Now,
	}, nil
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) headers() http.Header {
	h := browserHeaders(c.referer, c.now())
	h.Set("Authorization", c.secretKey)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	return h
}

func (c *Client) CreatePixCharge(ctx context.Context, req models.PaymentRequest) (*models.PixCharge, error) {
	zap.L().Info("creating PIX charge",
		zap.String("gateway", Name),
		zap.String("cpf", gateway.MaskCpf(req.CPF)),
	)

	payload, err := buildPayload(req)
	if err != nil {
		zap.L().Warn("payment request rejected", zap.Error(err))
		return nil, err
	}

	result, err := c.postPurchase(ctx, payload)
	if err != nil {
		return nil, err
	}

	pixCode, codeSource := result.lookup(codeCandidates)
	qrCode, qrSource := result.lookup(qrCodeCandidates)
	zap.L().Info("for4payments payment fields",
		zap.String("code_field", codeSource),
		zap.String("qr_field", qrSource),
	)

	charge := &models.PixCharge{
		ID:        gateway.FirstNonEmpty(result.ID.String(), result.TransactionID.String()),
		Gateway:   Name,
		PixCode:   pixCode,
		PixQrCode: qrCode,
		Status:    gateway.FirstNonEmpty(result.Status.String(), gateway.DefaultStatus),
		Amount:    payload.Amount,
		ExpiresAt: gateway.FirstNonEmpty(result.ExpiresAt.String(), result.Expiration.String()),
		CreatedAt: c.now().Format(time.RFC3339),
	}
	if err := gateway.EnsurePaymentData(charge); err != nil {
		zap.L().Error("for4payments response without PIX data", zap.String("id", charge.ID))
		return nil, err
	}

	zap.L().Info("PIX charge created", zap.String("gateway", Name), zap.String("id", charge.ID))
	return charge, nil
}

// buildPayload is strict about CPF and amount and lenient about phone and email.
func buildPayload(req models.PaymentRequest) (purchaseRequest, error) {
	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(req.CPF) == "" {
		missing = append(missing, "cpf")
	}
	if req.Amount.IsZero() {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return purchaseRequest{}, gateway.MissingFields(missing...)
	}

	amount, err := gateway.MinorUnits(req.Amount)
	if err != nil {
		return purchaseRequest{}, err
	}

	cpf, err := gateway.NormalizeCpf(req.CPF)
	if err != nil {
		return purchaseRequest{}, err
	}

	title := req.Description
	if strings.TrimSpace(title) == "" {
		title = defaultItemTitle
	}

	return purchaseRequest{
		Name:          req.Name,
		Email:         gateway.NormalizeEmail(req.Email, req.Name),
		CPF:           cpf,
		Phone:         gateway.NormalizePhone(req.Phone),
		PaymentMethod: "PIX",
		Amount:        amount,
		Items: []itemType{{
			Title:     title,
			Quantity:  1,
			UnitPrice: amount,
			Tangible:  false,
		}},
	}, nil
}

func (c *Client) postPurchase(ctx context.Context, payload purchaseRequest) (*purchaseResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction.purchase", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header = c.headers()

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		zap.L().Error("for4payments connection error", zap.Error(err))
		return nil, gateway.ConnectionError(err)
	}
	defer resp.Body.Close()

	respBody, err := gateway.ReadBody(resp)
	if err != nil {
		return nil, gateway.ConnectionError(err)
	}

	zap.L().Info("for4payments response received",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, &gateway.Error{
			Kind:       gateway.KindAuthError,
			Message:    "Falha na autenticação com a API For4Payments. Verifique a chave de API.",
			StatusCode: resp.StatusCode,
		}
	case http.StatusForbidden:
		return nil, &gateway.Error{
			Kind:       gateway.KindForbidden,
			Message:    "Acesso negado pela API For4Payments. Verifique as permissões da chave de API.",
			StatusCode: resp.StatusCode,
		}
	default:
		msg := rejectionMessage(resp.StatusCode, respBody)
		zap.L().Error("for4payments rejected purchase", zap.Int("status", resp.StatusCode), zap.String("message", msg))
		return nil, &gateway.Error{
			Kind:       gateway.KindGatewayRejected,
			Message:    msg,
			StatusCode: resp.StatusCode,
		}
	}

	var result purchaseResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &gateway.Error{
			Kind:       gateway.KindEmptyPaymentData,
			Message:    "Resposta da API For4Payments não pôde ser lida",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	return &result, nil
}

func rejectionMessage(status int, body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if msg := errResp.message(); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("Erro ao processar pagamento (Status: %d)", status)
}
