// Package cashtime is the client for the Cashtime PIX gateway.
package cashtime

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pix-checkout-api/models"
	"pix-checkout-api/services/notify"
	"pix-checkout-api/services/payment/gateway"
)

const (
	Name               = "cashtime"
	DefaultBaseURL     = "https://api.cashtime.com.br/v1"
	DefaultPostbackURL = "https://webhook.site/unique-uuid-4-testing"

	// Sent in place of a malformed CPF. Cashtime accepts it; For4Payments would not.
	fallbackCPF = "12345678901"
	itemTitle   = "Produto Digital PIX"
	customerIP  = "127.0.0.1"
)

type Config struct {
	SecretKey   string
	PublicKey   string
	BaseURL     string
	PostbackURL string
	Notifier    notify.Notifier
	HTTPClient  *http.Client
}

type Client struct {
	secretKey   string
	publicKey   string
	baseURL     string
	postbackURL string
	notifier    notify.Notifier
	client      *http.Client
	now         func() time.Time
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("cashtime: %w", gateway.ErrMissingSecretKey)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PostbackURL == "" {
		cfg.PostbackURL = DefaultPostbackURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = gateway.NewHTTPClient(gateway.RequestTimeout)
	}

	return &Client{
		secretKey:   cfg.SecretKey,
		publicKey:   cfg.PublicKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		postbackURL: cfg.PostbackURL,
		notifier:    cfg.Notifier,
		client:      cfg.HTTPClient,
		now:         time.Now,
	}, nil
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("x-authorization-key", c.secretKey)
	if c.publicKey != "" {
		h.Set("x-store-key", c.publicKey)
	}
	return h
}

// CreatePixCharge validates the request, posts one transaction and, once the
// charge exists, fires the sale notification without waiting for it.
func (c *Client) CreatePixCharge(ctx context.Context, req models.PaymentRequest) (*models.PixCharge, error) {
	zap.L().Info("creating PIX charge", zap.String("gateway", Name))

	payload, err := c.buildPayload(req)
	if err != nil {
		return nil, err
	}

	now := c.now()
	expiration := req.ExpirationMinutes
	if expiration <= 0 {
		expiration = gateway.DefaultExpiration
	}
	txid := generateTxID(now)

	result, err := c.postTransaction(ctx, payload)
	if err != nil {
		return nil, err
	}

	charge := &models.PixCharge{
		ID:        result.ID.String(),
		TxID:      txid,
		Gateway:   Name,
		PixCode:   result.Pix.Payload.String(),
		PixQrCode: result.Pix.EncodedImage.String(),
		Status:    gateway.FirstNonEmpty(result.Status.String(), gateway.DefaultStatus),
		Amount:    payload.Amount,
		ExpiresAt: now.Add(time.Duration(expiration) * time.Minute).Format(time.RFC3339),
		CreatedAt: now.Format(time.RFC3339),
	}
	if err := gateway.EnsurePaymentData(charge); err != nil {
		zap.L().Error("cashtime response without PIX data", zap.String("id", charge.ID))
		return nil, err
	}

	notify.Detached(c.notifier, notify.NewSale(req.Name, req.Amount, charge.ID))

	zap.L().Info("PIX charge created",
		zap.String("gateway", Name),
		zap.String("id", charge.ID),
		zap.String("txid", txid),
	)
	return charge, nil
}

func (c *Client) buildPayload(req models.PaymentRequest) (transactionRequest, error) {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return transactionRequest{}, gateway.MissingField("name")
	case strings.TrimSpace(req.Description) == "":
		return transactionRequest{}, gateway.MissingField("description")
	case req.Amount.IsZero():
		return transactionRequest{}, gateway.MissingField("amount")
	}

	amount, err := gateway.MinorUnits(req.Amount)
	if err != nil {
		return transactionRequest{}, err
	}

	cpf, err := gateway.NormalizeCpf(req.CPF)
	if err != nil {
		zap.L().Warn("malformed CPF, using fallback document", zap.String("cpf", gateway.MaskCpf(req.CPF)))
		cpf = fallbackCPF
	}

	return transactionRequest{
		PaymentMethod: "pix",
		Customer: customerType{
			Name:  req.Name,
			Email: gateway.NormalizeEmail(req.Email, req.Name),
			Phone: gateway.NormalizePhone(req.Phone),
			Document: documentType{
				Number: cpf,
				Type:   "cpf",
			},
		},
		Items: []itemType{{
			Title:       itemTitle,
			Description: req.Description,
			UnitPrice:   amount,
			Quantity:    1,
			Tangible:    false,
		}},
		IsInfoProducts: true,
		Installments:   1,
		InstallmentFee: 0,
		PostbackURL:    c.postbackURL,
		IP:             customerIP,
		Amount:         amount,
	}, nil
}

func (c *Client) postTransaction(ctx context.Context, payload transactionRequest) (*transactionResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header = c.headers()

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		zap.L().Error("cashtime connection error", zap.Error(err))
		return nil, gateway.ConnectionError(err)
	}
	defer resp.Body.Close()

	respBody, err := gateway.ReadBody(resp)
	if err != nil {
		return nil, gateway.ConnectionError(err)
	}

	zap.L().Info("cashtime response received",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Error("cashtime rejected transaction",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return nil, classifyStatus(resp.StatusCode, string(respBody))
	}

	var result transactionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &gateway.Error{
			Kind:       gateway.KindEmptyPaymentData,
			Message:    "Resposta da API Cashtime não pôde ser lida",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	return &result, nil
}

func classifyStatus(status int, body string) *gateway.Error {
	gwErr := &gateway.Error{StatusCode: status}
	switch status {
	case http.StatusForbidden:
		gwErr.Kind = gateway.KindAuthError
		gwErr.Message = "Erro de autenticação. Verifique sua secret key da Cashtime"
	case http.StatusBadRequest:
		gwErr.Kind = gateway.KindBadRequest
		gwErr.Message = "Dados inválidos enviados para a API: " + body
	case http.StatusInternalServerError:
		gwErr.Kind = gateway.KindServerError
		gwErr.Message = "Erro interno da API Cashtime. Tente novamente em alguns minutos: " + body
	default:
		gwErr.Kind = gateway.KindUnknownHTTPError
		gwErr.Message = fmt.Sprintf("Erro na API Cashtime (%d): %s", status, body)
	}
	return gwErr
}

// CheckPaymentStatus looks up a charge by the gateway's transaction id.
func (c *Client) CheckPaymentStatus(ctx context.Context, id string) (*models.PaymentStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transactions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating status request: %w", err)
	}
	httpReq.Header = c.headers()

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, gateway.ConnectionError(err)
	}
	defer resp.Body.Close()

	respBody, err := gateway.ReadBody(resp)
	if err != nil {
		return nil, gateway.ConnectionError(err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, &gateway.Error{Kind: gateway.KindNotFound, Message: "Transação não encontrada", StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &gateway.Error{
			Kind:       gateway.KindUnknownHTTPError,
			Message:    fmt.Sprintf("Erro na API: %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	var result statusResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &gateway.Error{
			Kind:       gateway.KindUnknownHTTPError,
			Message:    "Resposta inválida da API",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	status := &models.PaymentStatus{
		ID:            id,
		Status:        gateway.FirstNonEmpty(result.Orders.Status.String(), "unknown"),
		PaymentMethod: result.Orders.PaymentMethod.String(),
		CreatedAt:     result.Orders.CreatedAt.String(),
		UpdatedAt:     result.Orders.UpdatedAt.String(),
	}
	// total comes back in centavos
	if total, err := decimal.NewFromString(result.Orders.Total.String()); err == nil {
		status.Amount = total.Shift(-2)
	}
	return status, nil
}

// generateTxID returns CASHTIME<unix seconds><8 hex digits>. It only serves
// local bookkeeping; the gateway assigns its own id.
func generateTxID(now time.Time) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("CASHTIME%d%08X", now.Unix(), now.UnixNano()&0xffffffff)
	}
	return fmt.Sprintf("CASHTIME%d%s", now.Unix(), strings.ToUpper(hex.EncodeToString(buf)))
}
