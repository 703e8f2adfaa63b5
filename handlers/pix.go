package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pix-checkout-api/config"
	"pix-checkout-api/models"
	"pix-checkout-api/services/payment/gateway"
	"pix-checkout-api/utils"
)

const expirationMinutes = 60

type PixService interface {
	Gateway() string
	CreatePixCharge(ctx context.Context, req models.PaymentRequest) (*models.PixCharge, error)
	CheckPaymentStatus(ctx context.Context, id string) (*models.PaymentStatus, error)
}

type PixHandler struct {
	service     PixService
	sessions    *SessionStore
	amount      decimal.Decimal
	description string
}

func NewPixHandler(service PixService, sessions *SessionStore, cfg config.PaymentConfig) *PixHandler {
	return &PixHandler{
		service:     service,
		sessions:    sessions,
		amount:      cfg.ChargeAmount,
		description: cfg.ChargeDescription,
	}
}

// GeneratePix charges the visitor held in the session (or the default customer)
// the fixed configured amount.
func (h *PixHandler) GeneratePix(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	logger := zap.L().With(zap.String("request_id", requestID), zap.String("gateway", h.service.Gateway()))

	customer, fromSession := h.sessions.Customer(r)

	req := models.PaymentRequest{
		Name:              customer.Nome,
		Email:             gateway.RandomEmail(customer.Nome),
		CPF:               customer.CPF,
		Phone:             customer.Phone,
		Amount:            h.amount,
		Description:       h.description,
		ExpirationMinutes: expirationMinutes,
	}

	logger.Info("generating PIX",
		zap.Bool("from_session", fromSession),
		zap.String("cpf", gateway.MaskCpf(gateway.DigitsOnly(req.CPF))),
		zap.String("amount", req.Amount.StringFixed(2)),
	)

	charge, err := h.service.CreatePixCharge(r.Context(), req)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, models.PixResponse{
			Success: false,
			Error:   clientMessage(err),
		})
		return
	}

	logger.Info("PIX generated", zap.String("id", charge.ID))

	utils.WriteJSON(w, http.StatusOK, models.PixResponse{
		Success:   true,
		PixCode:   charge.PixCode,
		PixQrCode: charge.PixQrCode,
	})
}

func (h *PixHandler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "ID da transação é obrigatório")
		return
	}

	status, err := h.service.CheckPaymentStatus(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, gateway.ErrStatusUnsupported):
			code = http.StatusNotImplemented
		case gateway.KindOf(err) == gateway.KindNotFound:
			code = http.StatusNotFound
		}
		utils.WriteJSON(w, code, models.StatusResponse{
			Success: false,
			Error:   clientMessage(err),
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.StatusResponse{
		Success: true,
		Payment: status,
	})
}

// clientMessage keeps internal detail out of responses: gateway errors carry a
// user-facing message, anything else gets a generic one.
func clientMessage(err error) string {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	if errors.Is(err, gateway.ErrStatusUnsupported) {
		return err.Error()
	}
	return "Erro ao processar pagamento"
}
