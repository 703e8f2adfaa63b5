package handlers

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pix-checkout-api/config"
	"pix-checkout-api/metrics"
	"pix-checkout-api/models"
	"pix-checkout-api/services/lookup"
	"pix-checkout-api/services/payment/gateway"
	"pix-checkout-api/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Campaign parameters that trigger the phone lookup on "/".
const (
	smsSource = "smsempresa"
	smsMedium = "sms"
)

type pageData struct {
	Title            string
	Customer         models.Customer
	ShowConfirmation bool
	NotFound         bool
	Amount           string
	Description      string
}

type PageHandler struct {
	sessions    *SessionStore
	leads       lookup.PhoneLookup
	cpf         lookup.CPFLookup
	metrics     *metrics.Metrics
	amount      string
	description string
	now         func() time.Time
}

func NewPageHandler(sessions *SessionStore, leads lookup.PhoneLookup, cpf lookup.CPFLookup, m *metrics.Metrics, payment config.PaymentConfig) *PageHandler {
	return &PageHandler{
		sessions:    sessions,
		leads:       leads,
		cpf:         cpf,
		metrics:     m,
		amount:      utils.FormatBRL(payment.ChargeAmount),
		description: payment.ChargeDescription,
		now:         time.Now,
	}
}

// StaticHandler serves the embedded scripts under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	customer := models.DefaultCustomer()

	q := r.URL.Query()
	phone := q.Get("utm_content")
	if q.Get("utm_source") == smsSource && q.Get("utm_medium") == smsMedium && phone != "" {
		if found := h.findByPhone(r.Context(), phone); found != nil {
			customer = *found
			customer.Phone = phone
			if err := h.sessions.SaveCustomer(w, r, customer); err != nil {
				zap.L().Error("failed to save session", zap.Error(err))
			}
		}
	}

	h.render(w, "index.html", pageData{
		Title:       "Regularização de CPF",
		Customer:    customer,
		Amount:      h.amount,
		Description: h.description,
	})
}

func (h *PageHandler) VerificarCPF(w http.ResponseWriter, r *http.Request) {
	h.render(w, "verificar-cpf.html", pageData{Title: "Verificar CPF"})
}

func (h *PageHandler) BuscarCPF(w http.ResponseWriter, r *http.Request) {
	h.render(w, "buscar-cpf.html", pageData{Title: "Buscar CPF"})
}

// CustomerByCPF serves /{cpf}: it looks the CPF up and shows the confirmation page,
// or falls back to the search page when the CPF is malformed or unknown.
func (h *PageHandler) CustomerByCPF(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["cpf"]
	cpf := gateway.DigitsOnly(raw)

	notFound := pageData{Title: "Buscar CPF", NotFound: true}

	if len(cpf) != 11 {
		zap.L().Info("invalid CPF in path", zap.String("path", raw))
		h.render(w, "buscar-cpf.html", notFound)
		return
	}

	found := h.findByCPF(r.Context(), cpf)
	if found == nil {
		h.render(w, "buscar-cpf.html", notFound)
		return
	}

	customer := *found
	customer.CPF = gateway.FormatCpf(cpf)
	customer.Phone = ""
	customer.TodayDate = utils.FormatBRDate(h.now())

	if err := h.sessions.SaveCustomer(w, r, customer); err != nil {
		zap.L().Error("failed to save session", zap.Error(err))
	}
	zap.L().Info("customer found by CPF", zap.String("cpf", gateway.MaskCpf(cpf)))

	h.render(w, "index.html", pageData{
		Title:            "Confirmação de dados",
		Customer:         customer,
		ShowConfirmation: true,
		Amount:           h.amount,
		Description:      h.description,
	})
}

func (h *PageHandler) findByPhone(ctx context.Context, phone string) *models.Customer {
	if h.leads == nil {
		return nil
	}
	customer, err := h.leads.FindByPhone(ctx, phone)
	h.observeLookup("phone", err)
	if err != nil {
		if !errors.Is(err, lookup.ErrNotFound) {
			zap.L().Error("phone lookup failed", zap.Error(err))
		}
		return nil
	}
	return customer
}

func (h *PageHandler) findByCPF(ctx context.Context, cpf string) *models.Customer {
	if h.cpf == nil {
		return nil
	}
	customer, err := h.cpf.FindByCPF(ctx, cpf)
	h.observeLookup("cpf", err)
	if err != nil {
		if errors.Is(err, lookup.ErrNotFound) {
			zap.L().Info("no data for CPF", zap.String("cpf", gateway.MaskCpf(cpf)))
		} else {
			zap.L().Error("CPF lookup failed", zap.Error(err))
		}
		return nil
	}
	return customer
}

func (h *PageHandler) observeLookup(source string, err error) {
	switch {
	case err == nil:
		h.metrics.ObserveLookup(source, "hit")
	case errors.Is(err, lookup.ErrNotFound):
		h.metrics.ObserveLookup(source, "miss")
	default:
		h.metrics.ObserveLookup(source, "error")
	}
}

func (h *PageHandler) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		zap.L().Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
