package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pix-checkout-api/config"
	"pix-checkout-api/metrics"
	"pix-checkout-api/models"
	"pix-checkout-api/services/notify"
	"pix-checkout-api/services/payment/cashtime"
	"pix-checkout-api/services/payment/for4payments"
	"pix-checkout-api/services/payment/gateway"
)

type Service struct {
	client  gateway.Client
	store   ChargeStore
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithStore(store ChargeStore) Option {
	return func(s *Service) { s.store = store }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewGatewayClient builds the client named by cfg.Provider. A missing secret
// key fails here, at startup, never on a request.
func NewGatewayClient(cfg config.PaymentConfig, notifier notify.Notifier) (gateway.Client, error) {
	switch cfg.Provider {
	case "", cashtime.Name:
		client, err := cashtime.NewClient(cashtime.Config{
			SecretKey:   cfg.Cashtime.SecretKey,
			PublicKey:   cfg.Cashtime.PublicKey,
			BaseURL:     cfg.Cashtime.BaseURL,
			PostbackURL: cfg.Cashtime.PostbackURL,
			Notifier:    notifier,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case for4payments.Name:
		client, err := for4payments.NewClient(for4payments.Config{
			SecretKey: cfg.For4Payments.SecretKey,
			BaseURL:   cfg.For4Payments.BaseURL,
			Referer:   cfg.For4Payments.Referer,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: %q", gateway.ErrUnknownProvider, cfg.Provider)
	}
}

func NewPaymentService(cfg config.PaymentConfig, notifier notify.Notifier, opts ...Option) (*Service, error) {
	client, err := NewGatewayClient(cfg, notifier)
	if err != nil {
		return nil, err
	}
	return NewService(client, opts...), nil
}

func NewService(client gateway.Client, opts ...Option) *Service {
	s := &Service{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Gateway() string {
	return s.client.Name()
}

// CreatePixCharge forwards to the configured gateway. Persisting the result is
// best effort; a charge that exists upstream is returned even if saving fails.
func (s *Service) CreatePixCharge(ctx context.Context, req models.PaymentRequest) (*models.PixCharge, error) {
	start := time.Now()
	charge, err := s.client.CreatePixCharge(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		kind := gateway.KindOf(err)
		outcome := string(kind)
		if outcome == "" {
			outcome = "internal_error"
		}
		s.metrics.ObserveCharge(s.client.Name(), outcome, elapsed)
		zap.L().Error("PIX charge failed",
			zap.String("gateway", s.client.Name()),
			zap.String("kind", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.ObserveCharge(s.client.Name(), "success", elapsed)

	if s.store != nil {
		if err := s.store.SaveCharge(ctx, charge, req.Name, gateway.DigitsOnly(req.CPF)); err != nil {
			zap.L().Warn("failed to persist charge", zap.String("id", charge.ID), zap.Error(err))
		}
	}

	return charge, nil
}

// CheckPaymentStatus asks the gateway for the current state of a charge.
func (s *Service) CheckPaymentStatus(ctx context.Context, id string) (*models.PaymentStatus, error) {
	checker, ok := s.client.(gateway.StatusChecker)
	if !ok {
		return nil, gateway.ErrStatusUnsupported
	}

	status, err := checker.CheckPaymentStatus(ctx, id)
	if err != nil {
		var gwErr *gateway.Error
		if !errors.As(err, &gwErr) {
			zap.L().Error("payment status check failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	if s.store != nil {
		if err := s.store.UpdateStatus(ctx, s.client.Name(), id, status.Status); err != nil {
			zap.L().Warn("failed to update charge status", zap.String("id", id), zap.Error(err))
		}
	}
	return status, nil
}
