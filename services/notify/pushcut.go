package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const Timeout = 10 * time.Second

// Notification is the body accepted by the Pushcut webhook.
type Notification struct {
	Title           string `json:"title"`
	Text            string `json:"text"`
	IsTimeSensitive bool   `json:"isTimeSensitive"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Pushcut posts notifications to a Pushcut webhook URL.
type Pushcut struct {
	r   *resty.Client
	url string
}

func NewPushcut(webhookURL string) *Pushcut {
	return &Pushcut{
		r:   resty.New().SetTimeout(Timeout),
		url: webhookURL,
	}
}

func (p *Pushcut) Notify(ctx context.Context, n Notification) error {
	resp, err := p.r.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(n).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("pushcut request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("pushcut returned status %d", resp.StatusCode())
	}
	return nil
}

// NewSale formats the message sent after a charge is created.
func NewSale(customer string, amount decimal.Decimal, chargeID string) Notification {
	if customer == "" {
		customer = "Cliente"
	}
	if chargeID == "" {
		chargeID = "N/A"
	}
	return Notification{
		Title:           "🎉 Nova Venda PIX",
		Text:            fmt.Sprintf("Cliente: %s\nValor: R$ %s\nID: %s", customer, amount.StringFixed(2), chargeID),
		IsTimeSensitive: true,
	}
}

// Detached sends n in its own goroutine with its own deadline. Errors are
// logged and dropped; the caller never observes the outcome.
func Detached(notifier Notifier, n Notification) {
	if notifier == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Warn("notification panicked", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), Timeout)
		defer cancel()

		if err := notifier.Notify(ctx, n); err != nil {
			zap.L().Warn("failed to send notification", zap.Error(err))
			return
		}
		zap.L().Info("notification sent", zap.String("title", n.Title))
	}()
}
