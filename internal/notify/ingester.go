// Package notify turns order lifecycle events into notification rows.
// Order processing lives outside this service; it publishes events on
// NATS and this ingester materializes them for the notification list.
// Completed orders that carried a coupon also bump the coupon's usage
// counter here.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/bellamaterna/storefront/internal/models"
)

// OrderSubject is the wildcard subscription for order lifecycle events.
const OrderSubject = "orders.>"

// OrderEvent is the wire shape published by the order pipeline.
type OrderEvent struct {
	OrderID    string `json:"order_id"`
	UserID     string `json:"user_id"`
	Status     string `json:"status"` // created | shipped | completed
	CouponCode string `json:"coupon_code,omitempty"`
	Total      string `json:"total,omitempty"`
}

// NotificationRepo is the subset of the notification repository the
// ingester needs.
type NotificationRepo interface {
	Insert(ctx context.Context, n *models.Notification) error
}

// CouponRepo increments usage for coupons consumed by completed orders.
type CouponRepo interface {
	IncrementUsage(ctx context.Context, code string) error
}

type Ingester struct {
	nc            *nats.Conn
	notifications NotificationRepo
	coupons       CouponRepo
	logger        *slog.Logger

	sub *nats.Subscription
}

func NewIngester(nc *nats.Conn, notifications NotificationRepo, coupons CouponRepo, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		nc:            nc,
		notifications: notifications,
		coupons:       coupons,
		logger:        logger,
	}
}

// Start subscribes to order events. Handling is best-effort: failures
// are logged and the message is not redelivered by us.
func (i *Ingester) Start(ctx context.Context) error {
	sub, err := i.nc.Subscribe(OrderSubject, func(msg *nats.Msg) {
		i.handle(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", OrderSubject, err)
	}
	i.sub = sub
	i.logger.Info("order event ingester started", slog.String("subject", OrderSubject))
	return nil
}

func (i *Ingester) Stop() {
	if i.sub != nil {
		_ = i.sub.Unsubscribe()
	}
}

func (i *Ingester) handle(ctx context.Context, msg *nats.Msg) {
	var ev OrderEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		i.logger.Warn("dropping malformed order event",
			slog.String("subject", msg.Subject), slog.String("error", err.Error()))
		return
	}
	if ev.UserID == "" {
		i.logger.Warn("dropping order event without user id",
			slog.String("order_id", ev.OrderID))
		return
	}

	n := notificationFor(ev)
	if err := i.notifications.Insert(ctx, &n); err != nil {
		i.logger.Error("notification insert failed",
			slog.String("order_id", ev.OrderID), slog.String("error", err.Error()))
	}

	if ev.Status == "completed" && ev.CouponCode != "" {
		if err := i.coupons.IncrementUsage(ctx, ev.CouponCode); err != nil {
			i.logger.Error("coupon usage increment failed",
				slog.String("code", ev.CouponCode), slog.String("error", err.Error()))
		}
	}
}

func notificationFor(ev OrderEvent) models.Notification {
	switch ev.Status {
	case "created":
		return models.Notification{
			UserID:  ev.UserID,
			Type:    models.NotificationOrderCreated,
			Title:   "Pedido recebido",
			Message: fmt.Sprintf("Recebemos o seu pedido %s.", ev.OrderID),
		}
	case "shipped":
		return models.Notification{
			UserID:  ev.UserID,
			Type:    models.NotificationOrderShipped,
			Title:   "Pedido enviado",
			Message: fmt.Sprintf("O pedido %s está a caminho.", ev.OrderID),
		}
	case "completed":
		return models.Notification{
			UserID:  ev.UserID,
			Type:    models.NotificationOrderCompleted,
			Title:   "Pedido entregue",
			Message: fmt.Sprintf("O pedido %s foi entregue. Obrigado pela compra!", ev.OrderID),
		}
	default:
		return models.Notification{
			UserID:  ev.UserID,
			Type:    models.NotificationInfo,
			Title:   "Atualização do pedido",
			Message: fmt.Sprintf("O pedido %s mudou para %s.", ev.OrderID, ev.Status),
		}
	}
}
