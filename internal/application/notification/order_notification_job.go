package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"github.com/jossiefancies/storefront/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// JobKindOrderNotification is the scheduler job kind for order notifications
const JobKindOrderNotification = "order_notification"

// OrderNotifier sends the emails for a placed order
type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, order *trade.Order) error
	SendAdminNotification(ctx context.Context, order *trade.Order) error
}

// OrderNotificationJob sends the customer and admin emails for an order and
// flags whatsapp_sent once both are delivered
type OrderNotificationJob struct {
	orderRepo trade.OrderRepository
	notifier  OrderNotifier
	logger    *zap.Logger
}

// NewOrderNotificationJob creates a new OrderNotificationJob
func NewOrderNotificationJob(orderRepo trade.OrderRepository, notifier OrderNotifier, logger *zap.Logger) *OrderNotificationJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderNotificationJob{orderRepo: orderRepo, notifier: notifier, logger: logger}
}

// Execute runs the job for job.EntityID, the order's primary id.
// A deleted order is not an error. A failed email fails the job so the
// scheduler retries it.
func (j *OrderNotificationJob) Execute(ctx context.Context, job *scheduler.Job) error {
	order, err := j.orderRepo.FindByID(ctx, job.EntityID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			j.logger.Info("order gone, skipping notification", zap.String("id", job.EntityID.String()))
			return nil
		}
		return err
	}

	customerErr := j.notifier.SendOrderConfirmation(ctx, order)
	if customerErr != nil {
		j.logger.Error("failed to send order confirmation email",
			zap.String("order_id", order.OrderID.String()),
			zap.Error(customerErr))
	}
	adminErr := j.notifier.SendAdminNotification(ctx, order)
	if adminErr != nil {
		j.logger.Error("failed to send admin notification email",
			zap.String("order_id", order.OrderID.String()),
			zap.Error(adminErr))
	}
	if err := errors.Join(customerErr, adminErr); err != nil {
		return fmt.Errorf("order %s notification: %w", order.OrderID, err)
	}

	if order.WhatsAppSent {
		return nil
	}
	// only the flag is written; the order may have been edited while the
	// emails were going out
	marked, err := j.orderRepo.MarkWhatsAppSent(ctx, order.ID)
	if err != nil {
		return err
	}
	if marked {
		order.MarkWhatsAppSent()
	}
	j.logger.Info("order notifications sent", zap.String("order_id", order.OrderID.String()))
	return nil
}

// JobSubmitter queues background jobs
type JobSubmitter interface {
	Submit(kind string, entityID uuid.UUID) error
}

// OrderPlacedHandler queues the notification job when an order is placed
type OrderPlacedHandler struct {
	jobs   JobSubmitter
	logger *zap.Logger
}

// NewOrderPlacedHandler creates a new OrderPlacedHandler
func NewOrderPlacedHandler(jobs JobSubmitter, logger *zap.Logger) *OrderPlacedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderPlacedHandler{jobs: jobs, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderPlacedHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderPlaced}
}

// Handle submits an order_notification job for the placed order
func (h *OrderPlacedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	placed, ok := event.(*trade.OrderPlacedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if err := h.jobs.Submit(JobKindOrderNotification, placed.OrderPK); err != nil {
		h.logger.Error("failed to queue order notification",
			zap.String("order_id", placed.OrderID.String()),
			zap.Error(err))
		return err
	}
	h.logger.Debug("order notification queued", zap.String("order_id", placed.OrderID.String()))
	return nil
}

var (
	_ scheduler.JobExecutor = (*OrderNotificationJob)(nil)
	_ shared.EventHandler   = (*OrderPlacedHandler)(nil)
	_ JobSubmitter          = (*scheduler.Scheduler)(nil)
)
