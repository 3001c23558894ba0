package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/domain"
	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/metrics"
)

// Dispatcher fans typed domain events out onto their channels. Every
// Broadcast method is fire-and-forget: when broadcasting is unavailable or
// the publish fails, the event is logged and dropped, and the caller
// continues unaffected. At-most-once, no queueing, no retries.
type Dispatcher struct {
	resolver *Resolver
}

func NewDispatcher(resolver *Resolver) *Dispatcher {
	return &Dispatcher{resolver: resolver}
}

// BroadcastThreadMessage publishes a chat message onto its thread's
// presence channel.
func (d *Dispatcher) BroadcastThreadMessage(ctx context.Context, ev domain.ThreadMessage) {
	d.publish(ctx, domain.ThreadChannel(ev.TenantID, ev.ThreadKey), domain.EventThreadMessage, ev,
		"tenant_id", ev.TenantID, "thread_key", ev.ThreadKey)
}

// BroadcastThreadRead publishes a read receipt onto its thread's presence
// channel.
func (d *Dispatcher) BroadcastThreadRead(ctx context.Context, ev domain.ThreadReadReceipt) {
	d.publish(ctx, domain.ThreadChannel(ev.TenantID, ev.ThreadKey), domain.EventThreadMessageRead, ev,
		"tenant_id", ev.TenantID, "thread_key", ev.ThreadKey)
}

// BroadcastThreadDelivered publishes a delivery receipt onto its thread's
// presence channel.
func (d *Dispatcher) BroadcastThreadDelivered(ctx context.Context, ev domain.ThreadDeliveryReceipt) {
	d.publish(ctx, domain.ThreadChannel(ev.TenantID, ev.ThreadKey), domain.EventThreadMessageDelivered, ev,
		"tenant_id", ev.TenantID, "thread_key", ev.ThreadKey)
}

// BroadcastScheduledMessageUpdate publishes a scheduled-message state change
// onto the sender's private channel.
func (d *Dispatcher) BroadcastScheduledMessageUpdate(ctx context.Context, ev domain.ScheduledMessageUpdate) {
	d.publish(ctx, domain.ScheduledChannel(ev.TenantID, ev.SenderID), domain.EventScheduledMessageUpdate, ev,
		"tenant_id", ev.TenantID, "sender_id", ev.SenderID)
}

// BroadcastPaymentNotification publishes a payment event onto the tenant's
// notifications channel.
func (d *Dispatcher) BroadcastPaymentNotification(ctx context.Context, ev domain.PaymentNotification) {
	d.publish(ctx, domain.TenantNotificationsChannel(ev.TenantID), domain.EventPaymentNotification, ev,
		"tenant_id", ev.TenantID, "payment_id", ev.PaymentID)
}

// BroadcastTicketCreated publishes a new support ticket onto the tenant's
// tickets channel.
func (d *Dispatcher) BroadcastTicketCreated(ctx context.Context, ev domain.TicketCreated) {
	d.publish(ctx, domain.TenantTicketsChannel(ev.TenantID), domain.EventTicketCreated, ev,
		"tenant_id", ev.TenantID, "ticket_id", ev.TicketID)
}

// BroadcastTicketUpdated publishes a ticket status change onto the tenant's
// tickets channel.
func (d *Dispatcher) BroadcastTicketUpdated(ctx context.Context, ev domain.TicketUpdated) {
	d.publish(ctx, domain.TenantTicketsChannel(ev.TenantID), domain.EventTicketUpdated, ev,
		"tenant_id", ev.TenantID, "ticket_id", ev.TicketID)
}

// BroadcastTicketCommentAdded publishes a new ticket comment onto the
// tenant's tickets channel.
func (d *Dispatcher) BroadcastTicketCommentAdded(ctx context.Context, ev domain.TicketCommentAdded) {
	d.publish(ctx, domain.TenantTicketsChannel(ev.TenantID), domain.EventTicketCommentAdded, ev,
		"tenant_id", ev.TenantID, "ticket_id", ev.TicketID)
}

// BroadcastTenantNotification publishes a caller-named event onto the
// tenant's notifications channel.
func (d *Dispatcher) BroadcastTenantNotification(ctx context.Context, ev domain.TenantNotification) {
	if ev.Event == "" {
		slog.WarnContext(ctx, "Tenant notification without event name dropped", "tenant_id", ev.TenantID)
		return
	}
	d.publish(ctx, domain.TenantNotificationsChannel(ev.TenantID), ev.Event, ev.Payload,
		"tenant_id", ev.TenantID)
}

// publish resolves the broker client and triggers the event. Scope fields
// identify the dropped event in logs; payload contents stay out of logs.
func (d *Dispatcher) publish(ctx context.Context, channel, event string, payload any, scope ...any) {
	client := d.resolver.Resolve(ctx)
	if client == nil {
		metrics.EventsDroppedTotal.WithLabelValues(event, "disabled").Inc()
		slog.WarnContext(ctx, "Broadcasting unavailable, event dropped",
			append([]any{"event", event, "channel", channel}, scope...)...)
		return
	}

	start := time.Now()
	err := client.Publisher.Trigger(ctx, channel, event, payload)
	metrics.PublishDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.EventsDroppedTotal.WithLabelValues(event, "publish_error").Inc()
		slog.ErrorContext(ctx, "Failed to publish event",
			append([]any{"event", event, "channel", channel, "error", err}, scope...)...)
		return
	}

	metrics.EventsPublishedTotal.WithLabelValues(event).Inc()
}
