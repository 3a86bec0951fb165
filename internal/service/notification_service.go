package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/config"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/events"
)

// NotificationService turns ticket events into outbound notifications.
// Delivery channels are log-backed placeholders until a mail relay and a
// webhook receiver exist; the fan-out and filtering rules are real.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to every ticket event the service reacts to.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketUpdated, n.handleTicketUpdated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("ticket_id", event.TicketID)}
	if payload, ok := event.Payload.(events.TicketCreatedPayload); ok {
		fields = append(fields,
			zap.String("reference", payload.Reference),
			zap.String("category", string(payload.Category)),
			zap.String("priority", string(payload.Priority)),
		)
	}
	n.logger.Info("notify: ticket created", fields...)
	n.deliverEmail(ctx, event)
	n.deliverWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketUpdated(ctx context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("ticket_id", event.TicketID)}
	if payload, ok := event.Payload.(events.TicketUpdatedPayload); ok {
		fields = append(fields, zap.Strings("changed_fields", payload.ChangedFields))
		if payload.Status != nil {
			fields = append(fields, zap.String("status", string(*payload.Status)))
		}
	}
	n.logger.Info("notify: ticket updated", fields...)
	n.deliverWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("ticket_id", event.TicketID)}
	if payload, ok := event.Payload.(events.TicketAssignedPayload); ok {
		fields = append(fields,
			zap.String("agent_id", payload.AgentID),
			zap.String("new_status", string(payload.NewStatus)),
		)
	}
	n.logger.Info("notify: ticket assigned", fields...)
	n.deliverEmail(ctx, event)
	n.deliverWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	n.logger.Info("notify: comment added",
		zap.String("ticket_id", event.TicketID),
		zap.Bool("is_internal", ok && payload.IsInternal),
	)
	// internal notes never reach the customer channel
	if ok && payload.IsInternal {
		return nil
	}
	n.deliverEmail(ctx, event)
	return nil
}

// deliverEmail feeds the customer mail channel; it only activates when a
// sender address is configured.
func (n *NotificationService) deliverEmail(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("email notification queued",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)),
	)
}

// deliverWebhook feeds the ops webhook channel.
func (n *NotificationService) deliverWebhook(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification queued",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)),
	)
}
