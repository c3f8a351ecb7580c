package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/propnest/pdc-engine/pkg/db/models"
	"github.com/propnest/pdc-engine/pkg/enums"
	"github.com/propnest/pdc-engine/pkg/logger"
	"github.com/propnest/pdc-engine/pkg/outbox"
	"github.com/propnest/pdc-engine/pkg/outbox/idempotency"
	"github.com/propnest/pdc-engine/pkg/outbox/payloads"
)

const chequeNotificationConsumer = "cheque-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
	TenantManager(ctx context.Context, tenantID uuid.UUID) (uuid.UUID, error)
}

// Consumer watches cheque lifecycle events and materializes in-app
// notification rows. Processing is at-least-once; the Redis idempotency
// marker collapses redeliveries.
type Consumer struct {
	repo          repository
	subscriptions []*pubsub.Subscriber
	idempotency   *idempotency.Manager
	logg          *logger.Logger
}

// NewConsumer builds a cheque notification consumer over the provided
// subscriptions.
func NewConsumer(repo repository, manager *idempotency.Manager, logg *logger.Logger, subscriptions ...*pubsub.Subscriber) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	var subs []*pubsub.Subscriber
	for _, sub := range subscriptions {
		if sub != nil {
			subs = append(subs, sub)
		}
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("at least one subscription required")
	}
	return &Consumer{
		repo:          repo,
		subscriptions: subs,
		idempotency:   manager,
		logg:          logg,
	}, nil
}

// Run starts a receive loop per subscription until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	errCh := make(chan error, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		go func(sub *pubsub.Subscriber) {
			errCh <- sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
				result := c.process(ctx, msg)
				if result.nack {
					msg.Nack()
					return
				}
				msg.Ack()
			})
		}(sub)
	}
	var firstErr error
	for range c.subscriptions {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	if !eventType.IsValid() {
		c.logg.Info(logCtx, "skipping unrecognized event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, chequeNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handleEvent(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, chequeNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handleEvent(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventPDCBounced:
		return c.handleBounced(ctx, data, logCtx)
	case enums.EventPDCDue:
		return c.handleDue(ctx, data, logCtx)
	case enums.EventPDCCleared:
		return c.handleCleared(ctx, data, logCtx)
	case enums.EventPDCReplaced:
		return c.handleReplaced(ctx, data, logCtx)
	default:
		c.logg.Info(logCtx, "event type carries no notification")
		return nil
	}
}

// handleBounced writes two rows: the tenant learns their cheque failed and
// the property manager learns a follow-up is needed.
func (c *Consumer) handleBounced(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.ChequeBouncedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse bounced payload: %w", err)
	}
	if payload.TenantID == uuid.Nil {
		return fmt.Errorf("tenant id missing")
	}

	tenantRow := &models.Notification{
		ID:          uuid.New(),
		Audience:    enums.AudienceTenant,
		RecipientID: payload.TenantID,
		Type:        enums.NotificationTypeChequeBounced,
		PDCID:       &payload.PDCID,
		Title:       "Cheque bounced",
		Message: fmt.Sprintf("Cheque %s for %s was returned by the bank. Reason: %s.",
			payload.ChequeNumber, payload.Amount.StringFixed(2), payload.BounceReason),
	}
	if err := c.repo.Create(ctx, tenantRow); err != nil {
		return fmt.Errorf("create tenant notification: %w", err)
	}

	managerID, err := c.repo.TenantManager(ctx, payload.TenantID)
	if err != nil {
		return fmt.Errorf("resolve property manager: %w", err)
	}
	managerRow := &models.Notification{
		ID:          uuid.New(),
		Audience:    enums.AudiencePropertyManager,
		RecipientID: managerID,
		Type:        enums.NotificationTypeChequeBounced,
		PDCID:       &payload.PDCID,
		Title:       "Cheque bounced",
		Message: fmt.Sprintf("Cheque %s (tenant %s) bounced: %s. Replacement follow-up required.",
			payload.ChequeNumber, payload.TenantID, payload.BounceReason),
	}
	if err := c.repo.Create(ctx, managerRow); err != nil {
		return fmt.Errorf("create manager notification: %w", err)
	}
	c.logg.Info(logCtx, "bounce notifications created")
	return nil
}

func (c *Consumer) handleDue(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.ChequeDueEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse due payload: %w", err)
	}
	if payload.TenantID == uuid.Nil {
		return fmt.Errorf("tenant id missing")
	}
	notification := &models.Notification{
		ID:          uuid.New(),
		Audience:    enums.AudienceTenant,
		RecipientID: payload.TenantID,
		Type:        enums.NotificationTypeChequeDue,
		PDCID:       &payload.PDCID,
		Title:       "Cheque due for deposit",
		Message: fmt.Sprintf("Cheque %s for %s has reached its cheque date and will be deposited.",
			payload.ChequeNumber, payload.Amount.StringFixed(2)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("create due notification: %w", err)
	}
	c.logg.Info(logCtx, "due notification created")
	return nil
}

func (c *Consumer) handleCleared(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.ChequeClearedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse cleared payload: %w", err)
	}
	if payload.TenantID == uuid.Nil {
		return fmt.Errorf("tenant id missing")
	}
	notification := &models.Notification{
		ID:          uuid.New(),
		Audience:    enums.AudienceTenant,
		RecipientID: payload.TenantID,
		Type:        enums.NotificationTypeChequeCleared,
		PDCID:       &payload.PDCID,
		Title:       "Payment received",
		Message: fmt.Sprintf("Cheque %s for %s has cleared.",
			payload.ChequeNumber, payload.Amount.StringFixed(2)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("create cleared notification: %w", err)
	}
	c.logg.Info(logCtx, "cleared notification created")
	return nil
}

func (c *Consumer) handleReplaced(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.ChequeReplacedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse replaced payload: %w", err)
	}
	if payload.TenantID == uuid.Nil {
		return fmt.Errorf("tenant id missing")
	}
	managerID, err := c.repo.TenantManager(ctx, payload.TenantID)
	if err != nil {
		return fmt.Errorf("resolve property manager: %w", err)
	}
	notification := &models.Notification{
		ID:          uuid.New(),
		Audience:    enums.AudiencePropertyManager,
		RecipientID: managerID,
		Type:        enums.NotificationTypeChequeReplaced,
		PDCID:       &payload.ReplacementPDCID,
		Title:       "Replacement cheque received",
		Message: fmt.Sprintf("Replacement cheque %s for %s covers bounced cheque %s.",
			payload.ChequeNumber, payload.Amount.StringFixed(2), payload.OriginalPDCID),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("create replaced notification: %w", err)
	}
	c.logg.Info(logCtx, "replacement notification created")
	return nil
}
