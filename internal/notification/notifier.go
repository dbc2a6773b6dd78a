package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/events"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/messaging/kafka"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Kind string

const (
	KindInfo    Kind = "INFO"
	KindAlert   Kind = "ALERT"
	KindSuccess Kind = "SUCCESS"
	KindWarning Kind = "WARNING"
)

//go:generate mockgen -source=notifier.go -destination=mock/notifier_mock.go -package=mock
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string, kind Kind) error
}

// Publisher appends arbitrary domain events to the outbox.
type Publisher interface {
	Publish(ctx context.Context, topic, aggregateType, aggregateID, eventType string, payload any) error
}

type OutboxNotifier struct {
	outbox kafka.OutboxRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewOutboxNotifier(outbox kafka.OutboxRepository, logger ...*zap.Logger) *OutboxNotifier {
	l := zap.L().Named("notification.outbox")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.outbox")
	}
	return &OutboxNotifier{
		outbox: outbox,
		now:    func() time.Time { return time.Now().UTC() },
		logger: l,
	}
}

func (n *OutboxNotifier) Notify(ctx context.Context, userID, title, message string, kind Kind) error {
	return n.Publish(ctx, events.NotificationRequestedTopic, "user", userID, "notification.requested", events.NotificationRequestedEvent{
		EventType:  "notification.requested",
		UserID:     userID,
		Title:      title,
		Message:    message,
		Kind:       string(kind),
		OccurredAt: n.now(),
	})
}

func (n *OutboxNotifier) Publish(ctx context.Context, topic, aggregateType, aggregateID, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	event := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	}
	if err := n.outbox.Create(ctx, event); err != nil {
		return err
	}

	n.logger.Debug("outbox event queued", append(contextutil.LogFields(ctx),
		zap.String("outbox_id", event.ID),
		zap.String("event_type", eventType),
		zap.String("aggregate_id", aggregateID),
	)...)
	return nil
}

// Send delivers through n and only logs a failure. Workflow operations call it
// after commit so a notification problem never undoes a decision.
func Send(ctx context.Context, n Notifier, logger *zap.Logger, userID, title, message string, kind Kind) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, userID, title, message, kind); err != nil {
		logger.Warn("notification failed",
			zap.String("user_id", userID),
			zap.String("title", title),
			zap.Error(err),
		)
	}
}
