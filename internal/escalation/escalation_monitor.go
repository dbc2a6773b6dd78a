package escalation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/events"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/identity"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/metrics"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/notification"

	"go.uber.org/zap"
)

var ErrInvalidThreshold = errors.New("escalation threshold must be positive")

type EscalationEvent struct {
	StepID          string    `json:"step_id"`
	ClaimID         string    `json:"claim_id"`
	ClaimType       string    `json:"claim_type"`
	StepOrder       int       `json:"step_order"`
	StalledApprover string    `json:"stalled_approver_id"`
	PendingSince    time.Time `json:"pending_since"`
	Recipients      []string  `json:"recipients"`
}

type Monitor interface {
	// Sweep reports every actionable step pending longer than threshold. A
	// step is actionable when its claim is PENDING and current_step equals its
	// step_order; its age runs from activated_at, falling back to created_at.
	// Later levels queued behind an earlier one and PENDING steps left on a
	// closed claim are never reported. Sweep changes no workflow state, so
	// repeated sweeps only repeat notifications.
	Sweep(ctx context.Context, threshold time.Duration) ([]EscalationEvent, error)
}

type monitor struct {
	repo      Repository
	resolver  identity.RoleResolver
	notifier  notification.Notifier
	publisher notification.Publisher
	now       func() time.Time
	logger    *zap.Logger
}

// NewMonitor builds a monitor. now may be nil, in which case the wall clock
// in UTC is used. publisher may be nil to skip event publication.
func NewMonitor(
	repo Repository,
	resolver identity.RoleResolver,
	notifier notification.Notifier,
	publisher notification.Publisher,
	now func() time.Time,
	logger ...*zap.Logger,
) Monitor {
	l := zap.L().Named("escalation.monitor")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("escalation.monitor")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &monitor{repo: repo, resolver: resolver, notifier: notifier, publisher: publisher, now: now, logger: l}
}

func (m *monitor) Sweep(ctx context.Context, threshold time.Duration) ([]EscalationEvent, error) {
	if threshold <= 0 {
		return nil, ErrInvalidThreshold
	}

	now := m.now()
	cutoff := now.Add(-threshold)
	m.logger.Debug("escalation sweep started", zap.Time("cutoff", cutoff))

	stalled, err := m.repo.ListStalled(ctx, cutoff)
	if err != nil {
		m.logger.Error("escalation sweep query failed", zap.Error(err))
		return nil, err
	}
	if len(stalled) == 0 {
		return []EscalationEvent{}, nil
	}

	// Membership can change between sweeps, so the audience is looked up
	// every time.
	recipients, err := m.resolver.ResolveUsersByRole(ctx, identity.CapabilityEscalationHR)
	if err != nil {
		m.logger.Error("escalation audience lookup failed", zap.Error(err))
		return nil, err
	}
	if len(recipients) == 0 {
		m.logger.Warn("escalation audience empty", zap.Int("stalled", len(stalled)))
	}

	out := make([]EscalationEvent, 0, len(stalled))
	for _, s := range stalled {
		ev := EscalationEvent{
			StepID:          s.StepID.String(),
			ClaimID:         s.ClaimID.String(),
			ClaimType:       string(s.ClaimType),
			StepOrder:       s.StepOrder,
			StalledApprover: s.ApproverID.String(),
			PendingSince:    s.PendingSince(),
			Recipients:      recipients,
		}
		m.raise(ctx, ev, now)
		out = append(out, ev)
	}

	metrics.RecordEscalations(len(out))
	m.logger.Info("escalation sweep finished",
		zap.Int("stalled", len(out)),
		zap.Int("recipients", len(recipients)),
	)
	return out, nil
}

func (m *monitor) raise(ctx context.Context, ev EscalationEvent, now time.Time) {
	title := fmt.Sprintf("Stalled %s Claim", ev.ClaimType)
	msg := fmt.Sprintf("Claim %s has waited at level %d for approver %s since %s.",
		ev.ClaimID, ev.StepOrder, ev.StalledApprover, ev.PendingSince.Format(time.RFC3339))
	for _, r := range ev.Recipients {
		notification.Send(ctx, m.notifier, m.logger, r, title, msg, notification.KindWarning)
	}

	if m.publisher == nil {
		return
	}
	err := m.publisher.Publish(ctx, events.ApprovalEscalatedTopic, "approval_step", ev.StepID, "approval.escalated", events.ApprovalEscalatedEvent{
		EventType:       "approval.escalated",
		StepID:          ev.StepID,
		ClaimID:         ev.ClaimID,
		ClaimType:       ev.ClaimType,
		StepOrder:       ev.StepOrder,
		StalledApprover: ev.StalledApprover,
		PendingSince:    ev.PendingSince,
		Recipients:      ev.Recipients,
		OccurredAt:      now,
	})
	if err != nil {
		m.logger.Warn("escalation event publish failed", zap.String("step_id", ev.StepID), zap.Error(err))
	}
}
