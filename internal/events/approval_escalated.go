package events

import "time"

const ApprovalEscalatedTopic = "hr.approval.escalation.v1"

// ApprovalEscalatedEvent is published once per stalled step per sweep.
type ApprovalEscalatedEvent struct {
	EventType       string    `json:"event_type"`
	StepID          string    `json:"step_id"`
	ClaimID         string    `json:"claim_id"`
	ClaimType       string    `json:"claim_type"`
	StepOrder       int       `json:"step_order"`
	StalledApprover string    `json:"stalled_approver_id"`
	PendingSince    time.Time `json:"pending_since"`
	Recipients      []string  `json:"recipients"`
	OccurredAt      time.Time `json:"occurred_at"`
}
