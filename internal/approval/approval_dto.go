package approval

import "time"

type ProcessStepRequest struct {
	Decision string  `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Comments *string `json:"comments"`
}

type ProcessResult struct {
	StepID    string  `json:"step_id"`
	ClaimID   string  `json:"claim_id"`
	ClaimType string  `json:"claim_type"`
	Outcome   Outcome `json:"outcome"`
	NextLevel int     `json:"next_level,omitempty"`
	Message   string  `json:"message"`
}

type StepResponse struct {
	ID          string  `json:"id"`
	ClaimID     string  `json:"claim_id"`
	ClaimType   string  `json:"claim_type"`
	StepOrder   int     `json:"step_order"`
	ApproverID  string  `json:"approver_id"`
	Status      string  `json:"status"`
	Comments    *string `json:"comments,omitempty"`
	ActivatedAt *string `json:"activated_at,omitempty"`
	ProcessedAt *string `json:"processed_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func mapToStepResponse(s ApprovalStep) StepResponse {
	return StepResponse{
		ID:          s.ID.String(),
		ClaimID:     s.ClaimID.String(),
		ClaimType:   string(s.ClaimType),
		StepOrder:   s.StepOrder,
		ApproverID:  s.ApproverID.String(),
		Status:      s.Status,
		Comments:    s.Comments,
		ActivatedAt: formatTime(s.ActivatedAt),
		ProcessedAt: formatTime(s.ProcessedAt),
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

func mapToStepListResponse(steps []ApprovalStep) []StepResponse {
	out := make([]StepResponse, 0, len(steps))
	for _, s := range steps {
		out = append(out, mapToStepResponse(s))
	}
	return out
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}
