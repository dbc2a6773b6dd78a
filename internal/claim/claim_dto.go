package claim

import (
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/approval"

	"github.com/shopspring/decimal"
)

type CreateExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category" binding:"required,max=50"`
	Description string          `json:"description"`
	ReceiptURL  *string         `json:"receipt_url" binding:"omitempty,url"`
}

type CreateAdvanceRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason" binding:"required"`
	RepaymentTerms string          `json:"repayment_terms" binding:"max=100"`
}

type ClaimResponse struct {
	ID          string `json:"id"`
	ClaimType   string `json:"claim_type"`
	UserID      string `json:"user_id"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	CurrentStep int    `json:"current_step"`
	Steps       int    `json:"steps,omitempty"`

	Category       string  `json:"category,omitempty"`
	Description    string  `json:"description,omitempty"`
	ReceiptURL     *string `json:"receipt_url,omitempty"`
	Reason         string  `json:"reason,omitempty"`
	RepaymentTerms string  `json:"repayment_terms,omitempty"`

	CreatedAt string `json:"created_at"`
}

type MyClaimsResponse struct {
	Expenses []ClaimResponse `json:"expenses"`
	Advances []ClaimResponse `json:"advances"`
}

func mapExpense(c ExpenseClaim) ClaimResponse {
	return ClaimResponse{
		ID:          c.ID.String(),
		ClaimType:   string(approval.ClaimExpense),
		UserID:      c.UserID.String(),
		Amount:      c.Amount.StringFixed(2),
		Status:      c.Status,
		CurrentStep: c.CurrentStep,
		Category:    c.Category,
		Description: c.Description,
		ReceiptURL:  c.ReceiptURL,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func mapAdvance(a SalaryAdvance) ClaimResponse {
	return ClaimResponse{
		ID:             a.ID.String(),
		ClaimType:      string(approval.ClaimAdvance),
		UserID:         a.UserID.String(),
		Amount:         a.Amount.StringFixed(2),
		Status:         a.Status,
		CurrentStep:    a.CurrentStep,
		Reason:         a.Reason,
		RepaymentTerms: a.RepaymentTerms,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
	}
}
