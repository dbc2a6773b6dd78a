package claim

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/approval"
	claimerrors "github.com/Ashokvp-05/hr-management-system-sub000/internal/claim/errors"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/dbtx"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	CreateExpenseClaim(ctx context.Context, userID string, req CreateExpenseRequest) (ClaimResponse, error)
	CreateSalaryAdvance(ctx context.Context, userID string, req CreateAdvanceRequest) (ClaimResponse, error)
	ListMine(ctx context.Context, userID string) (MyClaimsResponse, error)
	GetByID(ctx context.Context, claimType, id string) (ClaimResponse, error)
}

// Chains is the part of the approval engine claim creation depends on.
type Chains interface {
	PlanChain(ctx context.Context, claimType approval.ClaimType) (approval.ChainPlan, error)
	WithTx(tx *sql.Tx) approval.Builder
	AnnounceChain(ctx context.Context, steps []approval.ApprovalStep)
}

type service struct {
	tx     *dbtx.Runner
	repo   Repository
	chains Chains
	logger *zap.Logger
}

func NewService(tx *dbtx.Runner, repo Repository, chains Chains, logger ...*zap.Logger) Service {
	l := zap.L().Named("claim.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("claim.service")
	}
	return &service{tx: tx, repo: repo, chains: chains, logger: l}
}

// submit plans the chain before opening the transaction so approver lookups
// never hold claim locks, then writes the claim and its steps together.
func (s *service) submit(ctx context.Context, claimType approval.ClaimType, create func(ctx context.Context, repo Repository) (uuid.UUID, error)) ([]approval.ApprovalStep, error) {
	plan, err := s.chains.PlanChain(ctx, claimType)
	if err != nil {
		s.logger.Warn("claim chain planning failed", zap.String("claim_type", string(claimType)), zap.Error(err))
		return nil, err
	}

	var steps []approval.ApprovalStep
	err = s.tx.Run(ctx, func(tx *sql.Tx) error {
		claimID, err := create(ctx, s.repo.WithTx(tx))
		if err != nil {
			s.logger.Error("claim persist failed", zap.String("claim_type", string(claimType)), zap.Error(err))
			return err
		}

		steps, err = s.chains.WithTx(tx).BuildChain(ctx, claimID, plan)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.chains.AnnounceChain(ctx, steps)
	return steps, nil
}

func (s *service) CreateExpenseClaim(ctx context.Context, userID string, req CreateExpenseRequest) (ClaimResponse, error) {
	s.logger.Debug("create expense claim requested", zap.String("user_id", userID), zap.String("category", req.Category))

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return ClaimResponse{}, claimerrors.ErrInvalidUserID
	}
	if !req.Amount.IsPositive() {
		return ClaimResponse{}, claimerrors.ErrInvalidAmount
	}

	c := ExpenseClaim{
		UserID:      userUUID,
		Amount:      req.Amount.Round(2),
		Category:    req.Category,
		Description: req.Description,
		ReceiptURL:  req.ReceiptURL,
		Status:      approval.StatusPending,
		CurrentStep: 1,
	}
	steps, err := s.submit(ctx, approval.ClaimExpense, func(ctx context.Context, repo Repository) (uuid.UUID, error) {
		c.ID = uuid.New()
		return c.ID, repo.CreateExpense(ctx, &c)
	})
	if err != nil {
		return ClaimResponse{}, err
	}

	s.logger.Info("create expense claim success",
		zap.String("claim_id", c.ID.String()),
		zap.String("user_id", userID),
		zap.Int("steps", len(steps)),
	)
	resp := mapExpense(c)
	resp.Steps = len(steps)
	return resp, nil
}

func (s *service) CreateSalaryAdvance(ctx context.Context, userID string, req CreateAdvanceRequest) (ClaimResponse, error) {
	s.logger.Debug("create salary advance requested", zap.String("user_id", userID))

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return ClaimResponse{}, claimerrors.ErrInvalidUserID
	}
	if !req.Amount.IsPositive() {
		return ClaimResponse{}, claimerrors.ErrInvalidAmount
	}

	a := SalaryAdvance{
		UserID:         userUUID,
		Amount:         req.Amount.Round(2),
		Reason:         req.Reason,
		RepaymentTerms: req.RepaymentTerms,
		Status:         approval.StatusPending,
		CurrentStep:    1,
	}
	steps, err := s.submit(ctx, approval.ClaimAdvance, func(ctx context.Context, repo Repository) (uuid.UUID, error) {
		a.ID = uuid.New()
		return a.ID, repo.CreateAdvance(ctx, &a)
	})
	if err != nil {
		return ClaimResponse{}, err
	}

	s.logger.Info("create salary advance success",
		zap.String("claim_id", a.ID.String()),
		zap.String("user_id", userID),
		zap.Int("steps", len(steps)),
	)
	resp := mapAdvance(a)
	resp.Steps = len(steps)
	return resp, nil
}

func (s *service) ListMine(ctx context.Context, userID string) (MyClaimsResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return MyClaimsResponse{}, claimerrors.ErrInvalidUserID
	}

	expenses, err := s.repo.ListExpensesByUser(ctx, userUUID)
	if err != nil {
		return MyClaimsResponse{}, err
	}
	advances, err := s.repo.ListAdvancesByUser(ctx, userUUID)
	if err != nil {
		return MyClaimsResponse{}, err
	}

	out := MyClaimsResponse{
		Expenses: make([]ClaimResponse, 0, len(expenses)),
		Advances: make([]ClaimResponse, 0, len(advances)),
	}
	for _, c := range expenses {
		out.Expenses = append(out.Expenses, mapExpense(c))
	}
	for _, a := range advances {
		out.Advances = append(out.Advances, mapAdvance(a))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, claimType, id string) (ClaimResponse, error) {
	ct, ok := approval.ParseClaimType(strings.ToUpper(claimType))
	if !ok {
		return ClaimResponse{}, claimerrors.ErrInvalidClaimType
	}
	claimID, err := uuid.Parse(id)
	if err != nil {
		return ClaimResponse{}, claimerrors.ErrClaimNotFound
	}

	var resp ClaimResponse
	switch ct {
	case approval.ClaimExpense:
		c, err := s.repo.FindExpenseByID(ctx, claimID)
		if err != nil {
			return ClaimResponse{}, mapFindError(err)
		}
		resp = mapExpense(*c)
	case approval.ClaimAdvance:
		a, err := s.repo.FindAdvanceByID(ctx, claimID)
		if err != nil {
			return ClaimResponse{}, mapFindError(err)
		}
		resp = mapAdvance(*a)
	}
	return resp, nil
}

func mapFindError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return claimerrors.ErrClaimNotFound
	}
	return err
}
