package approval

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	approvalerrors "github.com/Ashokvp-05/hr-management-system-sub000/internal/approval/errors"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/identity"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/metrics"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/notification"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/dbtx"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultChain is used for claim types without a configured chain.
var DefaultChain = []identity.Capability{
	identity.CapabilityChainManager,
	identity.CapabilityChainFinance,
}

//go:generate mockgen -source=approval_service.go -destination=mock/approval_service_mock.go -package=mock
type Service interface {
	// PlanChain resolves one approver per configured level. Levels nobody
	// holds are dropped; an empty result is ErrConfigurationGap.
	PlanChain(ctx context.Context, claimType ClaimType) (ChainPlan, error)
	// WithTx returns a builder writing into the caller's transaction.
	WithTx(tx *sql.Tx) Builder
	// AnnounceChain notifies the approver of step 1. Call it after commit.
	AnnounceChain(ctx context.Context, steps []ApprovalStep)
	Process(ctx context.Context, stepID, approverID string, req ProcessStepRequest) (ProcessResult, error)
	PendingForApprover(ctx context.Context, approverID string) ([]StepResponse, error)
	ListChain(ctx context.Context, claimID, claimType string) ([]StepResponse, error)
}

type Builder interface {
	// BuildChain persists plan as steps 1..n of the claim. Step 1 is active
	// immediately.
	BuildChain(ctx context.Context, claimID uuid.UUID, plan ChainPlan) ([]ApprovalStep, error)
}

type service struct {
	tx       *dbtx.Runner
	repo     Repository
	resolver identity.RoleResolver
	notifier notification.Notifier
	chains   map[ClaimType][]identity.Capability
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(
	tx *dbtx.Runner,
	repo Repository,
	resolver identity.RoleResolver,
	notifier notification.Notifier,
	chains map[ClaimType][]identity.Capability,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("approval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.service")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		resolver: resolver,
		notifier: notifier,
		chains:   chains,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   l,
	}
}

// ChainsFromConfig converts the configured claim type -> capabilities map.
// Keys are matched case-insensitively; unknown claim types are ignored.
func ChainsFromConfig(cfg map[string][]string) map[ClaimType][]identity.Capability {
	out := make(map[ClaimType][]identity.Capability, len(cfg))
	for k, caps := range cfg {
		ct, ok := ParseClaimType(strings.ToUpper(k))
		if !ok {
			continue
		}
		levels := make([]identity.Capability, 0, len(caps))
		for _, c := range caps {
			levels = append(levels, identity.Capability(c))
		}
		out[ct] = levels
	}
	return out
}

func (s *service) levels(claimType ClaimType) []identity.Capability {
	if levels, ok := s.chains[claimType]; ok && len(levels) > 0 {
		return levels
	}
	return DefaultChain
}

func (s *service) PlanChain(ctx context.Context, claimType ClaimType) (ChainPlan, error) {
	if claimType.Table() == "" {
		return ChainPlan{}, approvalerrors.ErrInvalidClaimType
	}

	plan := ChainPlan{ClaimType: claimType}
	for _, capability := range s.levels(claimType) {
		users, err := s.resolver.ResolveUsersByRole(ctx, capability)
		if err != nil {
			s.logger.Error("plan chain role lookup failed",
				zap.String("claim_type", string(claimType)),
				zap.String("capability", string(capability)),
				zap.Error(err),
			)
			return ChainPlan{}, err
		}

		approver, ok := firstValidUser(users)
		if !ok {
			s.logger.Warn("plan chain level skipped, no approver",
				zap.String("claim_type", string(claimType)),
				zap.String("capability", string(capability)),
			)
			continue
		}
		plan.Steps = append(plan.Steps, PlannedStep{Capability: string(capability), ApproverID: approver})
	}

	if len(plan.Steps) == 0 {
		s.logger.Warn("plan chain empty", zap.String("claim_type", string(claimType)))
		return ChainPlan{}, approvalerrors.ErrConfigurationGap
	}
	return plan, nil
}

func firstValidUser(users []string) (uuid.UUID, bool) {
	for _, u := range users {
		if id, err := uuid.Parse(u); err == nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (s *service) WithTx(tx *sql.Tx) Builder {
	return &builder{repo: s.repo.WithTx(tx), now: s.now, logger: s.logger}
}

type builder struct {
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

func (b *builder) BuildChain(ctx context.Context, claimID uuid.UUID, plan ChainPlan) ([]ApprovalStep, error) {
	if len(plan.Steps) == 0 {
		return nil, approvalerrors.ErrConfigurationGap
	}

	now := b.now()
	steps := make([]ApprovalStep, 0, len(plan.Steps))
	for i, p := range plan.Steps {
		step := ApprovalStep{
			ID:         uuid.New(),
			ClaimID:    claimID,
			ClaimType:  plan.ClaimType,
			StepOrder:  i + 1,
			ApproverID: p.ApproverID,
			Status:     StatusPending,
			CreatedAt:  now,
		}
		if step.StepOrder == 1 {
			step.ActivatedAt = &now
		}
		steps = append(steps, step)
	}

	if err := b.repo.CreateSteps(ctx, steps); err != nil {
		b.logger.Error("build chain persist failed", zap.String("claim_id", claimID.String()), zap.Error(err))
		return nil, err
	}

	b.logger.Info("build chain success",
		zap.String("claim_id", claimID.String()),
		zap.String("claim_type", string(plan.ClaimType)),
		zap.Int("steps", len(steps)),
	)
	return steps, nil
}

func (s *service) AnnounceChain(ctx context.Context, steps []ApprovalStep) {
	for _, step := range steps {
		if step.StepOrder != 1 {
			continue
		}
		notification.Send(ctx, s.notifier, s.logger, step.ApproverID.String(),
			fmt.Sprintf("New %s Claim Pending", step.ClaimType),
			fmt.Sprintf("A new request requires your verification. Level: %d", step.StepOrder),
			notification.KindAlert,
		)
		return
	}
}

// processed carries what Process learned inside the transaction to the
// notifications sent after it.
type processed struct {
	step   *ApprovalStep
	claim  *ClaimState
	next   *ApprovalStep
	result ProcessResult
}

func (s *service) Process(ctx context.Context, stepID, approverID string, req ProcessStepRequest) (ProcessResult, error) {
	s.logger.Debug("process step requested",
		zap.String("step_id", stepID),
		zap.String("approver_id", approverID),
		zap.String("decision", req.Decision),
	)

	id, err := uuid.Parse(stepID)
	if err != nil {
		return ProcessResult{}, approvalerrors.ErrStepNotFound
	}
	if req.Decision != StatusApproved && req.Decision != StatusRejected {
		return ProcessResult{}, approvalerrors.ErrInvalidDecision
	}

	var out processed
	err = s.tx.Run(ctx, func(tx *sql.Tx) error {
		qtx := s.repo.WithTx(tx)

		step, err := qtx.FindStepByID(ctx, id, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return approvalerrors.ErrStepNotFound
			}
			s.logger.Error("process step load failed", zap.String("step_id", stepID), zap.Error(err))
			return err
		}
		if step.ApproverID.String() != approverID {
			s.logger.Warn("process step approver mismatch",
				zap.String("step_id", stepID),
				zap.String("approver_id", approverID),
			)
			return approvalerrors.ErrNotAssignedApprover
		}
		if step.Status != StatusPending {
			s.logger.Warn("process step already processed",
				zap.String("step_id", stepID),
				zap.String("status", step.Status),
			)
			return approvalerrors.ErrAlreadyProcessed
		}

		claim, err := qtx.LockClaim(ctx, step.ClaimID, step.ClaimType)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return approvalerrors.ErrClaimNotFound
			}
			s.logger.Error("process step claim load failed", zap.String("claim_id", step.ClaimID.String()), zap.Error(err))
			return err
		}
		if claim.Status != StatusPending || claim.CurrentStep != step.StepOrder {
			s.logger.Warn("process step not actionable",
				zap.String("step_id", stepID),
				zap.String("claim_status", claim.Status),
				zap.Int("current_step", claim.CurrentStep),
				zap.Int("step_order", step.StepOrder),
			)
			return approvalerrors.ErrStepNotActionable
		}

		now := s.now()
		affected, err := qtx.CompleteStep(ctx, step.ID, req.Decision, req.Comments, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return approvalerrors.ErrAlreadyProcessed
		}
		step.Status = req.Decision
		step.Comments = req.Comments
		step.ProcessedAt = &now

		out = processed{step: step, claim: claim, result: ProcessResult{
			StepID:    step.ID.String(),
			ClaimID:   step.ClaimID.String(),
			ClaimType: string(step.ClaimType),
		}}

		if req.Decision == StatusRejected {
			if err := closeClaim(ctx, qtx, claim, step.ClaimType, StatusRejected); err != nil {
				return err
			}
			out.result.Outcome = OutcomeHalted
			out.result.Message = "Workflow halted - Claim Rejected"
			return nil
		}

		next, err := qtx.FindStepByOrder(ctx, step.ClaimID, step.ClaimType, step.StepOrder+1)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if next == nil {
			if err := closeClaim(ctx, qtx, claim, step.ClaimType, StatusApproved); err != nil {
				return err
			}
			out.result.Outcome = OutcomeCompleted
			out.result.Message = "Workflow completed - Fully Approved"
			return nil
		}

		affected, err = qtx.AdvanceClaim(ctx, claim.ID, step.ClaimType, step.StepOrder, next.StepOrder)
		if err != nil {
			return err
		}
		if affected == 0 {
			return approvalerrors.ErrStepNotActionable
		}
		if _, err := qtx.ActivateStep(ctx, next.ID, now); err != nil {
			return err
		}
		next.ActivatedAt = &now
		claim.CurrentStep = next.StepOrder

		out.next = next
		out.result.Outcome = OutcomeAdvanced
		out.result.NextLevel = next.StepOrder
		out.result.Message = "Advanced to next level"
		return nil
	})
	if err != nil {
		return ProcessResult{}, err
	}

	metrics.RecordStepOutcome(out.result.ClaimType, string(out.result.Outcome))
	s.logger.Info("process step success",
		zap.String("step_id", stepID),
		zap.String("claim_id", out.result.ClaimID),
		zap.String("outcome", string(out.result.Outcome)),
		zap.Int("next_level", out.result.NextLevel),
	)
	s.notifyAfterProcess(ctx, out)

	return out.result, nil
}

func closeClaim(ctx context.Context, repo Repository, claim *ClaimState, claimType ClaimType, status string) error {
	affected, err := repo.CloseClaim(ctx, claim.ID, claimType, status)
	if err != nil {
		return err
	}
	if affected == 0 {
		return approvalerrors.ErrStepNotActionable
	}
	claim.Status = status
	return nil
}

func (s *service) notifyAfterProcess(ctx context.Context, p processed) {
	claimType := p.step.ClaimType

	switch p.result.Outcome {
	case OutcomeAdvanced:
		notification.Send(ctx, s.notifier, s.logger, p.next.ApproverID.String(),
			fmt.Sprintf("Escalated %s Claim", claimType),
			fmt.Sprintf("A request has been approved at level %d and requires your action.", p.step.StepOrder),
			notification.KindInfo,
		)
	case OutcomeCompleted:
		notification.Send(ctx, s.notifier, s.logger, p.claim.UserID.String(),
			fmt.Sprintf("%s Claim Approved", claimType),
			"Your request has been approved at every level.",
			notification.KindSuccess,
		)
	case OutcomeHalted:
		msg := fmt.Sprintf("Your request was rejected at level %d.", p.step.StepOrder)
		if p.step.Comments != nil && *p.step.Comments != "" {
			msg += " Comments: " + *p.step.Comments
		}
		notification.Send(ctx, s.notifier, s.logger, p.claim.UserID.String(),
			fmt.Sprintf("%s Claim Rejected", claimType), msg, notification.KindWarning,
		)
	}
}

func (s *service) PendingForApprover(ctx context.Context, approverID string) ([]StepResponse, error) {
	id, err := uuid.Parse(approverID)
	if err != nil {
		return nil, approvalerrors.ErrInvalidApproverID
	}

	steps, err := s.repo.ListActionable(ctx, id)
	if err != nil {
		s.logger.Error("list pending approvals failed", zap.String("approver_id", approverID), zap.Error(err))
		return nil, err
	}
	return mapToStepListResponse(steps), nil
}

func (s *service) ListChain(ctx context.Context, claimID, claimType string) ([]StepResponse, error) {
	ct, ok := ParseClaimType(strings.ToUpper(claimType))
	if !ok {
		return nil, approvalerrors.ErrInvalidClaimType
	}
	id, err := uuid.Parse(claimID)
	if err != nil {
		return nil, approvalerrors.ErrClaimNotFound
	}

	steps, err := s.repo.ListChain(ctx, id, ct)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, approvalerrors.ErrClaimNotFound
	}
	return mapToStepListResponse(steps), nil
}
