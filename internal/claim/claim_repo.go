package claim

import (
	"context"
	"database/sql"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/dbtx"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateExpense(ctx context.Context, c *ExpenseClaim) error
	CreateAdvance(ctx context.Context, a *SalaryAdvance) error
	FindExpenseByID(ctx context.Context, id uuid.UUID) (*ExpenseClaim, error)
	FindAdvanceByID(ctx context.Context, id uuid.UUID) (*SalaryAdvance, error)
	ListExpensesByUser(ctx context.Context, userID uuid.UUID) ([]ExpenseClaim, error)
	ListAdvancesByUser(ctx context.Context, userID uuid.UUID) ([]SalaryAdvance, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) CreateExpense(ctx context.Context, c *ExpenseClaim) error {
	return dbtx.Session(ctx, r.db, r.tx).Create(c).Error
}

func (r *repository) CreateAdvance(ctx context.Context, a *SalaryAdvance) error {
	return dbtx.Session(ctx, r.db, r.tx).Create(a).Error
}

func (r *repository) FindExpenseByID(ctx context.Context, id uuid.UUID) (*ExpenseClaim, error) {
	var c ExpenseClaim
	if err := dbtx.Session(ctx, r.db, r.tx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) FindAdvanceByID(ctx context.Context, id uuid.UUID) (*SalaryAdvance, error) {
	var a SalaryAdvance
	if err := dbtx.Session(ctx, r.db, r.tx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) ListExpensesByUser(ctx context.Context, userID uuid.UUID) ([]ExpenseClaim, error) {
	var out []ExpenseClaim
	err := dbtx.Session(ctx, r.db, r.tx).
		Scopes(scope.OwnedBy(userID), scope.NewestFirst).
		Find(&out).Error
	return out, err
}

func (r *repository) ListAdvancesByUser(ctx context.Context, userID uuid.UUID) ([]SalaryAdvance, error) {
	var out []SalaryAdvance
	err := dbtx.Session(ctx, r.db, r.tx).
		Scopes(scope.OwnedBy(userID), scope.NewestFirst).
		Find(&out).Error
	return out, err
}
