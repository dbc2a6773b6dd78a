package balance

import (
	"context"
	"database/sql"
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByUserYear(ctx context.Context, userID uuid.UUID, year int, forUpdate bool) (*LeaveBalance, error)
	FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*LeaveBalance, error)
	// CreateIfAbsent inserts b unless a row for (user, year) already exists.
	CreateIfAbsent(ctx context.Context, b *LeaveBalance) error
	// Debit subtracts days from field only while the field covers it and
	// reports how many rows changed.
	Debit(ctx context.Context, id uuid.UUID, field Field, days int) (int64, error)
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

func (r *repository) session(ctx context.Context, forUpdate bool) *gorm.DB {
	db := dbtx.Session(ctx, r.db, r.tx)
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func (r *repository) FindByUserYear(ctx context.Context, userID uuid.UUID, year int, forUpdate bool) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.session(ctx, forUpdate).
		Where("user_id = ? AND year = ?", userID, year).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*LeaveBalance, error) {
	var b LeaveBalance
	if err := r.session(ctx, forUpdate).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) CreateIfAbsent(ctx context.Context, b *LeaveBalance) error {
	return dbtx.Session(ctx, r.db, r.tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "year"}},
			DoNothing: true,
		}).
		Create(b).Error
}

func (r *repository) Debit(ctx context.Context, id uuid.UUID, field Field, days int) (int64, error) {
	col := string(field)
	res := dbtx.Session(ctx, r.db, r.tx).
		Model(&LeaveBalance{}).
		Where("id = ?", id).
		Where(col+" >= ?", days).
		Updates(map[string]any{
			col:          gorm.Expr(col+" - ?", days),
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
