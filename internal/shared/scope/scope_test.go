package scope_test

import (
	"testing"
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/scope"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scopedRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid"`
	Status    string
	CreatedAt time.Time
}

func TestScopes(t *testing.T) {
	db, _ := testdb.Open(t, &scopedRow{})
	alice, bob := uuid.New(), uuid.New()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&[]scopedRow{
		{ID: uuid.New(), UserID: alice, Status: "PENDING", CreatedAt: base},
		{ID: uuid.New(), UserID: alice, Status: "APPROVED", CreatedAt: base.Add(time.Hour)},
		{ID: uuid.New(), UserID: bob, Status: "PENDING", CreatedAt: base.Add(2 * time.Hour)},
	}).Error)

	var mine []scopedRow
	require.NoError(t, db.Scopes(scope.OwnedBy(alice), scope.NewestFirst).Find(&mine).Error)
	require.Len(t, mine, 2)
	assert.Equal(t, "APPROVED", mine[0].Status)

	var pending []scopedRow
	require.NoError(t, db.Scopes(scope.WithStatus("PENDING")).Find(&pending).Error)
	assert.Len(t, pending, 2)

	var all []scopedRow
	require.NoError(t, db.Scopes(scope.WithStatus("")).Find(&all).Error)
	assert.Len(t, all, 3)
}
