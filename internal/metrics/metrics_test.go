package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(leaveDecisionsTotal.WithLabelValues("APPROVED"))
	RecordLeaveDecision("APPROVED")
	assert.Equal(t, before+1, testutil.ToFloat64(leaveDecisionsTotal.WithLabelValues("APPROVED")))

	before = testutil.ToFloat64(approvalStepOutcomesTotal.WithLabelValues("EXPENSE", "advanced"))
	RecordStepOutcome("EXPENSE", "advanced")
	assert.Equal(t, before+1, testutil.ToFloat64(approvalStepOutcomesTotal.WithLabelValues("EXPENSE", "advanced")))

	before = testutil.ToFloat64(escalationsRaisedTotal)
	RecordEscalations(3)
	assert.Equal(t, before+3, testutil.ToFloat64(escalationsRaisedTotal))
}

func TestUpdateDatabaseConnections_Nil(t *testing.T) {
	assert.Error(t, UpdateDatabaseConnections(nil))
}
