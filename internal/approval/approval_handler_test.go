package approval_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/approval"
	approvalerrors "github.com/Ashokvp-05/hr-management-system-sub000/internal/approval/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApprovalService struct {
	approval.Service
	processFn func(ctx context.Context, stepID, approverID string, req approval.ProcessStepRequest) (approval.ProcessResult, error)
}

func (f *fakeApprovalService) Process(ctx context.Context, stepID, approverID string, req approval.ProcessStepRequest) (approval.ProcessResult, error) {
	return f.processFn(ctx, stepID, approverID, req)
}

func TestApprovalHandler_Process(t *testing.T) {
	perform := func(h *approval.Handler, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/approvals/steps/s-1/process", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "stepId", Value: "s-1"}}
		c.Set("user_id", "u-1")
		h.Process(c)
		return w
	}

	t.Run("advanced", func(t *testing.T) {
		h := approval.NewHandler(&fakeApprovalService{processFn: func(ctx context.Context, stepID, approverID string, req approval.ProcessStepRequest) (approval.ProcessResult, error) {
			assert.Equal(t, "s-1", stepID)
			assert.Equal(t, "u-1", approverID)
			return approval.ProcessResult{Outcome: approval.OutcomeAdvanced, NextLevel: 2}, nil
		}})

		w := perform(h, `{"decision":"APPROVED"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var env struct {
			Data approval.ProcessResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, approval.OutcomeAdvanced, env.Data.Outcome)
		assert.Equal(t, 2, env.Data.NextLevel)
	})

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", approvalerrors.ErrStepNotFound, http.StatusNotFound},
		{"wrong approver", approvalerrors.ErrNotAssignedApprover, http.StatusForbidden},
		{"already processed", approvalerrors.ErrAlreadyProcessed, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := approval.NewHandler(&fakeApprovalService{processFn: func(ctx context.Context, stepID, approverID string, req approval.ProcessStepRequest) (approval.ProcessResult, error) {
				return approval.ProcessResult{}, tc.err
			}})

			w := perform(h, `{"decision":"REJECTED","comments":"no"}`)

			assert.Equal(t, tc.status, w.Code)
		})
	}

	t.Run("bad decision", func(t *testing.T) {
		w := perform(approval.NewHandler(&fakeApprovalService{}), `{"decision":"LATER"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
