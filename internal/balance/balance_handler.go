package balance

import (
	"net/http"
	"strconv"
	"time"

	balanceerrors "github.com/Ashokvp-05/hr-management-system-sub000/internal/balance/errors"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/apperror"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("balance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("balance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// yearParam reads ?year=, defaulting to the current calendar year.
func yearParam(c *gin.Context) (int, error) {
	raw := c.Query("year")
	if raw == "" {
		return time.Now().UTC().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 {
		return 0, balanceerrors.ErrInvalidYear
	}
	return year, nil
}

func (h *Handler) GetMine(c *gin.Context) {
	h.get(c, c.GetString("user_id"))
}

func (h *Handler) GetByUser(c *gin.Context) {
	h.get(c, c.Param("userId"))
}

func (h *Handler) get(c *gin.Context, userID string) {
	year, err := yearParam(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetOrCreate(c.Request.Context(), userID, year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
