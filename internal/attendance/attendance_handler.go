package attendance

import (
	"net/http"
	"time"

	"hrms/internal/middleware"
	"hrms/internal/shared/apperror"
	"hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("attendance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) CheckIn(c *gin.Context) {
	caller := middleware.Caller(c)

	resp, err := h.service.CheckIn(c.Request.Context(), caller.EmployeeID, time.Now().UTC())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) CheckOut(c *gin.Context) {
	caller := middleware.Caller(c)

	resp, err := h.service.CheckOut(c.Request.Context(), caller.EmployeeID, time.Now().UTC())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Today(c *gin.Context) {
	caller := middleware.Caller(c)

	resp, err := h.service.Today(c.Request.Context(), caller.EmployeeID, time.Now().UTC())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	// No row yet today is a normal state, not an error.
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) History(c *gin.Context) {
	caller := middleware.Caller(c)

	var filter HistoryFilter
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid from date, expected YYYY-MM-DD", nil)
			return
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid to date, expected YYYY-MM-DD", nil)
			return
		}
		filter.To = &t
	}

	resp, err := h.service.History(c.Request.Context(), caller.EmployeeID, filter, time.Now().UTC())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) WeeklySummary(c *gin.Context) {
	caller := middleware.Caller(c)

	ref := time.Now().UTC()
	if v := c.Query("date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid date, expected YYYY-MM-DD", nil)
			return
		}
		ref = t
	}

	resp, err := h.service.WeeklySummary(c.Request.Context(), caller.EmployeeID, ref)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) RecordManual(c *gin.Context) {
	caller := middleware.Caller(c)

	var req ManualRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http manual record validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.RecordManual(c.Request.Context(), caller, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListByDate(c *gin.Context) {
	date := time.Now().UTC()
	if v := c.Query("date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid date, expected YYYY-MM-DD", nil)
			return
		}
		date = t
	}

	resp, err := h.service.ListByDate(c.Request.Context(), ListByDateFilter{
		Date:       DateOnly(date),
		Department: c.Query("department"),
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
