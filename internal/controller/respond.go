package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Freeeeeet/course_select/internal/checkout"
	"github.com/Freeeeeet/course_select/internal/remote"
	"github.com/Freeeeeet/course_select/internal/store"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		c.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Every store failure
// reaches the caller as a visible payload, never just a log line.
func (c *Controller) writeError(w http.ResponseWriter, err error) {
	var authErr *remote.AuthError
	var callErr *remote.CallError

	switch {
	case errors.As(err, &authErr):
		c.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: authErr.Message})
	case errors.Is(err, store.ErrCourseNotFound):
		c.writeJSON(w, http.StatusNotFound, errorResponse{Error: "course not found"})
	case errors.As(err, &callErr):
		c.writeJSON(w, http.StatusBadGateway, errorResponse{Error: "操作失败，请稍后重试"})
	case errors.Is(err, checkout.ErrSubmitInProgress):
		c.writeJSON(w, http.StatusConflict, errorResponse{Error: "订单处理中，请稍候"})
	case errors.Is(err, checkout.ErrNoPendingConflict):
		c.writeJSON(w, http.StatusConflict, errorResponse{Error: "no pending conflict"})
	default:
		c.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// formatPrice renders a fee total the way the storefront shows it
func formatPrice(fee int) string {
	return fmt.Sprintf("¥ %d", fee)
}
