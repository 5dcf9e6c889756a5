package handler

import (
	"net/http"
	"strconv"

	"medassist/internal/converter"
	"medassist/internal/delivery/dto"
	"medassist/internal/usecase"
	"medassist/pkg/response"

	"github.com/gorilla/mux"
)

// DashboardHandler serves the staff dashboard reads: unread emergency alerts
// and the recent audit trail.
type DashboardHandler struct {
	dashboardUsecase usecase.DashboardUsecase
}

func NewDashboardHandler(dashboardUsecase usecase.DashboardUsecase) *DashboardHandler {
	return &DashboardHandler{dashboardUsecase: dashboardUsecase}
}

func (h *DashboardHandler) GetUnreadAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.dashboardUsecase.UnreadAlerts(r.Context(), limitQuery(r))
	if err != nil {
		respondError(w, err, "Failed to list alerts")
		return
	}

	response.Success(w, http.StatusOK, "Unread alerts retrieved successfully", dto.AlertListResponse{
		Alerts: converter.AlertsToResponses(alerts),
		Total:  len(alerts),
	})
}

func (h *DashboardHandler) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid alert ID", nil)
		return
	}

	if err := h.dashboardUsecase.MarkAlertRead(r.Context(), id); err != nil {
		respondError(w, err, "Failed to mark alert as read")
		return
	}

	response.Success(w, http.StatusOK, "Alert marked as read", nil)
}

func (h *DashboardHandler) GetRecentActivity(w http.ResponseWriter, r *http.Request) {
	logs, err := h.dashboardUsecase.RecentActivity(r.Context(), limitQuery(r))
	if err != nil {
		respondError(w, err, "Failed to list audit trail")
		return
	}

	response.Success(w, http.StatusOK, "Audit trail retrieved successfully", dto.ActivityListResponse{
		Entries: converter.AuditLogsToResponses(logs),
		Total:   len(logs),
	})
}

// limitQuery reads the optional limit query parameter; the usecase clamps it.
func limitQuery(r *http.Request) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0
	}
	limit, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return limit
}
