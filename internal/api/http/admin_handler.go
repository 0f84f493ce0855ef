package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/service"
)

const (
	defaultRecentLimit       = 5
	defaultActiveDonorsLimit = 10
)

type AdminHandler struct {
	userSvc         service.UserService
	donationSvc     service.DonationService
	requestSvc      service.RequestService
	inventorySvc    service.InventoryService
	reportSvc       service.ReportService
	notificationSvc service.NotificationService
}

func NewAdminHandler(
	userSvc service.UserService,
	donationSvc service.DonationService,
	requestSvc service.RequestService,
	inventorySvc service.InventoryService,
	reportSvc service.ReportService,
	notificationSvc service.NotificationService,
) *AdminHandler {
	return &AdminHandler{
		userSvc:         userSvc,
		donationSvc:     donationSvc,
		requestSvc:      requestSvc,
		inventorySvc:    inventorySvc,
		reportSvc:       reportSvc,
		notificationSvc: notificationSvc,
	}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reportSvc.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) RecentDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.donationSvc.Recent(r.Context(), queryInt32(r, "limit", defaultRecentLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(donations))
}

func (h *AdminHandler) RecentRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requestSvc.Recent(r.Context(), queryInt32(r, "limit", defaultRecentLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(requests))
}

// Users

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userSvc.ListUsers(r.Context(), domain.Role(r.URL.Query().Get("role")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userSvc.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.userSvc.UpdateUser(r.Context(), mux.Vars(r)["id"], req.update())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userSvc.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// Donations and requests

func (h *AdminHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	donations, err := h.donationSvc.List(r.Context(), domain.DonationFilter{
		DonorID: q.Get("donorId"),
		Status:  domain.DonationStatus(q.Get("status")),
		Limit:   queryInt32(r, "limit", 0),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(donations))
}

func (h *AdminHandler) SetDonationStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	donation, err := h.donationSvc.SetStatus(r.Context(), mux.Vars(r)["id"], domain.DonationStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donation)
}

func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requests, err := h.requestSvc.List(r.Context(), domain.RequestFilter{
		RecipientID: q.Get("recipientId"),
		Status:      domain.RequestStatus(q.Get("status")),
		Limit:       queryInt32(r, "limit", 0),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(requests))
}

func (h *AdminHandler) SetRequestStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.requestSvc.SetStatus(r.Context(), mux.Vars(r)["id"], domain.RequestStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Reports

func period(r *http.Request) domain.ReportPeriod {
	return domain.ReportPeriod(r.URL.Query().Get("period"))
}

func (h *AdminHandler) DonationReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.DonationReport(r.Context(), period(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) RequestReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.RequestReport(r.Context(), period(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) InventoryReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.InventoryReport(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) ActiveDonors(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.ActiveDonors(r.Context(), queryInt32(r, "limit", defaultActiveDonorsLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) ExportDonationReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.DonationReport(r.Context(), period(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := DonationReportWorkbook(report)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeWorkbook(w, fmt.Sprintf("donations-%s-%s.xlsx", report.Period, report.Since.Format("20060102")), data)
}

func (h *AdminHandler) ExportRequestReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.RequestReport(r.Context(), period(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := RequestReportWorkbook(report)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeWorkbook(w, fmt.Sprintf("requests-%s-%s.xlsx", report.Period, report.Since.Format("20060102")), data)
}

// Notifications

func (h *AdminHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	var req BroadcastRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.notificationSvc.Broadcast(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	feed, err := h.notificationSvc.LowStockFeed(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

func (h *AdminHandler) LowStockAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.inventorySvc.LowStock(r.Context(), queryInt32(r, "threshold", 0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(alerts))
}

func writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
