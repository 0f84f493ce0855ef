package http

import (
	"net/http"

	"bloodbank-backend/internal/service"
)

type DonorHandler struct {
	userSvc        service.UserService
	donationSvc    service.DonationService
	eligibilitySvc service.EligibilityService
}

func NewDonorHandler(userSvc service.UserService, donationSvc service.DonationService, eligibilitySvc service.EligibilityService) *DonorHandler {
	return &DonorHandler{userSvc: userSvc, donationSvc: donationSvc, eligibilitySvc: eligibilitySvc}
}

func (h *DonorHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.userSvc.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *DonorHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.userSvc.UpdateProfile(r.Context(), userID, req.update())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *DonorHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.eligibilitySvc.Check(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *DonorHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req ScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	donation, err := h.donationSvc.Schedule(r.Context(), userID, req.Date.Time, req.Location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, donation)
}

func (h *DonorHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	donations, err := h.donationSvc.History(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donations)
}
