package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"calc_service/internal/api/middleware"
	"calc_service/internal/app/service"
	"calc_service/internal/common"
	"calc_service/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type CalculationHandler struct {
	calcService *service.CalculationService
}

func NewCalculationHandler(cs *service.CalculationService) *CalculationHandler {
	return &CalculationHandler{calcService: cs}
}

func (h *CalculationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.createCalculation)
	r.Get("/", h.listCalculations)
	r.Get("/{calculationID}", h.getCalculation)
	r.Put("/{calculationID}", h.updateCalculation)
	r.Delete("/{calculationID}", h.deleteCalculation)
}

func (h *CalculationHandler) createCalculation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateCalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	calc, err := h.calcService.Create(r.Context(), user.ID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, calc)
}

func (h *CalculationHandler) listCalculations(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	calcs, total, err := h.calcService.List(r.Context(), user.ID, page, pageSize)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	type PaginatedCalculationsResponse struct {
		Calculations []model.Calculation `json:"calculations"`
		Total        int                 `json:"total"`
		Page         int                 `json:"page"`
		PageSize     int                 `json:"page_size"`
	}
	common.RespondWithJSON(w, http.StatusOK, PaginatedCalculationsResponse{
		Calculations: calcs,
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
	})
}

func (h *CalculationHandler) getCalculation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	calc, err := h.calcService.Get(r.Context(), user.ID, chi.URLParam(r, "calculationID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, calc)
}

func (h *CalculationHandler) updateCalculation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.UpdateCalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	calc, err := h.calcService.Update(r.Context(), user.ID, chi.URLParam(r, "calculationID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, calc)
}

func (h *CalculationHandler) deleteCalculation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	if err := h.calcService.Delete(r.Context(), user.ID, chi.URLParam(r, "calculationID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
