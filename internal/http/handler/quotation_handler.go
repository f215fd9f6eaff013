package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/qes/quotation-api/internal/service"
	"go.uber.org/zap"
)

type QuotationHandler struct {
	quotationService *service.QuotationService
	logger           *zap.Logger
}

func NewQuotationHandler(quotationService *service.QuotationService, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		logger:           logger,
	}
}

func parseQuotationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// @Summary List quotations
// @Description Non-admin users only see quotations they created.
// @Tags Quotations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(10)
// @Param search query string false "Matches number, customer name, email or company"
// @Param status query string false "Status filter" Enums(all, in_process, revised, complete, failed)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.QuotationSummaryDTO}
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /quotations [get]
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	filter := domain.ListQuotationsFilter{
		Page:   page,
		Limit:  limit,
		Search: query.Get("search"),
	}
	if status := query.Get("status"); status != "" && status != "all" {
		s := domain.QuotationStatus(status)
		filter.Status = &s
	}

	result, err := h.quotationService.List(r.Context(), p, filter)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to list quotations")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary List deleted quotations
// @Description The recycle bin, most recently deleted first.
// @Tags Quotations
// @Produce json
// @Success 200 {array} domain.QuotationSummaryDTO
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /quotations/deleted [get]
func (h *QuotationHandler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	result, err := h.quotationService.ListDeleted(r.Context(), p)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to list deleted quotations")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Create quotation
// @Description Prices the items from the catalog, assigns the next number of the month and records the initial history entry.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body domain.CreateQuotationRequest true "Quotation data"
// @Success 201 {object} domain.QuotationDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Product not found"
// @Failure 409 {object} domain.APIError "Number allocation conflict"
// @Security BearerAuth
// @Router /quotations [post]
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req domain.CreateQuotationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.Create(r.Context(), p, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to create quotation")
		return
	}

	w.Header().Set("Location", "/api/v1/quotations/"+quotation.ID.String())
	respondJSON(w, http.StatusCreated, quotation)
}

// @Summary Get quotation
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotations/{id} [get]
func (h *QuotationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := parseQuotationID(w, r)
	if !ok {
		return
	}

	quotation, err := h.quotationService.GetByID(r.Context(), p, id)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get quotation")
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Update quotation
// @Description Partial update. A substantive change increments the revision and records before/after snapshots;
// @Description status may only be set to complete or failed, after which the quotation is locked.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.UpdateQuotationRequest true "Fields to change"
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError "Not the creator, or quotation completed / failed"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotations/{id} [put]
func (h *QuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := parseQuotationID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateQuotationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.Update(r.Context(), p, id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to update quotation")
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Delete quotation
// @Description Moves the quotation to the recycle bin.
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotations/{id} [delete]
func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := parseQuotationID(w, r)
	if !ok {
		return
	}

	if err := h.quotationService.SoftDelete(r.Context(), p, id); err != nil {
		handleServiceError(w, h.logger, err, "Failed to delete quotation")
		return
	}

	respondJSON(w, http.StatusOK, domain.MessageResponse{Message: "Quotation moved to recycle bin"})
}

// @Summary Restore quotation
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Quotation is not deleted"
// @Security BearerAuth
// @Router /quotations/{id}/restore [put]
func (h *QuotationHandler) Restore(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := parseQuotationID(w, r)
	if !ok {
		return
	}

	quotation, err := h.quotationService.Restore(r.Context(), p, id)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to restore quotation")
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Permanently delete quotation
// @Description Admin only. The quotation and its history are archived to storage before the rows are removed.
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotations/{id}/permanent [delete]
func (h *QuotationHandler) DeletePermanently(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := parseQuotationID(w, r)
	if !ok {
		return
	}

	if err := h.quotationService.DeletePermanently(r.Context(), p, id); err != nil {
		handleServiceError(w, h.logger, err, "Failed to permanently delete quotation")
		return
	}

	respondJSON(w, http.StatusOK, domain.MessageResponse{Message: "Quotation permanently deleted"})
}

// @Summary Quotation history
// @Description Status history, oldest first. Revision entries carry before/after snapshots.
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {array} domain.StatusHistoryDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotations/{id}/history [get]
func (h *QuotationHandler) History(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := parseQuotationID(w, r)
	if !ok {
		return
	}

	history, err := h.quotationService.History(r.Context(), p, id)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get quotation history")
		return
	}

	respondJSON(w, http.StatusOK, history)
}
