package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusworks/integrity-service/internal/models"
	"github.com/campusworks/integrity-service/pkg/utils"
)

func (h *Handler) GetVerdict(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "submission_id")
	if !utils.ValidateUUID(submissionID) {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid submission id")
		return
	}

	verdict, err := h.integrityService.GetVerdict(r.Context(), submissionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, verdict)
}

func (h *Handler) SearchVerdicts(w http.ResponseWriter, r *http.Request) {
	req := searchRequestFromQuery(r)

	response, err := h.integrityService.SearchVerdicts(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, response)
}

func (h *Handler) ExportVerdicts(w http.ResponseWriter, r *http.Request) {
	req := searchRequestFromQuery(r)

	data, err := h.evidenceService.ExportVerdictsCSV(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="verdicts.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) GetPartitionStats(w http.ResponseWriter, r *http.Request) {
	partitionKey := chi.URLParam(r, "partition_key")
	if partitionKey == "" {
		utils.ErrorResponse(w, http.StatusBadRequest, "Partition key is required")
		return
	}

	stats, err := h.integrityService.PartitionStats(r.Context(), partitionKey)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, stats)
}

func searchRequestFromQuery(r *http.Request) *models.SearchVerdictsRequest {
	req := &models.SearchVerdictsRequest{
		PartitionKey: getStringQueryParam(r, "partition_key"),
		SubmitterID:  getStringQueryParam(r, "submitter_id"),
		MinScore:     getFloatQueryParam(r, "min_score"),
		DateFrom:     getStringQueryParam(r, "date_from"),
		DateTo:       getStringQueryParam(r, "date_to"),
		Page:         getIntQueryParam(r, "page", 1),
		Limit:        getIntQueryParam(r, "limit", 20),
	}

	if v := r.URL.Query().Get("decision"); v != "" {
		decision := models.PolicyDecision(v)
		req.Decision = &decision
	}

	return req
}
