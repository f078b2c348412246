package httpd

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campusworks/integrity-service/internal/service"
	"github.com/campusworks/integrity-service/internal/service/analyzer"
	"github.com/campusworks/integrity-service/pkg/utils"
)

// SubmitDocument accepts a multipart upload with a "file" part plus
// partition_key and submitter_id form fields. With async=true the response
// returns before analysis; the verdict arrives through the queue.
func (h *Handler) SubmitDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	partitionKey := r.FormValue("partition_key")
	submitterID := r.FormValue("submitter_id")
	if partitionKey == "" || submitterID == "" {
		utils.ErrorResponse(w, http.StatusBadRequest, "partition_key and submitter_id are required")
		return
	}

	async := false
	if v := r.FormValue("async"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			utils.ErrorResponse(w, http.StatusBadRequest, "async must be a boolean")
			return
		}
		async = parsed
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	response, err := h.integrityService.Submit(r.Context(), service.SubmitInput{
		PartitionKey: partitionKey,
		SubmitterID:  submitterID,
		Filename:     header.Filename,
		Payload:      payload,
		Async:        async,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, response)
}

func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "submission_id")
	if !utils.ValidateUUID(submissionID) {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid submission id")
		return
	}

	submission, err := h.integrityService.GetSubmission(r.Context(), submissionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, submission)
}

// ReanalyzeSubmission re-runs the integrity check against the current corpus
// state and records a fresh verdict.
func (h *Handler) ReanalyzeSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "submission_id")
	if !utils.ValidateUUID(submissionID) {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid submission id")
		return
	}

	verdict, err := h.integrityService.Analyze(r.Context(), submissionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, verdict)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		utils.ErrorResponse(w, http.StatusNotFound, "Submission not found")
	case errors.Is(err, service.ErrVerdictNotFound):
		utils.ErrorResponse(w, http.StatusNotFound, "Verdict not found")
	case errors.Is(err, service.ErrEmptyPayload),
		errors.Is(err, analyzer.ErrInvalidInput):
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Request failed")
		utils.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}
