package httpd

import (
	"net/http"
	"time"

	"github.com/campusworks/integrity-service/pkg/utils"
)

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "integrity-service",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	}

	utils.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) GetServiceStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, err := h.integrityService.GetServiceStatus(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get service status")
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to get service status")
		return
	}

	if h.analysisWorker != nil {
		stats := h.analysisWorker.Stats()
		status.ActiveWorkers = stats.ActiveWorkers
		status.QueueLength = stats.QueueLength
	}

	utils.SuccessResponse(w, status)
}
