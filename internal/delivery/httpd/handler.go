package httpd

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/campusworks/integrity-service/internal/service"
	"github.com/campusworks/integrity-service/internal/worker"
)

type Handler struct {
	integrityService service.IntegrityService
	evidenceService  service.EvidenceService
	analysisWorker   worker.AnalysisWorker
	maxUploadBytes   int64
	logger           zerolog.Logger
}

func NewHandler(
	integrityService service.IntegrityService,
	evidenceService service.EvidenceService,
	analysisWorker worker.AnalysisWorker,
	maxUploadBytes int64,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		integrityService: integrityService,
		evidenceService:  evidenceService,
		analysisWorker:   analysisWorker,
		maxUploadBytes:   maxUploadBytes,
		logger:           logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)
	router.Get("/status", h.GetServiceStatus)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/submissions", func(r chi.Router) {
			r.Post("/", h.SubmitDocument)
			r.Get("/{submission_id}", h.GetSubmission)
			r.Post("/{submission_id}/analyze", h.ReanalyzeSubmission)
		})

		api.Route("/verdicts", func(r chi.Router) {
			r.Get("/", h.SearchVerdicts)
			r.Get("/export", h.ExportVerdicts)
			r.Get("/submission/{submission_id}", h.GetVerdict)
		})

		api.Route("/evidence", func(r chi.Router) {
			r.Get("/submission/{submission_id}", h.GetEvidenceForVerdict)
			r.Get("/{left_id}/{right_id}", h.GetEvidence)
		})

		api.Get("/partitions/{partition_key}/stats", h.GetPartitionStats)
	})
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getFloatQueryParam(r *http.Request, key string) *float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}

	return &floatValue
}

func getStringQueryParam(r *http.Request, key string) *string {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil
	}
	return &value
}
