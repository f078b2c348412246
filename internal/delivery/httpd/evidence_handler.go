package httpd

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusworks/integrity-service/internal/models"
	"github.com/campusworks/integrity-service/pkg/utils"
)

// GetEvidence renders the aligned diff for an arbitrary stored pair.
// format=html returns a reviewer-facing side-by-side table instead of JSON.
func (h *Handler) GetEvidence(w http.ResponseWriter, r *http.Request) {
	leftID := chi.URLParam(r, "left_id")
	rightID := chi.URLParam(r, "right_id")
	if !utils.ValidateUUID(leftID) || !utils.ValidateUUID(rightID) {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid submission id")
		return
	}

	report, err := h.evidenceService.GetEvidence(r.Context(), leftID, rightID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeEvidence(w, r, report)
}

func (h *Handler) GetEvidenceForVerdict(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "submission_id")
	if !utils.ValidateUUID(submissionID) {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid submission id")
		return
	}

	report, err := h.evidenceService.GetEvidenceForVerdict(r.Context(), submissionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeEvidence(w, r, report)
}

func (h *Handler) writeEvidence(w http.ResponseWriter, r *http.Request, report *models.EvidenceReport) {
	if r.URL.Query().Get("format") != "html" {
		utils.SuccessResponse(w, report)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := evidenceTemplate.Execute(w, report); err != nil {
		h.logger.Error().Err(err).Msg("Failed to render evidence template")
	}
}

var evidenceTemplate = template.Must(template.New("evidence").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Similarity evidence {{.Meta.LeftID}} vs {{.Meta.RightID}}</title>
<style>
body { font-family: monospace; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #ccc; padding: 2px 6px; vertical-align: top; }
td.num { color: #888; text-align: right; width: 3em; }
tr.match td { background: #fff3cd; }
tr.left_only td, tr.right_only td { background: #f8f9fa; }
</style>
</head>
<body>
<h2>Similarity evidence</h2>
<p>
	Left: {{.Meta.LeftID}}{{if .Meta.LeftSubmitter}} ({{.Meta.LeftSubmitter}}){{end}}<br>
	Right: {{.Meta.RightID}}{{if .Meta.RightSubmitter}} ({{.Meta.RightSubmitter}}){{end}}<br>
	Score: {{printf "%.2f" .Meta.Score}}%
</p>
{{if not .Sufficient}}
<p><em>{{.Reason}}</em></p>
{{else}}
<table>
<tr><th colspan="2">Left</th><th colspan="2">Right</th></tr>
{{range .Rows}}
<tr class="{{.Kind}}">
	<td class="num">{{if .LeftLine}}{{.LeftLine}}{{end}}</td>
	<td>{{.LeftText}}</td>
	<td class="num">{{if .RightLine}}{{.RightLine}}{{end}}</td>
	<td>{{.RightText}}</td>
</tr>
{{end}}
</table>
{{end}}
</body>
</html>
`))
