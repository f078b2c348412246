package analyzer

import (
	"time"

	"github.com/campusworks/integrity-service/internal/models"
)

// RenderEvidence aligns two extracted texts line by line using the same
// longest-matching-block routine the similarity score is computed from.
// Scoring may fall back to word tokens for very short documents; the
// reviewer-facing view stays at line rows either way. Deterministic for the
// same pair of texts. If either side is empty the report is marked
// insufficient instead of producing a misleading diff.
func RenderEvidence(leftText, rightText string, meta models.EvidenceMeta) *models.EvidenceReport {
	report := &models.EvidenceReport{
		Meta:        meta,
		GeneratedAt: time.Now().UTC(),
	}

	left := splitLines(leftText)
	right := splitLines(rightText)
	report.LeftLines = len(left)
	report.RightLines = len(right)

	if len(left) == 0 || len(right) == 0 {
		report.Sufficient = false
		report.Reason = "insufficient content for comparison"
		return report
	}
	report.Sufficient = true

	blocks := matchingBlocks(left, right)

	li, ri := 0, 0
	for _, block := range blocks {
		for li < block.APos {
			report.Rows = append(report.Rows, models.EvidenceRow{
				Kind:     models.RowLeftOnly,
				LeftLine: li + 1,
				LeftText: left[li],
			})
			li++
		}
		for ri < block.BPos {
			report.Rows = append(report.Rows, models.EvidenceRow{
				Kind:      models.RowRightOnly,
				RightLine: ri + 1,
				RightText: right[ri],
			})
			ri++
		}

		for k := 0; k < block.Size; k++ {
			report.Rows = append(report.Rows, models.EvidenceRow{
				Kind:      models.RowMatch,
				LeftLine:  li + 1,
				RightLine: ri + 1,
				LeftText:  left[li],
				RightText: right[ri],
			})
			li++
			ri++
		}

		report.LeftMatched = append(report.LeftMatched, models.LineRange{
			Start: block.APos + 1,
			End:   block.APos + block.Size,
		})
		report.RightMatched = append(report.RightMatched, models.LineRange{
			Start: block.BPos + 1,
			End:   block.BPos + block.Size,
		})
		report.MatchedLines += block.Size
	}

	for li < len(left) {
		report.Rows = append(report.Rows, models.EvidenceRow{
			Kind:     models.RowLeftOnly,
			LeftLine: li + 1,
			LeftText: left[li],
		})
		li++
	}
	for ri < len(right) {
		report.Rows = append(report.Rows, models.EvidenceRow{
			Kind:      models.RowRightOnly,
			RightLine: ri + 1,
			RightText: right[ri],
		})
		ri++
	}

	return report
}
