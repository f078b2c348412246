package analyzer

import (
	"testing"

	"github.com/campusworks/integrity-service/internal/models"
)

func TestRenderEvidenceEmptySide(t *testing.T) {
	report := RenderEvidence("", "some text", models.EvidenceMeta{LeftID: "a", RightID: "b"})

	if report.Sufficient {
		t.Error("report with empty side marked sufficient")
	}
	if report.Reason == "" {
		t.Error("insufficient report has no reason")
	}
	if len(report.Rows) != 0 {
		t.Errorf("insufficient report has %d rows, want 0", len(report.Rows))
	}
}

func TestRenderEvidenceIdentical(t *testing.T) {
	text := "line one\nline two\nline three"
	report := RenderEvidence(text, text, models.EvidenceMeta{LeftID: "a", RightID: "b", Score: 100.0})

	if !report.Sufficient {
		t.Fatal("report marked insufficient for identical texts")
	}
	if report.MatchedLines != 3 {
		t.Errorf("MatchedLines = %d, want 3", report.MatchedLines)
	}
	for i, row := range report.Rows {
		if row.Kind != models.RowMatch {
			t.Errorf("row %d kind = %s, want match", i, row.Kind)
		}
		if row.LeftLine != i+1 || row.RightLine != i+1 {
			t.Errorf("row %d lines = (%d, %d), want (%d, %d)", i, row.LeftLine, row.RightLine, i+1, i+1)
		}
	}
}

func TestRenderEvidenceAlignment(t *testing.T) {
	left := "shared one\nleft only\nshared two"
	right := "shared one\nright only\nshared two"

	report := RenderEvidence(left, right, models.EvidenceMeta{LeftID: "a", RightID: "b"})

	if !report.Sufficient {
		t.Fatal("report marked insufficient")
	}
	if report.MatchedLines != 2 {
		t.Errorf("MatchedLines = %d, want 2", report.MatchedLines)
	}
	if report.LeftLines != 3 || report.RightLines != 3 {
		t.Errorf("line counts = (%d, %d), want (3, 3)", report.LeftLines, report.RightLines)
	}

	var matches, leftOnly, rightOnly int
	for _, row := range report.Rows {
		switch row.Kind {
		case models.RowMatch:
			matches++
			if row.LeftText != row.RightText {
				t.Errorf("match row has differing texts: %q vs %q", row.LeftText, row.RightText)
			}
		case models.RowLeftOnly:
			leftOnly++
		case models.RowRightOnly:
			rightOnly++
		}
	}

	if matches != 2 || leftOnly != 1 || rightOnly != 1 {
		t.Errorf("rows = %d match, %d left, %d right; want 2, 1, 1", matches, leftOnly, rightOnly)
	}
}

// The matched-line total in a report and the similarity score must describe
// the same alignment.
func TestRenderEvidenceAgreesWithScore(t *testing.T) {
	left := "alpha\nbeta\ngamma\ndelta"
	right := "alpha\nbeta\nchanged\ndelta"

	report := RenderEvidence(left, right, models.EvidenceMeta{LeftID: "a", RightID: "b"})
	score := Compare(left, right)

	want := roundScore(2.0 * float64(report.MatchedLines) /
		float64(report.LeftLines+report.RightLines) * 100.0)
	if score != want {
		t.Errorf("Compare = %v but evidence alignment implies %v", score, want)
	}
}

func TestRenderEvidenceCoversAllLines(t *testing.T) {
	left := "a\nb\nc\nd"
	right := "b\nx\nd"

	report := RenderEvidence(left, right, models.EvidenceMeta{LeftID: "a", RightID: "b"})

	var leftSeen, rightSeen int
	for _, row := range report.Rows {
		if row.LeftLine != 0 {
			leftSeen++
		}
		if row.RightLine != 0 {
			rightSeen++
		}
	}

	if leftSeen != report.LeftLines {
		t.Errorf("rows cover %d left lines, want %d", leftSeen, report.LeftLines)
	}
	if rightSeen != report.RightLines {
		t.Errorf("rows cover %d right lines, want %d", rightSeen, report.RightLines)
	}
}

func TestRenderEvidenceMatchedRanges(t *testing.T) {
	left := "one\ntwo\nthree"
	right := "zero\none\ntwo\nthree"

	report := RenderEvidence(left, right, models.EvidenceMeta{LeftID: "a", RightID: "b"})

	if len(report.LeftMatched) != 1 || len(report.RightMatched) != 1 {
		t.Fatalf("matched ranges = %+v / %+v, want one range each", report.LeftMatched, report.RightMatched)
	}

	if got, want := report.LeftMatched[0], (models.LineRange{Start: 1, End: 3}); got != want {
		t.Errorf("LeftMatched = %+v, want %+v", got, want)
	}
	if got, want := report.RightMatched[0], (models.LineRange{Start: 2, End: 4}); got != want {
		t.Errorf("RightMatched = %+v, want %+v", got, want)
	}
}
