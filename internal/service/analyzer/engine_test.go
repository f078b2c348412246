package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusworks/integrity-service/internal/models"
)

type fakeCorpus struct {
	refs     []models.CorpusRef
	payloads map[string][]byte
	failing  map[string]bool
}

func (f *fakeCorpus) Partition(ctx context.Context, partitionKey, excludeID string) ([]models.CorpusRef, error) {
	var refs []models.CorpusRef
	for _, ref := range f.refs {
		if ref.ID != excludeID {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func (f *fakeCorpus) Payload(ctx context.Context, id string) ([]byte, error) {
	if f.failing[id] {
		return nil, errors.New("storage unavailable")
	}
	payload, ok := f.payloads[id]
	if !ok {
		return nil, errors.New("payload not found")
	}
	return payload, nil
}

func newTestEngine(workers int) Engine {
	return NewEngine(testRegistry(), NewExtractionCache(0), zerolog.Nop(), EngineConfig{MaxWorkers: workers})
}

func corpusRef(id, digest string, created time.Time) models.CorpusRef {
	return models.CorpusRef{ID: id, Digest: digest, Format: "txt", CreatedAt: created}
}

func TestFindBestMatchEmptyCorpus(t *testing.T) {
	engine := newTestEngine(2)
	corpus := &fakeCorpus{}

	verdict, err := engine.FindBestMatch(context.Background(), Subject{
		ID:           "sub-1",
		PartitionKey: "assignment-1",
		Digest:       DigestBytes([]byte("text")),
		Text:         "text",
	}, corpus)
	if err != nil {
		t.Fatalf("FindBestMatch returned error: %v", err)
	}

	if verdict.Score != 0.0 {
		t.Errorf("Score = %v, want 0.0", verdict.Score)
	}
	if verdict.BestMatchID != nil {
		t.Errorf("BestMatchID = %v, want nil", *verdict.BestMatchID)
	}
	if verdict.ComparedCount != 0 {
		t.Errorf("ComparedCount = %d, want 0", verdict.ComparedCount)
	}
}

func TestFindBestMatchInvalidSubject(t *testing.T) {
	engine := newTestEngine(2)

	_, err := engine.FindBestMatch(context.Background(), Subject{}, &fakeCorpus{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("FindBestMatch(empty subject) error = %v, want ErrInvalidInput", err)
	}
}

func TestFindBestMatchExactDuplicate(t *testing.T) {
	payload := []byte("identical submission content")
	digest := DigestBytes(payload)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	corpus := &fakeCorpus{
		refs: []models.CorpusRef{
			corpusRef("late-dup", digest, base.Add(time.Hour)),
			corpusRef("early-dup", digest, base),
			corpusRef("other", DigestBytes([]byte("different")), base),
		},
		payloads: map[string][]byte{
			"late-dup":  payload,
			"early-dup": payload,
			"other":     []byte("different"),
		},
	}

	engine := newTestEngine(2)
	verdict, err := engine.FindBestMatch(context.Background(), Subject{
		ID:           "sub-1",
		PartitionKey: "assignment-1",
		Digest:       digest,
		Text:         string(payload),
	}, corpus)
	if err != nil {
		t.Fatalf("FindBestMatch returned error: %v", err)
	}

	if verdict.Score != 100.0 {
		t.Errorf("Score = %v, want 100.0", verdict.Score)
	}
	if verdict.BestMatchID == nil || *verdict.BestMatchID != "early-dup" {
		t.Errorf("BestMatchID = %v, want early-dup", verdict.BestMatchID)
	}
	if verdict.ComparedCount != 1 {
		t.Errorf("ComparedCount = %d, want 1", verdict.ComparedCount)
	}
}

func TestFindBestMatchScansPartition(t *testing.T) {
	subjectText := "alpha\nbeta\ngamma\ndelta"
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	corpus := &fakeCorpus{
		refs: []models.CorpusRef{
			corpusRef("partial", DigestBytes([]byte("alpha\nbeta\nzzz")), base),
			corpusRef("unrelated", DigestBytes([]byte("one\ntwo")), base),
		},
		payloads: map[string][]byte{
			"partial":   []byte("alpha\nbeta\nzzz"),
			"unrelated": []byte("one\ntwo"),
		},
	}

	engine := newTestEngine(2)
	verdict, err := engine.FindBestMatch(context.Background(), Subject{
		ID:           "sub-1",
		PartitionKey: "assignment-1",
		Digest:       DigestBytes([]byte(subjectText)),
		Text:         subjectText,
	}, corpus)
	if err != nil {
		t.Fatalf("FindBestMatch returned error: %v", err)
	}

	if verdict.BestMatchID == nil || *verdict.BestMatchID != "partial" {
		t.Fatalf("BestMatchID = %v, want partial", verdict.BestMatchID)
	}
	if want := Compare(subjectText, "alpha\nbeta\nzzz"); verdict.Score != want {
		t.Errorf("Score = %v, want %v", verdict.Score, want)
	}
	if verdict.ComparedCount != 2 {
		t.Errorf("ComparedCount = %d, want 2", verdict.ComparedCount)
	}
}

func TestFindBestMatchTieBreakEarliestCreated(t *testing.T) {
	subjectText := "shared line\nunique subject"
	matchText := []byte("shared line\nunique corpus")
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	corpus := &fakeCorpus{
		refs: []models.CorpusRef{
			corpusRef("newer", DigestBytes(append([]byte(nil), matchText...)), base.Add(time.Hour)),
			corpusRef("older", DigestBytes(matchText), base),
		},
		payloads: map[string][]byte{
			"newer": matchText,
			"older": matchText,
		},
	}

	engine := newTestEngine(4)
	for i := 0; i < 5; i++ {
		verdict, err := engine.FindBestMatch(context.Background(), Subject{
			ID:           "sub-1",
			PartitionKey: "assignment-1",
			Digest:       DigestBytes([]byte(subjectText)),
			Text:         subjectText,
		}, corpus)
		if err != nil {
			t.Fatalf("FindBestMatch returned error: %v", err)
		}

		if verdict.BestMatchID == nil || *verdict.BestMatchID != "older" {
			t.Fatalf("run %d: BestMatchID = %v, want older", i, verdict.BestMatchID)
		}
	}
}

func TestFindBestMatchSkipsUnreadable(t *testing.T) {
	subjectText := "alpha\nbeta"
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	corpus := &fakeCorpus{
		refs: []models.CorpusRef{
			corpusRef("broken", DigestBytes([]byte("x")), base),
			corpusRef("good", DigestBytes([]byte("alpha\nother")), base),
		},
		payloads: map[string][]byte{
			"good": []byte("alpha\nother"),
		},
		failing: map[string]bool{"broken": true},
	}

	engine := newTestEngine(2)
	verdict, err := engine.FindBestMatch(context.Background(), Subject{
		ID:           "sub-1",
		PartitionKey: "assignment-1",
		Digest:       DigestBytes([]byte(subjectText)),
		Text:         subjectText,
	}, corpus)
	if err != nil {
		t.Fatalf("FindBestMatch returned error: %v", err)
	}

	if verdict.SkippedCount != 1 {
		t.Errorf("SkippedCount = %d, want 1", verdict.SkippedCount)
	}
	if verdict.ComparedCount != 1 {
		t.Errorf("ComparedCount = %d, want 1", verdict.ComparedCount)
	}
	if verdict.BestMatchID == nil || *verdict.BestMatchID != "good" {
		t.Errorf("BestMatchID = %v, want good", verdict.BestMatchID)
	}
}

func TestFindBestMatchEmptySubjectText(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	corpus := &fakeCorpus{
		refs: []models.CorpusRef{
			corpusRef("other", DigestBytes([]byte("content")), base),
		},
		payloads: map[string][]byte{
			"other": []byte("content"),
		},
	}

	engine := newTestEngine(2)
	verdict, err := engine.FindBestMatch(context.Background(), Subject{
		ID:           "sub-1",
		PartitionKey: "assignment-1",
		Digest:       DigestBytes([]byte{}),
		Text:         "",
	}, corpus)
	if err != nil {
		t.Fatalf("FindBestMatch returned error: %v", err)
	}

	if verdict.Score != 0.0 {
		t.Errorf("Score = %v, want 0.0", verdict.Score)
	}
	if verdict.ComparedCount != 0 {
		t.Errorf("ComparedCount = %d, want 0", verdict.ComparedCount)
	}
	if verdict.BestMatchID != nil {
		t.Errorf("BestMatchID = %v, want nil", *verdict.BestMatchID)
	}
}

func TestFindBestMatchCancelled(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	corpus := &fakeCorpus{
		refs: []models.CorpusRef{
			corpusRef("a", DigestBytes([]byte("aaa")), base),
			corpusRef("b", DigestBytes([]byte("bbb")), base),
		},
		payloads: map[string][]byte{
			"a": []byte("aaa"),
			"b": []byte("bbb"),
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newTestEngine(2)
	_, err := engine.FindBestMatch(ctx, Subject{
		ID:           "sub-1",
		PartitionKey: "assignment-1",
		Digest:       DigestBytes([]byte("subject")),
		Text:         "subject",
	}, corpus)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("FindBestMatch(cancelled ctx) error = %v, want context.Canceled", err)
	}
}
