package rating

import (
	"testing"

	"github.com/avelichko/storycircle/internal/model"
)

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	s := Summarize(nil, "u1")
	if s.Count != 0 || s.Average != 0 || s.Rated {
		t.Fatalf("empty summary mismatch: %+v", s)
	}
}

func TestSummarize_AverageAndOwn(t *testing.T) {
	t.Parallel()

	entries := []model.EmpathyRating{
		{UserID: "u1", Rating: 4},
		{UserID: "u2", Rating: 2},
		{UserID: "u3", Rating: 3},
	}

	s := Summarize(entries, "u2")
	if s.Count != 3 {
		t.Fatalf("count=%d, want 3", s.Count)
	}
	if s.Average != 3.0 {
		t.Fatalf("average=%v, want 3.0", s.Average)
	}
	if !s.Rated || s.Own != 2 {
		t.Fatalf("own rating mismatch: %+v", s)
	}
}

func TestSummarize_ViewerNotRated(t *testing.T) {
	t.Parallel()

	entries := []model.EmpathyRating{{UserID: "u1", Rating: 5}}
	s := Summarize(entries, "u9")
	if s.Rated || s.Own != 0 {
		t.Fatalf("want no own rating: %+v", s)
	}
	if s.Average != 5.0 || s.Count != 1 {
		t.Fatalf("aggregate mismatch: %+v", s)
	}
}

func TestSummarize_AnonymousViewer(t *testing.T) {
	t.Parallel()

	entries := []model.EmpathyRating{{UserID: "", Rating: 1}}
	// an empty viewer id must never match an entry
	if s := Summarize(entries, ""); s.Rated {
		t.Fatalf("anonymous viewer matched an entry: %+v", s)
	}
}
