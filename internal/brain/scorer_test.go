package brain

import (
	"testing"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
)

func enrichedNamed(name string) *domain.EnrichedMeal {
	return &domain.EnrichedMeal{
		Raw: domain.RawMeal{SourceType: "test", SourceID: "1", Name: name},
	}
}

func TestNameScoreSymmetry(t *testing.T) {
	s := NewScorer(DefaultConfig())

	// Identical after normalization scores a full 1.0.
	got := s.nameScore("paneer butter masala", "paneer butter masala")
	if got < 0.999 {
		t.Errorf("identical names scored %f, want 1.0", got)
	}

	// An unrelated dish scores near zero.
	got = s.nameScore("paneer butter masala", "banana smoothie")
	if got > 0.35 {
		t.Errorf("unrelated names scored %f, want near 0", got)
	}

	// Empty strings score zero.
	if got := s.nameScore("", "paneer butter masala"); got != 0 {
		t.Errorf("empty query scored %f, want 0", got)
	}
	if got := s.nameScore("paneer butter masala", ""); got != 0 {
		t.Errorf("empty candidate scored %f, want 0", got)
	}
}

func TestSequenceRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "chole", "chole", 1.0, 1.0},
		{"near spelling", "chole bhature", "chole bhatura", 0.85, 0.99},
		{"both empty", "", "", 1.0, 1.0},
		{"one empty", "chole", "", 0.0, 0.0},
		{"unrelated", "xyzzy", "qwert", 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sequenceRatio(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("sequenceRatio(%q, %q) = %f, want in [%f, %f]", tt.a, tt.b, got, tt.min, tt.max)
			}
		})
	}
}

func TestTokenJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "chana masala", "chana masala", 1.0},
		{"reordered", "masala chana", "chana masala", 1.0},
		{"extra adjective", "butter chicken", "creamy butter chicken", 2.0 / 3.0},
		{"disjoint", "idli", "dosa", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenJaccard(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("tokenJaccard(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPickBestRelevanceNormalization(t *testing.T) {
	s := NewScorer(DefaultConfig())
	enriched := enrichedNamed("Chole")

	candidates := []Candidate{
		{ID: "a", Title: "Chole", TitleNormalized: "chole", Relevance: 9.0, HasRelevance: true},
		{ID: "b", Title: "Banana Smoothie", TitleNormalized: "banana smoothie", Relevance: 1.0, HasRelevance: true},
	}

	best := s.PickBest(enriched, candidates)
	if best == nil {
		t.Fatal("expected a best candidate")
	}
	if best.Candidate.ID != "a" {
		t.Errorf("best = %q, want a", best.Candidate.ID)
	}
	// Max relevance plus exact name match: the blend saturates at 1.0.
	if best.Final < 0.999 {
		t.Errorf("best final = %f, want 1.0", best.Final)
	}
	if best.RelScore < 0.999 {
		t.Errorf("best rel score = %f, want 1.0 after min-max normalization", best.RelScore)
	}
}

func TestPickBestZeroRelevanceSpread(t *testing.T) {
	s := NewScorer(DefaultConfig())
	enriched := enrichedNamed("Chole")

	// Fallback-path candidates all carry zero relevance; the relevance term
	// must contribute nothing rather than poisoning the whole score.
	candidates := []Candidate{
		{ID: "a", Title: "Chole", TitleNormalized: "chole"},
		{ID: "b", Title: "Chole Bhature", TitleNormalized: "chole bhature"},
	}

	best := s.PickBest(enriched, candidates)
	if best == nil {
		t.Fatal("expected a best candidate")
	}
	if best.Candidate.ID != "a" {
		t.Errorf("best = %q, want a", best.Candidate.ID)
	}
	if best.RelScore != 0 {
		t.Errorf("rel score = %f, want 0 on zero spread", best.RelScore)
	}
	want := DefaultConfig().NameWeight // name score is exactly 1.0
	if diff := best.Final - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("final = %f, want %f", best.Final, want)
	}
}

func TestPickBestTieKeepsFirstSeen(t *testing.T) {
	s := NewScorer(DefaultConfig())
	enriched := enrichedNamed("Chole")

	candidates := []Candidate{
		{ID: "first", Title: "Chole", TitleNormalized: "chole"},
		{ID: "second", Title: "Chole", TitleNormalized: "chole"},
	}

	best := s.PickBest(enriched, candidates)
	if best == nil || best.Candidate.ID != "first" {
		t.Fatalf("tie must keep the first-seen candidate, got %+v", best)
	}
}

func TestPickBestEmptyPool(t *testing.T) {
	s := NewScorer(DefaultConfig())
	if best := s.PickBest(enrichedNamed("Chole"), nil); best != nil {
		t.Errorf("expected nil best for empty candidate list, got %+v", best)
	}
}
