package brain

import (
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/normalize"
)

// Config carries the tunable knobs of the brain. The thresholds and blend
// weights were tuned empirically and are supplied by configuration so they
// can be re-validated without code changes.
type Config struct {
	TSame           float64 // confidently the same canonical dish
	TMaybe          float64 // plausible match; attach but mark needs_review
	NameWeight      float64 // weight of the name score in the final blend
	RelevanceWeight float64 // weight of the normalized index relevance
	JaccardWeight   float64 // weight of token-set Jaccard inside the name score
	SequenceWeight  float64 // weight of the character sequence ratio
	CandidatePool   int     // k: candidates requested per retrieval
}

// DefaultConfig returns the observed production defaults.
func DefaultConfig() Config {
	return Config{
		TSame:           0.85,
		TMaybe:          0.70,
		NameWeight:      0.55,
		RelevanceWeight: 0.45,
		JaccardWeight:   0.55,
		SequenceWeight:  0.45,
		CandidatePool:   20,
	}
}

// Scored is a candidate with its explainable similarity breakdown.
type Scored struct {
	Candidate Candidate
	NameScore float64
	RelScore  float64
	Final     float64
}

// Scorer computes explainable similarity scores between an enriched record
// and retrieved candidates. It is read-only with respect to persisted state.
type Scorer struct {
	cfg Config
}

// NewScorer creates a Scorer with the given configuration.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// PickBest scores every candidate and returns the best one, or nil when the
// candidate list is empty. Ties keep the first-seen candidate so the result
// is stable with respect to the retriever's ordering.
func (s *Scorer) PickBest(enriched *domain.EnrichedMeal, candidates []Candidate) *Scored {
	if len(candidates) == 0 {
		return nil
	}

	// Per-call min-max bounds for the index relevance, so raw rank values
	// with different scales stay comparable across calls.
	minRel, maxRel := candidates[0].Relevance, candidates[0].Relevance
	for _, c := range candidates[1:] {
		if c.Relevance < minRel {
			minRel = c.Relevance
		}
		if c.Relevance > maxRel {
			maxRel = c.Relevance
		}
	}

	query := normalize.Title(coalesce(enriched.CanonicalName, enriched.Raw.Name))

	var best *Scored
	for _, cand := range candidates {
		scored := s.score(query, cand, minRel, maxRel)
		if best == nil || scored.Final > best.Final {
			sc := scored
			best = &sc
		}
	}
	return best
}

func (s *Scorer) score(query string, cand Candidate, minRel, maxRel float64) Scored {
	title := cand.TitleNormalized
	if title == "" {
		title = normalize.Title(cand.Title)
	}

	nameScore := s.nameScore(query, title)

	// Zero spread means the index gave us no ordering signal; treat the
	// relevance term as zero rather than zeroing the whole score.
	relScore := 0.0
	if spread := maxRel - minRel; spread > 1e-9 {
		relScore = clamp01((cand.Relevance - minRel) / spread)
	}

	final := clamp01(s.cfg.NameWeight*nameScore + s.cfg.RelevanceWeight*relScore)
	return Scored{Candidate: cand, NameScore: nameScore, RelScore: relScore, Final: final}
}

// nameScore blends token-set Jaccard (order-independent, tolerant of extra
// or missing adjectives) with a character sequence ratio (tolerant of small
// spelling variation) over the already-normalized titles.
func (s *Scorer) nameScore(q, c string) float64 {
	if q == "" || c == "" {
		return 0
	}
	return s.cfg.JaccardWeight*tokenJaccard(q, c) + s.cfg.SequenceWeight*sequenceRatio(q, c)
}

func tokenJaccard(a, b string) float64 {
	aSet := normalize.TokenSet(a)
	bSet := normalize.TokenSet(b)
	inter := 0
	for t := range aSet {
		if _, ok := bSet[t]; ok {
			inter++
		}
	}
	union := len(aSet) + len(bSet) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// sequenceRatio is the classic matching-blocks ratio: twice the total length
// of common substrings (found greedily, longest first) over the combined
// length. 1.0 for identical strings, near 0 for unrelated ones.
func sequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	matched := matchingTotal(ra, rb)
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingTotal finds the longest common substring, then recurses on the
// pieces to its left and right.
func matchingTotal(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingTotal(a[:ai], b[:bi])
	total += matchingTotal(a[ai+size:], b[bi+size:])
	return total
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	// prev[j] holds the match run length ending at a[i-1], b[j-1].
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func coalesce(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
