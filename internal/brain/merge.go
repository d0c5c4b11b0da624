package brain

import (
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/normalize"
)

// MergeTagCandidates deduplicates a heterogeneous tag candidate list by
// case/whitespace-normalized (type, value). Within a group the surviving
// entry keeps the maximum confidence, is_primary becomes the OR of all
// members (a confidence tie prefers the entry already flagged primary), and
// missing display labels are backfilled from any member that has them.
// Idempotent: an already-unique list comes back unchanged.
func MergeTagCandidates(candidates []domain.TagCandidate) []domain.TagCandidate {
	type key struct {
		tagType string
		value   string
	}

	order := make([]key, 0, len(candidates))
	merged := make(map[key]domain.TagCandidate, len(candidates))

	for _, cand := range candidates {
		k := key{
			tagType: normalize.Value(cand.TagType),
			value:   normalize.Value(cand.Value),
		}
		if k.tagType == "" || k.value == "" {
			continue
		}

		existing, ok := merged[k]
		if !ok {
			order = append(order, k)
			merged[k] = cand
			continue
		}

		winner := existing
		switch {
		case cand.Confidence > existing.Confidence:
			winner = cand
		case cand.Confidence == existing.Confidence && cand.IsPrimary && !existing.IsPrimary:
			winner = cand
		}
		winner.IsPrimary = existing.IsPrimary || cand.IsPrimary
		winner.LabelEn = coalesce(winner.LabelEn, existing.LabelEn, cand.LabelEn)
		winner.LabelHi = coalesce(winner.LabelHi, existing.LabelHi, cand.LabelHi)
		winner.LabelHinglish = coalesce(winner.LabelHinglish, existing.LabelHinglish, cand.LabelHinglish)
		merged[k] = winner
	}

	out := make([]domain.TagCandidate, 0, len(order))
	for _, k := range order {
		out = append(out, merged[k])
	}
	return out
}
