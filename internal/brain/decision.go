package brain

import "github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"

// decision is the outcome of matching the best candidate score against the
// configured thresholds.
type decision struct {
	status      domain.ResolutionStatus
	attachTo    string // existing canonical meal id, empty for new_canonical
	needsReview bool
	bestScore   float64
}

// decide maps the best candidate's final score to one of three outcomes.
// The policy is intentionally a two-threshold comparison with no ranking
// model, so false merges and false splits stay auditable from the two
// numeric inputs.
func decide(cfg Config, best *Scored) decision {
	switch {
	case best != nil && best.Final >= cfg.TSame:
		return decision{
			status:      domain.StatusAttachedAsVariant,
			attachTo:    best.Candidate.ID,
			needsReview: false,
			bestScore:   best.Final,
		}
	case best != nil && best.Final >= cfg.TMaybe:
		return decision{
			status:      domain.StatusNeedsReview,
			attachTo:    best.Candidate.ID,
			needsReview: true,
			bestScore:   best.Final,
		}
	default:
		d := decision{
			status: domain.StatusNewCanonical,
			// New canonical meals are provisional until confirmed.
			needsReview: true,
		}
		if best != nil {
			d.bestScore = best.Final
		}
		return d
	}
}
