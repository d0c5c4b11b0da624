package brain

import (
	"testing"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
)

func TestDecideThresholdBoundaries(t *testing.T) {
	cfg := DefaultConfig() // TSame=0.85, TMaybe=0.70

	tests := []struct {
		name        string
		best        *Scored
		wantStatus  domain.ResolutionStatus
		wantReview  bool
		wantAttach  bool
	}{
		{
			name:       "exactly at t_same attaches confidently",
			best:       &Scored{Candidate: Candidate{ID: "c1"}, Final: 0.85},
			wantStatus: domain.StatusAttachedAsVariant,
			wantReview: false,
			wantAttach: true,
		},
		{
			name:       "just below t_same needs review",
			best:       &Scored{Candidate: Candidate{ID: "c1"}, Final: 0.8499},
			wantStatus: domain.StatusNeedsReview,
			wantReview: true,
			wantAttach: true,
		},
		{
			name:       "exactly at t_maybe needs review",
			best:       &Scored{Candidate: Candidate{ID: "c1"}, Final: 0.70},
			wantStatus: domain.StatusNeedsReview,
			wantReview: true,
			wantAttach: true,
		},
		{
			name:       "just below t_maybe creates new canonical",
			best:       &Scored{Candidate: Candidate{ID: "c1"}, Final: 0.6999},
			wantStatus: domain.StatusNewCanonical,
			wantReview: true,
			wantAttach: false,
		},
		{
			name:       "no candidates creates new canonical",
			best:       nil,
			wantStatus: domain.StatusNewCanonical,
			wantReview: true,
			wantAttach: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decide(cfg, tt.best)
			if d.status != tt.wantStatus {
				t.Errorf("status = %q, want %q", d.status, tt.wantStatus)
			}
			if d.needsReview != tt.wantReview {
				t.Errorf("needsReview = %v, want %v", d.needsReview, tt.wantReview)
			}
			if tt.wantAttach && d.attachTo != "c1" {
				t.Errorf("attachTo = %q, want c1", d.attachTo)
			}
			if !tt.wantAttach && d.attachTo != "" {
				t.Errorf("attachTo = %q, want empty", d.attachTo)
			}
		})
	}
}
