package brain

import (
	"reflect"
	"testing"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
)

func TestMergeTagCandidatesIdempotent(t *testing.T) {
	in := []domain.TagCandidate{
		{TagType: "diet", Value: "vegetarian", LabelEn: "Vegetarian", Confidence: 1.0, IsPrimary: true},
		{TagType: "cuisine_region", Value: "punjabi", LabelEn: "Punjabi", Confidence: 0.9},
		{TagType: "spice_level", Value: "3", Confidence: 0.7},
	}

	got := MergeTagCandidates(in)
	if !reflect.DeepEqual(got, in) {
		t.Errorf("merging an already-unique list changed it:\n got %+v\nwant %+v", got, in)
	}
}

func TestMergeTagCandidatesMaxConfidenceAndPrimaryOR(t *testing.T) {
	in := []domain.TagCandidate{
		{TagType: "diet", Value: "vegan", Confidence: 0.6, IsPrimary: true, Source: "dataset"},
		{TagType: "diet", Value: "vegan", Confidence: 0.9, IsPrimary: false, Source: "llm"},
	}

	got := MergeTagCandidates(in)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Confidence != 0.9 {
		t.Errorf("confidence = %f, want 0.9", got[0].Confidence)
	}
	if !got[0].IsPrimary {
		t.Error("is_primary must be the OR of all inputs")
	}
	if got[0].Source != "llm" {
		t.Errorf("source = %q, want the higher-confidence entry's source", got[0].Source)
	}
}

func TestMergeTagCandidatesTiePrefersPrimary(t *testing.T) {
	in := []domain.TagCandidate{
		{TagType: "course", Value: "dinner", Confidence: 0.8, Source: "ml"},
		{TagType: "course", Value: "dinner", Confidence: 0.8, IsPrimary: true, Source: "dataset"},
	}

	got := MergeTagCandidates(in)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Source != "dataset" {
		t.Errorf("tie must prefer the primary-flagged entry, kept %q", got[0].Source)
	}
}

func TestMergeTagCandidatesNormalizedGrouping(t *testing.T) {
	in := []domain.TagCandidate{
		{TagType: "Cuisine_Region", Value: " North  Indian ", Confidence: 0.5},
		{TagType: "cuisine_region", Value: "north indian", Confidence: 0.8},
	}

	got := MergeTagCandidates(in)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1 after case/whitespace grouping", len(got))
	}
	if got[0].Confidence != 0.8 {
		t.Errorf("confidence = %f, want 0.8", got[0].Confidence)
	}
}

func TestMergeTagCandidatesLabelBackfill(t *testing.T) {
	in := []domain.TagCandidate{
		{TagType: "diet", Value: "vegetarian", Confidence: 0.9},
		{TagType: "diet", Value: "vegetarian", Confidence: 0.4, LabelEn: "Vegetarian", LabelHi: "शाकाहारी"},
	}

	got := MergeTagCandidates(in)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].LabelEn != "Vegetarian" || got[0].LabelHi != "शाकाहारी" {
		t.Errorf("labels not backfilled from the lower-confidence member: %+v", got[0])
	}
	if got[0].Confidence != 0.9 {
		t.Errorf("confidence = %f, want 0.9", got[0].Confidence)
	}
}

func TestMergeTagCandidatesDropsEmptyKeys(t *testing.T) {
	in := []domain.TagCandidate{
		{TagType: "", Value: "vegan", Confidence: 1.0},
		{TagType: "diet", Value: "", Confidence: 1.0},
		{TagType: "diet", Value: "vegan", Confidence: 1.0},
	}

	got := MergeTagCandidates(in)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
}
