package kagglecsv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipes.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

const fixtureCSV = "\ufeffname,ingredients,diet,prep_time,cook_time,flavor_profile,course,state,region\n" +
	"Masala Dosa,\"Rice, urad dal, potato\",vegetarian,360,90,spicy,breakfast,Karnataka,South\n" +
	"Chicken Biryani,\"Chicken, basmati rice\",non vegetarian,30,60,spicy,main course,Telangana,South\n" +
	",missing name row,vegetarian,5,5,sweet,snack,Goa,West\n" +
	"Gajar Halwa,\"Carrot, milk, sugar\",vegetarian,-1,45,sweet,dessert,Punjab,North\n"

func TestFetchBatchParsesRows(t *testing.T) {
	adapter := NewAdapter(writeFixture(t, fixtureCSV), "kaggle:indian_food")

	items, cursor, err := adapter.FetchBatch(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("FetchBatch failed: %v", err)
	}
	if cursor != "" {
		t.Errorf("expected empty cursor at end of file, got %q", cursor)
	}
	// The nameless row is skipped.
	if len(items) != 3 {
		t.Fatalf("expected 3 records, got %d", len(items))
	}

	first := items[0]
	if first.SourceType != "kaggle:indian_food" {
		t.Errorf("SourceType = %q", first.SourceType)
	}
	if first.SourceID != "0" {
		t.Errorf("expected row-index source id, got %q", first.SourceID)
	}
	if first.Name != "Masala Dosa" {
		t.Errorf("Name = %q", first.Name)
	}
	if first.IngredientsText != "Rice, urad dal, potato" {
		t.Errorf("IngredientsText = %q", first.IngredientsText)
	}
	if first.Diet != "vegetarian" {
		t.Errorf("Diet = %q", first.Diet)
	}
	if first.Course != "breakfast" {
		t.Errorf("Course = %q", first.Course)
	}
	if first.PrepTimeMins == nil || *first.PrepTimeMins != 360 {
		t.Errorf("PrepTimeMins = %v", first.PrepTimeMins)
	}
	if first.Extra == nil || first.Extra["region"] != "South" {
		t.Errorf("Extra region = %v", first.Extra)
	}
	if first.Extra["flavor"] != "spicy" {
		t.Errorf("Extra flavor = %v", first.Extra)
	}

	// -1 time sentinels map to nil.
	halwa := items[2]
	if halwa.PrepTimeMins != nil {
		t.Errorf("expected nil prep time for -1 sentinel, got %v", *halwa.PrepTimeMins)
	}
	if halwa.CookTimeMins == nil || *halwa.CookTimeMins != 45 {
		t.Errorf("CookTimeMins = %v", halwa.CookTimeMins)
	}
}

func TestFetchBatchPaginatesWithCursor(t *testing.T) {
	adapter := NewAdapter(writeFixture(t, fixtureCSV), "kaggle:indian_food")
	ctx := context.Background()

	var names []string
	cursor := ""
	for {
		items, next, err := adapter.FetchBatch(ctx, cursor, 2)
		if err != nil {
			t.Fatalf("FetchBatch failed: %v", err)
		}
		for _, item := range items {
			names = append(names, item.Name)
		}
		if next == "" {
			break
		}
		cursor = next
	}

	want := []string{"Masala Dosa", "Chicken Biryani", "Gajar Halwa"}
	if len(names) != len(want) {
		t.Fatalf("expected %d records across batches, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("record %d: got %q, want %q", i, names[i], want[i])
		}
	}
}

func TestFetchBatchRejectsBadCursor(t *testing.T) {
	adapter := NewAdapter(writeFixture(t, fixtureCSV), "kaggle:indian_food")
	if _, _, err := adapter.FetchBatch(context.Background(), "not-a-number", 2); err == nil {
		t.Error("expected error for malformed cursor")
	}
}

func TestLoadFailsWithoutTitleColumn(t *testing.T) {
	adapter := NewAdapter(writeFixture(t, "ingredients,diet\nrice,vegetarian\n"), "kaggle:indian_food")
	if _, _, err := adapter.FetchBatch(context.Background(), "", 10); err == nil {
		t.Error("expected error when no title column is present")
	}
}

func TestHeaderAliasesAndExplicitID(t *testing.T) {
	csvText := "recipe_id,recipe_name,ingredient_list,directions,cooking_time\n" +
		"r-42,Pav Bhaji,\"Potato, butter\",Mash and fry.,40\n"
	adapter := NewAdapter(writeFixture(t, csvText), "kaggle:other")

	items, _, err := adapter.FetchBatch(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("FetchBatch failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 record, got %d", len(items))
	}
	got := items[0]
	if got.SourceID != "r-42" {
		t.Errorf("expected explicit id column to win, got %q", got.SourceID)
	}
	if got.Name != "Pav Bhaji" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.InstructionsText != "Mash and fry." {
		t.Errorf("InstructionsText = %q", got.InstructionsText)
	}
	if got.CookTimeMins == nil || *got.CookTimeMins != 40 {
		t.Errorf("CookTimeMins = %v", got.CookTimeMins)
	}
}

func TestGetTotalCount(t *testing.T) {
	adapter := NewAdapter(writeFixture(t, fixtureCSV), "kaggle:indian_food")
	count, err := adapter.GetTotalCount()
	if err != nil {
		t.Fatalf("GetTotalCount failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 loadable records, got %d", count)
	}
}
