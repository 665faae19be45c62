package group

import (
	"reflect"
	"testing"

	"github.com/handiism/rom-browser/internal/model"
)

func rec(name string) model.Record {
	return model.Record{Name: name, URL: "https://h/" + name, Size: "?"}
}

func TestCategorizeEmptyRuleSet(t *testing.T) {
	records := []model.Record{rec("b"), rec("a"), rec("c")}

	res := Categorize(records, nil, FallbackRegion)

	if !reflect.DeepEqual(res.Order, []string{FallbackRegion}) {
		t.Fatalf("Order = %v", res.Order)
	}
	if !reflect.DeepEqual(res.Buckets[FallbackRegion], records) {
		t.Errorf("single bucket must preserve original order, got %v", res.Buckets[FallbackRegion])
	}
}

func TestCategorizeMultiMembership(t *testing.T) {
	rules := model.RuleSet{
		"USA":    {"(USA)"},
		"Europe": {"(Europe)"},
		"World":  {"(World)", "(USA, Europe)"},
	}
	records := []model.Record{
		rec("Alpha (USA)"),
		rec("Beta (USA, Europe)"),
		rec("Gamma (Japan)"),
		rec("Delta (World)"),
	}

	res := Categorize(records, rules, FallbackRegion)

	if !reflect.DeepEqual(res.Order, []string{"Europe", "USA", "World", FallbackRegion}) {
		t.Fatalf("Order = %v", res.Order)
	}

	names := func(bucket string) []string {
		var out []string
		for _, r := range res.Buckets[bucket] {
			out = append(out, r.Name)
		}
		return out
	}

	if got := names("USA"); !reflect.DeepEqual(got, []string{"Alpha (USA)", "Beta (USA, Europe)"}) {
		t.Errorf("USA = %v", got)
	}
	// Beta matches both Europe and USA, and also World via "(USA, Europe)".
	if got := names("Europe"); !reflect.DeepEqual(got, []string{"Beta (USA, Europe)"}) {
		t.Errorf("Europe = %v", got)
	}
	if got := names("World"); !reflect.DeepEqual(got, []string{"Beta (USA, Europe)", "Delta (World)"}) {
		t.Errorf("World = %v", got)
	}
	// Unmatched records go to the fallback bucket only.
	if got := names(FallbackRegion); !reflect.DeepEqual(got, []string{"Gamma (Japan)"}) {
		t.Errorf("fallback = %v", got)
	}
}

func TestCategorizeCoversEveryRecord(t *testing.T) {
	rules := model.RuleSet{"USA": {"(USA)"}, "Japan": {"(Japan)"}}
	records := []model.Record{
		rec("One (USA)"), rec("Two (Japan)"), rec("Three"), rec("Four (USA) (Japan)"),
	}

	res := Categorize(records, rules, FallbackRegion)

	covered := make(map[model.Record]bool)
	for _, bucket := range res.Order {
		for _, r := range res.Buckets[bucket] {
			covered[r] = true
		}
	}
	for _, r := range records {
		if !covered[r] {
			t.Errorf("record not covered by any bucket: %s", r.Name)
		}
	}
}

func TestCategorizeCaseInsensitive(t *testing.T) {
	rules := model.RuleSet{"USA": {"(usa)"}}
	res := Categorize([]model.Record{rec("Game (USA)")}, rules, FallbackRegion)
	if len(res.Buckets["USA"]) != 1 {
		t.Error("pattern matching must be case-insensitive")
	}
	if len(res.Buckets[FallbackRegion]) != 0 {
		t.Error("matched record must not reach the fallback bucket")
	}
}

func TestCategorizeDeduplicatesWithinBucket(t *testing.T) {
	// Two patterns of the same bucket match the same record; it must be
	// appended once.
	rules := model.RuleSet{"USA": {"(USA)", "Alpha"}}
	res := Categorize([]model.Record{rec("Alpha (USA)"), rec("Alpha (USA)")}, rules, FallbackRegion)
	if got := len(res.Buckets["USA"]); got != 1 {
		t.Errorf("bucket holds %d copies, want 1", got)
	}
}

func TestKindFallbacks(t *testing.T) {
	if KindRegion.Fallback() != FallbackRegion || KindType.Fallback() != FallbackType {
		t.Error("wrong fallback bucket names")
	}
	if KindRegion.String() != "region" || KindType.String() != "type" {
		t.Error("wrong kind names")
	}
}
