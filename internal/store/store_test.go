package store

import "testing"

func truePtr() *bool  { v := true; return &v }
func falsePtr() *bool { v := false; return &v }

func TestFeatureFlagsRequested(t *testing.T) {
	f := FeatureFlags{
		Furnished:   truePtr(),
		PetFriendly: falsePtr(),
		Balcony:     truePtr(),
	}
	got := f.Requested()
	if len(got) != 2 {
		t.Fatalf("requested = %v, want 2 entries", got)
	}
	if got[0] != "furnished" || got[1] != "balcony" {
		t.Errorf("requested = %v, want [furnished balcony]", got)
	}
}

func TestFeatureFlagsRequestedEmpty(t *testing.T) {
	var f FeatureFlags
	if got := f.Requested(); len(got) != 0 {
		t.Errorf("requested = %v, want empty", got)
	}
}

func TestFeatureFlagsHas(t *testing.T) {
	f := FeatureFlags{Furnished: truePtr(), Balcony: falsePtr()}

	if !f.Has("furnished") {
		t.Error("expected furnished present")
	}
	if f.Has("balcony") {
		t.Error("false flag must not count as present")
	}
	if f.Has("pet_friendly") {
		t.Error("unset flag must not count as present")
	}
	if f.Has("garage") {
		t.Error("unknown flag name must not count as present")
	}
}

func TestUtilityFlagsRequestedAndHas(t *testing.T) {
	u := UtilityFlags{Water: truePtr(), Heating: falsePtr()}

	got := u.Requested()
	if len(got) != 1 || got[0] != "water" {
		t.Errorf("requested = %v, want [water]", got)
	}
	if !u.Has("water") {
		t.Error("expected water present")
	}
	if u.Has("heating") {
		t.Error("false flag must not count as present")
	}
}
