package essence20

import "testing"

func TestSkillDieProgression(t *testing.T) {
	tests := []struct {
		ranks int
		want  string
	}{
		{-1, "-"},
		{0, "-"},
		{1, "d2"},
		{2, "d4"},
		{3, "d6"},
		{4, "d8"},
		{5, "d10"},
		{6, "d12"},
		{7, "-"},
		{100, "-"},
	}
	for _, tc := range tests {
		if got := SkillDie(tc.ranks); got != tc.want {
			t.Fatalf("SkillDie(%d) = %q, want %q", tc.ranks, got, tc.want)
		}
	}
}

func TestDieSize(t *testing.T) {
	tests := []struct {
		die  string
		want int
	}{
		{"d2", 2},
		{"d8", 8},
		{"d12", 12},
		{"D10", 10},
		{"-", 0},
		{"", 0},
		{"8", 0},
		{"dx", 0},
	}
	for _, tc := range tests {
		if got := DieSize(tc.die); got != tc.want {
			t.Fatalf("DieSize(%q) = %d, want %d", tc.die, got, tc.want)
		}
	}
}

func TestPowerCapacityByClass(t *testing.T) {
	tests := []struct {
		level int
		class GrowthClass
		want  int
	}{
		{1, GrowthSlow, 2},
		{5, GrowthSlow, 2},
		{6, GrowthSlow, 4},
		{20, GrowthSlow, 2 + 3*2},
		{1, GrowthModerate, 2},
		{4, GrowthModerate, 3},
		{10, GrowthModerate, 5},
		{1, GrowthFast, 2},
		{9, GrowthFast, 6},
		{20, GrowthFast, 2 + 4*2},
	}
	for _, tc := range tests {
		if got := PowerCapacity(tc.level, tc.class); got != tc.want {
			t.Fatalf("PowerCapacity(%d, %s) = %d, want %d", tc.level, tc.class, got, tc.want)
		}
	}
}

func TestPowerCapacityMonotonic(t *testing.T) {
	for _, class := range []GrowthClass{GrowthSlow, GrowthModerate, GrowthFast} {
		prev := PowerCapacity(MinLevel, class)
		for level := MinLevel + 1; level <= MaxLevel; level++ {
			cur := PowerCapacity(level, class)
			if cur < prev {
				t.Fatalf("capacity decreased for %s at level %d: %d < %d", class, level, cur, prev)
			}
			prev = cur
		}
	}
}

func TestPowerCapacityUnknownClassDefaultsToSlow(t *testing.T) {
	for level := MinLevel; level <= MaxLevel; level++ {
		if got, want := PowerCapacity(level, "galactic"), PowerCapacity(level, GrowthSlow); got != want {
			t.Fatalf("unknown class at level %d = %d, want slow value %d", level, got, want)
		}
	}
	if got := PowerCapacity(-3, GrowthFast); got != BasePowerCapacity {
		t.Fatalf("below-minimum level should clamp to base capacity, got %d", got)
	}
}

func TestDefenseValue(t *testing.T) {
	if got := DefenseValue(5); got != 15 {
		t.Fatalf("DefenseValue(5) = %d, want 15", got)
	}
	if got := DefenseValue(0); got != BaseDefense {
		t.Fatalf("DefenseValue(0) = %d, want %d", got, BaseDefense)
	}
}

func TestDefenseForMapping(t *testing.T) {
	tests := []struct {
		essence Essence
		want    Defense
	}{
		{Strength, Toughness},
		{Speed, Evasion},
		{Smarts, Willpower},
		{Social, Cleverness},
	}
	for _, tc := range tests {
		got, ok := DefenseFor(tc.essence)
		if !ok || got != tc.want {
			t.Fatalf("DefenseFor(%s) = %q (%v), want %q", tc.essence, got, ok, tc.want)
		}
	}
	if _, ok := DefenseFor("luck"); ok {
		t.Fatal("expected unknown essence to have no defense")
	}
}

func TestParseEssence(t *testing.T) {
	if e, ok := ParseEssence("Strength"); !ok || e != Strength {
		t.Fatalf("ParseEssence(Strength) = %q (%v)", e, ok)
	}
	if e, ok := ParseEssence("  smarts "); !ok || e != Smarts {
		t.Fatalf("ParseEssence with spacing = %q (%v)", e, ok)
	}
	if _, ok := ParseEssence("charisma"); ok {
		t.Fatal("expected unknown essence name to fail")
	}
}

func TestArmorTierOrdering(t *testing.T) {
	order := []ArmorTier{ArmorNone, ArmorLight, ArmorMedium, ArmorHeavy, ArmorUltraHeavy}
	for i := 1; i < len(order); i++ {
		if ArmorTierRank(order[i]) <= ArmorTierRank(order[i-1]) {
			t.Fatalf("expected %s to rank above %s", order[i], order[i-1])
		}
		if ArmorTierBonus(order[i]) <= ArmorTierBonus(order[i-1]) {
			t.Fatalf("expected %s bonus above %s", order[i], order[i-1])
		}
	}
	if ArmorTierRank("powered") != 0 {
		t.Fatal("unknown tier should rank lowest")
	}
	if ArmorTierBonus("powered") != 0 {
		t.Fatal("unknown tier should grant no bonus")
	}
}

func TestArmorTiersThrough(t *testing.T) {
	got := ArmorTiersThrough(ArmorMedium)
	want := []ArmorTier{ArmorNone, ArmorLight, ArmorMedium}
	if len(got) != len(want) {
		t.Fatalf("ArmorTiersThrough(medium) = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ArmorTiersThrough(medium)[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSkillCatalogue(t *testing.T) {
	skills := Skills()
	if len(skills) != 21 {
		t.Fatalf("expected 21 skills, got %d", len(skills))
	}

	seenKeys := make(map[string]bool)
	seenPrefixes := make(map[string]bool)
	for _, s := range skills {
		if seenKeys[s.Key] {
			t.Fatalf("duplicate skill key %q", s.Key)
		}
		seenKeys[s.Key] = true
		if seenPrefixes[s.Prefix] {
			t.Fatalf("duplicate checkbox prefix %q", s.Prefix)
		}
		seenPrefixes[s.Prefix] = true
		if len(s.Prefix) != 3 {
			t.Fatalf("prefix %q should be three letters", s.Prefix)
		}
		if _, ok := DefenseFor(s.Essence); !ok {
			t.Fatalf("skill %q references unknown essence %q", s.Key, s.Essence)
		}
	}

	if _, ok := SkillByKey(SkillConditioning); !ok {
		t.Fatal("conditioning must be in the catalogue")
	}
}

func TestSkillByName(t *testing.T) {
	s, ok := SkillByName("Animal Handling")
	if !ok || s.Key != "animal-handling" {
		t.Fatalf("SkillByName(Animal Handling) = %+v (%v)", s, ok)
	}
	if _, ok := SkillByName("basket weaving"); ok {
		t.Fatal("expected unknown skill name to fail")
	}
}

func TestMilestone(t *testing.T) {
	for _, level := range []int{5, 10, 15, 20} {
		if !Milestone(level) {
			t.Fatalf("level %d should be a milestone", level)
		}
	}
	for _, level := range []int{1, 2, 4, 6, 19} {
		if Milestone(level) {
			t.Fatalf("level %d should not be a milestone", level)
		}
	}
}
