package rulebook

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/louisbranch/morphsheet/internal/essence20"
)

func TestDefaultLoadsEmbeddedContent(t *testing.T) {
	rb, err := Default()
	if err != nil {
		t.Fatalf("load embedded rulebook: %v", err)
	}

	if len(rb.Origins()) == 0 {
		t.Fatal("expected origins in embedded content")
	}
	if len(rb.Roles()) == 0 {
		t.Fatal("expected roles in embedded content")
	}
	if len(rb.Influences()) == 0 {
		t.Fatal("expected influences in embedded content")
	}
	if len(rb.Perks()) == 0 {
		t.Fatal("expected perks in embedded content")
	}
	if len(rb.GridPowers()) == 0 {
		t.Fatal("expected grid powers in embedded content")
	}
	if len(rb.ZordFrames()) == 0 {
		t.Fatal("expected zord frames in embedded content")
	}
	if len(rb.GearItems()) == 0 {
		t.Fatal("expected gear in embedded content")
	}
}

func TestEmbeddedRoleReferencesResolve(t *testing.T) {
	rb, err := Default()
	if err != nil {
		t.Fatalf("load embedded rulebook: %v", err)
	}

	for _, role := range rb.Roles() {
		for skill := range role.StartingSkills {
			if _, ok := essence20.SkillByKey(skill); !ok {
				t.Fatalf("role %q starting skill %q not in catalogue", role.Key, skill)
			}
		}
		for _, skill := range role.SkillChoices {
			if _, ok := essence20.SkillByKey(skill); !ok {
				t.Fatalf("role %q skill choice %q not in catalogue", role.Key, skill)
			}
		}
		for i := 1; i < len(role.Perks); i++ {
			if role.Perks[i].Level < role.Perks[i-1].Level {
				t.Fatalf("role %q perks out of level order", role.Key)
			}
		}
	}
}

func TestEmbeddedArmorShellPerks(t *testing.T) {
	rb, err := Default()
	if err != nil {
		t.Fatalf("load embedded rulebook: %v", err)
	}

	tiers := make(map[essence20.ArmorTier]bool)
	for _, perk := range rb.Perks() {
		if perk.GrantsArmorTier != "" {
			tiers[perk.GrantsArmorTier] = true
		}
	}
	for _, want := range []essence20.ArmorTier{essence20.ArmorMedium, essence20.ArmorHeavy, essence20.ArmorUltraHeavy} {
		if !tiers[want] {
			t.Fatalf("expected an armor-shell perk granting %s training", want)
		}
	}
}

func TestLookupUnknownKeyReturnsZeroValue(t *testing.T) {
	rb, err := Default()
	if err != nil {
		t.Fatalf("load embedded rulebook: %v", err)
	}

	origin, ok := rb.Origin("atlantean")
	if ok {
		t.Fatal("expected unknown origin lookup to miss")
	}
	if origin.StartingHealth != 0 || origin.Name != "" {
		t.Fatalf("expected zero-value origin, got %+v", origin)
	}

	role, ok := rb.Role("omega")
	if ok {
		t.Fatal("expected unknown role lookup to miss")
	}
	if len(role.EssenceAdjustments) != 0 || role.ArmorBonus != 0 {
		t.Fatalf("expected zero-value role, got %+v", role)
	}
}

func TestLoadRejectsDuplicateKeys(t *testing.T) {
	content := minimalContent()
	content["data/origins.json"] = &fstest.MapFile{Data: []byte(`{
		"system_id": "essence20", "system_version": "v1", "source": "test", "locale": "en-US",
		"items": [
			{"key": "human", "name": "Human", "starting_health": 3, "essence_choices": ["strength"]},
			{"key": "human", "name": "Human Again", "starting_health": 3, "essence_choices": ["speed"]}
		]
	}`)}

	_, err := Load(content, "data")
	if err == nil {
		t.Fatal("expected duplicate key error")
	}
	if !strings.Contains(err.Error(), "duplicate key") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLoadRejectsUnknownSkillReference(t *testing.T) {
	content := minimalContent()
	content["data/roles.json"] = &fstest.MapFile{Data: []byte(`{
		"system_id": "essence20", "system_version": "v1", "source": "test", "locale": "en-US",
		"items": [{
			"key": "red", "name": "Red Ranger",
			"essence_adjustments": {"strength": 1},
			"starting_skills": {"basket-weaving": 1},
			"skill_choices": [], "armor_tier": "light", "armor_bonus": 1,
			"power_growth": "moderate", "perks": []
		}]
	}`)}

	_, err := Load(content, "data")
	if err == nil {
		t.Fatal("expected dangling reference error")
	}
	if !strings.Contains(err.Error(), "basket-weaving") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLoadRejectsUnknownGrowthClass(t *testing.T) {
	content := minimalContent()
	content["data/roles.json"] = &fstest.MapFile{Data: []byte(`{
		"system_id": "essence20", "system_version": "v1", "source": "test", "locale": "en-US",
		"items": [{
			"key": "red", "name": "Red Ranger",
			"essence_adjustments": {}, "starting_skills": {}, "skill_choices": [],
			"armor_tier": "light", "armor_bonus": 1,
			"power_growth": "galactic", "perks": []
		}]
	}`)}

	_, err := Load(content, "data")
	if err == nil {
		t.Fatal("expected growth class error")
	}
	if !strings.Contains(err.Error(), "galactic") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLoadRejectsInfluenceWithoutHangUps(t *testing.T) {
	content := minimalContent()
	content["data/influences.json"] = &fstest.MapFile{Data: []byte(`{
		"system_id": "essence20", "system_version": "v1", "source": "test", "locale": "en-US",
		"items": [{
			"key": "athlete", "name": "Athlete",
			"perk_name": "Peak", "perk_summary": "Reroll.",
			"specialties": [], "hang_ups": [], "bonds": ["A bond."]
		}]
	}`)}

	_, err := Load(content, "data")
	if err == nil {
		t.Fatal("expected hang-up validation error")
	}
	if !strings.Contains(err.Error(), "hang-up") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	content := minimalContent()
	delete(content, "data/gear.json")

	_, err := Load(content, "data")
	if err == nil {
		t.Fatal("expected read error for missing file")
	}
}

// minimalContent builds the smallest content set Load accepts. Tests mutate
// individual files to provoke specific failures.
func minimalContent() fstest.MapFS {
	payload := func(items string) *fstest.MapFile {
		return &fstest.MapFile{Data: []byte(`{
			"system_id": "essence20", "system_version": "v1", "source": "test", "locale": "en-US",
			"items": [` + items + `]
		}`)}
	}
	return fstest.MapFS{
		"data/origins.json": payload(`{"key": "human", "name": "Human", "starting_health": 3, "essence_choices": ["strength"]}`),
		"data/roles.json": payload(`{"key": "red", "name": "Red Ranger",
			"essence_adjustments": {"strength": 1}, "starting_skills": {"athletics": 1},
			"skill_choices": ["might"], "armor_tier": "medium", "armor_bonus": 2,
			"power_growth": "moderate",
			"perks": [{"level": 1, "name": "Lead the Charge", "summary": "Allies add +1."}]}`),
		"data/influences.json": payload(`{"key": "athlete", "name": "Athlete",
			"perk_name": "Peak", "perk_summary": "Reroll.",
			"specialties": ["athletics"],
			"hang_ups": [{"key": "sore-loser", "name": "Sore Loser", "summary": "-1 next test."}],
			"bonds": ["My team counts on me."]}`),
		"data/perks.json":       payload(`{"key": "fearless", "name": "Fearless", "summary": "No fear.", "prerequisite": ""}`),
		"data/grid_powers.json": payload(`{"key": "morphin-leap", "name": "Morphin Leap", "summary": "Jump far.", "prerequisite": ""}`),
		"data/zord_frames.json": payload(`{"key": "tyranno", "name": "Tyranno Frame", "team_type": "assault",
			"base_health": 10, "base_power": 4, "base_speed": 2, "base_armor": 3,
			"spectrum_features": ["Flame Lance"], "features": ["Tail Sweep"], "growth_slots": 4}`),
		"data/gear.json": payload(`{"key": "power-sword", "name": "Power Sword", "slot": "melee", "damage_die": "d8"}`),
	}
}
